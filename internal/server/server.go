// Package server assembles the Fiber application: middleware stack, view
// engine and every route.
package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"dealersite/internal/config"
	"dealersite/internal/http/handlers"
	applog "dealersite/internal/log"
	"dealersite/internal/metrics"
	"dealersite/internal/repos"
	"dealersite/internal/services"
)

// Rupiah formats an amount as "Rp 383.900.000".
func Rupiah(n int64) string {
	return "Rp " + strings.ReplaceAll(humanize.Comma(n), ",", ".")
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"rupiah": Rupiah,
		"lines":  func(l []string) string { return strings.Join(l, "\n") },
		"json": func(v any) string {
			b, err := json.Marshal(v)
			if err != nil {
				return ""
			}
			return string(b)
		},
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < 500 {
		code = fe.Code
		msg = http.StatusText(code)
	} else {
		applog.Error(c, "server.error", err, nil)
	}
	// avoid leaking internals; best-effort render
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// New wires the application on top of an open database.
func New(cfg config.Config, db *sqlx.DB) *fiber.App {
	engine := html.New(cfg.TemplatesDir, ".html")
	for name, fn := range Funcs() {
		engine.AddFunc(name, fn)
	}

	app := fiber.New(fiber.Config{
		Views:        engine,
		ViewsLayout:  "layouts/main",
		ErrorHandler: errorHandler,
		BodyLimit:    10 << 20, // room for image uploads
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}
	deps := handlers.NewDeps(db, cfg)

	rate := cfg.RateLimit
	if rate <= 0 {
		rate = 60
	}

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{CrossOriginEmbedderPolicy: "unsafe-none"}))
	app.Use(metrics.Middleware())
	app.Use(compress.New())
	app.Use(handlers.AttachUser(authSvc))
	app.Use(limiter.New(limiter.Config{
		Max:        rate,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		Next: func(c *fiber.Ctx) bool {
			// the JSON API has no form to carry a token
			return strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"form": c.FormValue("csrf")})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
	app.Use(handlers.SiteSettings(deps.Settings, map[string]string{
		"whatsapp_number": cfg.WhatsAppNumber,
	}))

	// ---------- Static assets ----------
	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	staticDir := filepath.Join(filepath.Dir(cfg.TemplatesDir), "static")
	log.Printf("[static] /static -> %s", staticDir)
	log.Printf("[static] /media  -> %s", mediaDir)

	app.Static("/static", staticDir)
	// guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(mediaDir, clean), true)
	})

	// ---------- Public pages ----------
	app.Get("/", deps.Public.Home)
	app.Get("/cars", deps.Public.Cars)
	app.Get("/cars/:slug", deps.Public.Detail)
	app.Get("/promo", deps.Public.Promo)
	app.Post("/contact", limiter.New(limiter.Config{Max: 10, Expiration: time.Minute}), deps.Public.Contact)

	// ---------- API ----------
	api := app.Group("/api/v1")
	api.Get("/cars/:slug/configuration", deps.API.Configuration)
	api.Get("/credit", deps.API.Credit)
	api.Post("/leads", limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|leads"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.leads.hit", nil)
			return c.SendStatus(fiber.StatusNoContent)
		},
	}), deps.API.Lead)

	// ---------- Auth ----------
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	app.Post("/logout", authH.Logout)

	// ---------- Admin ----------
	adminH := deps.Admin
	admin := app.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/", adminH.Dashboard)
	admin.Get("/cars", adminH.CarsPage)
	admin.Get("/cars/new", adminH.NewCar)
	admin.Post("/cars", adminH.CreateCar)
	admin.Get("/cars/:id", adminH.EditCar)
	admin.Post("/cars/:id", adminH.UpdateCar)
	admin.Post("/cars/:id/delete", adminH.DeleteCar)
	admin.Get("/promotions", adminH.PromotionsPage)
	admin.Post("/promotions", adminH.CreatePromotion)
	admin.Post("/promotions/:id", adminH.UpdatePromotion)
	admin.Post("/promotions/:id/toggle", adminH.TogglePromotion)
	admin.Post("/promotions/:id/delete", adminH.DeletePromotion)
	admin.Get("/testimonials", adminH.TestimonialsPage)
	admin.Post("/testimonials", adminH.CreateTestimonial)
	admin.Post("/testimonials/:id", adminH.UpdateTestimonial)
	admin.Post("/testimonials/:id/toggle", adminH.ToggleTestimonial)
	admin.Post("/testimonials/:id/delete", adminH.DeleteTestimonial)
	admin.Get("/settings", adminH.SettingsPage)
	admin.Post("/settings", adminH.SaveSettings)
	admin.Post("/settings/delete", adminH.DeleteSetting)
	admin.Post("/upload", adminH.Upload)

	// ---------- Health, metrics & 404 ----------
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.Ping(); err != nil {
			applog.Error(c, "health.db.fail", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/metrics", metrics.Handler())
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	return app
}
