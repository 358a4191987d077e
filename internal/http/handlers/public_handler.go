package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"dealersite/internal/configurator"
	"dealersite/internal/credit"
	"dealersite/internal/domain"
	"dealersite/internal/log"
	"dealersite/internal/repos"
	"dealersite/internal/services"
	"dealersite/internal/validate"
)

type PublicHandler struct {
	Catalog  *services.CatalogService
	Content  *services.ContentService
	Leads    *services.LeadService
	FlatRate float64
}

// GET /
func (h *PublicHandler) Home(c *fiber.Ctx) error {
	cars, err := h.Catalog.Featured(6)
	if err != nil {
		return err
	}
	if len(cars) == 0 {
		if cars, err = h.Catalog.ListCars(repos.CarFilter{ActiveOnly: true}, 1, 6); err != nil {
			return err
		}
	}
	promos, err := h.Content.Promotions(true)
	if err != nil {
		return err
	}
	testis, err := h.Content.Testimonials(true)
	if err != nil {
		return err
	}
	return render(c, "home", fiber.Map{"Cars": cars, "Promos": h.promoCards(c, promos), "Testimonials": testis})
}

// GET /cars
func (h *PublicHandler) Cars(c *fiber.Ctx) error {
	f := repos.CarFilter{ActiveOnly: true}
	data := fiber.Map{
		"Statuses": domain.CarStatuses, "Brands": []string{}, "Cars": []domain.Car{},
		"Q": "", "Status": "", "Brand": "",
	}

	if raw := c.Query("q"); strings.TrimSpace(raw) != "" {
		q, ok := validate.Q(raw)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "q", "value": raw})
			data["Err"] = "Enter a valid keyword (letters/numbers only)"
			c.Status(fiber.StatusBadRequest)
			return render(c, "cars", data)
		}
		f.Q = strings.ToLower(q)
	}
	if raw := c.Query("status"); raw != "" {
		st, ok := validate.Status(raw)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "status"})
			data["Err"] = "Invalid filter"
			c.Status(fiber.StatusBadRequest)
			return render(c, "cars", data)
		}
		f.Status = string(st)
	}
	if raw := c.Query("brand"); raw != "" {
		if b, ok := validate.Q(raw); ok {
			f.Brand = b
		}
	}

	cars, err := h.Catalog.ListCars(f, 1, 60)
	if err != nil {
		log.Error(c, "cars.list.fail", err, nil)
		return err
	}
	brands, err := h.Catalog.Brands()
	if err != nil {
		return err
	}
	data["Cars"] = cars
	data["Brands"] = brands
	data["Q"] = f.Q
	data["Status"] = f.Status
	data["Brand"] = f.Brand
	return render(c, "cars", data)
}

// GET /cars/:slug?variant=&color=&dp=&tenor=
func (h *PublicHandler) Detail(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "slug"})
		return notFound(c, "This car is no longer available")
	}
	car, cfg, err := h.Catalog.Configure(slug, c.Query("variant"), c.Query("color"))
	if errors.Is(err, services.ErrNotFound) {
		return notFound(c, "This car is no longer available")
	}
	if err != nil {
		return err
	}

	dp := validate.Percent(c.Query("dp"), 20)
	tenor := validate.Tenor(c.Query("tenor"), 60)
	data := fiber.Map{
		"Car":          car,
		"Config":       cfg,
		"DP":           dp,
		"Tenor":        tenor,
		"DPOptions":    credit.DPOptions(),
		"TenorOptions": credit.TenorOptions(),
		"WhatsAppURL":  services.WhatsAppLink(siteOf(c).Get("whatsapp_number", ""), unitMessage(car, cfg)),
	}
	if sim, err := credit.Calculate(cfg.Price, dp, tenor, flatRate(c, h.FlatRate)); err != nil {
		data["CreditErr"] = "Pilih tenor dan uang muka yang valid"
	} else {
		data["Credit"] = sim
	}
	return render(c, "car", data)
}

// GET /promo
func (h *PublicHandler) Promo(c *fiber.Ctx) error {
	promos, err := h.Content.Promotions(true)
	if err != nil {
		return err
	}
	return render(c, "promo", fiber.Map{"Promos": h.promoCards(c, promos)})
}

// POST /contact records the lead, then hands the visitor to WhatsApp.
func (h *PublicHandler) Contact(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	msg := strings.TrimSpace(c.FormValue("message"))
	carID, _ := validate.ID(c.FormValue("carId"))
	name = truncateRunes(name, 80)
	msg = truncateRunes(msg, 1000)
	h.Leads.Log(c.UserContext(), carID, domain.LeadContactForm)
	log.Info(c, "lead.contact", map[string]any{"car_id": carID})

	text := "Halo, saya ingin bertanya."
	if name != "" {
		text = fmt.Sprintf("Halo, saya %s.", name)
	}
	if msg != "" {
		text += " " + msg
	}
	return c.Redirect(services.WhatsAppLink(siteOf(c).Get("whatsapp_number", ""), text))
}

// truncateRunes keeps at most n characters without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// PromoCard is a promotion with its resolved call-to-action link.
type PromoCard struct {
	domain.Promotion
	Href string
}

func (h *PublicHandler) promoCards(c *fiber.Ctx, promos []domain.Promotion) []PromoCard {
	number := siteOf(c).Get("whatsapp_number", "")
	out := make([]PromoCard, 0, len(promos))
	for _, p := range promos {
		href := p.Link
		if href == "" {
			href = services.WhatsAppLink(number, fmt.Sprintf("Halo, saya ingin info promo %s", p.Title))
		}
		out = append(out, PromoCard{Promotion: p, Href: href})
	}
	return out
}

func unitMessage(car domain.Car, cfg configurator.Configuration) string {
	b := strings.Builder{}
	b.WriteString("Halo, saya tertarik dengan " + car.Name)
	if cfg.Variant != nil {
		b.WriteString(" " + cfg.Variant.Name)
	}
	if cfg.SelectedColor != nil {
		b.WriteString(" warna " + cfg.SelectedColor.Name)
	}
	return b.String()
}

// flatRate prefers the credit_flat_rate setting over the configured default.
func flatRate(c *fiber.Ctx, def float64) float64 {
	raw := siteOf(c).Get("credit_flat_rate", "")
	if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && v >= 0 {
		return v
	}
	return def
}
