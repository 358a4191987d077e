package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"dealersite/internal/domain"
	applog "dealersite/internal/log"
	"dealersite/internal/services"
)

const siteKey = "site"

// SiteSettings loads one settings snapshot per request. defaults fill keys
// that are missing or blank in the store.
func SiteSettings(svc *services.SettingsService, defaults map[string]string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := c.Path()
		if strings.HasPrefix(p, "/media/") || strings.HasPrefix(p, "/static/") || p == "/metrics" || p == "/healthz" {
			return c.Next()
		}
		snap, err := svc.Snapshot()
		if err != nil {
			applog.Error(c, "settings.load.fail", err, nil)
		}
		vals := snap.Map()
		for k, v := range defaults {
			if strings.TrimSpace(vals[k]) == "" {
				vals[k] = v
			}
		}
		c.Locals(siteKey, domain.NewSiteSettings(vals))
		return c.Next()
	}
}

func siteOf(c *fiber.Ctx) domain.SiteSettings {
	if s, ok := c.Locals(siteKey).(domain.SiteSettings); ok {
		return s
	}
	return domain.NewSiteSettings(nil)
}
