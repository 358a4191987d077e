package handlers

import (
	"github.com/gofiber/fiber/v2"

	"dealersite/internal/services"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	site := siteOf(c)
	data["Site"] = site
	if _, ok := data["WhatsAppURL"]; !ok {
		data["WhatsAppURL"] = services.WhatsAppLink(
			site.Get("whatsapp_number", ""),
			site.Get("whatsapp_greeting", "Halo, saya ingin bertanya tentang mobil Honda"),
		)
	}
	// token the CSRF middleware put into Locals; the cookie is a fallback
	// for pages rendered before the middleware ran
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg, "Site": siteOf(c)})
}
