package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"

	"dealersite/internal/credit"
	"dealersite/internal/log"
	"dealersite/internal/services"
	"dealersite/internal/validate"
)

type APIHandler struct {
	Catalog  *services.CatalogService
	Leads    *services.LeadService
	FlatRate float64
}

// GET /api/v1/cars/:slug/configuration?variant=&color=
func (h *APIHandler) Configuration(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "car not found"})
	}
	car, cfg, err := h.Catalog.Configure(slug, c.Query("variant"), c.Query("color"))
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "car not found"})
	}
	if err != nil {
		log.Error(c, "api.configuration.fail", err, map[string]any{"slug": slug})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load car"})
	}
	variants := make([]fiber.Map, 0, len(car.Variants))
	for _, v := range car.Variants {
		variants = append(variants, fiber.Map{"id": v.ID, "name": v.Name, "price": v.Price})
	}
	return c.JSON(fiber.Map{
		"car":           fiber.Map{"id": car.ID, "slug": car.Slug, "name": car.Name, "price": car.Price, "status": car.Status},
		"variants":      variants,
		"configuration": cfg,
	})
}

// GET /api/v1/credit?price=&dp=&tenor=
func (h *APIHandler) Credit(c *fiber.Ctx) error {
	price, err := strconv.ParseInt(strings.TrimSpace(c.Query("price")), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid price"})
	}
	dp, err := strconv.Atoi(strings.TrimSpace(c.Query("dp", "20")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid dp"})
	}
	tenor, err := strconv.Atoi(strings.TrimSpace(c.Query("tenor", "60")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid tenor"})
	}
	res, err := credit.Calculate(price, dp, tenor, flatRate(c, h.FlatRate))
	if err != nil {
		log.Security(c, "validation.fail", map[string]any{"field": "credit", "reason": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

// POST /api/v1/leads accepts {"type": ..., "carId": ...} as JSON or form.
// It always answers 204 so a tracking beacon never blocks navigation.
func (h *APIHandler) Lead(c *fiber.Ctx) error {
	var leadType, carID string
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON) || gjson.ValidBytes(c.Body()) {
		body := c.Body()
		leadType = gjson.GetBytes(body, "type").String()
		carID = gjson.GetBytes(body, "carId").String()
	} else {
		leadType = c.FormValue("type")
		carID = c.FormValue("carId")
	}
	if id, ok := validate.ID(carID); ok {
		carID = id
	} else {
		carID = ""
	}
	if strings.TrimSpace(leadType) != "" {
		h.Leads.Log(c.UserContext(), carID, leadType)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
