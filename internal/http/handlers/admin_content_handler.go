package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "dealersite/internal/log"
	"dealersite/internal/services"
	"dealersite/internal/validate"
)

func checked(c *fiber.Ctx, key string) bool {
	switch c.FormValue(key) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func promotionInput(c *fiber.Ctx) services.PromotionInput {
	return services.PromotionInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Image:       c.FormValue("image"),
		Link:        c.FormValue("link"),
		Tag:         c.FormValue("tag"),
		Period:      c.FormValue("period"),
		IsActive:    checked(c, "isActive"),
	}
}

func testimonialInput(c *fiber.Ctx) services.TestimonialInput {
	return services.TestimonialInput{
		Image:    c.FormValue("image"),
		Name:     c.FormValue("name"),
		Text:     c.FormValue("text"),
		IsActive: checked(c, "isActive"),
	}
}

// contentWriteFailed maps a content service error to a response.
func (h *AdminHandler) contentWriteFailed(c *fiber.Ctx, action, id string, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return notFound(c, "Item not found")
	case services.IsValidation(err):
		applog.Security(c, "validation.fail", map[string]any{"action": action, "reason": err.Error()})
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": err.Error(), "Site": siteOf(c)})
	}
	applog.Error(c, action+".fail", err, map[string]any{"id": id})
	return c.Status(500).Render("notfound", fiber.Map{"Message": "Failed to save", "Site": siteOf(c)})
}

// GET /admin/promotions
func (h *AdminHandler) PromotionsPage(c *fiber.Ctx) error {
	promos, err := h.Content.Promotions(false)
	if err != nil {
		return err
	}
	return render(c, "admin_promotions", fiber.Map{"Promos": promos})
}

// POST /admin/promotions
func (h *AdminHandler) CreatePromotion(c *fiber.Ctx) error {
	p, err := h.Content.CreatePromotion(promotionInput(c))
	if err != nil {
		return h.contentWriteFailed(c, "admin.promotions.create", "", err)
	}
	applog.Audit(c, "admin.promotions.create", map[string]any{"id": p.ID})
	return c.Redirect("/admin/promotions")
}

// POST /admin/promotions/:id
func (h *AdminHandler) UpdatePromotion(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Item not found")
	}
	if _, err := h.Content.UpdatePromotion(id, promotionInput(c)); err != nil {
		return h.contentWriteFailed(c, "admin.promotions.update", id, err)
	}
	applog.Audit(c, "admin.promotions.update", map[string]any{"id": id})
	return c.Redirect("/admin/promotions")
}

// POST /admin/promotions/:id/toggle
func (h *AdminHandler) TogglePromotion(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Item not found")
	}
	p, err := h.Content.TogglePromotion(id)
	if err != nil {
		return h.contentWriteFailed(c, "admin.promotions.toggle", id, err)
	}
	applog.Audit(c, "admin.promotions.toggle", map[string]any{"id": id, "active": p.IsActive})
	return c.Redirect("/admin/promotions")
}

// POST /admin/promotions/:id/delete
func (h *AdminHandler) DeletePromotion(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Item not found")
	}
	if err := h.Content.DeletePromotion(id); err != nil {
		return h.contentWriteFailed(c, "admin.promotions.delete", id, err)
	}
	applog.Audit(c, "admin.promotions.delete", map[string]any{"id": id})
	return c.Redirect("/admin/promotions")
}

// GET /admin/testimonials
func (h *AdminHandler) TestimonialsPage(c *fiber.Ctx) error {
	testis, err := h.Content.Testimonials(false)
	if err != nil {
		return err
	}
	return render(c, "admin_testimonials", fiber.Map{"Testimonials": testis})
}

// POST /admin/testimonials
func (h *AdminHandler) CreateTestimonial(c *fiber.Ctx) error {
	t, err := h.Content.CreateTestimonial(testimonialInput(c))
	if err != nil {
		return h.contentWriteFailed(c, "admin.testimonials.create", "", err)
	}
	applog.Audit(c, "admin.testimonials.create", map[string]any{"id": t.ID})
	return c.Redirect("/admin/testimonials")
}

// POST /admin/testimonials/:id
func (h *AdminHandler) UpdateTestimonial(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Item not found")
	}
	if _, err := h.Content.UpdateTestimonial(id, testimonialInput(c)); err != nil {
		return h.contentWriteFailed(c, "admin.testimonials.update", id, err)
	}
	applog.Audit(c, "admin.testimonials.update", map[string]any{"id": id})
	return c.Redirect("/admin/testimonials")
}

// POST /admin/testimonials/:id/toggle
func (h *AdminHandler) ToggleTestimonial(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Item not found")
	}
	t, err := h.Content.ToggleTestimonial(id)
	if err != nil {
		return h.contentWriteFailed(c, "admin.testimonials.toggle", id, err)
	}
	applog.Audit(c, "admin.testimonials.toggle", map[string]any{"id": id, "active": t.IsActive})
	return c.Redirect("/admin/testimonials")
}

// POST /admin/testimonials/:id/delete
func (h *AdminHandler) DeleteTestimonial(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Item not found")
	}
	if err := h.Content.DeleteTestimonial(id); err != nil {
		return h.contentWriteFailed(c, "admin.testimonials.delete", id, err)
	}
	applog.Audit(c, "admin.testimonials.delete", map[string]any{"id": id})
	return c.Redirect("/admin/testimonials")
}
