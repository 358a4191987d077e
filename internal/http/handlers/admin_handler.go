package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"

	"dealersite/internal/domain"
	applog "dealersite/internal/log"
	"dealersite/internal/services"
	"dealersite/internal/validate"
)

type AdminHandler struct {
	Catalog  *services.CatalogService
	Content  *services.ContentService
	Settings *services.SettingsService
	Leads    *services.LeadService
	Uploads  *services.UploadService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.Leads.Stats()
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load dashboard", "Site": siteOf(c)})
	}
	cars, err := h.Catalog.Cars.Count(false)
	if err != nil {
		return err
	}
	active, err := h.Catalog.Cars.Count(true)
	if err != nil {
		return err
	}
	return render(c, "admin_dashboard", fiber.Map{"Stats": stats, "CarCount": cars, "ActiveCount": active})
}

// GET /admin/cars
func (h *AdminHandler) CarsPage(c *fiber.Ctx) error {
	cars, err := h.Catalog.AllCars()
	if err != nil {
		applog.Error(c, "admin.cars.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load cars", "Site": siteOf(c)})
	}
	return render(c, "admin_cars", fiber.Map{"Cars": cars})
}

// GET /admin/cars/new
func (h *AdminHandler) NewCar(c *fiber.Ctx) error {
	return h.carForm(c, domain.Car{IsActive: true, Status: domain.StatusReadyStock})
}

// GET /admin/cars/:id
func (h *AdminHandler) EditCar(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Car not found")
	}
	car, err := h.Catalog.GetCar(id)
	if errors.Is(err, services.ErrNotFound) {
		return notFound(c, "Car not found")
	}
	if err != nil {
		return err
	}
	return h.carForm(c, car)
}

// POST /admin/cars
func (h *AdminHandler) CreateCar(c *fiber.Ctx) error {
	in := h.carInput(c)
	car, err := h.Catalog.CreateCar(in)
	if err != nil {
		return h.carSaveFailed(c, "", in, err)
	}
	applog.Audit(c, "admin.cars.create", map[string]any{"car_id": car.ID, "slug": car.Slug, "variants": len(car.Variants)})
	return c.Redirect("/admin/cars")
}

// POST /admin/cars/:id
func (h *AdminHandler) UpdateCar(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Car not found")
	}
	in := h.carInput(c)
	car, err := h.Catalog.UpdateCar(id, in)
	if err != nil {
		return h.carSaveFailed(c, id, in, err)
	}
	applog.Audit(c, "admin.cars.update", map[string]any{"car_id": car.ID, "slug": car.Slug, "variants": len(car.Variants)})
	return c.Redirect("/admin/cars")
}

// POST /admin/cars/:id/delete
func (h *AdminHandler) DeleteCar(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	if err := h.Catalog.DeleteCar(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return notFound(c, "Car not found")
		}
		applog.Error(c, "admin.cars.delete.fail", err, map[string]any{"car_id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Failed to delete car", "Site": siteOf(c)})
	}
	applog.Audit(c, "admin.cars.delete", map[string]any{"car_id": id})
	return c.Redirect("/admin/cars")
}

func (h *AdminHandler) carInput(c *fiber.Ctx) services.CarInput {
	in, dropped := services.CarInputFromValues(formValues(c))
	if len(dropped) > 0 {
		applog.Security(c, "admin.cars.unknown_fields", map[string]any{"fields": dropped})
	}
	return in
}

func (h *AdminHandler) carSaveFailed(c *fiber.Ctx, id string, in services.CarInput, err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return notFound(c, "Car not found")
	}
	if services.IsValidation(err) {
		applog.Security(c, "validation.fail", map[string]any{"field": "car", "reason": err.Error()})
		car := domain.Car{
			ID: id, Name: in.Name, Brand: in.Brand, Status: domain.ParseCarStatus(in.Status),
			Badge: in.Badge, Thumbnail: in.Thumbnail, Gallery: in.Gallery, InteriorGallery: in.InteriorGallery,
			VideoURL: in.VideoURL, CatalogURL: in.CatalogURL, Description: in.Description,
			Colors: in.Colors, SpecDefinitions: in.SpecDefinitions, IsActive: in.IsActive, IsFeatured: in.IsFeatured,
		}
		c.Status(fiber.StatusBadRequest)
		return render(c, "admin_car_form", fiber.Map{
			"Car": car, "PriceRaw": in.Price, "VariantsJSON": in.Variants,
			"Statuses": domain.CarStatuses, "Err": err.Error(),
		})
	}
	applog.Error(c, "admin.cars.save.fail", err, map[string]any{"car_id": id})
	return c.Status(500).Render("notfound", fiber.Map{"Message": "Failed to save car", "Site": siteOf(c)})
}

func (h *AdminHandler) carForm(c *fiber.Ctx, car domain.Car) error {
	price := ""
	if car.ID != "" {
		price = strconv.FormatInt(car.Price, 10)
	}
	return render(c, "admin_car_form", fiber.Map{
		"Car": car, "PriceRaw": price, "VariantsJSON": variantsJSON(car.Variants),
		"Statuses": domain.CarStatuses,
	})
}

type variantForm struct {
	Name   string          `json:"name"`
	Price  int64           `json:"price"`
	Specs  string          `json:"specs"`
	Colors json.RawMessage `json:"colors"`
}

// variantsJSON renders variants the way the form submits them back.
func variantsJSON(vs []domain.CarVariant) string {
	out := make([]variantForm, 0, len(vs))
	for _, v := range vs {
		colors := json.RawMessage("[]")
		if gjson.Valid(v.Colors) && gjson.Parse(v.Colors).IsArray() {
			colors = json.RawMessage(v.Colors)
		}
		out = append(out, variantForm{Name: v.Name, Price: v.Price, Specs: v.Specs, Colors: colors})
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

// formValues flattens a urlencoded or multipart body to its first values.
func formValues(c *fiber.Ctx) map[string]string {
	out := map[string]string{}
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		out[string(k)] = string(v)
	})
	if mf, err := c.MultipartForm(); err == nil {
		for k, vs := range mf.Value {
			if len(vs) > 0 {
				out[k] = vs[0]
			}
		}
	}
	return out
}

// POST /admin/upload
func (h *AdminHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not read file"})
	}
	defer f.Close()

	url, err := h.Uploads.Save(fh.Filename, f)
	if err != nil {
		if services.IsValidation(err) {
			applog.Security(c, "admin.upload.reject", map[string]any{"name": fh.Filename, "reason": err.Error()})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		applog.Error(c, "admin.upload.fail", err, map[string]any{"name": fh.Filename})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload failed"})
	}
	applog.Audit(c, "admin.upload", map[string]any{"url": url, "size": fh.Size})
	return c.JSON(fiber.Map{"url": url})
}

// settingPrefix marks settings fields in the form so csrf and the
// add-new pair never collide with a stored key.
const settingPrefix = "s:"

// GET /admin/settings
func (h *AdminHandler) SettingsPage(c *fiber.Ctx) error {
	snap, err := h.Settings.Snapshot()
	if err != nil {
		applog.Error(c, "admin.settings.load.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load settings", "Site": siteOf(c)})
	}
	return render(c, "admin_settings", fiber.Map{"Settings": snap.Map()})
}

// POST /admin/settings upserts every submitted key.
func (h *AdminHandler) SaveSettings(c *fiber.Ctx) error {
	vals := map[string]string{}
	for k, v := range formValues(c) {
		if strings.HasPrefix(k, settingPrefix) {
			vals[strings.TrimPrefix(k, settingPrefix)] = v
		}
	}
	if k := strings.TrimSpace(c.FormValue("new_key")); k != "" {
		vals[k] = c.FormValue("new_value")
	}
	if err := h.Settings.Save(vals); err != nil {
		if services.IsValidation(err) {
			return c.Status(400).SendString(err.Error())
		}
		applog.Error(c, "admin.settings.save.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Failed to save settings", "Site": siteOf(c)})
	}
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	applog.Audit(c, "admin.settings.save", map[string]any{"keys": keys})
	return c.Redirect("/admin/settings")
}

// POST /admin/settings/delete
func (h *AdminHandler) DeleteSetting(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.FormValue("key"))
	if key == "" {
		return c.Status(400).SendString("missing key")
	}
	if err := h.Settings.Delete(key); err != nil {
		applog.Error(c, "admin.settings.delete.fail", err, map[string]any{"key": key})
		return err
	}
	applog.Audit(c, "admin.settings.delete", map[string]any{"key": key})
	return c.Redirect("/admin/settings")
}
