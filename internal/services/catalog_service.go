package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"dealersite/internal/configurator"
	"dealersite/internal/domain"
	"dealersite/internal/repos"
)

// CarFormFields is the allow-list of car fields an admin submission may set.
// Anything else in a submission is dropped before it reaches the store.
var CarFormFields = []string{
	"name", "slug", "brand", "price", "status", "badge", "thumbnail", "gallery",
	"interiorGallery", "videoUrl", "catalogUrl", "description", "colors",
	"specDefinitions", "isActive", "isFeatured",
}

// CarInput is a decoded admin car form. Price stays raw so validation can
// report it. Variants is the JSON-encoded variant list.
type CarInput struct {
	Name            string
	Brand           string
	Price           string
	Status          string
	Badge           string
	Thumbnail       string
	Gallery         []string
	InteriorGallery []string
	VideoURL        string
	CatalogURL      string
	Description     string
	Colors          domain.ColorList
	SpecDefinitions string
	IsActive        bool
	IsFeatured      bool
	Variants        string

	colorsErr error
}

// CarInputFromValues decodes submitted key/values. It returns the keys that
// were not on the allow-list so callers can log them.
func CarInputFromValues(values map[string]string) (CarInput, []string) {
	var in CarInput
	var dropped []string
	for k, v := range values {
		switch k {
		case "name":
			in.Name = v
		case "slug":
			// derived from name
		case "brand":
			in.Brand = v
		case "price":
			in.Price = v
		case "status":
			in.Status = v
		case "badge":
			in.Badge = v
		case "thumbnail":
			in.Thumbnail = v
		case "gallery":
			in.Gallery = parseURLList(v)
		case "interiorGallery":
			in.InteriorGallery = parseURLList(v)
		case "videoUrl":
			in.VideoURL = v
		case "catalogUrl":
			in.CatalogURL = v
		case "description":
			in.Description = v
		case "colors":
			in.Colors, in.colorsErr = parseColorInput(v)
		case "specDefinitions":
			in.SpecDefinitions = v
		case "isActive":
			in.IsActive = formBool(v)
		case "isFeatured":
			in.IsFeatured = formBool(v)
		case "variants":
			in.Variants = v
		case "csrf":
		default:
			dropped = append(dropped, k)
		}
	}
	return in, dropped
}

type CatalogService struct {
	Cars *repos.CarRepo
}

func NewCatalogService(cars *repos.CarRepo) *CatalogService {
	return &CatalogService{Cars: cars}
}

func (s *CatalogService) ListCars(f repos.CarFilter, page, pageSize int) ([]domain.Car, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	offset := (page - 1) * pageSize
	return s.Cars.List(f, pageSize, offset)
}

// AllCars lists every car for the admin table.
func (s *CatalogService) AllCars() ([]domain.Car, error) {
	return s.Cars.List(repos.CarFilter{}, 0, 0)
}

func (s *CatalogService) Featured(limit int) ([]domain.Car, error) {
	return s.Cars.List(repos.CarFilter{ActiveOnly: true, FeaturedOnly: true}, limit, 0)
}

// GetCar loads a car with its variants.
func (s *CatalogService) GetCar(id string) (domain.Car, error) {
	c, err := s.Cars.Get(id)
	if err != nil {
		return domain.Car{}, notFound(err)
	}
	return s.withVariants(c)
}

func (s *CatalogService) GetCarBySlug(slug string) (domain.Car, error) {
	c, err := s.Cars.GetBySlug(slug)
	if err != nil {
		return domain.Car{}, notFound(err)
	}
	return s.withVariants(c)
}

// Configure loads an active car by slug and resolves the requested variant
// and color against it.
func (s *CatalogService) Configure(slug, variantKey, color string) (domain.Car, configurator.Configuration, error) {
	car, err := s.GetCarBySlug(slug)
	if err != nil {
		return domain.Car{}, configurator.Configuration{}, err
	}
	if !car.IsActive {
		return domain.Car{}, configurator.Configuration{}, ErrNotFound
	}
	return car, configurator.Resolve(car, car.Variants, variantKey, color), nil
}

func (s *CatalogService) Brands() ([]string, error) {
	return s.Cars.Brands()
}

func (s *CatalogService) withVariants(c domain.Car) (domain.Car, error) {
	vs, err := s.Cars.Variants(c.ID)
	if err != nil {
		return domain.Car{}, fmt.Errorf("load variants: %w", err)
	}
	c.Variants = vs
	return c, nil
}

func (s *CatalogService) CreateCar(in CarInput) (domain.Car, error) {
	car, variants, err := buildCar(in)
	if err != nil {
		return domain.Car{}, err
	}
	car.ID = uuid.NewString()
	if car.Slug, err = s.uniqueSlug(car.Name, car.ID); err != nil {
		return domain.Car{}, fmt.Errorf("create car: %w", err)
	}
	if err := s.Cars.Create(car, variants); err != nil {
		return domain.Car{}, fmt.Errorf("create car: %w", err)
	}
	return s.GetCar(car.ID)
}

// UpdateCar rewrites every allow-listed field and replaces the variant list.
func (s *CatalogService) UpdateCar(id string, in CarInput) (domain.Car, error) {
	car, variants, err := buildCar(in)
	if err != nil {
		return domain.Car{}, err
	}
	car.ID = id
	if car.Slug, err = s.uniqueSlug(car.Name, id); err != nil {
		return domain.Car{}, fmt.Errorf("update car: %w", err)
	}
	if err := s.Cars.Update(car, variants); err != nil {
		if err = notFound(err); errors.Is(err, ErrNotFound) {
			return domain.Car{}, err
		}
		return domain.Car{}, fmt.Errorf("update car: %w", err)
	}
	return s.GetCar(id)
}

func (s *CatalogService) DeleteCar(id string) error {
	if err := s.Cars.Delete(id); err != nil {
		if err = notFound(err); errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete car: %w", err)
	}
	return nil
}

func (s *CatalogService) uniqueSlug(name, exceptID string) (string, error) {
	base := Slugify(name)
	if base == "" || base == "-" {
		base = "car"
	}
	slug := base
	for i := 2; i <= 100; i++ {
		taken, err := s.Cars.SlugTaken(slug, exceptID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func buildCar(in CarInput) (domain.Car, []domain.CarVariant, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Car{}, nil, invalid("name required")
	}
	price, err := strconv.ParseInt(strings.TrimSpace(in.Price), 10, 64)
	if err != nil {
		return domain.Car{}, nil, invalid("invalid price")
	}
	if in.colorsErr != nil {
		return domain.Car{}, nil, in.colorsErr
	}
	variants, err := ParseVariants(in.Variants)
	if err != nil {
		return domain.Car{}, nil, err
	}
	colors := in.Colors
	if colors == nil {
		colors = domain.ColorList{}
	}
	car := domain.Car{
		Name:            name,
		Brand:           strings.TrimSpace(in.Brand),
		Price:           price,
		Status:          domain.ParseCarStatus(in.Status),
		Badge:           strings.TrimSpace(in.Badge),
		Thumbnail:       strings.TrimSpace(in.Thumbnail),
		Gallery:         domain.URLList(in.Gallery),
		InteriorGallery: domain.URLList(in.InteriorGallery),
		VideoURL:        strings.TrimSpace(in.VideoURL),
		CatalogURL:      strings.TrimSpace(in.CatalogURL),
		Description:     in.Description,
		Colors:          colors,
		SpecDefinitions: in.SpecDefinitions,
		IsActive:        in.IsActive,
		IsFeatured:      in.IsFeatured,
	}
	return car, variants, nil
}

// ParseVariants decodes the admin's JSON variant list. Entries without a
// name are dropped, prices are coerced to non-negative integers and
// malformed specs/colors fall back to "{}" / "[]". Only a list that is not
// JSON at all is rejected.
func ParseVariants(raw string) ([]domain.CarVariant, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if !gjson.Valid(s) || !gjson.Parse(s).IsArray() {
		return nil, invalid("invalid variants")
	}
	var out []domain.CarVariant
	for _, v := range gjson.Parse(s).Array() {
		if !v.IsObject() {
			continue
		}
		name := strings.TrimSpace(v.Get("name").String())
		if name == "" {
			continue
		}
		out = append(out, domain.CarVariant{
			ID:     uuid.NewString(),
			Name:   name,
			Price:  coercePrice(v.Get("price")),
			Specs:  normalizeSpecs(v.Get("specs")),
			Colors: normalizeColors(v.Get("colors")),
		})
	}
	return out, nil
}

func coercePrice(r gjson.Result) int64 {
	var n float64
	switch r.Type {
	case gjson.Number:
		n = r.Float()
	case gjson.String:
		str := strings.TrimSpace(r.String())
		if i, err := strconv.ParseInt(str, 10, 64); err == nil {
			n = float64(i)
		} else if f, err := strconv.ParseFloat(str, 64); err == nil {
			n = f
		}
	}
	if n <= 0 || math.IsNaN(n) {
		return 0
	}
	if n >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

func normalizeSpecs(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		str := strings.TrimSpace(r.String())
		if str == "" {
			return "{}"
		}
		if strings.HasPrefix(str, "{") && !gjson.Valid(str) {
			return "{}"
		}
		return r.String()
	case gjson.JSON:
		if r.IsObject() {
			return r.Raw
		}
	}
	return "{}"
}

func normalizeColors(r gjson.Result) string {
	var names []string
	switch {
	case r.IsArray():
		names, _ = configurator.ParseColorNames(r.Raw)
	case r.Type == gjson.String:
		names, _ = configurator.ParseColorNames(r.String())
	}
	if names == nil {
		names = []string{}
	}
	b, _ := json.Marshal(names)
	return string(b)
}

// parseColorInput decodes the admin's color registry. Blank means no colors;
// anything that is not a JSON array of objects is rejected so a typo never
// wipes the stored registry.
func parseColorInput(v string) (domain.ColorList, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return domain.ColorList{}, nil
	}
	if !gjson.Valid(v) || !gjson.Parse(v).IsArray() {
		return nil, invalid("invalid colors")
	}
	for _, c := range gjson.Parse(v).Array() {
		if !c.IsObject() {
			return nil, invalid("invalid colors")
		}
	}
	if err := json.Unmarshal([]byte(v), new([]domain.Color)); err != nil {
		return nil, invalid("invalid colors")
	}
	var l domain.ColorList
	_ = l.Scan(v)
	if l == nil {
		l = domain.ColorList{}
	}
	return l, nil
}

func parseURLList(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if strings.HasPrefix(v, "[") {
		var l domain.URLList
		_ = l.Scan(v)
		return l
	}
	var out []string
	for _, line := range strings.Split(v, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
