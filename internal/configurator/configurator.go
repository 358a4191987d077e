// Package configurator resolves what a car detail page shows for the selected
// variant: which of the car's colors are offered, which spec lines apply and
// which price is displayed. Everything here is pure and tolerant of bad
// stored data; nothing returns an error.
package configurator

import (
	"strings"

	"github.com/tidwall/gjson"

	"dealersite/internal/domain"
)

// ParseColorNames reads a variant's colors column. ok is false when the text
// is absent or not a JSON array.
func ParseColorNames(raw string) (names []string, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" || !gjson.Valid(s) {
		return nil, false
	}
	res := gjson.Parse(s)
	if !res.IsArray() {
		return nil, false
	}
	for _, v := range res.Array() {
		if v.Type != gjson.String {
			continue
		}
		if n := strings.TrimSpace(v.String()); n != "" {
			names = append(names, n)
		}
	}
	return names, true
}

// EffectiveColors narrows the global registry to the names a variant allows.
// The result always follows the registry's order. An absent, malformed or
// empty list means every color is eligible.
func EffectiveColors(global domain.ColorList, variantColors string) domain.ColorList {
	names, ok := ParseColorNames(variantColors)
	if !ok || len(names) == 0 {
		return global
	}
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}
	out := make(domain.ColorList, 0, len(names))
	for _, c := range global {
		if allowed[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

// EffectivePrice is the variant's price when one is selected.
func EffectivePrice(car domain.Car, v *domain.CarVariant) int64 {
	if v != nil {
		return v.Price
	}
	return car.Price
}

// DefaultColor is the first eligible color, or nil.
func DefaultColor(colors domain.ColorList) *domain.Color {
	if len(colors) == 0 {
		return nil
	}
	c := colors[0]
	return &c
}

// Configuration is the resolved state of a detail page.
type Configuration struct {
	Variant       *domain.CarVariant `json:"variant,omitempty"`
	Colors        domain.ColorList   `json:"colors"`
	SelectedColor *domain.Color      `json:"selectedColor"`
	Specs         []string           `json:"specs"`
	Price         int64              `json:"price"`
}

// Selection tracks a visitor's variant and color choice for one car.
type Selection struct {
	car      domain.Car
	specs    []SpecPair
	variant  *domain.CarVariant
	colors   domain.ColorList
	selected *domain.Color
}

func NewSelection(car domain.Car) *Selection {
	s := &Selection{car: car, specs: ParseSpecTable(car.SpecDefinitions)}
	s.colors = car.Colors
	s.selected = DefaultColor(s.colors)
	return s
}

// SelectVariant switches the variant (nil clears it). When the eligible
// colors change, the selected color resets to the first of the new list.
func (s *Selection) SelectVariant(v *domain.CarVariant) {
	s.variant = v
	next := s.car.Colors
	if v != nil {
		next = EffectiveColors(s.car.Colors, v.Colors)
	}
	if !sameNames(s.colors, next) {
		s.selected = DefaultColor(next)
	}
	s.colors = next
}

// SelectColor picks a color by name. Names outside the eligible list are
// ignored and report false.
func (s *Selection) SelectColor(name string) bool {
	for _, c := range s.colors {
		if c.Name == name {
			c := c
			s.selected = &c
			return true
		}
	}
	return false
}

func (s *Selection) Configuration() Configuration {
	cfg := Configuration{
		Variant:       s.variant,
		Colors:        s.colors,
		SelectedColor: s.selected,
		Price:         EffectivePrice(s.car, s.variant),
	}
	if s.variant != nil {
		cfg.Specs = EffectiveSpecs(s.specs, ParseSpecBlock(s.variant.Specs))
	}
	if cfg.Colors == nil {
		cfg.Colors = domain.ColorList{}
	}
	if cfg.Specs == nil {
		cfg.Specs = []string{}
	}
	return cfg
}

// Resolve computes the page state for a request. variantKey matches a
// variant id or, failing that, its name; when nothing matches the first
// variant is used. colorName is honoured only if it is eligible.
func Resolve(car domain.Car, variants []domain.CarVariant, variantKey, colorName string) Configuration {
	sel := NewSelection(car)
	sel.SelectVariant(FindVariant(variants, variantKey))
	if colorName != "" {
		sel.SelectColor(colorName)
	}
	return sel.Configuration()
}

// FindVariant looks a variant up by id, then by name, then falls back to the
// first one. It returns nil only when there are no variants.
func FindVariant(variants []domain.CarVariant, key string) *domain.CarVariant {
	if len(variants) == 0 {
		return nil
	}
	key = strings.TrimSpace(key)
	if key != "" {
		for i := range variants {
			if variants[i].ID == key {
				return &variants[i]
			}
		}
		for i := range variants {
			if variants[i].Name == key {
				return &variants[i]
			}
		}
	}
	return &variants[0]
}

func sameNames(a, b domain.ColorList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}
