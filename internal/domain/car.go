package domain

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

type CarStatus string

const (
	StatusReadyStock CarStatus = "Ready Stock"
	StatusIndent     CarStatus = "Indent"
	StatusComingSoon CarStatus = "Coming Soon"
)

// CarStatuses lists every status in display order.
var CarStatuses = []CarStatus{StatusReadyStock, StatusIndent, StatusComingSoon}

// ParseCarStatus is case-insensitive; anything unknown becomes Ready Stock.
func ParseCarStatus(s string) CarStatus {
	s = strings.TrimSpace(s)
	for _, st := range CarStatuses {
		if strings.EqualFold(s, string(st)) {
			return st
		}
	}
	return StatusReadyStock
}

// Color is one entry of a car's global color registry.
type Color struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Hex   string `json:"hex,omitempty"`
}

// ColorList is stored as a JSON array in a TEXT column. Malformed stored
// data scans as an empty list.
type ColorList []Color

func (l *ColorList) Scan(src any) error {
	*l = nil
	raw, ok := textOf(src)
	if !ok || raw == "" {
		return nil
	}
	var out []Color
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	seen := make(map[string]bool, len(out))
	for _, c := range out {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" || seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		*l = append(*l, c)
	}
	return nil
}

func (l ColorList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Color(l))
	return string(b), err
}

// Names returns the color names in registry order.
func (l ColorList) Names() []string {
	out := make([]string, 0, len(l))
	for _, c := range l {
		out = append(out, c.Name)
	}
	return out
}

// URLList is an ordered list of image URLs stored as a JSON array.
type URLList []string

func (l *URLList) Scan(src any) error {
	*l = nil
	raw, ok := textOf(src)
	if !ok || raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	for _, u := range out {
		if u = strings.TrimSpace(u); u != "" {
			*l = append(*l, u)
		}
	}
	return nil
}

func (l URLList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	return string(b), err
}

func textOf(src any) (string, bool) {
	switch v := src.(type) {
	case string:
		return strings.TrimSpace(v), true
	case []byte:
		return strings.TrimSpace(string(v)), true
	default:
		return "", false
	}
}

type Car struct {
	ID              string    `db:"id" json:"id"`
	Slug            string    `db:"slug" json:"slug"`
	Name            string    `db:"name" json:"name"`
	Brand           string    `db:"brand" json:"brand"`
	Price           int64     `db:"price" json:"price"`
	Status          CarStatus `db:"status" json:"status"`
	Badge           string    `db:"badge" json:"badge,omitempty"`
	Thumbnail       string    `db:"thumbnail" json:"thumbnail"`
	Gallery         URLList   `db:"gallery" json:"gallery"`
	InteriorGallery URLList   `db:"interior_gallery" json:"interiorGallery"`
	VideoURL        string    `db:"video_url" json:"videoUrl,omitempty"`
	CatalogURL      string    `db:"catalog_url" json:"catalogUrl,omitempty"`
	Description     string    `db:"description" json:"description"`
	Colors          ColorList `db:"colors" json:"colors"`
	SpecDefinitions string    `db:"spec_definitions" json:"specDefinitions,omitempty"`
	IsActive        bool      `db:"is_active" json:"isActive"`
	IsFeatured      bool      `db:"is_featured" json:"isFeatured"`
	CreatedAt       string    `db:"created_at" json:"createdAt"`
	UpdatedAt       string    `db:"updated_at" json:"updatedAt,omitempty"`

	Variants []CarVariant `db:"-" json:"variants,omitempty"`
}

// CarVariant keeps Specs and Colors in their stored text form: Specs may be
// plain bullet text or a legacy JSON object, Colors is a JSON array of names.
type CarVariant struct {
	ID        string `db:"id" json:"id"`
	CarID     string `db:"car_id" json:"carId"`
	Name      string `db:"name" json:"name"`
	Price     int64  `db:"price" json:"price"`
	Specs     string `db:"specs" json:"specs"`
	Colors    string `db:"colors" json:"colors"`
	SortOrder int    `db:"sort_order" json:"-"`
	CreatedAt string `db:"created_at" json:"-"`
}
