package domain

type Promotion struct {
	ID          string `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	Image       string `db:"image" json:"image"`
	Link        string `db:"link" json:"link,omitempty"`
	Tag         string `db:"tag" json:"tag,omitempty"`
	Period      string `db:"period" json:"period"`
	IsActive    bool   `db:"is_active" json:"isActive"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

type Testimonial struct {
	ID        string `db:"id" json:"id"`
	Image     string `db:"image" json:"image"`
	Name      string `db:"name" json:"name,omitempty"`
	Text      string `db:"text" json:"text,omitempty"`
	IsActive  bool   `db:"is_active" json:"isActive"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type Setting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// Lead types emitted by the public pages.
const (
	LeadWhatsAppUnitDetail = "WHATSAPP_UNIT_DETAIL"
	LeadWhatsAppPromo      = "WHATSAPP_PROMO"
	LeadWhatsAppFloating   = "WHATSAPP_FLOATING"
	LeadContactForm        = "CONTACT_FORM_SUBMISSION"
)

// LeadLog.CarID is a soft reference; it may point at a deleted car.
type LeadLog struct {
	ID        string `db:"id"`
	CarID     string `db:"car_id"`
	Type      string `db:"type"`
	CreatedAt string `db:"created_at"`
}

// SiteSettings is the read-only key/value snapshot handed to one request.
type SiteSettings struct {
	values map[string]string
}

func NewSiteSettings(values map[string]string) SiteSettings {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return SiteSettings{values: cp}
}

// Get returns the stored value, or def when the key is absent or blank.
func (s SiteSettings) Get(key, def string) string {
	if v, ok := s.values[key]; ok && v != "" {
		return v
	}
	return def
}

func (s SiteSettings) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Map returns a copy of every setting.
func (s SiteSettings) Map() map[string]string {
	cp := make(map[string]string, len(s.values))
	for k, v := range s.values {
		cp[k] = v
	}
	return cp
}
