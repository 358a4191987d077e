package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"dealersite/internal/domain"
	"dealersite/internal/repos"
)

var validate = validator.New()

type PromotionInput struct {
	Title       string `validate:"required,max=120"`
	Description string `validate:"max=2000"`
	Image       string `validate:"required,max=500"`
	Link        string `validate:"omitempty,url,max=500"`
	Tag         string `validate:"max=40"`
	Period      string `validate:"max=80"`
	IsActive    bool
}

type TestimonialInput struct {
	Image    string `validate:"required,max=500"`
	Name     string `validate:"max=80"`
	Text     string `validate:"max=1000"`
	IsActive bool
}

// ContentService manages promotions and testimonials.
type ContentService struct {
	Promos *repos.PromotionRepo
	Testis *repos.TestimonialRepo
}

func NewContentService(p *repos.PromotionRepo, t *repos.TestimonialRepo) *ContentService {
	return &ContentService{Promos: p, Testis: t}
}

func (s *ContentService) Promotions(activeOnly bool) ([]domain.Promotion, error) {
	return s.Promos.List(activeOnly)
}

func (s *ContentService) Promotion(id string) (domain.Promotion, error) {
	p, err := s.Promos.Get(id)
	return p, notFound(err)
}

func (s *ContentService) CreatePromotion(in PromotionInput) (domain.Promotion, error) {
	p, err := promotionFrom(in)
	if err != nil {
		return domain.Promotion{}, err
	}
	p.ID = uuid.NewString()
	if err := s.Promos.Create(p); err != nil {
		return domain.Promotion{}, fmt.Errorf("create promotion: %w", err)
	}
	return p, nil
}

func (s *ContentService) UpdatePromotion(id string, in PromotionInput) (domain.Promotion, error) {
	p, err := promotionFrom(in)
	if err != nil {
		return domain.Promotion{}, err
	}
	p.ID = id
	if err := notFound(s.Promos.Update(p)); err != nil {
		return domain.Promotion{}, wrapStore("update promotion", err)
	}
	return p, nil
}

// TogglePromotion flips the active flag and writes the record back whole.
func (s *ContentService) TogglePromotion(id string) (domain.Promotion, error) {
	p, err := s.Promotion(id)
	if err != nil {
		return domain.Promotion{}, err
	}
	p.IsActive = !p.IsActive
	if err := notFound(s.Promos.Update(p)); err != nil {
		return domain.Promotion{}, wrapStore("toggle promotion", err)
	}
	return p, nil
}

func (s *ContentService) DeletePromotion(id string) error {
	return wrapStore("delete promotion", notFound(s.Promos.Delete(id)))
}

func (s *ContentService) Testimonials(activeOnly bool) ([]domain.Testimonial, error) {
	return s.Testis.List(activeOnly)
}

func (s *ContentService) Testimonial(id string) (domain.Testimonial, error) {
	t, err := s.Testis.Get(id)
	return t, notFound(err)
}

func (s *ContentService) CreateTestimonial(in TestimonialInput) (domain.Testimonial, error) {
	t, err := testimonialFrom(in)
	if err != nil {
		return domain.Testimonial{}, err
	}
	t.ID = uuid.NewString()
	if err := s.Testis.Create(t); err != nil {
		return domain.Testimonial{}, fmt.Errorf("create testimonial: %w", err)
	}
	return t, nil
}

func (s *ContentService) UpdateTestimonial(id string, in TestimonialInput) (domain.Testimonial, error) {
	t, err := testimonialFrom(in)
	if err != nil {
		return domain.Testimonial{}, err
	}
	t.ID = id
	if err := notFound(s.Testis.Update(t)); err != nil {
		return domain.Testimonial{}, wrapStore("update testimonial", err)
	}
	return t, nil
}

func (s *ContentService) ToggleTestimonial(id string) (domain.Testimonial, error) {
	t, err := s.Testimonial(id)
	if err != nil {
		return domain.Testimonial{}, err
	}
	t.IsActive = !t.IsActive
	if err := notFound(s.Testis.Update(t)); err != nil {
		return domain.Testimonial{}, wrapStore("toggle testimonial", err)
	}
	return t, nil
}

func (s *ContentService) DeleteTestimonial(id string) error {
	return wrapStore("delete testimonial", notFound(s.Testis.Delete(id)))
}

func promotionFrom(in PromotionInput) (domain.Promotion, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Image = strings.TrimSpace(in.Image)
	in.Link = strings.TrimSpace(in.Link)
	if err := check(in); err != nil {
		return domain.Promotion{}, err
	}
	return domain.Promotion{
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		Link:        in.Link,
		Tag:         strings.TrimSpace(in.Tag),
		Period:      strings.TrimSpace(in.Period),
		IsActive:    in.IsActive,
	}, nil
}

func testimonialFrom(in TestimonialInput) (domain.Testimonial, error) {
	in.Image = strings.TrimSpace(in.Image)
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return domain.Testimonial{}, err
	}
	return domain.Testimonial{Image: in.Image, Name: in.Name, Text: in.Text, IsActive: in.IsActive}, nil
}

// check runs struct validation and reports the first failing field.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		f := strings.ToLower(ve[0].Field())
		switch ve[0].Tag() {
		case "required":
			return invalid(f + " required")
		case "max":
			return invalid(f + " too long")
		case "url":
			return invalid(f + " must be a URL")
		}
		return invalid(f + " is invalid")
	}
	return err
}

func wrapStore(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
