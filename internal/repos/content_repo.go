package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"dealersite/internal/domain"
)

type PromotionRepo struct{ db *sqlx.DB }

func NewPromotionRepo(db *sqlx.DB) *PromotionRepo { return &PromotionRepo{db: db} }

func (r *PromotionRepo) List(activeOnly bool) ([]domain.Promotion, error) {
	q := `SELECT id, title, description, image, link, tag, period, is_active, COALESCE(created_at,'') AS created_at
  FROM promotions`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY datetime(created_at) DESC, title`
	out := []domain.Promotion{}
	err := r.db.Select(&out, q)
	return out, err
}

func (r *PromotionRepo) Get(id string) (domain.Promotion, error) {
	var p domain.Promotion
	err := r.db.Get(&p, `
  SELECT id, title, description, image, link, tag, period, is_active, COALESCE(created_at,'') AS created_at
  FROM promotions WHERE id = ?`, id)
	return p, err
}

func (r *PromotionRepo) Create(p domain.Promotion) error {
	_, err := r.db.NamedExec(`
	  INSERT INTO promotions(id, title, description, image, link, tag, period, is_active, created_at)
	  VALUES(:id, :title, :description, :image, :link, :tag, :period, :is_active, CURRENT_TIMESTAMP)
	`, p)
	return err
}

// Update replaces every editable field. Returns sql.ErrNoRows for unknown ids.
func (r *PromotionRepo) Update(p domain.Promotion) error {
	res, err := r.db.NamedExec(`
	  UPDATE promotions SET
	    title = :title, description = :description, image = :image, link = :link,
	    tag = :tag, period = :period, is_active = :is_active
	  WHERE id = :id
	`, p)
	return affected(res, err)
}

func (r *PromotionRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM promotions WHERE id = ?`, id)
	return affected(res, err)
}

type TestimonialRepo struct{ db *sqlx.DB }

func NewTestimonialRepo(db *sqlx.DB) *TestimonialRepo { return &TestimonialRepo{db: db} }

func (r *TestimonialRepo) List(activeOnly bool) ([]domain.Testimonial, error) {
	q := `SELECT id, image, name, text, is_active, COALESCE(created_at,'') AS created_at FROM testimonials`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY datetime(created_at) DESC, id`
	out := []domain.Testimonial{}
	err := r.db.Select(&out, q)
	return out, err
}

func (r *TestimonialRepo) Get(id string) (domain.Testimonial, error) {
	var t domain.Testimonial
	err := r.db.Get(&t, `
  SELECT id, image, name, text, is_active, COALESCE(created_at,'') AS created_at
  FROM testimonials WHERE id = ?`, id)
	return t, err
}

func (r *TestimonialRepo) Create(t domain.Testimonial) error {
	_, err := r.db.NamedExec(`
	  INSERT INTO testimonials(id, image, name, text, is_active, created_at)
	  VALUES(:id, :image, :name, :text, :is_active, CURRENT_TIMESTAMP)
	`, t)
	return err
}

func (r *TestimonialRepo) Update(t domain.Testimonial) error {
	res, err := r.db.NamedExec(`
	  UPDATE testimonials SET image = :image, name = :name, text = :text, is_active = :is_active
	  WHERE id = :id
	`, t)
	return affected(res, err)
}

func (r *TestimonialRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM testimonials WHERE id = ?`, id)
	return affected(res, err)
}

// affected turns "no row matched" into sql.ErrNoRows.
func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
