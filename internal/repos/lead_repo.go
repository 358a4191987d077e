package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"dealersite/internal/domain"
)

type LeadRepo struct{ db *sqlx.DB }

func NewLeadRepo(db *sqlx.DB) *LeadRepo { return &LeadRepo{db: db} }

// Create stores a lead. An empty CarID is stored as NULL.
func (r *LeadRepo) Create(ctx context.Context, l domain.LeadLog) error {
	var carID any
	if l.CarID != "" {
		carID = l.CarID
	}
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO lead_logs(id, car_id, type, created_at)
	  VALUES(?, ?, ?, CURRENT_TIMESTAMP)
	`, l.ID, carID, l.Type)
	return err
}

type LeadTypeCount struct {
	Type  string `db:"type"`
	Count int    `db:"n"`
}

type LeadCarCount struct {
	CarID string `db:"car_id"`
	Name  string `db:"name"` // empty when the car was deleted
	Count int    `db:"n"`
}

func (r *LeadRepo) Total() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM lead_logs`)
	return n, err
}

func (r *LeadRepo) CountByType() ([]LeadTypeCount, error) {
	out := []LeadTypeCount{}
	err := r.db.Select(&out, `
	  SELECT type, COUNT(*) AS n FROM lead_logs
	  GROUP BY type ORDER BY n DESC, type
	`)
	return out, err
}

func (r *LeadRepo) TopCars(limit int) ([]LeadCarCount, error) {
	if limit <= 0 {
		limit = 5
	}
	out := []LeadCarCount{}
	err := r.db.Select(&out, `
	  SELECT l.car_id, COALESCE(c.name,'') AS name, COUNT(*) AS n
	  FROM lead_logs l
	  LEFT JOIN cars c ON c.id = l.car_id
	  WHERE l.car_id IS NOT NULL AND l.car_id != ''
	  GROUP BY l.car_id
	  ORDER BY n DESC
	  LIMIT ?
	`, limit)
	return out, err
}

func (r *LeadRepo) Latest(limit int) ([]domain.LeadLog, error) {
	if limit <= 0 {
		limit = 20
	}
	out := []domain.LeadLog{}
	err := r.db.Select(&out, `
	  SELECT id, COALESCE(car_id,'') AS car_id, type, COALESCE(created_at,'') AS created_at
	  FROM lead_logs
	  ORDER BY datetime(created_at) DESC
	  LIMIT ?
	`, limit)
	return out, err
}
