package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"dealersite/internal/domain"
)

type CarRepo struct{ db *sqlx.DB }

func NewCarRepo(db *sqlx.DB) *CarRepo { return &CarRepo{db: db} }

const carColumns = `
    id, slug, name, brand, price, status, badge, thumbnail, gallery, interior_gallery,
    video_url, catalog_url, description, colors, spec_definitions, is_active, is_featured,
    COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at`

// CarFilter narrows List. Zero value lists every car.
type CarFilter struct {
	Q            string
	Brand        string
	Status       string
	ActiveOnly   bool
	FeaturedOnly bool
}

func (r *CarRepo) List(f CarFilter, limit, offset int) ([]domain.Car, error) {
	where := `1 = 1`
	args := []any{}
	if f.ActiveOnly {
		where += ` AND is_active = 1`
	}
	if f.FeaturedOnly {
		where += ` AND is_featured = 1`
	}
	if f.Q != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(brand) LIKE ?)`
		args = append(args, "%"+f.Q+"%", "%"+f.Q+"%")
	}
	if f.Brand != "" {
		where += ` AND LOWER(brand) = LOWER(?)`
		args = append(args, f.Brand)
	}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, f.Status)
	}
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	args = append(args, limit, offset)

	out := []domain.Car{}
	err := r.db.Select(&out, `SELECT `+carColumns+`
  FROM cars
  WHERE `+where+`
  ORDER BY is_featured DESC, datetime(created_at) DESC, name
  LIMIT ? OFFSET ?`, args...)
	return out, err
}

// Get returns sql.ErrNoRows when the car does not exist.
func (r *CarRepo) Get(id string) (domain.Car, error) {
	var c domain.Car
	err := r.db.Get(&c, `SELECT `+carColumns+` FROM cars WHERE id = ?`, id)
	return c, err
}

func (r *CarRepo) GetBySlug(slug string) (domain.Car, error) {
	var c domain.Car
	err := r.db.Get(&c, `SELECT `+carColumns+` FROM cars WHERE slug = ?`, slug)
	return c, err
}

// SlugTaken reports whether another car (not exceptID) already uses slug.
func (r *CarRepo) SlugTaken(slug, exceptID string) (bool, error) {
	var id string
	err := r.db.Get(&id, `SELECT id FROM cars WHERE slug = ? AND id != ?`, slug, exceptID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *CarRepo) Variants(carID string) ([]domain.CarVariant, error) {
	out := []domain.CarVariant{}
	err := r.db.Select(&out, `
  SELECT id, car_id, name, price, specs, colors, sort_order, COALESCE(created_at,'') AS created_at
  FROM car_variants
  WHERE car_id = ?
  ORDER BY sort_order, name
`, carID)
	return out, err
}

// Brands lists the distinct brands of active cars.
func (r *CarRepo) Brands() ([]string, error) {
	out := []string{}
	err := r.db.Select(&out, `SELECT DISTINCT brand FROM cars WHERE is_active = 1 AND brand != '' ORDER BY brand`)
	return out, err
}

func (r *CarRepo) Count(activeOnly bool) (int, error) {
	var n int
	q := `SELECT COUNT(*) FROM cars`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	err := r.db.Get(&n, q)
	return n, err
}

// Create inserts the car and its variants in one transaction.
func (r *CarRepo) Create(c domain.Car, variants []domain.CarVariant) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExec(`
	  INSERT INTO cars(id, slug, name, brand, price, status, badge, thumbnail, gallery, interior_gallery,
	                   video_url, catalog_url, description, colors, spec_definitions, is_active, is_featured, created_at)
	  VALUES(:id, :slug, :name, :brand, :price, :status, :badge, :thumbnail, :gallery, :interior_gallery,
	         :video_url, :catalog_url, :description, :colors, :spec_definitions, :is_active, :is_featured, CURRENT_TIMESTAMP)
	`, c); err != nil {
		return err
	}
	if err := insertVariants(tx, c.ID, variants); err != nil {
		return err
	}
	return tx.Commit()
}

// Update overwrites every editable column of the car and replaces its
// variants. id and created_at are never written. Returns sql.ErrNoRows when
// the car does not exist.
func (r *CarRepo) Update(c domain.Car, variants []domain.CarVariant) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.NamedExec(`
	  UPDATE cars SET
	    name = :name, slug = :slug, brand = :brand, price = :price, status = :status, badge = :badge,
	    thumbnail = :thumbnail, gallery = :gallery, interior_gallery = :interior_gallery,
	    video_url = :video_url, catalog_url = :catalog_url, description = :description,
	    colors = :colors, spec_definitions = :spec_definitions,
	    is_active = :is_active, is_featured = :is_featured, updated_at = CURRENT_TIMESTAMP
	  WHERE id = :id
	`, c)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	if _, err := tx.Exec(`DELETE FROM car_variants WHERE car_id = ?`, c.ID); err != nil {
		return err
	}
	if err := insertVariants(tx, c.ID, variants); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the car and its variants. Returns sql.ErrNoRows when the
// car does not exist.
func (r *CarRepo) Delete(id string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// explicit, in case foreign_keys is off on this connection
	if _, err := tx.Exec(`DELETE FROM car_variants WHERE car_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM cars WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

func insertVariants(tx *sqlx.Tx, carID string, variants []domain.CarVariant) error {
	for i, v := range variants {
		v.CarID = carID
		v.SortOrder = i
		if _, err := tx.NamedExec(`
		  INSERT INTO car_variants(id, car_id, name, price, specs, colors, sort_order, created_at)
		  VALUES(:id, :car_id, :name, :price, :specs, :colors, :sort_order, CURRENT_TIMESTAMP)
		`, v); err != nil {
			return err
		}
	}
	return nil
}
