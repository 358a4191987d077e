package repos

import (
	"github.com/jmoiron/sqlx"

	"dealersite/internal/domain"
)

type SettingsRepo struct{ db *sqlx.DB }

func NewSettingsRepo(db *sqlx.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) All() (map[string]string, error) {
	var rows []domain.Setting
	if err := r.db.Select(&rows, `SELECT key, value FROM settings ORDER BY key`); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, s := range rows {
		out[s.Key] = s.Value
	}
	return out, nil
}

// Upsert writes every pair in one transaction; existing keys are overwritten.
func (r *SettingsRepo) Upsert(values map[string]string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for k, v := range values {
		if _, err := tx.Exec(`
		  INSERT INTO settings(key, value) VALUES(?, ?)
		  ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SettingsRepo) Delete(key string) error {
	_, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}
