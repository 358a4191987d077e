package services

import (
	"fmt"
	"strings"

	"dealersite/internal/domain"
	"dealersite/internal/repos"
)

type SettingsService struct {
	Repo *repos.SettingsRepo
}

func NewSettingsService(r *repos.SettingsRepo) *SettingsService {
	return &SettingsService{Repo: r}
}

// Snapshot reads every setting once. A store failure yields an empty
// snapshot so pages still render on defaults.
func (s *SettingsService) Snapshot() (domain.SiteSettings, error) {
	all, err := s.Repo.All()
	if err != nil {
		return domain.NewSiteSettings(nil), fmt.Errorf("load settings: %w", err)
	}
	return domain.NewSiteSettings(all), nil
}

// Save upserts the given pairs. Keys are free-form; blank keys are skipped.
func (s *SettingsService) Save(values map[string]string) error {
	clean := make(map[string]string, len(values))
	for k, v := range values {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if len(k) > 64 {
			return invalid("setting key too long")
		}
		clean[k] = v
	}
	if len(clean) == 0 {
		return nil
	}
	if err := s.Repo.Upsert(clean); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *SettingsService) Delete(key string) error {
	return s.Repo.Delete(strings.TrimSpace(key))
}
