package handlers

import (
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	"dealersite/internal/config"
	"dealersite/internal/repos"
	"dealersite/internal/services"
)

type Deps struct {
	Settings *services.SettingsService
	Public   *PublicHandler
	API      *APIHandler
	Admin    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	carRepo := repos.NewCarRepo(db)
	promoRepo := repos.NewPromotionRepo(db)
	testiRepo := repos.NewTestimonialRepo(db)
	settingsRepo := repos.NewSettingsRepo(db)
	leadRepo := repos.NewLeadRepo(db)

	catalogSvc := services.NewCatalogService(carRepo)
	contentSvc := services.NewContentService(promoRepo, testiRepo)
	settingsSvc := services.NewSettingsService(settingsRepo)
	leadSvc := services.NewLeadService(leadRepo)
	uploadSvc := services.NewUploadService(cfg.UploadDir, UploadURLPrefix(cfg), cfg.UploadMaxWidth)

	return &Deps{
		Settings: settingsSvc,
		Public:   &PublicHandler{Catalog: catalogSvc, Content: contentSvc, Leads: leadSvc, FlatRate: cfg.CreditFlatRate},
		API:      &APIHandler{Catalog: catalogSvc, Leads: leadSvc, FlatRate: cfg.CreditFlatRate},
		Admin: &AdminHandler{
			Catalog:  catalogSvc,
			Content:  contentSvc,
			Settings: settingsSvc,
			Leads:    leadSvc,
			Uploads:  uploadSvc,
		},
	}
}

// UploadURLPrefix is where files in UploadDir are reachable, given that
// MediaDir is served under /media.
func UploadURLPrefix(cfg config.Config) string {
	rel, err := filepath.Rel(cfg.MediaDir, cfg.UploadDir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "/media/uploads"
	}
	return "/media/" + filepath.ToSlash(rel)
}
