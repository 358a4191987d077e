package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"dealersite/internal/credit"
)

type Config struct {
	Port           string
	DBDSN          string
	MediaDir       string
	UploadDir      string
	LogFile        string
	TemplatesDir   string
	CreditFlatRate float64
	WhatsAppNumber string
	AdminEmail     string
	AdminPassword  string
	UploadMaxWidth int
	RateLimit      int // requests per minute per IP
}

// DefaultCreditFlatRate applies when neither env nor settings override it.
const DefaultCreditFlatRate = credit.DefaultFlatRate

func Load() Config {
	// .env is optional; real env always wins
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}

	cfg := Config{
		Port:           getenv("PORT", "8080"),
		DBDSN:          getenv("DB_DSN", "dealersite.db"), // sqlite file in project root
		MediaDir:       getenv("MEDIA_DIR", "./web/media"),
		UploadDir:      getenv("UPLOAD_DIR", "./web/media/uploads"),
		LogFile:        getenv("LOG_FILE", "./dealersite.log"),
		TemplatesDir:   getenv("TEMPLATES_DIR", "./web/templates"),
		CreditFlatRate: getenvFloat("CREDIT_FLAT_RATE", DefaultCreditFlatRate),
		WhatsAppNumber: getenv("WHATSAPP_NUMBER", "6281234567890"),
		AdminEmail:     getenv("ADMIN_EMAIL", "admin@dealersite.test"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		UploadMaxWidth: getenvInt("UPLOAD_MAX_WIDTH", 1600),
		RateLimit:      getenvInt("RATE_LIMIT", 60),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s UPLOAD_DIR=%s LOG_FILE=%s CREDIT_FLAT_RATE=%.2f",
		cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.UploadDir, cfg.LogFile, cfg.CreditFlatRate)
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		log.Printf("[warn] %s=%q is not a valid rate, using %.2f", key, v, def)
		return def
	}
	return f
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[warn] %s=%q is not a positive integer, using %d", key, v, def)
		return def
	}
	return n
}
