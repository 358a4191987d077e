package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: keeps PRAGMAs in force and lets ":memory:" behave as a
	// single database.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed showroom content if the catalog is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Site copy defaults (idempotent; never overwrites admin edits)
	if err := seedSettings(db); err != nil {
		return nil, err
	}
	// Ensure the default admin exists (idempotent)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Cars
CREATE TABLE IF NOT EXISTS cars(
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  price INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'Ready Stock' CHECK (status IN ('Ready Stock','Indent','Coming Soon')),
  badge TEXT NOT NULL DEFAULT '',
  thumbnail TEXT NOT NULL DEFAULT '',
  gallery TEXT NOT NULL DEFAULT '[]',
  interior_gallery TEXT NOT NULL DEFAULT '[]',
  video_url TEXT NOT NULL DEFAULT '',
  catalog_url TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  colors TEXT NOT NULL DEFAULT '[]',
  spec_definitions TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_cars_active     ON cars(is_active);
CREATE INDEX IF NOT EXISTS idx_cars_name       ON cars(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_cars_created_at ON cars(created_at);

-- Variants are owned by their car
CREATE TABLE IF NOT EXISTS car_variants(
  id TEXT PRIMARY KEY,
  car_id TEXT NOT NULL REFERENCES cars(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  price INTEGER NOT NULL DEFAULT 0 CHECK (price >= 0),
  specs TEXT NOT NULL DEFAULT '{}',
  colors TEXT NOT NULL DEFAULT '[]',
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_car_variants_car ON car_variants(car_id, sort_order);

-- Promotions
CREATE TABLE IF NOT EXISTS promotions(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT '',
  link TEXT NOT NULL DEFAULT '',
  tag TEXT NOT NULL DEFAULT '',
  period TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Testimonials
CREATE TABLE IF NOT EXISTS testimonials(
  id TEXT PRIMARY KEY,
  image TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL DEFAULT '',
  text TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Site settings: schema-less key/value
CREATE TABLE IF NOT EXISTS settings(
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL DEFAULT ''
);

-- Leads: car_id is a soft reference (no FK)
CREATE TABLE IF NOT EXISTS lead_logs(
  id TEXT PRIMARY KEY,
  car_id TEXT,
  type TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_lead_logs_type ON lead_logs(type);
CREATE INDEX IF NOT EXISTS idx_lead_logs_car  ON lead_logs(car_id);

-- Admin users & sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM cars`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo cars/variants/promotions/testimonials")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO cars(id,slug,name,brand,price,status,badge,thumbnail,gallery,interior_gallery,description,colors,is_active,is_featured) VALUES
	  ('car-hrv','honda-hr-v','Honda HR-V','Honda',383900000,'Ready Stock','Best Seller','/media/cars/hrv/thumb.jpg',
	   '["/media/cars/hrv/1.jpg","/media/cars/hrv/2.jpg"]','["/media/cars/hrv/in-1.jpg"]',
	   'Compact SUV with a turbocharged option.',
	   '[{"name":"Ignite Red","image":"/media/cars/hrv/red.jpg","hex":"#b3141c"},{"name":"Meteoroid Gray","image":"/media/cars/hrv/gray.jpg","hex":"#6b6e70"},{"name":"Platinum White","image":"/media/cars/hrv/white.jpg","hex":"#f4f4f2"}]',
	   1,1),
	  ('car-brv','honda-br-v','Honda BR-V','Honda',296600000,'Indent','','/media/cars/brv/thumb.jpg',
	   '["/media/cars/brv/1.jpg"]','[]',
	   'Seven-seat family SUV.',
	   '[{"name":"Taffeta White","image":"/media/cars/brv/white.jpg"},{"name":"Crystal Black","image":"/media/cars/brv/black.jpg"}]',
	   1,0)`)

	tx.MustExec(`INSERT INTO car_variants(id,car_id,name,price,specs,colors,sort_order) VALUES
	  ('var-hrv-s','car-hrv','S CVT',383900000,'- LED Headlights' || char(10) || '- 7 inch Display Audio','["Meteoroid Gray","Platinum White"]',0),
	  ('var-hrv-e','car-hrv','E CVT',400000000,'- LED Headlights' || char(10) || '- Honda SENSING' || char(10) || '- Walk Away Auto Lock','[]',1),
	  ('var-hrv-rs','car-hrv','1.5 RS Turbo',525900000,'{"Engine":"1.5L VTEC Turbo","Roof":"Panoramic Glass Roof"}','["Ignite Red","Platinum White"]',2),
	  ('var-brv-e','car-brv','E CVT',296600000,'- 6 Airbags' || char(10) || '- Cruise Control','[]',0)`)

	tx.MustExec(`INSERT INTO promotions(id,title,description,image,link,tag,period,is_active) VALUES
	  ('promo-dp','DP Ringan HR-V','Down payment mulai 15% untuk HR-V.','/media/promo/dp.jpg','','TERBATAS','1 Mar - 30 Apr 2024',1)`)

	tx.MustExec(`INSERT INTO testimonials(id,image,name,text,is_active) VALUES
	  ('testi-1','/media/testi/1.jpg','Budi','Proses cepat, unit sesuai.',1)`)

	return tx.Commit()
}

// DefaultSettings are inserted once; the presentation layer still applies
// its own fallback when a key is missing.
var DefaultSettings = map[string]string{
	"site_name":       "Honda Dealer",
	"hero_title":      "Temukan Honda Impian Anda",
	"hero_subtitle":   "Promo terbaik, proses cepat, unit ready.",
	"whatsapp_number": "",
	"footer_text":     "",
}

func seedSettings(db *sqlx.DB) error {
	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()
	for k, v := range DefaultSettings {
		if _, err := tx.Exec(`INSERT INTO settings(key,value) VALUES(?,?) ON CONFLICT(key) DO NOTHING`, k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SeedAdminID is the id of the built-in ADMIN created on first start.
const SeedAdminID = "u-admin"

// seedUsers ensures the default ADMIN exists (idempotent).
func seedUsers(db *sqlx.DB) error {
	h, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO users(id,email,name,password_hash,role)
		VALUES(?,'admin@dealersite.test','Admin',?,'ADMIN')
		ON CONFLICT(email) DO NOTHING
	`, SeedAdminID, string(h))
	return err
}
