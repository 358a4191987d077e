package repos_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"dealersite/internal/domain"
	"dealersite/internal/repos"
)

func mockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestCarUpdateRollsBackWhenVariantInsertFails(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cars SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM car_variants").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO car_variants").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repos.NewCarRepo(db).Update(
		domain.Car{ID: "car-1", Name: "Civic", Slug: "civic", Status: domain.StatusReadyStock},
		[]domain.CarVariant{{ID: "v1", Name: "RS", Price: 1, Specs: "{}", Colors: "[]"}},
	)
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("want disk full, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCarUpdateUnknownIDIsNoRows(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cars SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repos.NewCarRepo(db).Update(domain.Car{ID: "nope", Status: domain.StatusIndent}, nil)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("want sql.ErrNoRows, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLeadCreateStoresNullCar(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectExec("INSERT INTO lead_logs").
		WithArgs("lead-1", nil, domain.LeadWhatsAppFloating).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repos.NewLeadRepo(db).Create(context.Background(), domain.LeadLog{ID: "lead-1", Type: domain.LeadWhatsAppFloating}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSettingsAllPropagatesStoreError(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery("SELECT key, value FROM settings").WillReturnError(errors.New("db locked"))

	if _, err := repos.NewSettingsRepo(db).All(); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenDBSeedsCatalog(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	cars := repos.NewCarRepo(db)

	hrv, err := cars.GetBySlug("honda-hr-v")
	if err != nil {
		t.Fatalf("seeded car: %v", err)
	}
	if len(hrv.Colors) != 3 || hrv.Colors[0].Name != "Ignite Red" {
		t.Fatalf("colors not decoded: %+v", hrv.Colors)
	}
	if len(hrv.Gallery) != 2 {
		t.Fatalf("gallery not decoded: %+v", hrv.Gallery)
	}
	vs, err := cars.Variants(hrv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(vs) != 3 || vs[0].Name != "S CVT" || vs[2].Name != "1.5 RS Turbo" {
		t.Fatalf("variants out of order: %+v", vs)
	}

	// deleting the car takes its variants with it
	if err := cars.Delete(hrv.ID); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM car_variants WHERE car_id = ?`, hrv.ID); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("want 0 variants after delete, got %d", n)
	}
	if err := cars.Delete(hrv.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("second delete: want sql.ErrNoRows, got %v", err)
	}
}

func TestSettingsUpsert(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	r := repos.NewSettingsRepo(db)
	if err := r.Upsert(map[string]string{"site_name": "Dealer Jaya", "promo_banner_text": "Diskon!"}); err != nil {
		t.Fatal(err)
	}
	all, err := r.All()
	if err != nil {
		t.Fatal(err)
	}
	if all["site_name"] != "Dealer Jaya" || all["promo_banner_text"] != "Diskon!" {
		t.Fatalf("unexpected settings: %+v", all)
	}
	if _, ok := all["hero_title"]; !ok {
		t.Fatalf("default key missing: %+v", all)
	}
}
