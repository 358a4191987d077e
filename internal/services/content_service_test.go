package services_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/disintegration/imaging"
	"github.com/jmoiron/sqlx"

	"dealersite/internal/repos"
	"dealersite/internal/services"
)

func TestPromotionLifecycle(t *testing.T) {
	db := memdb(t)
	svc := services.NewContentService(repos.NewPromotionRepo(db), repos.NewTestimonialRepo(db))

	if _, err := svc.CreatePromotion(services.PromotionInput{Image: "/media/p.png"}); !services.IsValidation(err) || err.Error() != "title required" {
		t.Fatalf("want title required, got %v", err)
	}
	if _, err := svc.CreatePromotion(services.PromotionInput{Title: "DP 10%", Image: "/x.png", Link: "not a url"}); !services.IsValidation(err) || err.Error() != "link must be a URL" {
		t.Fatalf("want link must be a URL, got %v", err)
	}
	if _, err := svc.CreatePromotion(services.PromotionInput{Title: strings.Repeat("x", 121), Image: "/x.png"}); !services.IsValidation(err) || err.Error() != "title too long" {
		t.Fatalf("want title too long, got %v", err)
	}

	p, err := svc.CreatePromotion(services.PromotionInput{
		Title: "Cicilan 0%", Image: "/media/promo.png", Period: "Oktober", IsActive: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	toggled, err := svc.TogglePromotion(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if toggled.IsActive || toggled.Title != "Cicilan 0%" || toggled.Period != "Oktober" {
		t.Fatalf("toggle must keep the other fields: %+v", toggled)
	}
	active, err := svc.Promotions(true)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range active {
		if a.ID == p.ID {
			t.Fatal("inactive promotion listed as active")
		}
	}
	if err := svc.DeletePromotion(p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.TogglePromotion(p.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestTestimonialUpdate(t *testing.T) {
	db := memdb(t)
	svc := services.NewContentService(repos.NewPromotionRepo(db), repos.NewTestimonialRepo(db))

	tm, err := svc.CreateTestimonial(services.TestimonialInput{Image: "/media/handover.jpg", Name: "Budi"})
	if err != nil {
		t.Fatal(err)
	}
	up, err := svc.UpdateTestimonial(tm.ID, services.TestimonialInput{Image: "/media/handover.jpg", Text: "Pelayanan cepat", IsActive: true})
	if err != nil {
		t.Fatal(err)
	}
	if up.Name != "" || !up.IsActive {
		t.Fatalf("update is a full replace: %+v", up)
	}
	if _, err := svc.UpdateTestimonial("missing", services.TestimonialInput{Image: "/x.jpg"}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSettingsSnapshotIsDetached(t *testing.T) {
	svc := services.NewSettingsService(repos.NewSettingsRepo(memdb(t)))

	if err := svc.Save(map[string]string{"whatsapp_number": "0812-3456-789", " ": "ignored"}); err != nil {
		t.Fatal(err)
	}
	snap, err := svc.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Save(map[string]string{"whatsapp_number": "0800"}); err != nil {
		t.Fatal(err)
	}
	if got := snap.Get("whatsapp_number", ""); got != "0812-3456-789" {
		t.Fatalf("snapshot changed under the request: %q", got)
	}
	if snap.Has(" ") {
		t.Fatal("blank key stored")
	}
	if got := snap.Get("no_such_key", "fallback"); got != "fallback" {
		t.Fatalf("default not applied: %q", got)
	}
}

func TestLeadLogIsBestEffort(t *testing.T) {
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer raw.Close()
	mock.ExpectExec("INSERT INTO lead_logs").WillReturnError(errors.New("disk I/O error"))

	svc := services.NewLeadService(repos.NewLeadRepo(sqlx.NewDb(raw, "sqlmock")))
	if svc.Log(context.Background(), "car-hrv", "whatsapp_unit_detail") {
		t.Fatal("store failure reported as stored")
	}
}

func TestLeadStats(t *testing.T) {
	svc := services.NewLeadService(repos.NewLeadRepo(memdb(t)))
	ctx := context.Background()

	svc.Log(ctx, "car-hrv", "WHATSAPP_UNIT_DETAIL")
	svc.Log(ctx, "car-hrv", "WHATSAPP_UNIT_DETAIL")
	svc.Log(ctx, "deleted-car", "WHATSAPP_UNIT_DETAIL")
	svc.Log(ctx, "", "WHATSAPP_FLOATING")

	st, err := svc.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 4 || len(st.ByType) != 2 || st.ByType[0].Count != 3 {
		t.Fatalf("stats: %+v", st)
	}
	if len(st.TopCars) != 2 || st.TopCars[0].CarID != "car-hrv" || st.TopCars[0].Name != "Honda HR-V" {
		t.Fatalf("top cars: %+v", st.TopCars)
	}
	if st.TopCars[1].Name != "" {
		t.Fatalf("dangling car id should have no name: %+v", st.TopCars[1])
	}
}

func TestWhatsAppLink(t *testing.T) {
	got := services.WhatsAppLink("0812-3456-7890", "Halo, saya tertarik Honda HR-V & promo")
	want := "https://wa.me/6281234567890?text=Halo%2C%20saya%20tertarik%20Honda%20HR-V%20%26%20promo"
	if got != want {
		t.Fatalf("got %s\nwant %s", got, want)
	}
	if got := services.WhatsAppLink("", ""); got != "https://wa.me/"+services.DefaultWhatsAppNumber {
		t.Fatalf("fallback number: %s", got)
	}
}

func TestUploadDownscalesWideImages(t *testing.T) {
	dir := t.TempDir()
	svc := services.NewUploadService(dir, "/media/uploads", 1600)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2000, 100))); err != nil {
		t.Fatal(err)
	}
	url, err := svc.Save("Brosur HR-V.png", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "/media/uploads/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url = %q", url)
	}
	img, err := imaging.Open(filepath.Join(dir, filepath.Base(url)))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 1600 || img.Bounds().Dy() != 80 {
		t.Fatalf("not downscaled: %v", img.Bounds())
	}

	if _, err := svc.Save("notes.txt", strings.NewReader("hello")); !services.IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
	if _, err := svc.Save("fake.jpg", strings.NewReader("hello")); !services.IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("failed uploads left files behind: %d", len(entries))
	}
}

// pngHeader is a PNG signature plus an IHDR chunk declaring w x h, with no
// pixel data behind it.
func pngHeader(w, h uint32) []byte {
	var b bytes.Buffer
	b.WriteString("\x89PNG\r\n\x1a\n")
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	_ = binary.Write(&b, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	b.Write(chunk)
	_ = binary.Write(&b, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return b.Bytes()
}

func TestUploadRejectsHugeDeclaredDimensions(t *testing.T) {
	dir := t.TempDir()
	svc := services.NewUploadService(dir, "/media/uploads", 1600)

	_, err := svc.Save("bomb.png", bytes.NewReader(pngHeader(100000, 100000)))
	if !services.IsValidation(err) || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("want dimension rejection, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("rejected upload left files behind: %d", len(entries))
	}
}
