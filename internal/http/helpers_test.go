package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"dealersite/internal/config"
	applog "dealersite/internal/log"
	"dealersite/internal/repos"
	"dealersite/internal/server"
)

const adminSID = "sid-admin"

func newApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	cfg := config.Config{
		DBDSN:          ":memory:",
		MediaDir:       "../../web/media",
		UploadDir:      t.TempDir(),
		TemplatesDir:   "../../web/templates",
		CreditFlatRate: config.DefaultCreditFlatRate,
		WhatsAppNumber: "6281234567890",
		UploadMaxWidth: 1600,
		RateLimit:      1000,
	}
	return server.New(cfg, db), db
}

// bindAdmin attaches the seeded admin account to adminSID.
func bindAdmin(t *testing.T, db *sqlx.DB) {
	t.Helper()
	if err := repos.NewUserRepo(db).BindSession(adminSID, "u-admin"); err != nil {
		t.Fatalf("bind admin session: %v", err)
	}
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func csrfToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

// postForm sends a form with a valid csrf token; sid may be empty.
func postForm(t *testing.T, app *fiber.App, path, sid string, form url.Values) *http.Response {
	t.Helper()
	tok := csrfToken(t, app)
	form.Set("csrf", tok)
	req := formRequest(path, form)
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func get(t *testing.T, app *fiber.App, path, sid string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

// captureLogs collects the structured entries written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	prev := applog.SetOutput(buf)
	defer applog.SetOutput(prev)

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
