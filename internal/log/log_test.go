package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"dealersite/internal/domain"
)

func TestEntriesCarryRequestContext(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)

	app := fiber.New()
	app.Use(requestid.New())
	app.Post("/admin/cars", func(c *fiber.Ctx) error {
		c.Locals("user", &domain.User{ID: "u-admin"})
		Audit(c, "admin.cars.create", map[string]any{"slug": "honda-hr-v"})
		return c.SendStatus(fiber.StatusCreated)
	})
	if _, err := app.Test(httptest.NewRequest("POST", "/admin/cars", nil)); err != nil {
		t.Fatal(err)
	}

	var e map[string]any
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("not json: %q", buf.String())
	}
	for k, want := range map[string]any{
		"level": "audit", "action": "admin.cars.create", "method": "POST",
		"path": "/admin/cars", "user_id": "u-admin",
	} {
		if e[k] != want {
			t.Errorf("%s = %v, want %v", k, e[k], want)
		}
	}
	if e["req_id"] == "" || e["req_id"] == nil {
		t.Errorf("request id missing: %v", e)
	}
	if f, _ := e["fields"].(map[string]any); f["slug"] != "honda-hr-v" {
		t.Errorf("fields = %v", e["fields"])
	}
}

func TestErrorWithoutRequest(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)

	Error(nil, "lead.store.fail", errors.New("db locked"), nil)

	var e map[string]any
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("not json: %q", buf.String())
	}
	if e["level"] != "error" || e["err"] != "db locked" {
		t.Fatalf("unexpected entry: %v", e)
	}
	if _, ok := e["path"]; ok {
		t.Fatalf("path should be absent without a request: %v", e)
	}
}
