package metrics_test

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"dealersite/internal/domain"
	"dealersite/internal/metrics"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(metrics.Middleware())
	app.Get("/cars/:slug", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", metrics.Handler())

	for _, slug := range []string{"honda-hr-v", "honda-br-v"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/cars/"+slug, nil))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), `dealersite_http_requests_total{method="GET",route="/cars/:slug",status="200"} 2`)
	require.False(t, strings.Contains(string(body), "honda-hr-v"))
}

func TestRecordLeadIsExposed(t *testing.T) {
	app := fiber.New()
	app.Get("/metrics", metrics.Handler())

	metrics.RecordLead(domain.LeadWhatsAppPromo, true)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), `dealersite_leads_total{stored="true",type="WHATSAPP_PROMO"} 1`)
}

func TestRecordLeadFoldsUnknownTypes(t *testing.T) {
	app := fiber.New()
	app.Get("/metrics", metrics.Handler())

	for i := 0; i < 50; i++ {
		metrics.RecordLead(fmt.Sprintf("JUNK-%d", i), false)
	}
	metrics.RecordLead("UNKNOWN", false)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), `dealersite_leads_total{stored="false",type="OTHER"} 51`)
	require.NotContains(t, string(body), "JUNK-")
}
