package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestConfigurationAPI(t *testing.T) {
	app, _ := newApp(t)

	resp, body := get(t, app, "/api/v1/cars/honda-hr-v/configuration?variant=var-hrv-rs&color="+url.QueryEscape("Platinum White"), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "car-hrv", gjson.Get(body, "car.id").String())
	assert.Equal(t, int64(3), gjson.Get(body, "variants.#").Int())
	assert.Equal(t, "1.5 RS Turbo", gjson.Get(body, "configuration.variant.name").String())
	assert.Equal(t, int64(525900000), gjson.Get(body, "configuration.price").Int())
	assert.Equal(t, "Platinum White", gjson.Get(body, "configuration.selectedColor.name").String())

	var names []string
	for _, c := range gjson.Get(body, "configuration.colors.#.name").Array() {
		names = append(names, c.String())
	}
	assert.Equal(t, []string{"Ignite Red", "Platinum White"}, names)

	resp, body = get(t, app, "/api/v1/cars/honda-jazz/configuration", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "car not found", gjson.Get(body, "error").String())
}

func TestCreditAPI(t *testing.T) {
	app, _ := newApp(t)

	resp, body := get(t, app, "/api/v1/credit?price=100000000&dp=20&tenor=12", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(20000000), gjson.Get(body, "totalDP").Int())
	assert.Equal(t, int64(80000000), gjson.Get(body, "loanPrincipal").Int())
	// 80M + 80M * 3.5% over one year, in 12 installments
	assert.Equal(t, int64(6900000), gjson.Get(body, "monthlyInstallment").Int())
	assert.Equal(t, 3.5, gjson.Get(body, "interestRate").Float())

	for _, q := range []string{"price=abc", "price=100&tenor=0", "price=100&dp=101", "price=-5"} {
		resp, body = get(t, app, "/api/v1/credit?"+q, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.NotEmpty(t, gjson.Get(body, "error").String(), q)
	}
}

func TestCreditAPIUsesConfiguredRate(t *testing.T) {
	app, db := newApp(t)
	db.MustExec(`INSERT INTO settings(key, value) VALUES('credit_flat_rate', '5')`)

	_, body := get(t, app, "/api/v1/credit?price=100000000&dp=20&tenor=12", "")
	assert.Equal(t, 5.0, gjson.Get(body, "interestRate").Float())
	assert.Equal(t, int64(7000000), gjson.Get(body, "monthlyInstallment").Int())
}

func TestLeadBeaconStoresAndAlwaysAnswers204(t *testing.T) {
	app, db := newApp(t)

	send := func(contentType, body string) int {
		req := httptest.NewRequest("POST", "/api/v1/leads", strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusNoContent, send("application/json", `{"type":"whatsapp_unit_detail","carId":"car-hrv"}`))
	assert.Equal(t, http.StatusNoContent, send("application/x-www-form-urlencoded", "type=WHATSAPP_FLOATING"))
	// an unknown car still records the lead
	assert.Equal(t, http.StatusNoContent, send("application/json", `{"type":"WHATSAPP_PROMO","carId":"deleted-car"}`))
	// malformed input is swallowed
	assert.Equal(t, http.StatusNoContent, send("application/json", `{"type":`))
	assert.Equal(t, http.StatusNoContent, send("application/json", `{"carId":"car-hrv"}`))

	var rows []struct {
		CarID string `db:"car_id"`
		Type  string `db:"type"`
	}
	require.NoError(t, db.Select(&rows, `SELECT COALESCE(car_id,'') AS car_id, type FROM lead_logs ORDER BY type`))
	require.Len(t, rows, 3)
	assert.Equal(t, "", rows[0].CarID)
	assert.Equal(t, "WHATSAPP_FLOATING", rows[0].Type)
	assert.Equal(t, "deleted-car", rows[1].CarID)
	assert.Equal(t, "WHATSAPP_PROMO", rows[1].Type)
	assert.Equal(t, "car-hrv", rows[2].CarID)
	assert.Equal(t, "WHATSAPP_UNIT_DETAIL", rows[2].Type)
}
