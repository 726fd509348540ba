package status

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/catalog"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/pricing"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/rates"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/modules/status/handlers"
)

type stubConn struct {
	connected bool
	qr        []byte
}

func (s stubConn) IsConnected() bool    { return s.connected }
func (s stubConn) QRGenerated() bool    { return s.qr != nil }
func (s stubConn) StartedAt() time.Time { return time.Now().Add(-time.Minute) }
func (s stubConn) GenerateQR() ([]byte, error) {
	if s.qr == nil {
		return nil, whatsapp.ErrNoQR
	}
	return s.qr, nil
}

type stubProducts []catalog.Product

func (s stubProducts) All() []catalog.Product { return s }
func (s stubProducts) Categories() []string   { return []string{"Breakers"} }
func (s stubProducts) Stats() catalog.Stats {
	return catalog.Stats{Products: len(s), Categories: 1, Path: "TablaProductos.xlsx"}
}
func (s stubProducts) Search(term string) []catalog.Product {
	var out []catalog.Product
	for _, p := range s {
		if strings.Contains(strings.ToLower(p.Description), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	return out
}

type stubRates struct{ snap rates.Snapshot }

func (s stubRates) Rates(context.Context) rates.Snapshot { return s.snap }

func testApp(conn stubConn) *fiberApp {
	var products stubProducts
	for i := 0; i < 60; i++ {
		products = append(products, catalog.Product{
			Code:         decimal.NewFromInt(int64(10000 + i)).String(),
			Description:  "Breaker",
			Category:     "Breakers",
			GeneralPrice: decimal.RequireFromString("10.00"),
		})
	}
	products[0].GeneralPrice = decimal.Zero

	resolver := pricing.NewResolver(1.5)
	return &fiberApp{NewApp(Options{AppName: "test", CORSOrigins: []string{"http://localhost:8080"}}, Handlers{
		Status:   handlers.NewStatusHandler(conn),
		Products: handlers.NewProductHandler(products, resolver),
		Rates: handlers.NewRatesHandler(stubRates{snap: rates.Snapshot{
			Dollar: decimal.NewNullDecimal(decimal.RequireFromString("36.50")),
		}}),
		WhatsApp: handlers.NewWhatsAppHandler(conn),
	})}
}

func TestStatusEndpoints(t *testing.T) {
	app := testApp(stubConn{connected: true})

	var root handlers.RootResponse
	app.getJSON(t, "/", http.StatusOK, &root)
	assert.Equal(t, "Bot de WhatsApp Activo", root.Status)
	assert.True(t, root.Ready)

	var status handlers.StatusResponse
	app.getJSON(t, "/status", http.StatusOK, &status)
	assert.True(t, status.BotReady)
	assert.False(t, status.QRGenerated)
	assert.GreaterOrEqual(t, status.Uptime, 59.0)

	var health map[string]any
	app.getJSON(t, "/health", http.StatusOK, &health)
	assert.Equal(t, "ok", health["status"])
}

func TestProductsEndpoint(t *testing.T) {
	app := testApp(stubConn{})

	var resp handlers.ProductsResponse
	app.getJSON(t, "/products", http.StatusOK, &resp)
	assert.Len(t, resp.Products, 50)
	assert.Equal(t, "Precio no disponible", resp.Products[0].Price)
	assert.Equal(t, "$15.00", resp.Products[1].Price)
	assert.Equal(t, "general", resp.Products[1].Tier)
	assert.Equal(t, 60, resp.Stats.Products)
	assert.Equal(t, "1.5", resp.Stats.Multiplier)
	assert.Equal(t, []string{"Breakers"}, resp.Categories)
}

func TestSearchEndpoint(t *testing.T) {
	app := testApp(stubConn{})

	var resp handlers.SearchResponse
	app.getJSON(t, "/products/search/breaker", http.StatusOK, &resp)
	assert.Equal(t, "breaker", resp.Query)
	assert.Len(t, resp.Results, 20)
	assert.Equal(t, 60, resp.Total)

	app.getJSON(t, "/products/search/cable", http.StatusOK, &resp)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.Total)
}

func TestRatesEndpoint(t *testing.T) {
	app := testApp(stubConn{})

	var snap map[string]any
	app.getJSON(t, "/rates", http.StatusOK, &snap)
	assert.Equal(t, "36.5", snap["dolar"])
	assert.Nil(t, snap["euro"])
}

func TestQREndpoint(t *testing.T) {
	app := testApp(stubConn{})
	resp := app.get(t, "/whatsapp/qr")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	app = testApp(stubConn{qr: []byte("\x89PNG")})
	resp = app.get(t, "/whatsapp/qr")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), body)
}

func TestMetricsEndpoint(t *testing.T) {
	app := testApp(stubConn{})
	resp := app.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSAllowList(t *testing.T) {
	app := testApp(stubConn{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
