package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type fiberApp struct {
	*fiber.App
}

func (a *fiberApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := a.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	return resp
}

func (a *fiberApp) getJSON(t *testing.T, path string, status int, v any) {
	t.Helper()
	resp := a.get(t, path)
	defer resp.Body.Close()
	require.Equal(t, status, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
