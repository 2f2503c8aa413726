package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestInvalidateCacheSucceedsWithoutLookupOrSynonym(t *testing.T) {
	h := New(testConfig(), newFakeCacheAdapter(), nil, nil, nil, nil, nil, nil)

	app := fiber.New()
	h.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/admin/cache/invalidate", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, decodeJSON(resp, &body))
	require.Equal(t, "", body["lookupError"])
	require.Equal(t, "", body["synonymError"])
}
