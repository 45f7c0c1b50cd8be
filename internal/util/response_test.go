package util

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performRequest(t *testing.T, h fiber.Handler) (int, map[string]any) {
	t.Helper()
	app := fiber.New()
	app.Get("/", h)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestSuccessResponseDefaultsToOK(t *testing.T) {
	status, body := performRequest(t, func(c *fiber.Ctx) error {
		return SuccessResponse(c, SuccessResponseFormat{
			Message: "Success test",
			Data:    fiber.Map{"id": "x"},
		})
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Success test", body["message"])
}

func TestErrorResponseDefaultsToInternalError(t *testing.T) {
	status, body := performRequest(t, func(c *fiber.Ctx) error {
		return ErrorResponse(c, ErrorResponseFormat{Message: "something broke"})
	})

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "something broke", body["message"])
}

func TestErrorResponseUnpacksFormError(t *testing.T) {
	status, body := performRequest(t, func(c *fiber.Ctx) error {
		return ErrorResponse(c, ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "text is required",
		}, NewFormError("text is required", map[string]string{"text": "required"}))
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	details, ok := body["details"].(map[string]any)
	require.True(t, ok, "details should carry the field map")
	assert.Equal(t, "required", details["text"])
}
