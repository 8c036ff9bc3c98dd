package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/tokenkeeper/internal/api/apierror"
	"github.com/dtroode/tokenkeeper/internal/model"
	"github.com/dtroode/tokenkeeper/internal/testutil"
)

func TestNewErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "fiber error",
			err:        fiber.ErrMethodNotAllowed,
			wantStatus: http.StatusMethodNotAllowed,
			wantMsg:    "Method Not Allowed",
		},
		{
			name:       "api error",
			err:        apierror.NewErrInvalidAuthorizationToken(),
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "invalid authorization token",
		},
		{
			name:       "wrapped token not found",
			err:        fmt.Errorf("revoke: %w", model.ErrTokenNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    model.MsgTokenNotFound,
		},
		{
			name:       "internal error hides cause",
			err:        fmt.Errorf("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    model.MsgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(testutil.MakeNoopLogger())})
			app.Get("/", func(*fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			var res model.AuthResult
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, model.Failure(tt.wantMsg), res)
		})
	}
}
