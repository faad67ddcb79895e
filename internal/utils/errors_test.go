package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/yantrahq/yantra/internal/api/dto/common"
	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logging.Configure(&logging.Config{Level: logging.LevelError})
	os.Exit(m.Run())
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", service.ErrInvalidCapacity, http.StatusBadRequest},
		{"unauthenticated", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not found", service.ErrCodeNotFound, http.StatusNotFound},
		{"conflict", service.ErrTeamFull, http.StatusConflict},
		{"unavailable", service.ErrBackendUnavailable.Wrap(errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("join: %w", service.ErrNameTaken), http.StatusConflict},
		{"untagged", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}

func serve(err error) (*httptest.ResponseRecorder, common.APIResponse) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/teams", nil)
	HandleServiceError(c, err)

	var body common.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestHandleServiceErrorKeepsCode(t *testing.T) {
	w, body := serve(service.ErrTeamFull)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, service.CodeTeamFull, body.Error.Code)
	assert.Equal(t, "team is full", body.Error.Message)
}

func TestHandleServiceErrorHidesUntaggedFailures(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	w, body := serve(errors.New("connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, string(common.ErrCodeInternalServer), body.Error.Code)
	assert.Nil(t, body.Error.Details)
}
