package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IotMonitor.api/internal/hardware"
	"IotMonitor.api/internal/iothub"
	"IotMonitor.api/internal/logging"
	"IotMonitor.api/internal/models"
	"IotMonitor.api/internal/service"
)

type stubInvoker struct {
	payload map[string]any
	err     error
}

func (s *stubInvoker) InvokeMethod(_ context.Context, _ string, payload map[string]any) (*iothub.MethodResponse, error) {
	s.payload = payload
	if s.err != nil {
		return nil, s.err
	}
	return &iothub.MethodResponse{Status: 200, Payload: json.RawMessage(`{"ok":true}`)}, nil
}

func newHardwareController(t *testing.T, inv service.DeviceInvoker) *HardwareController {
	t.Helper()
	reg, err := hardware.NewRegistry([]models.HardwareDefinition{
		{
			ID: "mcp", Name: "Relays", Driver: "MCP23017",
			Relays: []models.HardwareDefinition{{ID: "pump", Name: "Pump", Callable: true}},
		},
		{ID: "dht", Name: "Air", Driver: "DHT22", Readable: true},
	})
	require.NoError(t, err)
	return NewHardwareController(service.NewCommandService(reg, inv, nil, 0, logging.Nop()))
}

func invoke(c *HardwareController, vars map[string]string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hardware", strings.NewReader(body))
	req = mux.SetURLVars(req, vars)
	rec := httptest.NewRecorder()
	c.HandleInvoke(rec, req)
	return rec
}

func TestHandleList(t *testing.T) {
	c := newHardwareController(t, &stubInvoker{})

	rec := httptest.NewRecorder()
	c.HandleList(rec, httptest.NewRequest(http.MethodGet, "/hardware", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var defs []models.HardwareDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &defs))
	require.Len(t, defs, 2)
	assert.Equal(t, "pump", defs[0].Relays[0].ID)
}

func TestHandleInvoke(t *testing.T) {
	inv := &stubInvoker{}
	c := newHardwareController(t, inv)

	rec := invoke(c, map[string]string{"id": "mcp", "relay": "pump", "method": "call"}, `{"duration":5}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"payload":{"ok":true}}`, rec.Body.String())
	assert.Equal(t, map[string]any{"id": "mcp", "relay": "pump", "duration": float64(5)}, inv.payload)
}

func TestHandleInvoke_Errors(t *testing.T) {
	tests := []struct {
		name       string
		vars       map[string]string
		body       string
		invokeErr  error
		wantStatus int
		wantCode   models.ErrorCode
	}{
		{name: "unknown method", vars: map[string]string{"id": "dht", "method": "reboot"}, wantStatus: http.StatusBadRequest, wantCode: models.ErrorCodeValidationFailed},
		{name: "not readable", vars: map[string]string{"id": "mcp", "relay": "pump", "method": "read"}, wantStatus: http.StatusBadRequest, wantCode: models.ErrorCodeValidationFailed},
		{name: "missing hardware", vars: map[string]string{"id": "nope", "method": "read"}, wantStatus: http.StatusNotFound, wantCode: models.ErrorCodeResourceNotFound},
		{name: "bad payload", vars: map[string]string{"id": "dht", "method": "read"}, body: `[1]`, wantStatus: http.StatusBadRequest, wantCode: models.ErrorCodeInvalidFormat},
		{name: "hub failure", vars: map[string]string{"id": "dht", "method": "read"}, invokeErr: errors.New("dial tcp"), wantStatus: http.StatusBadGateway, wantCode: models.ErrorCodeBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newHardwareController(t, &stubInvoker{err: tt.invokeErr})

			rec := invoke(c, tt.vars, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var apiErr models.APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}
