package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"IotMonitor.api/internal/models"
	"IotMonitor.api/internal/service"
	"IotMonitor.api/internal/utils"
)

// HardwareController serves the hardware tree and relays commands to it.
type HardwareController struct {
	commands *service.CommandService
}

func NewHardwareController(commands *service.CommandService) *HardwareController {
	return &HardwareController{commands: commands}
}

// HandleList returns every hardware definition with its relays.
func (c *HardwareController) HandleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, c.commands.Hardware())
}

// HandleInvoke runs /hardware/{id}/{method} and /hardware/{id}/relays/{relay}/{method}.
// The optional body is a JSON object forwarded to the device.
func (c *HardwareController) HandleInvoke(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	payload, err := decodePayload(r)
	if err != nil {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeInvalidFormat, "payload must be a JSON object", nil, http.StatusBadRequest))
		return
	}

	result, err := c.commands.Invoke(r.Context(), models.Command{
		Method:     models.CommandMethod(vars["method"]),
		HardwareID: vars["id"],
		RelayID:    vars["relay"],
		Payload:    payload,
	})
	if err != nil {
		utils.RespondWithError(w, commandError(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, result)
}

func decodePayload(r *http.Request) (map[string]any, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func commandError(err error) models.APIError {
	switch {
	case errors.Is(err, service.ErrUnknownMethod), errors.Is(err, service.ErrNotSupported):
		return models.NewAPIError(models.ErrorCodeValidationFailed, err.Error(), nil, http.StatusBadRequest)
	case errors.Is(err, service.ErrHardwareMissing):
		return models.NewAPIError(models.ErrorCodeResourceNotFound, err.Error(), nil, http.StatusNotFound)
	case errors.Is(err, service.ErrThrottled):
		return models.NewAPIError(models.ErrorCodeTooManyRequests, err.Error(), nil, http.StatusTooManyRequests)
	case errors.Is(err, service.ErrDispatch):
		return models.NewAPIError(models.ErrorCodeBadGateway, "device invocation failed", nil, http.StatusBadGateway)
	default:
		return models.NewAPIError(models.ErrorCodeInternalServerError, "internal error", nil, http.StatusInternalServerError)
	}
}
