package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"IotMonitor.api/internal/logging"
	"IotMonitor.api/internal/models"
	"IotMonitor.api/internal/service"
	"IotMonitor.api/internal/utils"
)

const msgInvalidJSON = "body must be valid JSON"

// DataController handles measurement uploads and history reads.
type DataController struct {
	service *service.DataService
	logger  *logging.Logger
}

// NewDataController creates a new DataController.
func NewDataController(service *service.DataService, logger *logging.Logger) *DataController {
	return &DataController{
		service: service,
		logger:  logger,
	}
}

// HandleUpload stores one measurement payload.
// 200 {} on success, 400 {"errors": [...]} on invalid input, 500 {} when the store fails.
func (c *DataController) HandleUpload(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context(), c.logger)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondWithErrors(w, http.StatusBadRequest, []string{"error reading request body"})
		return
	}
	defer r.Body.Close()

	raw, err := decodeDocument(body)
	if err != nil {
		logger.Info("payload not valid", "errors", []string{msgInvalidJSON})
		utils.RespondWithErrors(w, http.StatusBadRequest, []string{msgInvalidJSON})
		return
	}
	// non-object bodies validate like an empty object
	doc, _ := raw.(map[string]any)
	logger.Debug("received new data", "payload", doc)

	err = c.service.Upload(r.Context(), models.Document(doc))
	var validationErr *service.ValidationError
	switch {
	case err == nil:
		utils.RespondWithEmpty(w, http.StatusOK)
	case errors.As(err, &validationErr):
		utils.RespondWithErrors(w, http.StatusBadRequest, validationErr.Messages)
	default:
		utils.RespondWithEmpty(w, http.StatusInternalServerError)
	}
}

// HandleData returns stored measurements, newest first.
// Query parameters: from, to (RFC3339) and limit.
func (c *DataController) HandleData(w http.ResponseWriter, r *http.Request) {
	q, problems := parseHistoryQuery(r)
	if len(problems) > 0 {
		utils.RespondWithErrors(w, http.StatusBadRequest, problems)
		return
	}

	records, err := c.service.History(r.Context(), q)
	var validationErr *service.ValidationError
	switch {
	case err == nil:
		utils.RespondWithJSON(w, http.StatusOK, models.DataResponse{Data: models.DataPayload{Response: records}})
	case errors.As(err, &validationErr):
		utils.RespondWithErrors(w, http.StatusBadRequest, validationErr.Messages)
	default:
		utils.RespondWithEmpty(w, http.StatusInternalServerError)
	}
}

// decodeDocument parses a single JSON value, keeping numbers as json.Number so
// large integers are stored exactly.
func decodeDocument(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	return raw, nil
}

func parseHistoryQuery(r *http.Request) (models.HistoryQuery, []string) {
	var (
		q        models.HistoryQuery
		problems []string
	)
	query := r.URL.Query()

	if s := query.Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			problems = append(problems, "from must be an RFC3339 time")
		}
		q.From = t
	}
	if s := query.Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			problems = append(problems, "to must be an RFC3339 time")
		}
		q.To = t
	}
	if s := query.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > models.MaxHistoryLimit {
			problems = append(problems, "limit must be an integer between 1 and "+strconv.Itoa(models.MaxHistoryLimit))
		}
		q.Limit = n
	}
	return q, problems
}
