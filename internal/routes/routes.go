package routes

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"IotMonitor.api/internal/controller"
	"IotMonitor.api/internal/logging"
	"IotMonitor.api/internal/metrics"
	"IotMonitor.api/internal/middleware"
	"IotMonitor.api/internal/models"
	"IotMonitor.api/internal/utils"
)

// NewRouter registers all application routes and the shared middleware.
func NewRouter(data *controller.DataController, hardware *controller.HardwareController, logger *logging.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		middleware.RequestLogger(logger),
		middleware.Recover(logger),
		metrics.Middleware(routeTemplate),
	)

	// Measurements
	router.HandleFunc("/upload", data.HandleUpload).Methods(http.MethodPost)
	router.HandleFunc("/data", data.HandleData).Methods(http.MethodGet)

	// Hardware
	router.HandleFunc("/hardware", hardware.HandleList).Methods(http.MethodGet)
	router.HandleFunc("/hardware/{id}/relays/{relay}/{method}", hardware.HandleInvoke).Methods(http.MethodPost)
	router.HandleFunc("/hardware/{id}/{method}", hardware.HandleInvoke).Methods(http.MethodPost)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeResourceNotFound, "no route for "+r.URL.Path, nil, http.StatusNotFound))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeMethodNotAllowed, r.Method+" not allowed on "+r.URL.Path, nil, http.StatusMethodNotAllowed))
	})

	return router
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
