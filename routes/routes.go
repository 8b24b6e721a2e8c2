package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "p9e.in/aquaentry/docs"
	"p9e.in/aquaentry/handlers"
	"p9e.in/aquaentry/metrics"
	"p9e.in/aquaentry/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(h *handlers.Handlers, uploadDir string) http.Handler {
	metrics.Init()
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))),
	)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/swagger/doc.json", serveSwaggerDoc).Methods("GET")

	// =====================================================
	// Data-entry page endpoints (JSON errors)
	// =====================================================
	r.Handle("/submit", middleware.JSONAuthMiddleware(http.HandlerFunc(h.Submit))).Methods("POST")
	r.Handle("/api/sensor_data", middleware.JSONAuthMiddleware(http.HandlerFunc(h.SensorData))).Methods("GET")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", h.Profile).Methods("GET")
	api.HandleFunc("/samples", h.ListSamples).Methods("GET")
	api.HandleFunc("/samples/export", h.ExportSamplesXLSX).Methods("GET")
	api.HandleFunc("/samples/geojson", h.SamplesGeoJSON).Methods("GET")

	return r
}
