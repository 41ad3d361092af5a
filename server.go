package yoloset

// JSON HTTP surface for the interactive UI.

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Server exposes the converter, estimator and quality checker to the interactive UI. All
// endpoints accept and return JSON; paths are resolved on the host the server runs on.
type Server struct {
	addr   string
	router *mux.Router
}

// NewServer creates a Server listening on addr.
func NewServer(addr string) *Server {
	s := &Server{addr: addr, router: mux.NewRouter()}

	s.router.HandleFunc("/api/convert", s.handleConvert).Methods("POST")
	s.router.HandleFunc("/api/estimate", s.handleEstimate).Methods("POST")
	s.router.HandleFunc("/api/quality", s.handleQuality).Methods("POST")
	s.router.HandleFunc("/api/validate", s.handleValidate).Methods("POST")
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	return s
}

// Run starts the server and blocks until it fails.
func (s *Server) Run() error {
	srv := &http.Server{
		Handler:      s.router,
		Addr:         s.addr,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Minute, // Conversions of large datasets take a while.
	}

	log.Printf("Starting server on %s", s.addr)
	return srv.ListenAndServe()
}

// Handler returns the route handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Code: code, Message: message})
}

func sendJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var opts Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		sendError(w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	report, err := Convert(opts)
	if err != nil {
		if _, ok := err.(*ConfigError); ok {
			sendError(w, "invalid_config", err.Error(), http.StatusBadRequest)
		} else {
			sendError(w, "conversion_failed", err.Error(), http.StatusInternalServerError)
		}
		return
	}

	sendJSON(w, report)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InputDir       string `json:"inputDir"`
		TargetAccuracy int    `json:"targetAccuracy"`
		ImageSize      int    `json:"imageSize"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}
	if req.TargetAccuracy == 0 {
		req.TargetAccuracy = 70
	}
	if req.ImageSize == 0 {
		req.ImageSize = 640
	}

	est, err := EstimateDataset(req.InputDir, req.TargetAccuracy, req.ImageSize)
	if err != nil {
		if _, ok := err.(*ConfigError); ok {
			sendError(w, "invalid_config", err.Error(), http.StatusBadRequest)
		} else {
			sendError(w, "estimation_failed", err.Error(), http.StatusInternalServerError)
		}
		return
	}

	sendJSON(w, est)
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InputDir string `json:"inputDir"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	report, err := CheckDatasetQuality(req.InputDir, DefaultQualityThresholds())
	if err != nil {
		sendError(w, "invalid_config", err.Error(), http.StatusBadRequest)
		return
	}

	sendJSON(w, report)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DatasetDir string `json:"datasetDir"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	sendJSON(w, ValidateDataset(req.DatasetDir, nil))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, map[string]string{"status": "ok"})
}
