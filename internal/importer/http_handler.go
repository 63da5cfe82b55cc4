package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rpattn/fleetledger/internal/repository"

	"github.com/sirupsen/logrus"
)

// Handler exposes the import pipeline as an HTTP endpoint.
type Handler struct {
	drivers  repository.DriverRepository
	vehicles repository.VehicleRepository
	entries  repository.ShiftEntryRepository
	logs     repository.ImportLogRepository
	defaults SessionConfig
	logger   logrus.FieldLogger
}

// NewHTTPHandler wires the import endpoint. defaults supplies the
// session settings a request does not override.
func NewHTTPHandler(
	drivers repository.DriverRepository,
	vehicles repository.VehicleRepository,
	entries repository.ShiftEntryRepository,
	logs repository.ImportLogRepository,
	defaults SessionConfig,
	logger logrus.FieldLogger,
) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		drivers:  drivers,
		vehicles: vehicles,
		entries:  entries,
		logs:     logs,
		defaults: defaults,
		logger:   logger,
	}
}

// ServeHTTP accepts a multipart POST with the file under "file" and an
// optional "dateOrder" field, runs the import, and returns the summary.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return
	}

	cfg := h.defaults
	cfg.FileName = header.Filename

	if raw := strings.TrimSpace(r.FormValue("dateOrder")); raw != "" {
		order, err := ParseDateOrder(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cfg.DateOrder = order
	}

	orchestrator := NewOrchestrator(h.drivers, h.vehicles, h.entries, h.logs, h.logger)
	summary, err := orchestrator.Run(r.Context(), payload, cfg, nil)
	if err != nil {
		var mappingErr *MappingError
		if errors.As(err, &mappingErr) {
			writeJSON(w, http.StatusUnprocessableEntity, summary)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// LogsHandler lists persisted import issues for a file.
type LogsHandler struct {
	logs repository.ImportLogRepository
}

// NewLogsHandler wraps the import log repository with a GET endpoint.
func NewLogsHandler(logs repository.ImportLogRepository) *LogsHandler {
	return &LogsHandler{logs: logs}
}

func (h *LogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fileName := strings.TrimSpace(r.URL.Query().Get("file"))
	if fileName == "" {
		http.Error(w, "file query parameter is required", http.StatusBadRequest)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.logs.List(r.Context(), fileName, limit, offset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
