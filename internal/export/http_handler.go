package export

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rpattn/fleetledger/internal/repository"

	"github.com/google/uuid"
)

// Handler serves shift entry exports over HTTP.
type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

// ServeHTTP handles GET ?driver=<uuid> and streams the CSV as an
// attachment.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("driver"))
	if raw == "" {
		http.Error(w, "driver is required", http.StatusBadRequest)
		return
	}
	driverID, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid driver: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "shifts-"+driverID.String()+".csv"))

	if _, err := h.service.ExportDriverEntries(r.Context(), w, driverID); err != nil {
		// The driver lookup runs before any row is written, so a miss
		// still gets a clean status. Mid-stream failures truncate the
		// body instead.
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "driver not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("export failed: %v", err), http.StatusInternalServerError)
	}
}
