package importer

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/resource-directory/internal/resource"
	"github.com/frahmantamala/resource-directory/internal/transport"
	"github.com/frahmantamala/resource-directory/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type Handler struct {
	*transport.BaseHandler
	Importer *Importer
}

func NewHandler(imp *Importer) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Importer:    imp,
	}
}

// SubmitImport accepts the same batch body as the synchronous bulk endpoint
// but queues it and responds 202 with a job id.
func (h *Handler) SubmitImport(w http.ResponseWriter, r *http.Request) {
	var inputs []resource.Input
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload, err := resource.BuildBulkCreatePayload(inputs)
	if err != nil {
		h.Logger.Error("SubmitImport: rejected batch", "error", err)
		h.HandleServiceError(w, resource.ToAppError(err))
		return
	}

	jobID, err := h.Importer.Submit(payload)
	if err != nil {
		h.WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	h.WriteJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID.String()})
}

// GetImportStatus reports progress for a queued batch.
func (h *Handler) GetImportStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	state, ok := h.Importer.JobStatus(jobID)
	if !ok {
		h.WriteError(w, http.StatusNotFound, "import job not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, state)
}
