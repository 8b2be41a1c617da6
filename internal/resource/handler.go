package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	errors "github.com/frahmantamala/resource-directory/internal"
	"github.com/frahmantamala/resource-directory/internal/transport"
	"github.com/frahmantamala/resource-directory/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetAllResources() ([]Resource, error)
	QueryResources(query GridQuery) (*PagedResult, error)
	GetResourceByID(empID int64) (*Details, error)
	CreateResource(ctx context.Context, input *Input) (int64, error)
	UpdateResource(input *Input) error
	DeleteResource(empID int64) error
	DeleteResources(empIDs []int64) error
	GetStatistics() (*Statistics, error)
	CheckEmailExists(email string) (bool, error)
	BulkCreateResources(ctx context.Context, inputs []Input) (int, error)
	BulkUpdateResources(ctx context.Context, patch *BulkPatch) (int64, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

// QueryResources answers a grid query: filters, sorts and a page window.
func (h *Handler) QueryResources(w http.ResponseWriter, r *http.Request) {
	var query GridQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		h.Logger.Error("QueryResources: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.QueryResources(query)
	if err != nil {
		h.handleServiceError(w, err, "QueryResources")
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetAllResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.Service.GetAllResources()
	if err != nil {
		h.handleServiceError(w, err, "GetAllResources")
		return
	}

	h.WriteJSON(w, http.StatusOK, resources)
}

func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	empID, ok := h.empIDParam(w, r)
	if !ok {
		return
	}

	details, err := h.Service.GetResourceByID(empID)
	if err != nil {
		h.handleServiceError(w, err, "GetResource")
		return
	}

	h.WriteJSON(w, http.StatusOK, details)
}

func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Logger.Error("CreateResource: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	empID, err := h.Service.CreateResource(r.Context(), &input)
	if err != nil {
		h.handleServiceError(w, err, "CreateResource")
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]int64{"empId": empID})
}

func (h *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	empID, ok := h.empIDParam(w, r)
	if !ok {
		return
	}

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.Logger.Error("UpdateResource: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input.EmpID = &empID

	if err := h.Service.UpdateResource(&input); err != nil {
		h.handleServiceError(w, err, "UpdateResource")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	empID, ok := h.empIDParam(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteResource(empID); err != nil {
		h.handleServiceError(w, err, "DeleteResource")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// DeleteResources removes every resource named in the ids query parameter, a
// comma-separated emp id list.
func (h *Handler) DeleteResources(w http.ResponseWriter, r *http.Request) {
	idsParam := r.URL.Query().Get("ids")
	empIDs, err := parseIDList(idsParam)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid ids parameter")
		return
	}

	if err := h.Service.DeleteResources(empIDs); err != nil {
		h.handleServiceError(w, err, "DeleteResources")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetStatistics()
	if err != nil {
		h.handleServiceError(w, err, "GetStatistics")
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) CheckEmailExists(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if strings.TrimSpace(email) == "" {
		h.WriteError(w, http.StatusBadRequest, "email parameter is required")
		return
	}

	exists, err := h.Service.CheckEmailExists(email)
	if err != nil {
		h.handleServiceError(w, err, "CheckEmailExists")
		return
	}

	h.WriteJSON(w, http.StatusOK, EmailExistsResponse{Email: email, Exists: exists})
}

// BulkCreateResources imports a batch of submissions; the whole batch commits
// or none of it does.
func (h *Handler) BulkCreateResources(w http.ResponseWriter, r *http.Request) {
	var inputs []Input
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		h.Logger.Error("BulkCreateResources: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.BulkCreateResources(r.Context(), inputs)
	if err != nil {
		h.handleServiceError(w, err, "BulkCreateResources")
		return
	}

	h.WriteJSON(w, http.StatusCreated, BulkCreateResponse{CreatedCount: created})
}

// BulkUpdateResources applies one sparse patch to a target id set. When the
// patch carries skill or project lists, each target's association set is
// replaced outright with the patch's list.
func (h *Handler) BulkUpdateResources(w http.ResponseWriter, r *http.Request) {
	var patch BulkPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.Logger.Error("BulkUpdateResources: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.BulkUpdateResources(r.Context(), &patch)
	if err != nil {
		h.handleServiceError(w, err, "BulkUpdateResources")
		return
	}

	h.WriteJSON(w, http.StatusOK, BulkUpdateResponse{UpdatedCount: updated})
}

func (h *Handler) empIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	empID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid resource ID")
		return 0, false
	}
	return empID, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error, op string) {
	h.Logger.Error(op+": service error", "error", err)
	h.HandleServiceError(w, ToAppError(err))
}

// ToAppError translates domain sentinels into the shared error taxonomy so
// every handler answers with the same envelope and status mapping. Errors
// outside the taxonomy become a generic internal error; the cause stays in
// the logs and never reaches the client.
func ToAppError(err error) error {
	switch err {
	case ErrResourceNotFound:
		return errors.NewNotFoundError("resource not found", errors.ErrCodeResourceNotFound)
	case ErrDuplicateEmail:
		return errors.NewConflictError(err.Error(), errors.ErrCodeDuplicateEmail)
	case ErrEmptyBatch:
		return errors.NewValidationError(err.Error(), errors.ErrCodeEmptyBatch)
	case ErrEmptyTargetSet:
		return errors.NewValidationError(err.Error(), errors.ErrCodeEmptyTargetSet)
	}
	if _, ok := err.(ValidationError); ok {
		return errors.NewValidationError(err.Error(), errors.ErrCodeValidationFailed)
	}
	return errors.NewInternalError("request failed", err)
}

func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
