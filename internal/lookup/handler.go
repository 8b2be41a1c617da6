package lookup

import (
	"net/http"

	errors "github.com/frahmantamala/resource-directory/internal"
	"github.com/frahmantamala/resource-directory/internal/resource"
	"github.com/frahmantamala/resource-directory/internal/transport"
	"github.com/frahmantamala/resource-directory/pkg/logger"
)

type ServiceAPI interface {
	GetDropdowns() (*Dropdowns, error)
	GetRoleOptions() ([]resource.Option, error)
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

func (h *Handler) GetDropdowns(w http.ResponseWriter, r *http.Request) {
	dropdowns, err := h.Service.GetDropdowns()
	if err != nil {
		h.Logger.Error("GetDropdowns: service error", "error", err)
		h.HandleServiceError(w, errors.NewInternalError("failed to fetch dropdown data", err))
		return
	}

	h.WriteJSON(w, http.StatusOK, dropdowns)
}

func (h *Handler) GetRoleOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.Service.GetRoleOptions()
	if err != nil {
		h.Logger.Error("GetRoleOptions: service error", "error", err)
		h.HandleServiceError(w, errors.NewInternalError("failed to fetch role options", err))
		return
	}

	h.WriteJSON(w, http.StatusOK, options)
}
