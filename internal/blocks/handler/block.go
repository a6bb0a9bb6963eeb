package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"staybook/internal/blocks/service"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/model"
)

type BlockHandler struct {
	service service.BlockService
	logger  *logger.Logger
}

func NewBlockHandler(svc service.BlockService, log *logger.Logger) *BlockHandler {
	return &BlockHandler{
		service: svc,
		logger:  log,
	}
}

func (h *BlockHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/properties/:propertyId/blocks", h.Create)
	router.PUT("/api/properties/:propertyId/blocks/:blockId", h.Update)
	router.DELETE("/api/properties/:propertyId/blocks/:blockId", h.Cancel)
}

func (h *BlockHandler) Create(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	propertyID := params.ByName("propertyId")

	var req model.BlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	block, err := h.service.Create(r.Context(), propertyID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, block); err != nil {
		h.logger.Error("Failed to write block response", "error", err)
	}
}

func (h *BlockHandler) Update(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	propertyID := params.ByName("propertyId")
	blockID := params.ByName("blockId")

	var req model.BlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Update(r.Context(), propertyID, blockID, &req); err != nil {
		h.writeError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BlockHandler) Cancel(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	propertyID := params.ByName("propertyId")
	blockID := params.ByName("blockId")

	if err := h.service.Cancel(r.Context(), propertyID, blockID); err != nil {
		h.writeError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BlockHandler) writeError(w http.ResponseWriter, err error) {
	if werr := httputil.WriteError(w, err); werr != nil {
		h.logger.Error("Failed to write error response", "error", werr)
	}
}
