package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"staybook/internal/bookings/service"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	logger  *logger.Logger
}

func NewBookingHandler(svc service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: svc,
		logger:  log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/properties/:propertyId/bookings", h.Book)
	router.PUT("/api/properties/:propertyId/bookings/:bookingId", h.Update)
	router.DELETE("/api/properties/:propertyId/bookings/:bookingId", h.Cancel)
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	propertyID := params.ByName("propertyId")

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Book(r.Context(), propertyID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.logger.Error("Failed to write booking response", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	propertyID := params.ByName("propertyId")
	bookingID := params.ByName("bookingId")

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Update(r.Context(), propertyID, bookingID, &req); err != nil {
		h.writeError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	propertyID := params.ByName("propertyId")
	bookingID := params.ByName("bookingId")

	if err := h.service.Cancel(r.Context(), propertyID, bookingID); err != nil {
		h.writeError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, err error) {
	if werr := httputil.WriteError(w, err); werr != nil {
		h.logger.Error("Failed to write error response", "error", werr)
	}
}
