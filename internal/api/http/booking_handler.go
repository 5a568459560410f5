package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"mentorhub-backend/internal/domain"
	"mentorhub-backend/internal/logger"
	"mentorhub-backend/internal/service"
)

// BookingHandler exposes the booking, cancellation and availability
// operations over REST
type BookingHandler struct {
	bookings     service.BookingService
	availability service.AvailabilityService
}

func NewBookingHandler(bookings service.BookingService, availability service.AvailabilityService) *BookingHandler {
	return &BookingHandler{bookings: bookings, availability: availability}
}

type bookRequest struct {
	UserID      int32     `json:"user_id"`
	RequestedAt time.Time `json:"requested_at"`
}

func (h *BookingHandler) HandleBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.bookings.Book(r.Context(), req.UserID, req.RequestedAt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *BookingHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 32)
	if err != nil {
		http.Error(w, "Missing user_id parameter", http.StatusBadRequest)
		return
	}

	result, err := h.bookings.Cancel(r.Context(), int32(userID), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *BookingHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 32)
	if err != nil {
		http.Error(w, "Missing user_id parameter", http.StatusBadRequest)
		return
	}

	session, err := h.bookings.GetSession(r.Context(), int32(userID), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *BookingHandler) HandleGetSchedule(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 32)
	if err != nil {
		http.Error(w, "Missing user_id parameter", http.StatusBadRequest)
		return
	}

	schedule, err := h.availability.GetSchedule(r.Context(), int32(userID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func pathID(r *http.Request, name string) (int32, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	return int32(id), err
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeDomainError maps the error taxonomy onto HTTP status codes. A
// denied booking is a well-formed 422 response carrying the reason.
func writeDomainError(w http.ResponseWriter, err error) {
	if reason, ok := domain.DeniedReason(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"denied": string(reason)})
		return
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrConflict):
		http.Error(w, "Conflict", http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidState):
		http.Error(w, "Invalid state", http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrUnavailable):
		http.Error(w, "Temporarily unavailable", http.StatusServiceUnavailable)
	default:
		logger.Error("Unhandled service error", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// RegisterBookingRoutes registers the booking endpoints
func RegisterBookingRoutes(router *mux.Router, bookings service.BookingService, availability service.AvailabilityService) {
	handler := NewBookingHandler(bookings, availability)
	router.HandleFunc("/api/v1/sessions", handler.HandleBook).Methods("POST")
	router.HandleFunc("/api/v1/sessions/{id}", handler.HandleGetSession).Methods("GET")
	router.HandleFunc("/api/v1/sessions/{id}", handler.HandleCancel).Methods("DELETE")
	router.HandleFunc("/api/v1/schedule", handler.HandleGetSchedule).Methods("GET")
}
