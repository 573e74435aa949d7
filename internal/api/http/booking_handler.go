package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/service"
)

type BookingHandler struct {
	bookingSvc service.BookingService
	compSvc    service.CompensationService
}

func NewBookingHandler(bookingSvc service.BookingService, compSvc service.CompensationService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc, compSvc: compSvc}
}

type createBookingRequest struct {
	ServiceType     string  `json:"service_type"`
	DistanceKm      float64 `json:"distance_km"`
	Hours           int32   `json:"hours"`
	ScheduledStart  string  `json:"scheduled_start,omitempty"` // RFC 3339
	SelectedAddons  []int32 `json:"selected_addons,omitempty"`
	CustomerEmail   string  `json:"customer_email"`
	CustomerPhone   string  `json:"customer_phone"`
	CustomerName    string  `json:"customer_name"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	var scheduled *time.Time
	if req.ScheduledStart != "" {
		t, err := time.Parse(time.RFC3339, req.ScheduledStart)
		if err != nil {
			writeError(w, &domain.ValidationError{Field: "scheduled_start", Message: "must be RFC 3339"})
			return
		}
		scheduled = &t
	}

	b, err := h.bookingSvc.CreateBooking(r.Context(), service.CreateBookingRequest{
		ServiceType:     req.ServiceType,
		DistanceKm:      req.DistanceKm,
		Hours:           req.Hours,
		ScheduledStart:  scheduled,
		SelectedRuleIDs: req.SelectedAddons,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerName:    req.CustomerName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b, err := h.bookingSvc.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := actorFromContext(r.Context())
	status := r.URL.Query().Get("status")
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)

	var (
		bookings []domain.Booking
		total    int32
		err      error
	)
	if claims.HasRole(string(domain.UserRoleRunner)) {
		bookings, total, err = h.bookingSvc.ListByRunner(r.Context(), claims.UserID, status, page, pageSize)
	} else {
		bookings, total, err = h.bookingSvc.ListByCustomer(r.Context(), claims.Email, status, page, pageSize)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"total":    total,
	})
}

type transitionRequest struct {
	NewStatus string `json:"new_status"`
	Reason    string `json:"reason,omitempty"`
}

type transitionResponse struct {
	BookingID string `json:"booking_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

func (h *BookingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	claims := actorFromContext(r.Context())

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	res, err := h.bookingSvc.Transition(r.Context(), id, domain.BookingStatus(req.NewStatus), claims.Actor(), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{
		BookingID: res.Booking.ID,
		OldStatus: string(res.OldStatus),
		NewStatus: string(res.NewStatus),
	})
}

type cancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Cancel is the customer self-service cancellation, governed by the
// time-to-start policy.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	claims := actorFromContext(r.Context())

	var req cancelRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	comp, err := h.compSvc.SelfServiceCancellation(r.Context(), id, claims.Actor(), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"booking_id":   id,
		"status":       domain.BookingStatusCancelled,
		"compensation": comp,
	})
}

// ReviewCancellation is the operator cancellation, governed by the
// status-based payout policy.
func (h *BookingHandler) ReviewCancellation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	claims := actorFromContext(r.Context())
	if !claims.HasRole(string(domain.UserRoleAdmin)) {
		writeError(w, domain.ErrUnauthorized)
		return
	}

	var req cancelRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	comp, err := h.compSvc.ReviewedCancellation(r.Context(), id, claims.Actor(), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"booking_id":   id,
		"status":       domain.BookingStatusCancelled,
		"compensation": comp,
	})
}

func (h *BookingHandler) GetCompensation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	comp, err := h.compSvc.GetCompensation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comp)
}

func queryInt32(r *http.Request, key string, def int32) int32 {
	val := r.URL.Query().Get(key)
	if val == "" {
		return def
	}
	n, err := strconv.ParseInt(val, 10, 32)
	if err != nil || n <= 0 {
		return def
	}
	return int32(n)
}
