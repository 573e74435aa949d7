package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/service"
)

type NegotiationHandler struct {
	negotiationSvc service.NegotiationService
}

func NewNegotiationHandler(negotiationSvc service.NegotiationService) *NegotiationHandler {
	return &NegotiationHandler{negotiationSvc: negotiationSvc}
}

type offerRequest struct {
	PriceCents int64  `json:"price_cents"`
	Message    string `json:"message,omitempty"`
}

func (h *NegotiationHandler) SubmitOffer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	claims := actorFromContext(r.Context())

	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	b, err := h.negotiationSvc.SubmitOffer(r.Context(), id, req.PriceCents, claims.Actor())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *NegotiationHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, func(id, actor string) (*domain.Booking, error) {
		return h.negotiationSvc.AcceptOffer(r.Context(), id, actor)
	})
}

func (h *NegotiationHandler) CounterOffer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	claims := actorFromContext(r.Context())
	if !claims.HasRole(string(domain.UserRoleAdmin)) {
		writeError(w, domain.ErrUnauthorized)
		return
	}

	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	b, err := h.negotiationSvc.CounterOffer(r.Context(), id, req.PriceCents, req.Message, claims.Actor())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *NegotiationHandler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, func(id, actor string) (*domain.Booking, error) {
		return h.negotiationSvc.RejectOffer(r.Context(), id, actor)
	})
}

func (h *NegotiationHandler) AcceptCounter(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	claims := actorFromContext(r.Context())

	b, err := h.negotiationSvc.CustomerAcceptsCounter(r.Context(), id, claims.Actor())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *NegotiationHandler) adminAction(w http.ResponseWriter, r *http.Request, fn func(id, actor string) (*domain.Booking, error)) {
	id := mux.Vars(r)["id"]
	claims := actorFromContext(r.Context())
	if !claims.HasRole(string(domain.UserRoleAdmin)) {
		writeError(w, domain.ErrUnauthorized)
		return
	}

	b, err := fn(id, claims.Actor())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
