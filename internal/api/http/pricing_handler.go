package http

import (
	"encoding/json"
	"net/http"
	"time"

	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/repository"
	"runnerly-backend/internal/service"
)

type PricingHandler struct {
	pricing  *service.PricingEngine
	ruleRepo repository.PricingRuleRepository
}

func NewPricingHandler(pricing *service.PricingEngine, ruleRepo repository.PricingRuleRepository) *PricingHandler {
	return &PricingHandler{pricing: pricing, ruleRepo: ruleRepo}
}

type quoteRequest struct {
	ServiceType    string  `json:"service_type"`
	DistanceKm     float64 `json:"distance_km"`
	Hours          int32   `json:"hours"`
	SelectedAddons []int32 `json:"selected_addons,omitempty"`
	PreferredTime  string  `json:"preferred_time,omitempty"` // RFC 3339
}

func (h *PricingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	preferred := time.Now()
	if req.PreferredTime != "" {
		t, err := time.Parse(time.RFC3339, req.PreferredTime)
		if err != nil {
			writeError(w, &domain.ValidationError{Field: "preferred_time", Message: "must be RFC 3339"})
			return
		}
		preferred = t
	}

	rules, err := h.ruleRepo.ListActive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := service.ValidateRules(rules); err != nil {
		writeError(w, err)
		return
	}

	bd, err := h.pricing.ComputeQuote(service.QuoteRequest{
		ServiceType:     req.ServiceType,
		DistanceKm:      req.DistanceKm,
		Hours:           req.Hours,
		SelectedRuleIDs: req.SelectedAddons,
		PreferredTime:   preferred,
	}, rules)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bd)
}
