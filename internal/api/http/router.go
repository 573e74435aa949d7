package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"runnerly-backend/internal/security"
)

// NewRouter assembles the API routes. Every booking route requires an
// authenticated actor.
func NewRouter(
	tokens security.TokenManager,
	bookings *BookingHandler,
	negotiation *NegotiationHandler,
	pricing *PricingHandler,
) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tokens))

	api.HandleFunc("/bookings", bookings.Create).Methods(http.MethodPost)
	api.HandleFunc("/bookings", bookings.List).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}", bookings.Get).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/transition", bookings.Transition).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/cancel", bookings.Cancel).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/compensation", bookings.ReviewCancellation).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/compensation", bookings.GetCompensation).Methods(http.MethodGet)

	api.HandleFunc("/bookings/{id}/negotiation/offer", negotiation.SubmitOffer).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/negotiation/accept", negotiation.AcceptOffer).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/negotiation/counter", negotiation.CounterOffer).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/negotiation/reject", negotiation.RejectOffer).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/negotiation/accept-counter", negotiation.AcceptCounter).Methods(http.MethodPost)

	api.HandleFunc("/pricing/quote", pricing.Quote).Methods(http.MethodPost)

	return r
}
