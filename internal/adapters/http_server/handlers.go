// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"litebook/internal/app"
	"litebook/internal/domain"
)

// Pinger reports store liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Booking   *app.BookingService
	Reconcile *app.ReconcileService
	Location  *app.LocationService
	Provider  domain.BookingProvider
	Store     Pinger

	Env         string
	Currency    string
	CountryCode string
	Nationality string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/health", h.health)

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/cities", h.searchCities)

		r.Get("/location", h.getLocation)
		r.Put("/location", h.putLocation)
		r.Delete("/location", h.deleteLocation)
		r.Post("/location/skip", h.skipLocation)

		r.Get("/hotels", h.searchHotels)
		r.Get("/hotels/{id}", h.getHotel)
		r.Post("/rates", h.searchRates)

		r.Post("/bookings/prebook", h.prebook)
		r.Get("/bookings/confirmation", h.confirmation)
		r.Get("/bookings", h.listBookings)
		r.Get("/bookings/{id}", h.getBooking)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeErr maps domain errors onto problem responses.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidBookingData):
		writeProblem(w, http.StatusBadRequest, "Invalid Booking Data", err.Error())
	case errors.Is(err, domain.ErrInvalidCity):
		writeProblem(w, http.StatusBadRequest, "Invalid City", "city must not be empty")
	case errors.Is(err, domain.ErrInvalidOffer):
		writeProblem(w, http.StatusGone, "Offer Expired", "the selected rate is no longer available, search again")
	case errors.Is(err, domain.ErrNoPendingBooking):
		writeProblem(w, http.StatusNotFound, "No Pending Booking", "no booking attempt to resume")
	case errors.Is(err, domain.ErrPaymentFailed):
		writeProblem(w, http.StatusPaymentRequired, "Payment Failed", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeProblem(w, http.StatusTooManyRequests, "Rate Limited", "try again shortly")
	case errors.Is(err, domain.ErrProviderUnavailable):
		writeProblem(w, http.StatusBadGateway, "Provider Unavailable", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeProblem(w, http.StatusServiceUnavailable, "Request Aborted", "request canceled or timed out")
	default:
		writeProblem(w, http.StatusInternalServerError, "Internal Error", err.Error())
	}
}

// ---- health ----

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	db := "Connected"
	ok := true
	if err := h.Store.Ping(r.Context()); err != nil {
		db = "Disconnected"
		ok = false
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"success":     ok,
		"message":     "Server is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.Env,
		"database":    db,
	})
}

// ---- cities / location ----

func (h *Handlers) searchCities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusOK, map[string]any{"cities": h.Location.PopularCities(10)})
		return
	}
	cities, err := h.Location.SearchCities(r.Context(), q)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cities": cities})
}

func (h *Handlers) getLocation(w http.ResponseWriter, r *http.Request) {
	st, err := h.Location.Status(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handlers) putLocation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected {\"city\": ...}")
		return
	}
	pref, err := h.Location.SelectCity(r.Context(), body.City)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

func (h *Handlers) deleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.Location.Clear(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) skipLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.Location.Skip(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- hotels / rates (thin pass-through to the provider) ----

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Parameter", "city is required")
		return
	}
	country := r.URL.Query().Get("country")
	if country == "" {
		country = h.CountryCode
	}
	hotels, err := h.Provider.SearchHotels(r.Context(), country, city)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hotels": hotels})
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.Provider.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}

	etag, body := calcETagAndBody(hotel)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write hotel body")
	}
}

func (h *Handlers) searchRates(w http.ResponseWriter, r *http.Request) {
	var q domain.RateQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed rate query")
		return
	}
	if q.CheckIn == "" || q.CheckOut == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Parameter", "checkin and checkout are required")
		return
	}
	if q.Currency == "" {
		q.Currency = h.Currency
	}
	if q.GuestNationality == "" {
		q.GuestNationality = h.Nationality
	}
	if len(q.Occupancies) == 0 {
		q.Occupancies = []domain.Occupancy{{Adults: 2}}
	}
	rates, err := h.Provider.SearchRates(r.Context(), q)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rates": rates})
}

// ---- bookings ----

func (h *Handlers) prebook(w http.ResponseWriter, r *http.Request) {
	var draft domain.BookingDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed booking draft")
		return
	}
	persisted, payment, err := h.Booking.StartPrebook(r.Context(), draft)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"booking": persisted,
		"payment": payment,
	})
}

// confirmation is the payment widget's redirect target. Query parameters
// carry the payment outcome; the pending draft carries everything else.
func (h *Handlers) confirmation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := domain.RedirectResult{
		PaymentIntent: q.Get("payment_intent"),
		ClientSecret:  q.Get("payment_intent_client_secret"),
		Status:        q.Get("redirect_status"),
	}
	rec, err := h.Booking.CompleteRedirect(r.Context(), res)
	if err != nil {
		writeErr(w, err)
		return
	}
	if rec.BookingID != "" && rec.BookingID != domain.BookingIDPending {
		h.Reconcile.ScheduleRefresh(rec.BookingID)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"booking": rec,
		"pending": rec.APIError,
	})
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("local") == "true" {
		hist, err := h.Booking.History(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": hist, "synced": false})
		return
	}
	hist, synced, err := h.Reconcile.ReconcileHistory(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": hist, "synced": synced})
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.Reconcile.ReconcileBooking(r.Context(), id)
	if err == nil {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	if !errors.Is(err, domain.ErrNotFound) {
		writeErr(w, err)
		return
	}
	// Not in local history; ask the provider directly and shape the
	// payload like every other record on this surface.
	pb, perr := h.Provider.GetBooking(r.Context(), id)
	if perr != nil {
		writeErr(w, perr)
		return
	}
	writeJSON(w, http.StatusOK, h.Reconcile.Synthesize(pb))
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}
