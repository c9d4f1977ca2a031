package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"litebook/internal/adapters/observability"
	"litebook/internal/domain"
)

// BookingService drives the prebook -> payment widget -> finalize flow.
// The critical property is durability: the draft is persisted before the
// payment handoff, and payment money is never silently dropped afterwards.
type BookingService struct {
	provider domain.BookingProvider
	store    domain.Store
	payment  domain.PaymentConfig // ScriptURL/PublicKey/ReturnURL template
	now      func() time.Time
}

func NewBookingService(p domain.BookingProvider, st domain.Store, payment domain.PaymentConfig) *BookingService {
	return &BookingService{provider: p, store: st, payment: payment, now: time.Now}
}

// StartPrebook places a hold on the offer and persists the draft under the
// pending-booking key. The draft write happens before anything is returned:
// once the caller hands control to the payment widget the process may not
// survive, and the draft is the only record of the attempt.
func (s *BookingService) StartPrebook(ctx context.Context, draft domain.BookingDraft) (domain.BookingDraft, domain.PaymentConfig, error) {
	if draft.OfferID == "" {
		return domain.BookingDraft{}, domain.PaymentConfig{}, fmt.Errorf("%w: missing offerId", domain.ErrInvalidBookingData)
	}

	sess, err := s.provider.Prebook(ctx, draft.OfferID)
	if err != nil {
		return domain.BookingDraft{}, domain.PaymentConfig{}, err
	}

	draft.AttemptID = uuid.NewString()
	draft.State = domain.StateAwaitingPayment
	draft.PrebookID = sess.PrebookID
	draft.TransactionID = sess.TransactionID
	draft.SessionID = sess.SessionID

	if err := s.store.Set(ctx, domain.KeyPendingBooking, draft); err != nil {
		return domain.BookingDraft{}, domain.PaymentConfig{}, fmt.Errorf("persist pending booking: %w", err)
	}
	observability.ObserveBooking("prebook")

	cfg := s.payment
	cfg.SecretKey = sess.SecretKey
	return draft, cfg, nil
}

// CompleteRedirect finishes the attempt after the payment widget redirects
// back. Redirect status "succeeded" finalizes the booking; anything else is
// the one fatal path, since an unrecognized status means nothing was
// charged.
//
// A provider failure after a successful charge is NOT fatal: the paid
// attempt degrades into a pending-confirmation record so reconciliation can
// repair it later.
func (s *BookingService) CompleteRedirect(ctx context.Context, res domain.RedirectResult) (domain.ConfirmedBooking, error) {
	if res.Status != domain.RedirectSucceeded {
		observability.ObserveBooking("payment_failed")
		_ = s.store.Del(ctx, domain.KeyPendingBooking)
		return domain.ConfirmedBooking{}, fmt.Errorf("%w: redirect status %q", domain.ErrPaymentFailed, res.Status)
	}

	var draft domain.BookingDraft
	ok, err := s.store.Get(ctx, domain.KeyPendingBooking, &draft)
	if err != nil {
		return domain.ConfirmedBooking{}, err
	}
	if !ok {
		return domain.ConfirmedBooking{}, domain.ErrNoPendingBooking
	}

	// Local pre-flight. Failing here costs nothing upstream.
	if err := validateDraft(draft); err != nil {
		return domain.ConfirmedBooking{}, err
	}

	draft.State = domain.StateFinalizing
	if err := s.store.Set(ctx, domain.KeyPendingBooking, draft); err != nil {
		log.Warn().Err(err).Msg("persist finalizing state failed")
	}

	pb, bookErr := s.provider.Book(ctx, domain.BookingRequest{
		PrebookID:     draft.PrebookID,
		Holder:        draft.Holder,
		Guests:        draft.Guests,
		TransactionID: draft.TransactionID,
	})

	var rec domain.ConfirmedBooking
	switch {
	case bookErr != nil || pb.BookingID == "":
		// Payment went through but the provider call did not produce a
		// booking id. The money is real; record it as pending.
		rec = s.confirmedFromDraft(draft, res)
		rec.BookingID = domain.BookingIDPending
		rec.Status = domain.StatusPaymentReceived
		rec.APIError = true
		observability.ObserveBooking("degraded")
		log.Error().Err(bookErr).Str("prebookId", draft.PrebookID).Msg("finalize booking failed, recording pending confirmation")

	default:
		rec = s.confirmedFromDraft(draft, res)
		rec.BookingID = pb.BookingID
		rec.Status = pb.Status
		if rec.Status == "" {
			rec.Status = domain.StatusConfirmed
		}
		rec.ConfirmationNumber = pb.ConfirmationNumber
		applyProvider(&rec, pb)
		observability.ObserveBooking("confirmed")
	}

	if err := s.prependHistory(ctx, rec); err != nil {
		// Keep the draft: dropping both would lose the paid attempt.
		return rec, fmt.Errorf("persist booking history: %w", err)
	}
	if err := s.store.Del(ctx, domain.KeyPendingBooking); err != nil {
		log.Warn().Err(err).Msg("clear pending booking failed")
	}
	return rec, nil
}

// History returns the locally persisted booking records, newest first.
func (s *BookingService) History(ctx context.Context) ([]domain.ConfirmedBooking, error) {
	var hist []domain.ConfirmedBooking
	if _, err := s.store.Get(ctx, domain.KeyBookingHistory, &hist); err != nil {
		return nil, err
	}
	if hist == nil {
		hist = []domain.ConfirmedBooking{}
	}
	return hist, nil
}

func (s *BookingService) prependHistory(ctx context.Context, rec domain.ConfirmedBooking) error {
	hist, err := s.History(ctx)
	if err != nil {
		return err
	}
	hist = append([]domain.ConfirmedBooking{rec}, hist...)
	return s.store.Set(ctx, domain.KeyBookingHistory, hist)
}

func (s *BookingService) confirmedFromDraft(d domain.BookingDraft, res domain.RedirectResult) domain.ConfirmedBooking {
	return domain.ConfirmedBooking{
		HotelID:   d.HotelID,
		HotelName: d.HotelName,
		RoomName:  d.RoomName,
		BoardName: d.BoardName,

		TotalPrice: d.TotalPrice,
		Currency:   d.Currency,
		Commission: d.Commission,

		AdultCount: d.AdultCount,
		ChildCount: d.ChildCount,
		Nights:     d.Nights,
		CheckIn:    d.CheckIn,
		CheckOut:   d.CheckOut,

		Holder: d.Holder,
		Guests: d.Guests,

		PaymentIntent: res.PaymentIntent,
		PaymentStatus: res.Status,
		TransactionID: d.TransactionID,

		CancellationPolicies: d.CancellationPolicies,

		BookedAt: s.now().UTC().Format(time.RFC3339),
	}
}

// applyProvider copies provider-sourced enrichment onto a fresh record.
// Zero-valued provider fields never overwrite the draft snapshot.
func applyProvider(rec *domain.ConfirmedBooking, pb domain.ProviderBooking) {
	if pb.HotelID != "" {
		rec.HotelID = pb.HotelID
	}
	if pb.HotelName != "" {
		rec.HotelName = pb.HotelName
	}
	if pb.HotelAddress != "" {
		rec.HotelAddress = pb.HotelAddress
	}
	if pb.HotelCity != "" {
		rec.HotelCity = pb.HotelCity
	}
	if pb.HotelCountry != "" {
		rec.HotelCountry = pb.HotelCountry
	}
	if pb.HotelPhone != "" {
		rec.HotelPhone = pb.HotelPhone
	}
	if pb.RoomName != "" {
		rec.RoomName = pb.RoomName
	}
	if pb.BoardName != "" {
		rec.BoardName = pb.BoardName
	}
	if pb.Price > 0 {
		rec.TotalPrice = pb.Price
	}
	if pb.Currency != "" {
		rec.Currency = pb.Currency
	}
	if pb.CheckIn != "" {
		rec.CheckIn = pb.CheckIn
	}
	if pb.CheckOut != "" {
		rec.CheckOut = pb.CheckOut
	}
	if pb.CheckInTime != "" {
		rec.CheckInTime = pb.CheckInTime
	}
	if pb.CheckOutTime != "" {
		rec.CheckOutTime = pb.CheckOutTime
	}
}

func validateDraft(d domain.BookingDraft) error {
	if d.PrebookID == "" {
		return fmt.Errorf("%w: missing prebookId", domain.ErrInvalidBookingData)
	}
	if d.TransactionID == "" {
		return fmt.Errorf("%w: missing transactionId", domain.ErrInvalidBookingData)
	}
	if !d.Holder.Complete() {
		return fmt.Errorf("%w: incomplete holder", domain.ErrInvalidBookingData)
	}
	if len(d.Guests) == 0 {
		return fmt.Errorf("%w: no guests", domain.ErrInvalidBookingData)
	}
	for i, g := range d.Guests {
		if !g.Complete() {
			return fmt.Errorf("%w: incomplete guest %d", domain.ErrInvalidBookingData, i+1)
		}
	}
	return nil
}
