package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"litebook/internal/domain"
)

// ReconcileService repairs the local booking history against the provider's
// view. Local records are never deleted and never reordered; reconciliation
// only fills in or corrects fields the provider is authoritative for.
type ReconcileService struct {
	provider domain.BookingProvider
	store    domain.Store
	delay    time.Duration
	now      func() time.Time
}

func NewReconcileService(p domain.BookingProvider, st domain.Store, delay time.Duration) *ReconcileService {
	return &ReconcileService{provider: p, store: st, delay: delay, now: time.Now}
}

// ReconcileBooking re-fetches one booking and merges the provider's answer
// into the stored record in place. A provider failure leaves the local
// record untouched and is not an error: stale beats gone.
func (s *ReconcileService) ReconcileBooking(ctx context.Context, bookingID string) (domain.ConfirmedBooking, error) {
	hist, err := s.history(ctx)
	if err != nil {
		return domain.ConfirmedBooking{}, err
	}
	idx := -1
	for i, b := range hist {
		if b.BookingID == bookingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ConfirmedBooking{}, domain.ErrNotFound
	}
	local := hist[idx]

	remote, err := s.provider.GetBooking(ctx, bookingID)
	if err != nil {
		log.Warn().Err(err).Str("bookingId", bookingID).Msg("reconcile fetch failed, keeping local record")
		return local, nil
	}

	merged := MergeBooking(local, remote)
	hist[idx] = merged
	if err := s.store.Set(ctx, domain.KeyBookingHistory, hist); err != nil {
		return local, err
	}
	return merged, nil
}

// ScheduleRefresh re-checks a booking once after a delay, detached from the
// request that confirmed it. Covers providers that report a transitional
// status right after booking.
func (s *ReconcileService) ScheduleRefresh(bookingID string) {
	go func() {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		<-t.C
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.ReconcileBooking(ctx, bookingID); err != nil {
			log.Warn().Err(err).Str("bookingId", bookingID).Msg("scheduled refresh failed")
		}
	}()
}

// ReconcileHistory returns the full history merged with the provider's
// booking list. The second return reports whether the provider was reached;
// on failure the local history is returned as-is.
func (s *ReconcileService) ReconcileHistory(ctx context.Context) ([]domain.ConfirmedBooking, bool, error) {
	local, err := s.history(ctx)
	if err != nil {
		return nil, false, err
	}

	remote, err := s.provider.ListBookings(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("booking list fetch failed, serving local history")
		return local, false, nil
	}

	byID := make(map[string]domain.ProviderBooking, len(remote))
	for _, r := range remote {
		if r.BookingID != "" {
			byID[r.BookingID] = r
		}
	}

	merged := make([]domain.ConfirmedBooking, 0, len(local)+len(remote))
	seen := make(map[string]bool, len(local))
	for _, b := range local {
		if r, ok := byID[b.BookingID]; ok {
			seen[b.BookingID] = true
			// Light overlay on the list path: status and confirmation
			// number only, the full merge happens per booking.
			if r.Status != "" {
				b.Status = r.Status
			}
			if r.ConfirmationNumber != "" {
				b.ConfirmationNumber = r.ConfirmationNumber
			}
			b.APIError = false
		}
		merged = append(merged, b)
	}
	for _, r := range remote {
		if r.BookingID == "" || seen[r.BookingID] {
			continue
		}
		merged = append(merged, s.Synthesize(r))
	}

	if err := s.store.Set(ctx, domain.KeyBookingHistory, merged); err != nil {
		log.Warn().Err(err).Msg("persist reconciled history failed")
	}
	return merged, true, nil
}

func (s *ReconcileService) history(ctx context.Context) ([]domain.ConfirmedBooking, error) {
	var hist []domain.ConfirmedBooking
	if _, err := s.store.Get(ctx, domain.KeyBookingHistory, &hist); err != nil {
		return nil, err
	}
	if hist == nil {
		hist = []domain.ConfirmedBooking{}
	}
	return hist, nil
}

// Synthesize builds a displayable record for a booking the provider knows
// about but the local store does not (booked from another device, or a
// history wipe). Fields the provider omits get display defaults.
func (s *ReconcileService) Synthesize(r domain.ProviderBooking) domain.ConfirmedBooking {
	rec := domain.ConfirmedBooking{
		BookingID:          r.BookingID,
		Status:             r.Status,
		ConfirmationNumber: r.ConfirmationNumber,

		HotelID:   r.HotelID,
		HotelName: r.HotelName,
		RoomName:  r.RoomName,
		BoardName: r.BoardName,

		HotelAddress: r.HotelAddress,
		HotelCity:    r.HotelCity,
		HotelCountry: r.HotelCountry,
		HotelPhone:   r.HotelPhone,

		TotalPrice: r.Price,
		Currency:   r.Currency,

		AdultCount:   r.AdultCount,
		ChildCount:   r.ChildCount,
		CheckIn:      r.CheckIn,
		CheckOut:     r.CheckOut,
		CheckInTime:  r.CheckInTime,
		CheckOutTime: r.CheckOutTime,

		PaymentStatus: "succeeded",
		TransactionID: r.TransactionID,
		BookedAt:      r.CreatedAt,
	}
	if rec.Status == "" {
		rec.Status = domain.StatusConfirmed
	}
	if rec.RoomName == "" {
		rec.RoomName = "Standard Room"
	}
	if rec.BoardName == "" {
		rec.BoardName = "Room Only"
	}
	if rec.AdultCount == 0 {
		rec.AdultCount = 2
	}
	if r.Holder != nil {
		rec.Holder = *r.Holder
	}
	rec.Guests = r.Guests
	if rec.BookedAt == "" {
		rec.BookedAt = s.now().UTC().Format(time.RFC3339)
	}
	return rec
}

// MergeBooking folds the provider's record into the local one. The provider
// wins wherever it said something; absent (zero) provider fields preserve
// local data, so merging is idempotent and never destructive.
func MergeBooking(local domain.ConfirmedBooking, remote domain.ProviderBooking) domain.ConfirmedBooking {
	out := local
	if remote.BookingID != "" {
		out.BookingID = remote.BookingID
		out.APIError = false
	}
	if remote.Status != "" {
		out.Status = remote.Status
	}
	if remote.ConfirmationNumber != "" {
		out.ConfirmationNumber = remote.ConfirmationNumber
	}
	if remote.HotelID != "" {
		out.HotelID = remote.HotelID
	}
	if remote.HotelName != "" {
		out.HotelName = remote.HotelName
	}
	if remote.HotelAddress != "" {
		out.HotelAddress = remote.HotelAddress
	}
	if remote.HotelCity != "" {
		out.HotelCity = remote.HotelCity
	}
	if remote.HotelCountry != "" {
		out.HotelCountry = remote.HotelCountry
	}
	if remote.HotelPhone != "" {
		out.HotelPhone = remote.HotelPhone
	}
	if remote.RoomName != "" {
		out.RoomName = remote.RoomName
	}
	if remote.BoardName != "" {
		out.BoardName = remote.BoardName
	}
	if remote.Price > 0 {
		out.TotalPrice = remote.Price
	}
	if remote.Currency != "" {
		out.Currency = remote.Currency
	}
	if remote.CheckIn != "" {
		out.CheckIn = remote.CheckIn
	}
	if remote.CheckOut != "" {
		out.CheckOut = remote.CheckOut
	}
	if remote.CheckInTime != "" {
		out.CheckInTime = remote.CheckInTime
	}
	if remote.CheckOutTime != "" {
		out.CheckOutTime = remote.CheckOutTime
	}
	if remote.AdultCount > 0 {
		out.AdultCount = remote.AdultCount
	}
	if remote.ChildCount > 0 {
		out.ChildCount = remote.ChildCount
	}
	if remote.Holder != nil && remote.Holder.Complete() {
		out.Holder = *remote.Holder
	}
	if len(remote.Guests) > 0 {
		out.Guests = remote.Guests
	}
	if remote.TransactionID != "" {
		out.TransactionID = remote.TransactionID
	}
	return out
}
