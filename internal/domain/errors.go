package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrInvalidBookingData is a local pre-flight failure: missing
	// prebookId/transactionId or incomplete holder/guest fields. It is
	// never sent upstream.
	ErrInvalidBookingData = errors.New("invalid booking data")

	// ErrInvalidOffer means the provider rejected the offerId, typically
	// because the rate expired.
	ErrInvalidOffer = errors.New("invalid or expired offer")

	ErrProviderUnavailable = errors.New("booking provider unavailable")

	// ErrInvalidCity rejects an empty or blank city selection.
	ErrInvalidCity = errors.New("invalid city")

	// ErrNoPendingBooking means the redirect arrived with no draft in
	// durable storage. Terminal; there is nothing to resume.
	ErrNoPendingBooking = errors.New("no pending booking")

	// ErrPaymentFailed is the one deliberately fatal path: the widget
	// reported failure (or an unrecognized status), so nothing is owed.
	ErrPaymentFailed = errors.New("payment failed")

	ErrRateLimited = errors.New("rate limit exceeded")
)
