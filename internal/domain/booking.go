package domain

import "encoding/json"

// Durable storage keys. Bit-exact: existing profiles depend on them.
const (
	KeyPendingBooking     = "pendingBooking"
	KeyBookingHistory     = "bookingHistory"
	KeyPreferredCity      = "user_preferred_city"
	KeyCitySelectionShown = "city_selection_shown"
)

const (
	// BookingIDPending marks a paid booking the provider has not confirmed.
	BookingIDPending = "PENDING_CONFIRMATION"

	// Provider statuses are opaque strings; these two are produced locally.
	StatusConfirmed       = "confirmed"
	StatusPaymentReceived = "payment_received"
)

// Booking-attempt states persisted inside the draft. The runtime may be
// fully torn down between these states (full-page redirect to the payment
// widget), so nothing about the attempt lives only in memory.
const (
	StateAwaitingPayment = "awaiting_payment"
	StateFinalizing      = "finalizing"
)

// Redirect statuses reported by the payment widget.
const (
	RedirectSucceeded = "succeeded"
	RedirectFailed    = "failed"
)

// Holder is the person responsible for the booking; may or may not stay.
type Holder struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (h Holder) Complete() bool {
	return h.FirstName != "" && h.LastName != "" && h.Email != ""
}

// Guest fills one occupancy slot of the offer.
type Guest struct {
	OccupancyNumber int    `json:"occupancyNumber"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Remarks         string `json:"remarks,omitempty"`
}

func (g Guest) Complete() bool {
	return g.FirstName != "" && g.LastName != "" && g.Email != ""
}

// BookingDraft is the optimistic snapshot persisted under KeyPendingBooking
// immediately after a successful prebook, before control is handed to the
// payment widget. At most one draft exists at a time.
type BookingDraft struct {
	AttemptID     string `json:"attemptId"`
	State         string `json:"state"`
	OfferID       string `json:"offerId"`
	PrebookID     string `json:"prebookId"`
	TransactionID string `json:"transactionId"`
	SessionID     string `json:"sessionId,omitempty"`

	// Hotel context, denormalized at selection time; never re-fetched.
	HotelID   string `json:"hotelId"`
	HotelName string `json:"hotelName"`
	RoomName  string `json:"roomName"`
	BoardName string `json:"boardName"`

	// Pricing snapshot from quote time; may drift from authoritative price.
	TotalPrice float64 `json:"totalPrice"`
	Currency   string  `json:"currency"`
	Commission float64 `json:"commission"`

	AdultCount int    `json:"adultCount"`
	ChildCount int    `json:"childCount"`
	Nights     int    `json:"nights"`
	CheckIn    string `json:"checkIn"`
	CheckOut   string `json:"checkOut"`

	Holder Holder  `json:"holder"`
	Guests []Guest `json:"guests"`

	// Opaque refundability snapshot; stored and displayed, never reparsed.
	CancellationPolicies json.RawMessage `json:"cancellationPolicies,omitempty"`
}

// ConfirmedBooking is the record surfaced to the user, frozen from the
// draft at booking time and updated in place by reconciliation.
type ConfirmedBooking struct {
	BookingID          string `json:"bookingId"`
	Status             string `json:"status"`
	ConfirmationNumber string `json:"confirmationNumber,omitempty"`

	// APIError flags a degraded record: payment succeeded but the
	// provider's booking call failed. Real, but pending confirmation.
	APIError bool `json:"apiError,omitempty"`

	HotelID   string `json:"hotelId"`
	HotelName string `json:"hotelName"`
	RoomName  string `json:"roomName"`
	BoardName string `json:"boardName"`

	HotelAddress string `json:"hotelAddress,omitempty"`
	HotelCity    string `json:"hotelCity,omitempty"`
	HotelCountry string `json:"hotelCountry,omitempty"`
	HotelPhone   string `json:"hotelPhone,omitempty"`

	TotalPrice float64 `json:"totalPrice"`
	Currency   string  `json:"currency"`
	Commission float64 `json:"commission,omitempty"`

	AdultCount   int    `json:"adultCount"`
	ChildCount   int    `json:"childCount"`
	Nights       int    `json:"nights,omitempty"`
	CheckIn      string `json:"checkIn,omitempty"`
	CheckOut     string `json:"checkOut,omitempty"`
	CheckInTime  string `json:"checkInTime,omitempty"`
	CheckOutTime string `json:"checkOutTime,omitempty"`

	Holder Holder  `json:"holder"`
	Guests []Guest `json:"guests"`

	PaymentIntent string `json:"paymentIntent,omitempty"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
	TransactionID string `json:"transactionId"`

	CancellationPolicies json.RawMessage `json:"cancellationPolicies,omitempty"`

	BookedAt string `json:"bookedAt"`
}

// PrebookSession is the provider-issued hold on an offer plus the payment
// widget credentials. One session = one prebookId; never replayed.
type PrebookSession struct {
	PrebookID     string `json:"prebookId"`
	SecretKey     string `json:"secretKey"`
	TransactionID string `json:"transactionId"`
	SessionID     string `json:"sessionId,omitempty"`
}

// RedirectResult carries the payment widget's redirect query parameters.
type RedirectResult struct {
	PaymentIntent string
	ClientSecret  string
	Status        string
}

// PaymentConfig is what a client needs to mount the embedded payment
// widget. The charge happens out of process; completion is observed only
// through the redirect back to ReturnURL.
type PaymentConfig struct {
	ScriptURL string `json:"scriptUrl"`
	PublicKey string `json:"publicKey"`
	SecretKey string `json:"secretKey"`
	ReturnURL string `json:"returnUrl"`
}

// ProviderBooking is the canonical form of the provider's booking payloads
// (book, get-booking and list-bookings responses all normalize into it at
// the client boundary). Zero values mean "absent"; the reconciliation
// merge never copies an absent field over local data.
type ProviderBooking struct {
	BookingID          string
	Status             string
	ConfirmationNumber string

	HotelID      string
	HotelName    string
	HotelAddress string
	HotelCity    string
	HotelCountry string
	HotelPhone   string

	RoomName  string
	BoardName string

	Price    float64
	Currency string

	CheckIn      string
	CheckOut     string
	CheckInTime  string
	CheckOutTime string

	AdultCount int
	ChildCount int

	Holder *Holder
	Guests []Guest

	TransactionID string
	CreatedAt     string

	Raw map[string]any
}
