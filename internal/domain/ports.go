package domain

import "context"

// BookingRequest is the finalize payload sent to the provider. Payment is
// referenced by transaction id; the charge already happened in the widget.
type BookingRequest struct {
	PrebookID     string
	Holder        Holder
	Guests        []Guest
	TransactionID string
}

// Occupancy is one room's guest slot configuration.
type Occupancy struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// RateQuery is the hotel-rates search request.
type RateQuery struct {
	CountryCode      string      `json:"countryCode,omitempty"`
	CityName         string      `json:"cityName,omitempty"`
	HotelIDs         []string    `json:"hotelIds,omitempty"`
	CheckIn          string      `json:"checkin"`
	CheckOut         string      `json:"checkout"`
	Currency         string      `json:"currency"`
	GuestNationality string      `json:"guestNationality"`
	Occupancies      []Occupancy `json:"occupancies"`
}

// BookingProvider is the external hotel-booking API. Search/detail payloads
// stay loosely typed (pure pass-through to the UI); booking payloads are
// normalized into ProviderBooking at the adapter boundary.
type BookingProvider interface {
	SearchHotels(ctx context.Context, countryCode, cityName string) ([]map[string]any, error)
	GetHotel(ctx context.Context, hotelID string) (map[string]any, error)
	SearchRates(ctx context.Context, q RateQuery) ([]map[string]any, error)

	Prebook(ctx context.Context, offerID string) (PrebookSession, error)
	Book(ctx context.Context, req BookingRequest) (ProviderBooking, error)
	GetBooking(ctx context.Context, bookingID string) (ProviderBooking, error)
	ListBookings(ctx context.Context) ([]ProviderBooking, error)
}

// CityProvider is the external city geocoding service.
type CityProvider interface {
	SearchCities(ctx context.Context, namePrefix string, limit int) ([]CityMatch, error)
}

// Store is the durable key/value store standing in for browser-local
// storage. Values are JSON round-tripped.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Del(ctx context.Context, key string) error
}
