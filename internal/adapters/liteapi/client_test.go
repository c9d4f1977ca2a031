package liteapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"litebook/internal/domain"
)

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"name": "Grand Palace"}})
	}))
	defer ts.Close()

	c, err := New(ts.URL, "", "sandbox-key", "private-key", 100)
	if err != nil {
		t.Fatal(err)
	}
	hotel, err := c.GetHotel(context.Background(), "lp1")
	if err != nil {
		t.Fatalf("GetHotel: %v", err)
	}
	if hotel["name"] != "Grand Palace" {
		t.Fatalf("hotel: %+v", hotel)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

func TestSearchHotelsUsesSandboxKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-Key"); got != "sandbox-key" {
			t.Errorf("api key: %q", got)
		}
		if r.URL.Path != "/data/hotels" {
			t.Errorf("path: %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"id": "lp1"}}})
	}))
	defer ts.Close()

	c, _ := New(ts.URL, "", "sandbox-key", "private-key", 100)
	hotels, err := c.SearchHotels(context.Background(), "IN", "Mumbai")
	if err != nil {
		t.Fatal(err)
	}
	if len(hotels) != 1 {
		t.Fatalf("hotels: %+v", hotels)
	}
}

func TestBookUsesBookBaseAndPrivateKey(t *testing.T) {
	data := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("book must not hit the data base path: %s", r.URL.Path)
	}))
	defer data.Close()

	book := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rates/book" {
			t.Errorf("path: %q", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "private-key" {
			t.Errorf("api key: %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		pay, _ := body["payment"].(map[string]any)
		if pay["method"] != "TRANSACTION_ID" || pay["transactionId"] != "tx-1" {
			t.Errorf("payment block: %+v", pay)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"bookingId": "bk-1",
			"status":    "confirmed",
		}})
	}))
	defer book.Close()

	c, _ := New(data.URL, book.URL, "sandbox-key", "private-key", 100)
	pb, err := c.Book(context.Background(), domain.BookingRequest{
		PrebookID:     "pb-1",
		TransactionID: "tx-1",
		Holder:        domain.Holder{FirstName: "Asha", LastName: "Rao", Email: "a@b.c"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if pb.BookingID != "bk-1" || pb.Status != "confirmed" {
		t.Fatalf("booking: %+v", pb)
	}
}

func TestPrebookRejectedOfferMapsToInvalidOffer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "offer expired"}})
	}))
	defer ts.Close()

	c, _ := New(ts.URL, "", "sandbox-key", "private-key", 100)
	_, err := c.Prebook(context.Background(), "stale-offer")
	if !errors.Is(err, domain.ErrInvalidOffer) {
		t.Fatalf("want ErrInvalidOffer, got %v", err)
	}
}

func TestPrebookMissingIDIsProviderFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"secretKey": "sk"}})
	}))
	defer ts.Close()

	c, _ := New(ts.URL, "", "sandbox-key", "private-key", 100)
	_, err := c.Prebook(context.Background(), "offer-1")
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("want ErrProviderUnavailable, got %v", err)
	}
}

func TestGetBookingNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c, _ := New(ts.URL, "", "sandbox-key", "private-key", 100)
	_, err := c.GetBooking(context.Background(), "bk-missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestNewRequiresSandboxKey(t *testing.T) {
	if _, err := New("http://x", "", "", "private", 5); err == nil {
		t.Fatal("expected error for missing sandbox key")
	}
}

func TestNormalizeBookingAliases(t *testing.T) {
	raw := map[string]any{
		"booking_id":       "bk-2",
		"status":           "confirmed",
		"bookingReference": "REF-2",
		"hotel": map[string]any{
			"hotelId": float64(12345),
			"name":    "Seaside Inn",
			"city":    "Goa",
		},
		"roomType":      "Sea View",
		"boardName":     "Half Board",
		"totalAmount":   "4,5",
		"currency":      "INR",
		"adults":        float64(2),
		"transactionId": "tx-2",
		"holder": map[string]any{
			"firstName": "Asha", "lastName": "Rao", "email": "a@b.c",
		},
		"guests": []any{
			map[string]any{"occupancyNumber": float64(1), "firstName": "Asha", "lastName": "Rao", "email": "a@b.c"},
		},
	}

	pb := normalizeBooking(raw)
	if pb.BookingID != "bk-2" || pb.ConfirmationNumber != "REF-2" {
		t.Fatalf("ids: %+v", pb)
	}
	if pb.HotelID != "12345" || pb.HotelName != "Seaside Inn" || pb.HotelCity != "Goa" {
		t.Fatalf("hotel: %+v", pb)
	}
	if pb.RoomName != "Sea View" || pb.BoardName != "Half Board" {
		t.Fatalf("room: %+v", pb)
	}
	if pb.Price != 4.5 || pb.AdultCount != 2 {
		t.Fatalf("price/occupancy: %+v", pb)
	}
	if pb.Holder == nil || pb.Holder.FirstName != "Asha" {
		t.Fatalf("holder: %+v", pb.Holder)
	}
	if len(pb.Guests) != 1 || pb.Guests[0].OccupancyNumber != 1 {
		t.Fatalf("guests: %+v", pb.Guests)
	}
}

func TestNormalizeBookingAbsentFieldsStayZero(t *testing.T) {
	pb := normalizeBooking(map[string]any{"bookingId": "bk-3"})
	if pb.BookingID != "bk-3" {
		t.Fatalf("id: %+v", pb)
	}
	if pb.Status != "" || pb.Price != 0 || pb.Holder != nil || pb.Guests != nil {
		t.Fatalf("absent fields not zero: %+v", pb)
	}
}
