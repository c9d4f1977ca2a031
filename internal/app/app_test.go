package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"litebook/internal/domain"
)

// memStore is an in-memory domain.Store for tests, JSON round-tripped like
// the real one.
type memStore struct {
	mu      sync.Mutex
	m       map[string][]byte
	failSet bool
}

func newMemStore() *memStore { return &memStore{m: make(map[string][]byte)} }

func (s *memStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (s *memStore) Set(ctx context.Context, key string, v any) error {
	if s.failSet {
		return errStoreDown
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = b
	return nil
}

func (s *memStore) Del(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[key]
	return ok
}

// fakeProvider implements domain.BookingProvider with overridable funcs and
// call counters.
type fakeProvider struct {
	mu        sync.Mutex
	prebooks  int
	books     int
	gets      int
	lists     int
	prebookFn func(offerID string) (domain.PrebookSession, error)
	bookFn    func(req domain.BookingRequest) (domain.ProviderBooking, error)
	getFn     func(id string) (domain.ProviderBooking, error)
	listFn    func() ([]domain.ProviderBooking, error)
}

func (f *fakeProvider) SearchHotels(ctx context.Context, countryCode, cityName string) ([]map[string]any, error) {
	return nil, nil
}

func (f *fakeProvider) GetHotel(ctx context.Context, hotelID string) (map[string]any, error) {
	return nil, nil
}

func (f *fakeProvider) SearchRates(ctx context.Context, q domain.RateQuery) ([]map[string]any, error) {
	return nil, nil
}

func (f *fakeProvider) Prebook(ctx context.Context, offerID string) (domain.PrebookSession, error) {
	f.mu.Lock()
	f.prebooks++
	f.mu.Unlock()
	if f.prebookFn != nil {
		return f.prebookFn(offerID)
	}
	return domain.PrebookSession{PrebookID: "pb-1", SecretKey: "sk-1", TransactionID: "tx-1"}, nil
}

func (f *fakeProvider) Book(ctx context.Context, req domain.BookingRequest) (domain.ProviderBooking, error) {
	f.mu.Lock()
	f.books++
	f.mu.Unlock()
	if f.bookFn != nil {
		return f.bookFn(req)
	}
	return domain.ProviderBooking{BookingID: "bk-1", Status: "confirmed"}, nil
}

func (f *fakeProvider) GetBooking(ctx context.Context, bookingID string) (domain.ProviderBooking, error) {
	f.mu.Lock()
	f.gets++
	f.mu.Unlock()
	if f.getFn != nil {
		return f.getFn(bookingID)
	}
	return domain.ProviderBooking{}, domain.ErrNotFound
}

func (f *fakeProvider) ListBookings(ctx context.Context) ([]domain.ProviderBooking, error) {
	f.mu.Lock()
	f.lists++
	f.mu.Unlock()
	if f.listFn != nil {
		return f.listFn()
	}
	return nil, nil
}

var (
	errStoreDown    = errors.New("store down")
	errProviderDown = errors.New("provider down")
)
