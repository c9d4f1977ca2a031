package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"litebook/internal/domain"
)

// LocationService owns the preferred-city record and city search. Search is
// best-effort by construction: the static fallback list answers whenever
// the geocoding provider is unavailable, rate-capped, or erroring, so the
// search box never breaks.
type LocationService struct {
	store    domain.Store
	cities   domain.CityProvider
	fallback []domain.CityMatch

	maxAge   time.Duration
	debounce time.Duration
	now      func() time.Time

	budget *rate.Limiter
	sf     singleflight.Group

	mu         sync.Mutex
	cache      map[string]cityCacheEntry
	order      []string // insertion order, oldest first
	cacheTTL   time.Duration
	cacheMax   int
	cancelPrev context.CancelFunc
}

type cityCacheEntry struct {
	results []domain.CityMatch
	at      time.Time
}

type LocationConfig struct {
	Fallback  []domain.CityMatch
	MaxAge    time.Duration // preference validity window
	CacheTTL  time.Duration
	CacheMax  int
	Debounce  time.Duration
	PerMinute int // provider request budget
}

func NewLocationService(st domain.Store, cities domain.CityProvider, cfg LocationConfig) *LocationService {
	if cfg.CacheMax <= 0 {
		cfg.CacheMax = 100
	}
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 10
	}
	return &LocationService{
		store:    st,
		cities:   cities,
		fallback: cfg.Fallback,
		maxAge:   cfg.MaxAge,
		debounce: cfg.Debounce,
		now:      time.Now,
		budget:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.PerMinute)), cfg.PerMinute),
		cache:    make(map[string]cityCacheEntry),
		cacheTTL: cfg.CacheTTL,
		cacheMax: cfg.CacheMax,
	}
}

// Status is the app-start read: the valid preference if one exists, else
// which non-blocking surface (selection prompt or suggestion banner) the
// client should show. A returning visitor who has been through city
// selection before gets the suggestion bar alongside their preference.
// Stale preferences are treated as absent, not proactively deleted.
func (s *LocationService) Status(ctx context.Context) (domain.LocationStatus, error) {
	var pref domain.LocationPreference
	ok, err := s.store.Get(ctx, domain.KeyPreferredCity, &pref)
	if err != nil {
		return domain.LocationStatus{}, err
	}

	var shown bool
	if _, err := s.store.Get(ctx, domain.KeyCitySelectionShown, &shown); err != nil {
		return domain.LocationStatus{}, err
	}

	if ok && s.IsCityDataValid(pref) {
		return domain.LocationStatus{Preference: &pref, ShowSuggestion: shown}, nil
	}
	return domain.LocationStatus{PromptSelection: !shown, ShowSuggestion: shown}, nil
}

// SelectCity persists the preference and marks the selection surface as
// shown so it never reappears.
func (s *LocationService) SelectCity(ctx context.Context, city string) (domain.LocationPreference, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return domain.LocationPreference{}, domain.ErrInvalidCity
	}
	pref := domain.LocationPreference{
		City:      city,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.store.Set(ctx, domain.KeyPreferredCity, pref); err != nil {
		return domain.LocationPreference{}, err
	}
	if err := s.store.Set(ctx, domain.KeyCitySelectionShown, true); err != nil {
		return domain.LocationPreference{}, err
	}
	return pref, nil
}

// Skip dismisses the selection surface without choosing a city.
func (s *LocationService) Skip(ctx context.Context) error {
	return s.store.Set(ctx, domain.KeyCitySelectionShown, true)
}

// Clear removes the stored preference. The shown flag survives, so the
// client falls back to the suggestion banner rather than the modal.
func (s *LocationService) Clear(ctx context.Context) error {
	return s.store.Del(ctx, domain.KeyPreferredCity)
}

// IsCityDataValid reports whether the preference is inside the validity
// window. Unparseable timestamps count as stale.
func (s *LocationService) IsCityDataValid(p domain.LocationPreference) bool {
	if p.City == "" || p.Timestamp == "" {
		return false
	}
	ts, err := time.Parse(time.RFC3339, p.Timestamp)
	if err != nil {
		return false
	}
	return s.now().Sub(ts) < s.maxAge
}

// SearchCities resolves a typed prefix to city candidates. Queries under
// two characters return empty without touching the network. Each call
// supersedes the previous in-flight one; a superseded call returns its
// context error after the debounce wait.
func (s *LocationService) SearchCities(ctx context.Context, q string) ([]domain.CityMatch, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < 2 {
		return []domain.CityMatch{}, nil
	}

	sctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancelPrev != nil {
		s.cancelPrev()
	}
	s.cancelPrev = cancel
	s.mu.Unlock()

	if !waitCtx(sctx, s.debounce) {
		return nil, sctx.Err()
	}

	key := strings.ToLower(q)
	if rs, ok := s.cached(key); ok {
		return rs, nil
	}

	if !s.budget.Allow() {
		return s.matchFallback(q), nil
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.cities.SearchCities(sctx, q, 10)
	})
	if err != nil {
		if sctx.Err() != nil {
			return nil, sctx.Err()
		}
		log.Warn().Err(err).Str("query", q).Msg("city search failed, using fallback list")
		return s.matchFallback(q), nil
	}
	rs := v.([]domain.CityMatch)
	s.remember(key, rs)
	return rs, nil
}

// PopularCities returns the head of the curated list, for empty-query UIs.
func (s *LocationService) PopularCities(n int) []domain.CityMatch {
	if n <= 0 || n > len(s.fallback) {
		n = len(s.fallback)
	}
	out := make([]domain.CityMatch, n)
	copy(out, s.fallback[:n])
	return out
}

func (s *LocationService) cached(key string) ([]domain.CityMatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[key]
	if !ok || s.now().Sub(e.at) > s.cacheTTL {
		return nil, false
	}
	return e.results, true
}

func (s *LocationService) remember(key string, rs []domain.CityMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cache[key]; !exists {
		for len(s.order) >= s.cacheMax {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.cache, oldest)
		}
		s.order = append(s.order, key)
	}
	s.cache[key] = cityCacheEntry{results: rs, at: s.now()}
}

// matchFallback filters the static list: prefix matches first, then
// substring matches, capped at 10.
func (s *LocationService) matchFallback(q string) []domain.CityMatch {
	q = strings.ToLower(q)
	var prefix, sub []domain.CityMatch
	for _, c := range s.fallback {
		name := strings.ToLower(c.Name)
		switch {
		case strings.HasPrefix(name, q):
			prefix = append(prefix, c)
		case strings.Contains(name, q):
			sub = append(sub, c)
		}
	}
	out := append(prefix, sub...)
	if len(out) > 10 {
		out = out[:10]
	}
	if out == nil {
		out = []domain.CityMatch{}
	}
	return out
}

// waitCtx sleeps for d, returning false if ctx is canceled first.
func waitCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
