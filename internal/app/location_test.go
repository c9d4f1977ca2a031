package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"litebook/internal/domain"
)

type fakeCities struct {
	mu      sync.Mutex
	calls   int
	results []domain.CityMatch
	err     error
}

func (f *fakeCities) SearchCities(ctx context.Context, namePrefix string, limit int) ([]domain.CityMatch, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeCities) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var testFallback = []domain.CityMatch{
	{Name: "Mumbai", Region: "Maharashtra", Country: "India", DisplayName: "Mumbai, Maharashtra"},
	{Name: "Jaipur", Region: "Rajasthan", Country: "India", DisplayName: "Jaipur, Rajasthan"},
	{Name: "Jabalpur", Region: "Madhya Pradesh", Country: "India", DisplayName: "Jabalpur, Madhya Pradesh"},
	{Name: "Udaipur", Region: "Rajasthan", Country: "India", DisplayName: "Udaipur, Rajasthan"},
}

func newLocSvc(st domain.Store, fc domain.CityProvider) *LocationService {
	return NewLocationService(st, fc, LocationConfig{
		Fallback:  testFallback,
		MaxAge:    30 * 24 * time.Hour,
		CacheTTL:  time.Hour,
		CacheMax:  100,
		Debounce:  0,
		PerMinute: 10,
	})
}

func TestPreferenceValidityWindow(t *testing.T) {
	svc := newLocSvc(newMemStore(), &fakeCities{})
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	pref := domain.LocationPreference{City: "Mumbai", Timestamp: base.Format(time.RFC3339)}

	svc.now = func() time.Time { return base.Add(29 * 24 * time.Hour) }
	if !svc.IsCityDataValid(pref) {
		t.Fatal("29-day-old preference should be valid")
	}
	svc.now = func() time.Time { return base.Add(31 * 24 * time.Hour) }
	if svc.IsCityDataValid(pref) {
		t.Fatal("31-day-old preference should be stale")
	}
}

func TestPreferenceInvalidTimestamp(t *testing.T) {
	svc := newLocSvc(newMemStore(), &fakeCities{})
	if svc.IsCityDataValid(domain.LocationPreference{City: "Mumbai", Timestamp: "yesterday"}) {
		t.Fatal("unparseable timestamp must count as stale")
	}
}

func TestStatusSurfaces(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	svc := newLocSvc(st, &fakeCities{})

	// fresh profile: prompt the selection surface
	got, err := svc.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Preference != nil || !got.PromptSelection || got.ShowSuggestion {
		t.Fatalf("fresh profile status: %+v", got)
	}

	// skipped: suggestion banner instead of the modal
	if err := svc.Skip(ctx); err != nil {
		t.Fatal(err)
	}
	got, err = svc.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.PromptSelection || !got.ShowSuggestion {
		t.Fatalf("post-skip status: %+v", got)
	}

	// selected: the preference suppresses the modal, and since the user
	// has been through selection before, the suggestion bar stays on
	if _, err := svc.SelectCity(ctx, "Jaipur"); err != nil {
		t.Fatal(err)
	}
	got, err = svc.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Preference == nil || got.Preference.City != "Jaipur" || got.PromptSelection || !got.ShowSuggestion {
		t.Fatalf("post-select status: %+v", got)
	}
}

func TestStatusReturningVisitorGetsSuggestionBar(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	svc := newLocSvc(st, &fakeCities{})

	if _, err := svc.SelectCity(ctx, "Mumbai"); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Preference == nil || got.Preference.City != "Mumbai" {
		t.Fatalf("preference: %+v", got)
	}
	if !got.ShowSuggestion {
		t.Fatal("returning visitor with a valid preference should see the suggestion bar")
	}

	// a preference seeded without the shown flag keeps the bar off
	st2 := newMemStore()
	svc2 := newLocSvc(st2, &fakeCities{})
	if err := st2.Set(ctx, domain.KeyPreferredCity, domain.LocationPreference{
		City: "Pune", Timestamp: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		t.Fatal(err)
	}
	got, err = svc2.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Preference == nil || got.ShowSuggestion {
		t.Fatalf("seeded preference status: %+v", got)
	}
}

func TestStatusStalePreferenceTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	svc := newLocSvc(st, &fakeCities{})

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := st.Set(ctx, domain.KeyPreferredCity, domain.LocationPreference{
		City: "Mumbai", Timestamp: old.Format(time.RFC3339),
	}); err != nil {
		t.Fatal(err)
	}
	svc.now = func() time.Time { return old.Add(45 * 24 * time.Hour) }

	got, err := svc.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Preference != nil {
		t.Fatalf("stale preference surfaced: %+v", got)
	}
	if !got.PromptSelection {
		t.Fatalf("status: %+v", got)
	}
}

func TestClearKeepsShownFlag(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	svc := newLocSvc(st, &fakeCities{})

	if _, err := svc.SelectCity(ctx, "Mumbai"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Preference != nil || got.PromptSelection || !got.ShowSuggestion {
		t.Fatalf("post-clear status: %+v", got)
	}
}

func TestSearchShortQuerySkipsNetwork(t *testing.T) {
	fc := &fakeCities{}
	svc := newLocSvc(newMemStore(), fc)

	got, err := svc.SearchCities(context.Background(), "J")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("short query results: %+v", got)
	}
	if fc.callCount() != 0 {
		t.Fatalf("provider called %d times", fc.calls)
	}
}

func TestSearchBudgetExhaustedUsesFallback(t *testing.T) {
	fc := &fakeCities{}
	svc := newLocSvc(newMemStore(), fc)
	svc.budget = rate.NewLimiter(rate.Every(time.Minute), 0) // spent

	got, err := svc.SearchCities(context.Background(), "Jaip")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Jaipur" {
		t.Fatalf("fallback results: %+v", got)
	}
	if fc.callCount() != 0 {
		t.Fatal("provider must not be called over budget")
	}
}

func TestSearchFallbackPrefixBeforeSubstring(t *testing.T) {
	svc := newLocSvc(newMemStore(), &fakeCities{})
	got := svc.matchFallback("pur")
	// no prefix matches; substring matches keep list order
	if len(got) != 3 || got[0].Name != "Jaipur" || got[1].Name != "Jabalpur" || got[2].Name != "Udaipur" {
		t.Fatalf("substring matches: %+v", got)
	}

	got = svc.matchFallback("Ja")
	if len(got) != 2 || got[0].Name != "Jaipur" || got[1].Name != "Jabalpur" {
		t.Fatalf("prefix matches: %+v", got)
	}
}

func TestSearchProviderErrorUsesFallback(t *testing.T) {
	fc := &fakeCities{err: errProviderDown}
	svc := newLocSvc(newMemStore(), fc)

	got, err := svc.SearchCities(context.Background(), "Udai")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Udaipur" {
		t.Fatalf("fallback results: %+v", got)
	}
}

func TestSearchCachesResults(t *testing.T) {
	fc := &fakeCities{results: []domain.CityMatch{{Name: "Jaisalmer", Region: "Rajasthan"}}}
	svc := newLocSvc(newMemStore(), fc)

	for i := 0; i < 3; i++ {
		got, err := svc.SearchCities(context.Background(), "Jais")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].Name != "Jaisalmer" {
			t.Fatalf("results: %+v", got)
		}
	}
	if fc.callCount() != 1 {
		t.Fatalf("provider called %d times, cache not used", fc.calls)
	}
}

func TestSearchCacheExpires(t *testing.T) {
	fc := &fakeCities{results: []domain.CityMatch{{Name: "Jaisalmer"}}}
	svc := newLocSvc(newMemStore(), fc)
	base := time.Now()
	svc.now = func() time.Time { return base }

	if _, err := svc.SearchCities(context.Background(), "Jais"); err != nil {
		t.Fatal(err)
	}
	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := svc.SearchCities(context.Background(), "Jais"); err != nil {
		t.Fatal(err)
	}
	if fc.callCount() != 2 {
		t.Fatalf("provider called %d times, expired entry served", fc.calls)
	}
}

func TestSearchCacheEvictsOldest(t *testing.T) {
	fc := &fakeCities{results: []domain.CityMatch{{Name: "X"}}}
	svc := newLocSvc(newMemStore(), fc)
	svc.cacheMax = 2

	queries := []string{"aaa", "bbb", "ccc"}
	for _, q := range queries {
		if _, err := svc.SearchCities(context.Background(), q); err != nil {
			t.Fatal(err)
		}
	}
	if _, ok := svc.cached("aaa"); ok {
		t.Fatal("oldest entry should be evicted")
	}
	if _, ok := svc.cached("ccc"); !ok {
		t.Fatal("newest entry should survive")
	}
}

func TestSearchSupersedesPreviousCall(t *testing.T) {
	fc := &fakeCities{results: []domain.CityMatch{{Name: "Jaipur"}}}
	svc := newLocSvc(newMemStore(), fc)
	svc.debounce = 100 * time.Millisecond

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.SearchCities(context.Background(), "Jai")
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond) // first call is inside its debounce wait

	if _, err := svc.SearchCities(context.Background(), "Jaip"); err != nil {
		t.Fatal(err)
	}
	if err := <-errCh; err == nil {
		t.Fatal("superseded call should return its context error")
	}
}
