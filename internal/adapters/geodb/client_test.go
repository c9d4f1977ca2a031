package geodb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"litebook/internal/domain"
)

func TestSearchCitiesMapsResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-RapidAPI-Key"); got != "k" {
			t.Errorf("key header: %q", got)
		}
		q := r.URL.Query()
		if q.Get("countryIds") != "IN" || q.Get("namePrefix") != "Jai" || q.Get("types") != "CITY" {
			t.Errorf("query: %v", q)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"name": "Jaipur", "region": "Rajasthan", "country": "India"},
			{"name": "Jaisalmer", "regionCode": "RJ", "country": "India"},
		}})
	}))
	defer ts.Close()

	c, err := New(ts.URL, "k", "h")
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.SearchCities(context.Background(), "Jai", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("results: %+v", out)
	}
	if out[0].DisplayName != "Jaipur, Rajasthan" {
		t.Fatalf("display name: %q", out[0].DisplayName)
	}
	// regionCode fills in when region is absent
	if out[1].Region != "RJ" {
		t.Fatalf("region fallback: %+v", out[1])
	}
}

func TestSearchCitiesRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c, _ := New(ts.URL, "k", "h")
	_, err := c.SearchCities(context.Background(), "Jai", 10)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New("http://x", "", "h"); err == nil {
		t.Fatal("expected error for missing key")
	}
}
