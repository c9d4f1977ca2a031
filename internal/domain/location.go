package domain

// LocationPreference is the single durable "preferred city" value.
// Timestamp is ISO-8601; validity (30 days) is checked lazily on read,
// never proactively expired.
type LocationPreference struct {
	City      string `json:"city"`
	Timestamp string `json:"timestamp"`
}

// CityMatch is one result from city search (provider or static fallback).
type CityMatch struct {
	Name        string `json:"name"`
	Region      string `json:"region"`
	Country     string `json:"country"`
	DisplayName string `json:"displayName"`
}

// LocationStatus is the app-start view of the preference store: the valid
// preference if any, plus which (non-blocking) surface to show.
type LocationStatus struct {
	Preference      *LocationPreference `json:"preference,omitempty"`
	PromptSelection bool                `json:"promptSelection"`
	ShowSuggestion  bool                `json:"showSuggestion"`
}
