// internal/adapters/geodb/client.go
package geodb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"litebook/internal/adapters/observability"
	"litebook/internal/domain"
)

// Client talks to the GeoDB cities API behind the RapidAPI gateway.
// Budget policing lives in the caller (the location service); this client
// just performs single requests.
type Client struct {
	base string
	hc   *http.Client
	key  string
	host string
}

func New(base, key, host string) (*Client, error) {
	if key == "" || host == "" {
		return nil, fmt.Errorf("RapidAPI key and host are required")
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 10 * time.Second},
		key:  key,
		host: host,
	}, nil
}

func (c *Client) SearchCities(ctx context.Context, namePrefix string, limit int) ([]domain.CityMatch, error) {
	if limit <= 0 {
		limit = 10
	}
	u := fmt.Sprintf("%s/geo/cities?countryIds=IN&namePrefix=%s&limit=%d&sort=-population&types=CITY",
		c.base, url.QueryEscape(namePrefix), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.key)
	req.Header.Set("X-RapidAPI-Host", c.host)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		observability.ObserveExternal("geodb", "search_cities", 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("geodb", "search_cities", resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return nil, domain.ErrRateLimited
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("geodb: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var body struct {
		Data []struct {
			Name       string `json:"name"`
			Region     string `json:"region"`
			RegionCode string `json:"regionCode"`
			Country    string `json:"country"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	out := make([]domain.CityMatch, 0, len(body.Data))
	for _, c := range body.Data {
		region := c.Region
		if region == "" {
			region = c.RegionCode
		}
		out = append(out, domain.CityMatch{
			Name:        c.Name,
			Region:      region,
			Country:     c.Country,
			DisplayName: c.Name + ", " + region,
		})
	}
	return out, nil
}
