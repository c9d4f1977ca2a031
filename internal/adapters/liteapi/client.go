// internal/adapters/liteapi/client.go
package liteapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"litebook/internal/adapters/observability"
	"litebook/internal/domain"
)

type Client struct {
	base     string
	bookBase string // /rates/book lives on a different base path
	hc       *http.Client
	sandbox  string
	private  string
	rl       *rate.Limiter
}

// New builds a client. sandboxKey authenticates search/detail calls;
// privateKey authenticates rates/booking mutations. bookBase defaults to
// base when empty.
func New(base, bookBase, sandboxKey, privateKey string, rps int) (*Client, error) {
	if sandboxKey == "" {
		return nil, fmt.Errorf("sandbox API key is required")
	}
	if bookBase == "" {
		bookBase = base
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:     base,
		bookBase: bookBase,
		hc:       &http.Client{Timeout: 20 * time.Second},
		sandbox:  sandboxKey,
		private:  privateKey,
		rl:       rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public data endpoints (sandbox key) ----

func (c *Client) SearchHotels(ctx context.Context, countryCode, cityName string) ([]map[string]any, error) {
	u := fmt.Sprintf("%s/data/hotels?countryCode=%s&cityName=%s",
		c.base, url.QueryEscape(countryCode), url.QueryEscape(cityName))
	var out []map[string]any
	if err := c.do(ctx, "search_hotels", http.MethodGet, u, c.sandbox, nil, &out); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (c *Client) GetHotel(ctx context.Context, hotelID string) (map[string]any, error) {
	u := fmt.Sprintf("%s/data/hotel?hotelId=%s", c.base, url.QueryEscape(hotelID))
	var out map[string]any
	if err := c.do(ctx, "hotel_detail", http.MethodGet, u, c.sandbox, nil, &out); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (c *Client) SearchRates(ctx context.Context, q domain.RateQuery) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.do(ctx, "search_rates", http.MethodPost, c.base+"/hotels/rates", c.sandbox, q, &out); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// ---- Booking endpoints (private key) ----

func (c *Client) Prebook(ctx context.Context, offerID string) (domain.PrebookSession, error) {
	body := map[string]any{"offerId": offerID, "usePaymentSdk": true}
	var sess domain.PrebookSession
	if err := c.do(ctx, "prebook", http.MethodPost, c.base+"/rates/prebook", c.private, body, &sess); err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Status >= 400 && ae.Status < 500 {
			// expired/unknown offer; a fresh rate search is the only fix
			return domain.PrebookSession{}, fmt.Errorf("%w: %v", domain.ErrInvalidOffer, err)
		}
		return domain.PrebookSession{}, classify(err)
	}
	if sess.PrebookID == "" {
		return domain.PrebookSession{}, fmt.Errorf("%w: prebook response missing prebookId", domain.ErrProviderUnavailable)
	}
	return sess, nil
}

func (c *Client) Book(ctx context.Context, req domain.BookingRequest) (domain.ProviderBooking, error) {
	body := map[string]any{
		"prebookId": req.PrebookID,
		"holder":    req.Holder,
		"payment": map[string]any{
			"method":        "TRANSACTION_ID",
			"transactionId": req.TransactionID,
		},
		"guests": req.Guests,
	}
	var raw map[string]any
	if err := c.do(ctx, "book", http.MethodPost, c.bookBase+"/rates/book", c.private, body, &raw); err != nil {
		return domain.ProviderBooking{}, classify(err)
	}
	return normalizeBooking(raw), nil
}

func (c *Client) GetBooking(ctx context.Context, bookingID string) (domain.ProviderBooking, error) {
	u := fmt.Sprintf("%s/bookings/%s", c.base, url.PathEscape(bookingID))
	var raw map[string]any
	if err := c.do(ctx, "get_booking", http.MethodGet, u, c.private, nil, &raw); err != nil {
		return domain.ProviderBooking{}, classify(err)
	}
	return normalizeBooking(raw), nil
}

func (c *Client) ListBookings(ctx context.Context) ([]domain.ProviderBooking, error) {
	var raw []map[string]any
	if err := c.do(ctx, "list_bookings", http.MethodGet, c.base+"/bookings/list", c.private, nil, &raw); err != nil {
		return nil, classify(err)
	}
	out := make([]domain.ProviderBooking, 0, len(raw))
	for _, m := range raw {
		out = append(out, normalizeBooking(m))
	}
	return out, nil
}

// ---- Internals ----

// apiError is a non-retryable upstream rejection.
type apiError struct {
	Status int
	Msg    string
}

func (e *apiError) Error() string { return fmt.Sprintf("liteapi: status %d: %s", e.Status, e.Msg) }

// classify folds transport-level failures into the domain taxonomy while
// keeping context cancellation and upstream 4xx details intact.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var ae *apiError
	if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
}

// envelope is the {"data": ...} wrapper every endpoint uses.
type envelope struct {
	Data json.RawMessage `json:"data"`
	Err  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// do performs a request with client-side rate limiting, retries on 429 and
// transient 5xx (honoring Retry-After), and decodes the data envelope.
func (c *Client) do(ctx context.Context, op, method, u, key string, body, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = b
	}

	start := time.Now()
	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rd)
		if err != nil {
			return err
		}
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "litebook/1.0")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			observability.ObserveExternal("liteapi", op, 0, time.Since(start))
			return lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := decodeEnvelope(resp.Body, out)
			resp.Body.Close()
			observability.ObserveExternal("liteapi", op, resp.StatusCode, time.Since(start))
			return err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			observability.ObserveExternal("liteapi", op, resp.StatusCode, time.Since(start))
			return nil

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			observability.ObserveExternal("liteapi", op, resp.StatusCode, time.Since(start))
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			observability.ObserveExternal("liteapi", op, resp.StatusCode, time.Since(start))
			return &apiError{Status: resp.StatusCode, Msg: errMessage(b)}
		}
	}

	return lastErr
}

func decodeEnvelope(r io.Reader, out any) error {
	if out == nil {
		io.Copy(io.Discard, r)
		return nil
	}
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return err
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("response missing data field")
	}
	return json.Unmarshal(env.Data, out)
}

// errMessage pulls {"error":{"message":...}} out of an error body when
// present, else returns the trimmed raw body.
func errMessage(b []byte) string {
	var env envelope
	if err := json.Unmarshal(b, &env); err == nil && env.Err != nil && env.Err.Message != "" {
		return env.Err.Message
	}
	return strings.TrimSpace(string(b))
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
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

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay with up to +50% crypto/rand jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
