// Package currency resolves USD exchange rates against an external lookup
// service, with TTL caching and static env-var fallbacks.
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"nextfunnel-checkout/internal/cache"
)

// Base is the canonical pricing currency.
const Base = "USD"

// ErrRateUnavailable is returned when the lookup service and the static
// fallback both fail to produce a usable rate.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

const (
	maxAttempts = 4
	successTTL  = 10 * time.Minute
	fallbackTTL = 5 * time.Minute
)

type Resolver struct {
	httpClient *http.Client
	apiURL     string
	cache      cache.Cache

	// overridable in tests
	backoffBase time.Duration
	jitterMax   time.Duration
	lookupEnv   func(string) (string, bool)
}

func NewResolver(apiURL string, c cache.Cache) *Resolver {
	return &Resolver{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiURL:      apiURL,
		cache:       c,
		backoffBase: 400 * time.Millisecond,
		jitterMax:   200 * time.Millisecond,
		lookupEnv:   os.LookupEnv,
	}
}

// Rate returns the USD->target exchange rate. The result is always a
// positive finite number; anything else from the upstream service is
// treated as a failure and falls through to the static fallback.
func (r *Resolver) Rate(ctx context.Context, target string) (float64, error) {
	target = strings.ToUpper(strings.TrimSpace(target))
	if target == "" || target == Base {
		return 1, nil
	}

	cacheKey := Base + "_" + target
	if v, ok := r.cache.Get(cacheKey); ok {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && usable(rate) {
			return rate, nil
		}
	}

	rate, err := r.fetch(ctx, target)
	if err == nil {
		r.cache.Set(cacheKey, strconv.FormatFloat(rate, 'f', -1, 64), successTTL)
		return rate, nil
	}

	fallback, ok := r.fallbackRate(target)
	if !ok {
		return 0, fmt.Errorf("%w for %s: %v", ErrRateUnavailable, target, err)
	}
	r.cache.Set(cacheKey, strconv.FormatFloat(fallback, 'f', -1, 64), fallbackTTL)
	return fallback, nil
}

// fetch queries the rate service with retries. Only 5xx, 429 and transport
// failures are retried; other client errors abort the loop.
func (r *Resolver) fetch(ctx context.Context, target string) (float64, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.backoffBase << (attempt - 1)
			if r.jitterMax > 0 {
				delay += time.Duration(rand.Int63n(int64(r.jitterMax)))
			}
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(delay):
			}
		}

		rate, retryable, err := r.fetchOnce(ctx, target)
		if err == nil {
			return rate, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return 0, lastErr
}

func (r *Resolver) fetchOnce(ctx context.Context, target string) (rate float64, retryable bool, err error) {
	u := fmt.Sprintf("%s?base=%s&symbols=%s", r.apiURL, Base, url.QueryEscape(target))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, false, fmt.Errorf("http new request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, true, fmt.Errorf("rate lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return 0, true, fmt.Errorf("rate lookup status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return 0, false, fmt.Errorf("rate lookup status %d", resp.StatusCode)
	}

	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, false, fmt.Errorf("decode rate response: %w", err)
	}

	rate, ok := body.Rates[target]
	if !ok || !usable(rate) {
		return 0, false, fmt.Errorf("rate not returned for %s", target)
	}
	return rate, false, nil
}

// fallbackRate reads a static rate from FALLBACK_USD_TO_<TARGET>.
func (r *Resolver) fallbackRate(target string) (float64, bool) {
	v, ok := r.lookupEnv("FALLBACK_USD_TO_" + target)
	if !ok {
		return 0, false
	}
	rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || !usable(rate) {
		return 0, false
	}
	return rate, true
}

func usable(rate float64) bool {
	return rate > 0 && !math.IsNaN(rate) && !math.IsInf(rate, 0)
}
