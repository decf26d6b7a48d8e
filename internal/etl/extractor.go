package etl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BartekS5/renewables-etl/pkg/logger"
	"github.com/BartekS5/renewables-etl/pkg/models"
	"github.com/sony/gobreaker"
)

// ResourceSegment is the fixed path segment between the date and the endpoint path.
const ResourceSegment = "renewables"

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 256

// HTTPExtractor fetches raw payloads from the renewables API.
// The client is shared by every call and owned by the caller.
type HTTPExtractor struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
	Retry   RetryPolicy

	breaker *gobreaker.CircuitBreaker
}

// NewHTTPExtractor creates an extractor. A breakerThreshold above zero wraps each
// attempt in a circuit breaker that opens after that many consecutive failures.
func NewHTTPExtractor(client *http.Client, baseURL, apiKey string, retry RetryPolicy, breakerThreshold int) *HTTPExtractor {
	x := &HTTPExtractor{
		Client:  client,
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Retry:   retry,
	}

	if breakerThreshold > 0 {
		threshold := uint32(breakerThreshold)
		x.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "renewables-api",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warnf("circuit breaker %s: %s -> %s", name, from, to)
			},
		})
	}
	return x
}

// RequestURL builds {base}/{date}/renewables/{path}?api_key={key}.
func (x *HTTPExtractor) RequestURL(ep models.Endpoint, date time.Time) string {
	query := url.Values{"api_key": []string{x.APIKey}}
	return fmt.Sprintf("%s/%s/%s/%s?%s", x.BaseURL, models.FormatDate(date), ResourceSegment, ep.Path, query.Encode())
}

// Extract fetches the raw body for one (endpoint, date) pair, retrying the whole
// request per the retry policy. The returned error wraps ErrTransientFetch.
func (x *HTTPExtractor) Extract(ctx context.Context, ep models.Endpoint, date time.Time) (string, error) {
	target := x.RequestURL(ep, date)
	day := models.FormatDate(date)

	var body string
	attempts, err := x.Retry.Do(ctx, func(attempt int) error {
		b, err := x.attempt(ctx, target)
		if err != nil {
			logger.Warnf("extract %s %s: attempt %d/%d failed: %v", ep.Name, day, attempt, x.Retry.MaxAttempts, err)
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return "", &FetchError{Endpoint: ep.Name, Date: day, Attempts: attempts, Err: err}
	}

	logger.Debugf("extract %s %s: %d bytes in %d attempt(s)", ep.Name, day, len(body), attempts)
	return body, nil
}

func (x *HTTPExtractor) attempt(ctx context.Context, target string) (string, error) {
	if x.breaker == nil {
		return x.fetchOnce(ctx, target)
	}

	res, err := x.breaker.Execute(func() (interface{}, error) {
		return x.fetchOnce(ctx, target)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", Permanent(fmt.Errorf("circuit breaker open: %w", err))
	}
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (x *HTTPExtractor) fetchOnce(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return "", Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := x.Client.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = redactAPIKey(uerr.URL)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return "", &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	if !utf8.Valid(body) {
		return "", errors.New("response body is not valid UTF-8")
	}
	return string(body), nil
}

// redactAPIKey hides the credential in URLs that end up in error messages.
func redactAPIKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
