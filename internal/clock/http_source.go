package clock

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	apperrors "github.com/allisson/entrypass/internal/errors"
)

// errUnexpectedStatus indicates the time endpoint answered with a non-200 status.
var errUnexpectedStatus = apperrors.New("unexpected response from time endpoint")

// timeResponse mirrors the payload of the backend time endpoint.
type timeResponse struct {
	UnixMS int64 `json:"unix_ms"`
}

// HTTPTimeSource fetches the authoritative time from the backend time
// endpoint (GET /v1/time).
type HTTPTimeSource struct {
	url    string
	client *http.Client
}

// NewHTTPTimeSource creates an HTTPTimeSource for the given endpoint URL.
func NewHTTPTimeSource(url string) *HTTPTimeSource {
	return &HTTPTimeSource{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CurrentTime performs one request against the time endpoint.
func (s *HTTPTimeSource) CurrentTime(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return time.Time{}, apperrors.Wrap(err, "failed to build time request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return time.Time{}, apperrors.Wrap(err, "failed to fetch time")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, apperrors.Wrapf(errUnexpectedStatus, "status %d", resp.StatusCode)
	}

	var body timeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return time.Time{}, apperrors.Wrap(err, "failed to decode time response")
	}

	return time.UnixMilli(body.UnixMS), nil
}
