// Package geocode looks up the coordinates of a place name with a Nominatim compatible API.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/geoquiz/internal/config"
	"github.com/at-ishikawa/geoquiz/internal/geo"
)

// ErrNoResult is returned when the place name matches nothing.
var ErrNoResult = errors.New("no geocoding result")

type Client struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
	retryDelay       time.Duration
}

func NewClient(cfg config.GeocoderConfig) *Client {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	// Nominatim's usage policy requires an identifying user agent.
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetHeader("Accept", "application/json")

	return &Client{
		httpClient:       client,
		maxRetryAttempts: cfg.MaxRetries,
		retryDelay:       500 * time.Millisecond,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// Place is a single search result.
type Place struct {
	DisplayName string `json:"display_name"`
	Latitude    string `json:"lat"`
	Longitude   string `json:"lon"`
}

// Point parses the coordinates of the result.
func (p Place) Point() (geo.Point, error) {
	latitude, err := strconv.ParseFloat(p.Latitude, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("parse latitude %q: %w", p.Latitude, err)
	}
	longitude, err := strconv.ParseFloat(p.Longitude, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("parse longitude %q: %w", p.Longitude, err)
	}
	return geo.Point{Latitude: latitude, Longitude: longitude}, nil
}

type responseError struct {
	statusCode int
	body       string
}

func (e *responseError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.statusCode, e.body)
}

// isRetryableError reports whether another attempt may succeed.
func isRetryableError(err error) bool {
	var respErr *responseError
	if errors.As(err, &respErr) {
		return respErr.statusCode == http.StatusTooManyRequests || respErr.statusCode >= http.StatusInternalServerError
	}
	// Transport errors such as refused connections and timeouts.
	return !errors.Is(err, context.Canceled)
}

// Lookup returns the best match for name.
func (client *Client) Lookup(ctx context.Context, name string) (Place, geo.Point, error) {
	var places []Place
	if err := retry.Do(
		func() error {
			response, err := client.search(ctx, name)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				slog.Default().Debug("retrying geocoding request", "name", name, "error", err)
				return err
			}
			places = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.Delay(client.retryDelay),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
		retry.LastErrorOnly(true),
	); err != nil {
		return Place{}, geo.Point{}, fmt.Errorf("geocode %q: %w", name, err)
	}

	if len(places) == 0 {
		return Place{}, geo.Point{}, fmt.Errorf("geocode %q: %w", name, ErrNoResult)
	}
	point, err := places[0].Point()
	if err != nil {
		return Place{}, geo.Point{}, fmt.Errorf("geocode %q: %w", name, err)
	}
	return places[0], point, nil
}

func (client *Client) search(ctx context.Context, name string) ([]Place, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      name,
			"format": "json",
			"limit":  "1",
		}).
		SetResult(&[]Place{}).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Get > %w", err)
	}
	if response.IsError() {
		return nil, &responseError{statusCode: response.StatusCode(), body: response.String()}
	}

	places, ok := response.Result().(*[]Place)
	if !ok || places == nil {
		return nil, fmt.Errorf("unexpected response body: %s", response.String())
	}
	return *places, nil
}
