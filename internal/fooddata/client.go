// Package fooddata talks to the public nutrient databases used for imports:
// USDA FoodData Central for search and details, Open Food Facts for barcodes.
package fooddata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const userAgent = "nutrition-hub/1.0"

var (
	ErrFoodNotFound    = errors.New("food not found")
	ErrProductNotFound = errors.New("product not found")
)

// StatusError is returned when an upstream API answers with a non-2xx status.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// getJSON issues a GET and decodes the response body into target. A 404 is
// reported as notFound so callers can map it to their own sentinel.
func getJSON(ctx context.Context, client *http.Client, service string, url string, notFound error, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", userAgent)

	response, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("calling %s: %w", service, err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return notFound
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return &StatusError{Service: service, StatusCode: response.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding %s response: %w", service, err)
	}
	return nil
}

// flexibleFloat accepts a JSON number or a numeric string. Open Food Facts
// sends both.
type flexibleFloat struct {
	value float64
	set   bool
}

func (f *flexibleFloat) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		return nil
	}
	raw = strings.Trim(raw, `"`)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	f.value = value
	f.set = true
	return nil
}
