package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const googleURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Google queries the Google Geocoding API. ZERO_RESULTS and
// OVER_QUERY_LIMIT come back as an empty Result so Retrying can try again.
type Google struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewGoogle(apiKey string) *Google {
	return &Google{
		APIKey: apiKey,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type googleResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

func (g *Google) Geocode(ctx context.Context, address string) (Result, error) {
	base := g.BaseURL
	if base == "" {
		base = googleURL
	}
	q := url.Values{"address": {address}}
	if g.APIKey != "" {
		q.Set("key", g.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("could not reach geocoding service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("geocoding service returned %s", resp.Status)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("could not decode geocoding response: %w", err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS", "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return Result{}, nil
	default:
		return Result{}, fmt.Errorf("geocoding %q: %s %s", address, body.Status, body.ErrorMessage)
	}
	if len(body.Results) == 0 {
		return Result{}, nil
	}

	top := body.Results[0]
	return Result{
		Address: top.FormattedAddress,
		Lat:     top.Geometry.Location.Lat,
		Lon:     top.Geometry.Location.Lng,
	}, nil
}
