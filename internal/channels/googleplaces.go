package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"omni-feedback/internal/ingestion"
	"omni-feedback/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// GooglePlacesSource pulls reviews from the place-details API.
type GooglePlacesSource struct {
	baseURL string
	apiKey  string
	placeID string
	client  *resty.Client
}

var _ ingestion.Fetcher = (*GooglePlacesSource)(nil)

// NewGooglePlacesSource creates a Google Places source
func NewGooglePlacesSource(baseURL, apiKey, placeID string) *GooglePlacesSource {
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api/place/details/json"
	}
	return &GooglePlacesSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		placeID: placeID,
		client:  resty.New().SetTimeout(15 * time.Second),
	}
}

func (s *GooglePlacesSource) Name() string { return "Google Maps" }

func (s *GooglePlacesSource) Type() string { return models.ChannelTypeAPI }

func (s *GooglePlacesSource) BaseURL() string { return s.baseURL }

// Enabled reports whether the adapter has the credentials it needs.
func (s *GooglePlacesSource) Enabled() bool {
	return s.apiKey != "" && s.placeID != ""
}

type placeDetailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Name             string                   `json:"name"`
		FormattedAddress string                   `json:"formatted_address"`
		Rating           float64                  `json:"rating"`
		Reviews          []map[string]interface{} `json:"reviews"`
	} `json:"result"`
}

// Fetch returns the place's reviews, each annotated with the place name.
func (s *GooglePlacesSource) Fetch(ctx context.Context) ([]ingestion.SourceRecord, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("google places credentials missing (place_id=%q)", s.placeID)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"place_id": s.placeID,
			"fields":   "name,rating,reviews,user_ratings_total,formatted_address",
			"key":      s.apiKey,
			"language": "id",
		}).
		Get(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("place details request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("places API returned status %d", resp.StatusCode())
	}

	var details placeDetailsResponse
	if err := json.Unmarshal(resp.Body(), &details); err != nil {
		return nil, fmt.Errorf("failed to decode place details: %w", err)
	}
	if details.Status != "OK" {
		return nil, fmt.Errorf("places API error status %q", details.Status)
	}

	records := make([]ingestion.SourceRecord, 0, len(details.Result.Reviews))
	for _, review := range details.Result.Reviews {
		rec := ingestion.SourceRecord(review)
		rec["place_name"] = details.Result.Name
		records = append(records, rec)
	}

	logrus.WithFields(logrus.Fields{
		"channel": s.Name(),
		"place":   details.Result.Name,
		"reviews": len(records),
	}).Info("Google Places fetch completed")
	return records, nil
}
