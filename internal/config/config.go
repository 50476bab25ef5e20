// Package config loads pipeline configuration from environment variables.
// Adapters receive their credentials through this struct; nothing reads the
// environment after startup.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the ingestion pipeline
type Config struct {
	// Facebook Graph API
	FacebookBaseURL     string
	FacebookPageID      string
	FacebookAccessToken string
	FacebookPostLimit   int

	// Google Places API
	GoogleBaseURL string
	GoogleAPIKey  string
	GooglePlaceID string

	// Crawl targets
	TravelokaBaseURL   string
	TripadvisorBaseURL string
	CrawlMaxPages      int

	// Optional translation enrichment (empty endpoint disables it)
	TranslateEndpoint string
	TranslateTarget   string

	// Scheduled mode: a cron expression, empty means run once and exit
	IngestSchedule string

	// Status HTTP server port, empty disables the server
	Port string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		FacebookBaseURL:     getEnv("FB_BASE_URL", "https://graph.facebook.com/v24.0"),
		FacebookPageID:      getEnv("FB_PAGE_ID", ""),
		FacebookAccessToken: getEnv("FB_ACCESS_TOKEN", ""),
		FacebookPostLimit:   getIntEnv("FB_POST_LIMIT", 3),

		GoogleBaseURL: getEnv("GOOGLE_BASE_URL", "https://maps.googleapis.com/maps/api/place/details/json"),
		GoogleAPIKey:  getEnv("GOOGLE_API_KEY", ""),
		GooglePlaceID: getEnv("GOOGLE_PLACE_ID", ""),

		TravelokaBaseURL:   getEnv("TRAVELOKA_BASE_URL", ""),
		TripadvisorBaseURL: getEnv("TRIPADVISOR_BASE_URL", ""),
		CrawlMaxPages:      getIntEnv("CRAWL_MAX_PAGES", 5),

		TranslateEndpoint: getEnv("TRANSLATE_ENDPOINT", ""),
		TranslateTarget:   getEnv("TRANSLATE_TARGET", "id"),

		IngestSchedule: getEnv("INGEST_SCHEDULE", ""),

		Port: getEnv("PORT", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
