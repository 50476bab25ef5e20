package channels

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"omni-feedback/internal/ingestion"
	"omni-feedback/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// Tripadvisor review markup selectors.
const (
	tripadvisorReviewCard = `div[data-test-target="HR_CC_CARD"]`
	tripadvisorAuthorSel  = "span.biGQs._P.SewaP.OgHoE"
	tripadvisorContentSel = "span.JguWG"
	tripadvisorRatingSel  = `svg[data-automation="bubbleRatingImage"] title`
	tripadvisorDateSel    = "div.biGQs._P.VImYz.AWdfh"
	tripadvisorStaySel    = "span.biGQs._P.VImYz.xENVe"
	tripadvisorNextSel    = `a[data-smoke-attr="pagination-next-arrow"]`
)

// TripadvisorSource crawls hotel review pages. Bubble ratings are emitted
// verbatim as "X/5" text; dates are calendar dates behind a "wrote a review"
// label.
type TripadvisorSource struct {
	hotelURL string
	maxPages int
	client   *http.Client
}

var _ ingestion.Fetcher = (*TripadvisorSource)(nil)

// NewTripadvisorSource creates a Tripadvisor crawl source for one hotel page
func NewTripadvisorSource(hotelURL string, maxPages int) *TripadvisorSource {
	if maxPages <= 0 {
		maxPages = 5
	}
	return &TripadvisorSource{
		hotelURL: hotelURL,
		maxPages: maxPages,
		client:   newCrawlClient(),
	}
}

func (s *TripadvisorSource) Name() string { return "Tripadvisor" }

func (s *TripadvisorSource) Type() string { return models.ChannelTypeCrawl }

func (s *TripadvisorSource) BaseURL() string { return s.hotelURL }

// Enabled reports whether a crawl target is configured.
func (s *TripadvisorSource) Enabled() bool { return s.hotelURL != "" }

// Fetch walks the hotel's review pages, following the pagination link until
// it disappears or the page limit is reached.
func (s *TripadvisorSource) Fetch(ctx context.Context) ([]ingestion.SourceRecord, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("tripadvisor crawl target not configured")
	}

	var records []ingestion.SourceRecord
	hotelName := "Unknown Hotel"
	pageURL := s.hotelURL

	for page := 1; page <= s.maxPages; page++ {
		doc, err := fetchDocument(ctx, s.client, pageURL)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			logrus.WithFields(logrus.Fields{
				"channel": s.Name(),
				"page":    page,
			}).WithError(err).Warn("Stopping crawl on failed page")
			break
		}

		if page == 1 {
			if name := strings.TrimSpace(doc.Find("h1").First().Text()); name != "" {
				hotelName = name
			}
		}

		cards := doc.Find(tripadvisorReviewCard)
		cards.Each(func(_ int, card *goquery.Selection) {
			rec := s.extractReview(card, hotelName)
			if rec != nil {
				records = append(records, rec)
			}
		})

		logrus.WithFields(logrus.Fields{
			"channel": s.Name(),
			"page":    page,
			"cards":   cards.Length(),
			"total":   len(records),
		}).Info("Crawled review page")

		next, ok := s.nextPageURL(doc)
		if !ok {
			break
		}
		pageURL = next
	}

	return records, nil
}

func (s *TripadvisorSource) extractReview(card *goquery.Selection, hotelName string) ingestion.SourceRecord {
	author := strings.TrimSpace(card.Find(tripadvisorAuthorSel).First().Text())
	content := strings.TrimSpace(card.Find(tripadvisorContentSel).First().Text())
	ratingTitle := strings.TrimSpace(card.Find(tripadvisorRatingSel).First().Text())
	rawDate := strings.TrimSpace(card.Find(tripadvisorDateSel).First().Text())
	dateOfStay := strings.TrimSpace(card.Find(tripadvisorStaySel).First().Text())

	if content == "" || ratingTitle == "" {
		return nil
	}

	// Rating titles read "4.0 of 5 bubbles"; keep the native "X/5" format.
	ratingValue := strings.Fields(ratingTitle)[0]

	// Date labels read "Jane D wrote a review December 25, 2023".
	if idx := strings.Index(rawDate, " wrote a review "); idx >= 0 {
		rawDate = rawDate[idx+len(" wrote a review "):]
	}

	return ingestion.SourceRecord{
		"author_name":  author,
		"content":      content,
		"rating":       fmt.Sprintf("%s/5", ratingValue),
		"date_text":    rawDate,
		"date_of_stay": dateOfStay,
		"hotel_name":   hotelName,
	}
}

func (s *TripadvisorSource) nextPageURL(doc *goquery.Document) (string, bool) {
	href, exists := doc.Find(tripadvisorNextSel).First().Attr("href")
	if !exists || href == "" {
		return "", false
	}

	base, err := url.Parse(s.hotelURL)
	if err != nil {
		return "", false
	}
	next, err := base.Parse(href)
	if err != nil {
		return "", false
	}
	return next.String(), true
}
