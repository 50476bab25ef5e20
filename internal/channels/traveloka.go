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

// Traveloka review markup selectors. The page uses generated utility-class
// chains, so these track the live site and break when it redeploys.
const (
	travelokaReviewCard  = "div.css-1dbjc4n.r-14lw9ot.r-h1746q.r-kdyh1x.r-d045u9.r-1udh08x.r-d23pfw"
	travelokaAuthorSel   = "div.css-901oao.r-uh8wd5.r-ubezar.r-b88u0q.r-135wba7.r-fdjqy7"
	travelokaContentSel  = "div.css-1dbjc4n.r-1udh08x > div.css-1dbjc4n > div.css-901oao.r-uh8wd5.r-1b43r93.r-majxgm.r-rjixqe.r-fdjqy7"
	travelokaRatingSel   = `div[data-testid="tvat-ratingScore"]`
	travelokaDateSel     = "div.css-901oao.r-1ud240a.r-uh8wd5.r-1b43r93.r-b88u0q.r-1cwl3u0.r-fdjqy7"
	travelokaMaxReviews  = 100
)

// TravelokaSource crawls hotel review pages. Reviews carry relative dates and
// 0-100 scale rating text; the normalizer handles both.
type TravelokaSource struct {
	hotelURL string
	maxPages int
	client   *http.Client
}

var _ ingestion.Fetcher = (*TravelokaSource)(nil)

// NewTravelokaSource creates a Traveloka crawl source for one hotel page
func NewTravelokaSource(hotelURL string, maxPages int) *TravelokaSource {
	if maxPages <= 0 {
		maxPages = 5
	}
	return &TravelokaSource{
		hotelURL: hotelURL,
		maxPages: maxPages,
		client:   newCrawlClient(),
	}
}

func (s *TravelokaSource) Name() string { return "Traveloka" }

func (s *TravelokaSource) Type() string { return models.ChannelTypeCrawl }

func (s *TravelokaSource) BaseURL() string { return s.hotelURL }

// Enabled reports whether a crawl target is configured.
func (s *TravelokaSource) Enabled() bool { return s.hotelURL != "" }

// Fetch walks the hotel's review pages up to the page limit, deduplicating
// in-page repeats by author and content prefix the way repeated card renders
// duplicate reviews across scroll loads.
func (s *TravelokaSource) Fetch(ctx context.Context) ([]ingestion.SourceRecord, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("traveloka crawl target not configured")
	}

	var records []ingestion.SourceRecord
	seen := make(map[string]bool)
	hotelName := "Unknown"

	for page := 1; page <= s.maxPages; page++ {
		doc, err := fetchDocument(ctx, s.client, s.pageURL(page))
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

		cards := doc.Find(travelokaReviewCard)
		if cards.Length() == 0 {
			break
		}

		added := 0
		cards.Each(func(_ int, card *goquery.Selection) {
			author := strings.TrimSpace(card.Find(travelokaAuthorSel).First().Text())
			content := strings.TrimSpace(card.Find(travelokaContentSel).First().Text())
			rating := strings.TrimSpace(card.Find(travelokaRatingSel).First().Text())
			dateText := strings.TrimSpace(card.Find(travelokaDateSel).First().Text())
			if content == "" {
				return
			}

			key := author + "_" + truncateKey(content, 100)
			if seen[key] {
				return
			}
			seen[key] = true

			records = append(records, ingestion.SourceRecord{
				"author_name": author,
				"content":     content,
				"rating":      rating,
				"date_text":   dateText,
				"hotel_name":  hotelName,
			})
			added++
		})

		logrus.WithFields(logrus.Fields{
			"channel": s.Name(),
			"page":    page,
			"added":   added,
			"total":   len(records),
		}).Info("Crawled review page")

		if len(records) >= travelokaMaxReviews {
			break
		}
	}

	return records, nil
}

func (s *TravelokaSource) pageURL(page int) string {
	if page <= 1 {
		return s.hotelURL
	}
	parsed, err := url.Parse(s.hotelURL)
	if err != nil {
		return s.hotelURL
	}
	query := parsed.Query()
	query.Set("page", fmt.Sprintf("%d", page))
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func truncateKey(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
