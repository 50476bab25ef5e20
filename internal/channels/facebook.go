// Package channels contains the fetch adapters: one per feedback source, each
// pulling raw source-native records for the ingestion core. API sources talk
// to their HTTP APIs; crawl sources scrape page markup. Every adapter gets its
// credentials through its constructor; there is no package-level client state.
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

// FacebookSource pulls page posts and their comments from the graph API.
// Each fetched record is one comment, annotated with its post context.
type FacebookSource struct {
	baseURL     string
	pageID      string
	accessToken string
	postLimit   int
	client      *resty.Client
}

var _ ingestion.Fetcher = (*FacebookSource)(nil)

// NewFacebookSource creates a Facebook graph API source
func NewFacebookSource(baseURL, pageID, accessToken string, postLimit int) *FacebookSource {
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v24.0"
	}
	if postLimit <= 0 {
		postLimit = 3
	}
	return &FacebookSource{
		baseURL:     baseURL,
		pageID:      pageID,
		accessToken: accessToken,
		postLimit:   postLimit,
		client:      resty.New().SetTimeout(15 * time.Second),
	}
}

func (s *FacebookSource) Name() string { return "Facebook" }

func (s *FacebookSource) Type() string { return models.ChannelTypeAPI }

func (s *FacebookSource) BaseURL() string { return s.baseURL }

// Enabled reports whether the adapter has the credentials it needs.
func (s *FacebookSource) Enabled() bool {
	return s.pageID != "" && s.accessToken != ""
}

type graphListResponse struct {
	Data   []map[string]interface{} `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// Fetch returns one record per comment across the page's latest posts.
func (s *FacebookSource) Fetch(ctx context.Context) ([]ingestion.SourceRecord, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("facebook credentials missing (page_id=%q token=%s)",
			s.pageID, maskToken(s.accessToken))
	}

	posts, err := s.fetchLatestPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page posts: %w", err)
	}

	var records []ingestion.SourceRecord
	for _, post := range posts {
		postID, _ := post["id"].(string)
		if postID == "" {
			continue
		}
		postMessage, _ := post["message"].(string)

		comments, err := s.fetchPostComments(ctx, postID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"channel": s.Name(),
				"post_id": postID,
			}).WithError(err).Error("Failed to fetch post comments")
			continue
		}

		for _, comment := range comments {
			rec := ingestion.SourceRecord(comment)
			rec["post_id"] = postID
			rec["post_message"] = postMessage
			records = append(records, rec)
		}
	}

	logrus.WithFields(logrus.Fields{
		"channel":  s.Name(),
		"posts":    len(posts),
		"comments": len(records),
	}).Info("Facebook fetch completed")
	return records, nil
}

func (s *FacebookSource) fetchLatestPosts(ctx context.Context) ([]map[string]interface{}, error) {
	var result graphListResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"access_token": s.accessToken,
			"limit":        fmt.Sprintf("%d", s.postLimit),
			"fields":       "id,message,created_time",
		}).
		Get(fmt.Sprintf("%s/%s/posts", s.baseURL, s.pageID))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("graph API returned status %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// fetchPostComments collects all comments for a post, following paging.next
// to exhaustion. A failed page ends pagination with what was collected.
func (s *FacebookSource) fetchPostComments(ctx context.Context, postID string) ([]map[string]interface{}, error) {
	var comments []map[string]interface{}

	var result graphListResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"access_token": s.accessToken,
			"limit":        "100",
			"fields":       "id,message,from,created_time",
		}).
		Get(fmt.Sprintf("%s/%s/comments", s.baseURL, postID))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("graph API returned status %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}

	for {
		comments = append(comments, result.Data...)

		next := result.Paging.Next
		if next == "" {
			break
		}

		// paging.next already carries the access token.
		resp, err := s.client.R().SetContext(ctx).Get(next)
		if err != nil || resp.StatusCode() != 200 {
			logrus.WithFields(logrus.Fields{
				"channel": s.Name(),
				"post_id": postID,
			}).Warn("Comment pagination stopped early")
			break
		}
		result = graphListResponse{}
		if err := json.Unmarshal(resp.Body(), &result); err != nil {
			break
		}
	}

	return comments, nil
}

// maskToken keeps credentials out of logs and error strings.
func maskToken(token string) string {
	if token == "" {
		return "<none>"
	}
	if len(token) <= 15 {
		return "***"
	}
	return token[:10] + "..." + token[len(token)-5:]
}
