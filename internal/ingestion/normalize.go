package ingestion

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Normalizer maps one source-native record into at most one canonical record.
// A nil result means the record was dropped (empty content, out-of-policy
// crawl date); drops are logged and counted, never raised.
type Normalizer interface {
	// Source is the channel-scoped tag carried in metadata and fingerprints.
	Source() string
	Normalize(rec SourceRecord, channelID uuid.UUID, now time.Time) *Record
}

// fingerprintContentCap bounds the content bytes fed into fallback identity.
const fingerprintContentCap = 300

// postMessageCap bounds how much post context is kept in comment metadata.
const postMessageCap = 200

// FacebookNormalizer handles graph-API page comments. Comments have no
// rating concept, so Rating stays nil rather than zero.
type FacebookNormalizer struct{}

func (FacebookNormalizer) Source() string { return "facebook" }

func (n FacebookNormalizer) Normalize(rec SourceRecord, channelID uuid.UUID, now time.Time) *Record {
	content := rec.String("message")
	if strings.TrimSpace(content) == "" {
		logrus.WithFields(logrus.Fields{
			"channel":    n.Source(),
			"comment_id": rec.String("id"),
		}).Warn("Skipping comment with empty content")
		return nil
	}

	author := "Guest"
	if from := rec.Map("from"); from != nil {
		if name, ok := from["name"].(string); ok && name != "" {
			author = name
		}
	}

	rawCreated := rec.String("created_time")
	createdAt, parsed := ParseTimestamp(rawCreated)
	if !parsed {
		createdAt = now
	}

	createdForID := rawCreated
	if createdForID == "" {
		createdForID = createdAt.Format(time.RFC3339)
	}
	externalID := ResolveIdentity(rec.String("id"), "fb", author,
		truncate(content, fingerprintContentCap), createdForID)

	sourceURL := ""
	if postID := rec.String("post_id"); postID != "" {
		sourceURL = fmt.Sprintf("https://facebook.com/%s", postID)
	}

	return &Record{
		ChannelID:       channelID,
		ExternalID:      externalID,
		AuthorName:      author,
		Rating:          nil,
		Content:         content,
		SourceURL:       sourceURL,
		ReviewCreatedAt: createdAt,
		Metadata: map[string]interface{}{
			"source":               n.Source(),
			"comment_id":           rec.String("id"),
			"post_id":              rec.String("post_id"),
			"post_message":         truncate(rec.String("post_message"), postMessageCap),
			"original_data":        map[string]interface{}(rec),
			"created_time_raw":     rawCreated,
			"created_time_missing": !parsed,
		},
	}
}

// GoogleNormalizer handles place-details API reviews. The API reports the
// authoring time as a unix epoch and has no stable review id, so identity is
// always the content fingerprint.
type GoogleNormalizer struct{}

func (GoogleNormalizer) Source() string { return "google" }

func (n GoogleNormalizer) Normalize(rec SourceRecord, channelID uuid.UUID, now time.Time) *Record {
	content := rec.String("text")
	if strings.TrimSpace(content) == "" {
		logrus.WithFields(logrus.Fields{
			"channel": n.Source(),
			"author":  rec.String("author_name"),
		}).Warn("Skipping review with empty content")
		return nil
	}

	author := rec.String("author_name")
	if author == "" {
		author = "Guest"
	}

	var rating *float64
	if v, ok := rec.Float("rating"); ok {
		rating = &v
	}

	rawEpoch := ""
	createdAt := now
	createdMissing := true
	if epoch, ok := rec.Float("time"); ok {
		createdAt = time.Unix(int64(epoch), 0)
		createdMissing = false
		rawEpoch = strconv.FormatInt(int64(epoch), 10)
	}

	createdForID := rawEpoch
	if createdForID == "" {
		createdForID = createdAt.Format(time.RFC3339)
	}
	externalID := Fingerprint("google", author, truncate(content, fingerprintContentCap), createdForID)

	metadata := map[string]interface{}{
		"source":               n.Source(),
		"original_language":    rec.String("language"),
		"profile_photo_url":    rec.String("profile_photo_url"),
		"relative_time":        rec.String("relative_time_description"),
		"original_data":        map[string]interface{}(rec),
		"created_time_raw":     rawEpoch,
		"created_time_missing": createdMissing,
	}

	// Translation enrichment runs before normalization; carry its provenance.
	if translated, ok := rec["translated"].(bool); ok {
		metadata["translated"] = translated
		metadata["original_content"] = rec.String("original_content")
		if lang := rec.String("detected_language"); lang != "" {
			metadata["original_language"] = lang
		}
	}

	return &Record{
		ChannelID:       channelID,
		ExternalID:      externalID,
		AuthorName:      author,
		Rating:          rating,
		Content:         content,
		SourceURL:       rec.String("author_url"),
		ReviewCreatedAt: createdAt,
		Metadata:        metadata,
	}
}

// TravelokaNormalizer handles crawled hotel reviews. Ratings arrive as free
// text on a 0-100 or 0-10 scale and are normalized onto 0-10; dates are
// relative ("3 days ago") and records with unrecognized date text are
// dropped rather than assigned a guessed date.
type TravelokaNormalizer struct{}

func (TravelokaNormalizer) Source() string { return "traveloka" }

func (n TravelokaNormalizer) Normalize(rec SourceRecord, channelID uuid.UUID, now time.Time) *Record {
	content := rec.String("content")
	if strings.TrimSpace(content) == "" {
		logrus.WithFields(logrus.Fields{
			"channel": n.Source(),
			"author":  rec.String("author_name"),
		}).Warn("Skipping review with empty content")
		return nil
	}

	author := rec.String("author_name")
	if author == "" {
		author = "Guest"
	}

	dateText := rec.String("date_text")
	createdAt, ok := ParseRelativeDate(dateText, now)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"channel":   n.Source(),
			"author":    author,
			"date_text": dateText,
		}).Warn("Dropping review with unparseable relative date")
		return nil
	}

	var rating *float64
	ratingText := rec.String("rating")
	if v, parsed := NormalizeRating(ratingText); parsed {
		rating = &v
	}

	externalID := Fingerprint("traveloka", author, truncate(content, fingerprintContentCap), dateText)

	return &Record{
		ChannelID:       channelID,
		ExternalID:      externalID,
		AuthorName:      author,
		Rating:          rating,
		Content:         content,
		ReviewCreatedAt: createdAt,
		Metadata: map[string]interface{}{
			"source":          n.Source(),
			"hotel_name":      rec.String("hotel_name"),
			"raw_date_text":   dateText,
			"original_rating": ratingText,
			"original_data":   map[string]interface{}(rec),
		},
	}
}

// TripadvisorNormalizer handles crawled reviews whose ratings are bubble
// scores formatted "X/5". Policy for this source is to preserve the native
// representation, so the value lands in RatingText with no scale correction.
type TripadvisorNormalizer struct{}

func (TripadvisorNormalizer) Source() string { return "tripadvisor" }

func (n TripadvisorNormalizer) Normalize(rec SourceRecord, channelID uuid.UUID, now time.Time) *Record {
	content := rec.String("content")
	if strings.TrimSpace(content) == "" {
		logrus.WithFields(logrus.Fields{
			"channel": n.Source(),
			"author":  rec.String("author_name"),
		}).Warn("Skipping review with empty content")
		return nil
	}

	author := rec.String("author_name")
	if author == "" {
		author = "Anonymous"
	}

	dateText := rec.String("date_text")
	createdAt, ok := ParseAbsoluteDate(dateText)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"channel":   n.Source(),
			"author":    author,
			"date_text": dateText,
		}).Warn("Dropping review with unparseable date")
		return nil
	}

	externalID := Fingerprint("tripadvisor", author, truncate(content, fingerprintContentCap), dateText)

	return &Record{
		ChannelID:       channelID,
		ExternalID:      externalID,
		AuthorName:      author,
		RatingText:      rec.String("rating"),
		Content:         content,
		ReviewCreatedAt: createdAt,
		Metadata: map[string]interface{}{
			"source":          n.Source(),
			"hotel_name":      rec.String("hotel_name"),
			"date_of_stay":    rec.String("date_of_stay"),
			"raw_review_date": dateText,
			"original_data":   map[string]interface{}(rec),
		},
	}
}
