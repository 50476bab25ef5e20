package channels

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacebookSource_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		pageID   string
		token    string
		expected bool
	}{
		{"both set", "page1", "token1", true},
		{"missing page id", "", "token1", false},
		{"missing token", "page1", "", false},
		{"both missing", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := NewFacebookSource("", tt.pageID, tt.token, 3)
			assert.Equal(t, tt.expected, source.Enabled())
		})
	}
}

func TestFacebookSource_FetchFlattensCommentsWithPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page1/posts":
			fmt.Fprint(w, `{"data":[{"id":"p1","message":"Promo akhir pekan","created_time":"2023-06-01T08:00:00+0000"}]}`)
		case "/p1/comments":
			if r.URL.Query().Get("page") == "2" {
				fmt.Fprint(w, `{"data":[{"id":"c2","message":"kamar bersih","from":{"name":"Andi"},"created_time":"2023-06-02T10:00:00+0000"}]}`)
				return
			}
			fmt.Fprintf(w, `{"data":[{"id":"c1","message":"pelayanan ramah","from":{"name":"Siti"},"created_time":"2023-06-02T09:00:00+0000"}],"paging":{"next":"%s/p1/comments?page=2"}}`, server.URL)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	source := NewFacebookSource(server.URL, "page1", "test-token", 3)
	records, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "c1", records[0].String("id"))
	assert.Equal(t, "pelayanan ramah", records[0].String("message"))
	assert.Equal(t, "p1", records[0].String("post_id"))
	assert.Equal(t, "Promo akhir pekan", records[0].String("post_message"))

	assert.Equal(t, "c2", records[1].String("id"))
	assert.Equal(t, "p1", records[1].String("post_id"))
}

func TestFacebookSource_FetchWithoutCredentials(t *testing.T) {
	source := NewFacebookSource("", "", "", 3)
	_, err := source.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFacebookSource_FetchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid token"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	source := NewFacebookSource(server.URL, "page1", "bad-token", 3)
	_, err := source.Fetch(context.Background())
	assert.Error(t, err)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "<none>", maskToken(""))
	assert.Equal(t, "***", maskToken("abc123"))

	long := "EAABsbCS1234567890abcdefghij"
	masked := maskToken(long)
	assert.Equal(t, "EAABsbCS12...fghij", masked)
	assert.NotContains(t, masked, long, "masked token must not leak the full value")
}
