package youtube

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/montevideo/internal/logger"
)

const popularResponse = `{
  "kind": "youtube#videoListResponse",
  "items": [
    {
      "kind": "youtube#video",
      "id": "c79E-t7j4CE",
      "snippet": {
        "title": "Brzoza",
        "description": "Eurovision 2021",
        "channelTitle": "Rafal Brzozowski",
        "tags": ["music", "eurovision"]
      }
    },
    {
      "kind": "youtube#video",
      "id": "dQw4w9WgXcQ",
      "snippet": {
        "title": "Never Gonna Give You Up",
        "description": "",
        "channelTitle": "Rick Astley"
      }
    }
  ]
}`

func TestClient_MostPopular(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/youtube/v3/videos", r.URL.Path)
			assert.Equal(t, "snippet", r.URL.Query().Get("part"))
			assert.Equal(t, "mostPopular", r.URL.Query().Get("chart"))
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(popularResponse))
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.URL, "test-key", logger.NewNoOpLogger())

		items, err := c.MostPopular(t.Context())

		require.NoError(t, err)
		require.Len(t, items, 2)
		require.Equal(t, "c79E-t7j4CE", items[0].ID)
		require.Equal(t, "Rafal Brzozowski", items[0].Snippet.ChannelTitle)
		require.Equal(t, []string{"music", "eurovision"}, items[0].Snippet.Tags)
		require.Nil(t, items[1].Snippet.Tags)
	})

	t.Run("throttled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "120")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.URL, "test-key", logger.NewNoOpLogger())

		_, err := c.MostPopular(t.Context())

		var ytErr *Error
		require.ErrorAs(t, err, &ytErr)
		require.Equal(t, CodeRetryAfter, ytErr.Code)
		require.Equal(t, 120*time.Second, ytErr.RetryAfter)
	})

	t.Run("quota exceeded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.URL, "test-key", logger.NewNoOpLogger())

		_, err := c.MostPopular(t.Context())

		var ytErr *Error
		require.ErrorAs(t, err, &ytErr)
		require.Equal(t, CodeRetryAfter, ytErr.Code)
		require.Equal(t, defaultRetryAfter, ytErr.RetryAfter, "default used if no header")
	})

	t.Run("unknown status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.URL, "bad-key", logger.NewNoOpLogger())

		_, err := c.MostPopular(t.Context())

		var ytErr *Error
		require.ErrorAs(t, err, &ytErr)
		require.Equal(t, CodeUnknown, ytErr.Code)
	})

	t.Run("broken json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"items": [`))
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.URL, "test-key", logger.NewNoOpLogger())

		_, err := c.MostPopular(t.Context())

		require.Error(t, err)
	})

	t.Run("default address", func(t *testing.T) {
		c := NewClient("", "test-key", logger.NewNoOpLogger())

		require.Equal(t, DefaultAddr, c.Addr)
	})
}
