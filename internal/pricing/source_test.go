package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing configured means no source", func(t *testing.T) {
		src, err := NewSource(ctx, SourceConfig{})
		require.NoError(t, err)
		assert.Nil(t, src)
	})

	t.Run("fixed price", func(t *testing.T) {
		src, err := NewSource(ctx, SourceConfig{FixedPrice: 7 * Unit})
		require.NoError(t, err)
		fast, ok := src.FastPrice()
		assert.True(t, ok)
		assert.Equal(t, 7*Unit, fast)
	})

	t.Run("sources are mutually exclusive", func(t *testing.T) {
		_, err := NewSource(ctx, SourceConfig{UseAltA: true, UseAltB: true})
		assert.Error(t, err)

		_, err = NewSource(ctx, SourceConfig{PrimaryAPIKey: "key", FixedPrice: 1})
		assert.Error(t, err)
	})
}

func TestOracleClient(t *testing.T) {
	t.Run("fetches and caches the fast price", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "secret", r.URL.Query().Get("api-key"))
			w.Write([]byte(`{"fast": 42000000000}`))
		}))
		defer srv.Close()

		c := newOracleClient(srv.URL, "secret", time.Minute, time.Minute)
		require.NoError(t, c.fetchOnce(context.Background()))

		fast, ok := c.FastPrice()
		assert.True(t, ok)
		assert.Equal(t, 42*Unit, fast)
	})

	t.Run("no sample before the first fetch", func(t *testing.T) {
		c := newOracleClient("http://127.0.0.1:0", "", time.Minute, time.Minute)
		_, ok := c.FastPrice()
		assert.False(t, ok)
	})

	t.Run("sample expires", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"fast": 1000000000}`))
		}))
		defer srv.Close()

		c := newOracleClient(srv.URL, "", time.Minute, 10*time.Millisecond)
		require.NoError(t, c.fetchOnce(context.Background()))
		time.Sleep(25 * time.Millisecond)

		_, ok := c.FastPrice()
		assert.False(t, ok)
	})

	t.Run("error responses are errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		}))
		defer srv.Close()

		c := newOracleClient(srv.URL, "", time.Minute, time.Minute)
		assert.Error(t, c.fetchOnce(context.Background()))
	})

	t.Run("non-positive fast price is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"fast": 0}`))
		}))
		defer srv.Close()

		c := newOracleClient(srv.URL, "", time.Minute, time.Minute)
		assert.Error(t, c.fetchOnce(context.Background()))
	})
}
