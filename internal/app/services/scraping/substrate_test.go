package scraping

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubstrate_RenderSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	s := New(Config{Mode: ModeFree, RequestTimeout: 2 * time.Second}, nil)
	ticket, err := s.AcquireFetchSlot(context.Background(), "test")
	require.NoError(t, err)

	html, effective, err := s.Render(context.Background(), ticket, srv.URL)
	require.NoError(t, err)
	require.Contains(t, html, "ok")
	require.Equal(t, srv.URL, effective)
}

func TestSubstrate_RenderDetectsBlockPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Enter the characters you see below to verify you're human"))
	}))
	defer srv.Close()

	s := New(Config{Mode: ModeFree}, nil)
	ticket, err := s.AcquireFetchSlot(context.Background(), "amazon")
	require.NoError(t, err)

	_, _, err = s.Render(context.Background(), ticket, srv.URL)
	require.Error(t, err)
}

func TestSubstrate_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := New(Config{Mode: ModeFree, MaxRetries: 1}, nil)

	for i := 0; i < 3; i++ {
		ticket, err := s.AcquireFetchSlot(context.Background(), "amazon")
		require.NoError(t, err)
		_, _, _ = s.Render(context.Background(), ticket, srv.URL)
		s.ReportOutcome(ticket, false)
	}

	_, err := s.AcquireFetchSlot(context.Background(), "amazon")
	require.Error(t, err)
}

func TestSubstrate_FetchWithRetrySucceedsAfterTransientFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("<html>good</html>"))
	}))
	defer srv.Close()

	s := New(Config{Mode: ModeFree, MaxRetries: 3}, nil)
	html, _, err := s.FetchWithRetry(context.Background(), "ebay-"+t.Name(), srv.URL)
	require.NoError(t, err)
	require.Contains(t, html, "good")
}
