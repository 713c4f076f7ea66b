package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"arxiv-radar/config"
)

func newTestFetcher(baseURL string) *Fetcher {
	return NewFetcher(&config.Config{ArxivBaseURL: baseURL}, zap.NewNop())
}

func TestFetcherURLs(t *testing.T) {
	f := newTestFetcher("https://arxiv.org")

	assert.Equal(t, "https://arxiv.org/abs/2306.01001", f.AbsURL("2306.01001"))
	assert.Equal(t, "https://arxiv.org/pdf/2306.01001.pdf", f.PDFURL("2306.01001"))
	assert.Equal(t, "https://arxiv.org/e-print/2306.01001", f.SourceURL("2306.01001"))
	assert.Equal(t, "https://arxiv.org/list/cs.LG/pastweek?show=500", f.ListingURL("cs.LG", "pastweek", 500))
}

func TestFetchAbs(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html>abs</html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL)
	data, err := f.FetchAbs(context.Background(), "2306.01001")
	require.NoError(t, err)

	assert.Equal(t, []byte("<html>abs</html>"), data)
	assert.Equal(t, "/abs/2306.01001", gotPath)
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL)
	_, err := f.FetchPDF(context.Background(), "2306.01001")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, fetchErr.URL, "/pdf/2306.01001.pdf")
}

func TestFetchConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	f := newTestFetcher(srv.URL)
	_, err := f.FetchSource(context.Background(), "2306.01001")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetchContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFetcher(srv.URL)
	_, err := f.FetchListing(ctx, "cs.LG", "pastweek", 500)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, context.Canceled)
}
