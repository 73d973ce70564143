package importer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealradar/fetcher"
	"dealradar/pipeline"
	"dealradar/storage"
)

func TestRunCountsOutcomes(t *testing.T) {
	page := fmt.Sprintf(`<html><head>
<meta property="og:title" content="Wireless Bluetooth Speaker">
<meta property="product:price:amount" content="59.99">
</head><body>%s</body></html>`, strings.Repeat("<p>details</p>", 120))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	dead := httptest.NewServer(nil)
	dead.Close()

	store, err := storage.NewJSONStore(filepath.Join(t.TempDir(), "products.json"))
	require.NoError(t, err)

	f := fetcher.New(fetcher.Config{Relays: []fetcher.ProxyRelay{}})
	im := New(pipeline.New(f), store, nil, time.Millisecond)

	urls := []string{
		srv.URL + "/speaker-one",
		srv.URL + "/speaker-one", // duplicate becomes an update
		dead.URL + "/",           // no content, no URL text: fails
	}
	summary := im.Run(context.Background(), urls, "")

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Failed)
	assert.False(t, summary.Finished.Before(summary.Started))

	all, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRunCancelledContext(t *testing.T) {
	store, err := storage.NewJSONStore(filepath.Join(t.TempDir(), "products.json"))
	require.NoError(t, err)

	f := fetcher.New(fetcher.Config{Relays: []fetcher.ProxyRelay{}})
	im := New(pipeline.New(f), store, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := im.Run(ctx, []string{"https://example.com/a", "https://example.com/b"}, "")
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 0, summary.Created+summary.Updated+summary.Failed)
}
