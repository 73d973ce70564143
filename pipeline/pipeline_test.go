package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealradar/extract"
	"dealradar/fetcher"
	"dealradar/models"
)

func testPage(title, price string) string {
	var priceMeta string
	if price != "" {
		priceMeta = fmt.Sprintf(`<meta property="product:price:amount" content="%s">`, price)
	}
	return fmt.Sprintf(`<html><head>
<title>%s</title>
<meta property="og:title" content="%s">
%s
<meta property="og:image" content="https://cdn.example.com/item.jpg">
<meta property="og:description" content="A fine product.">
</head><body><h1>%s</h1>%s</body></html>`,
		title, title, priceMeta, title, strings.Repeat("<p>details</p>", 120))
}

func newTestPipeline(relays ...fetcher.ProxyRelay) *Pipeline {
	if relays == nil {
		relays = []fetcher.ProxyRelay{}
	}
	return New(fetcher.New(fetcher.Config{Relays: relays}))
}

func TestRunDirectScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testPage("Wireless Bluetooth Speaker", "59.99"))
	}))
	defer srv.Close()

	p := newTestPipeline()
	product, err := p.Run(context.Background(), srv.URL+"/wireless-bluetooth-speaker", "")
	require.NoError(t, err)

	assert.Equal(t, "Wireless Bluetooth Speaker", product.Name)
	assert.Equal(t, 59.99, product.Price)
	assert.Nil(t, product.OriginalPrice)
	assert.Nil(t, product.DiscountPercent)
	assert.Equal(t, models.QualityRealTime, product.Quality)
	assert.Equal(t, models.CategoryElectronics, product.Category)
	assert.Equal(t, "https://cdn.example.com/item.jpg", product.Image)
	assert.Equal(t, models.StoreUnknown, product.Store)
	assert.NotEmpty(t, product.ID)
}

type stubRelay struct {
	html string
}

func (s stubRelay) Name() string           { return "stub" }
func (s stubRelay) Timeout() time.Duration { return time.Second }
func (s stubRelay) FetchHTML(ctx context.Context, client *http.Client, target string) (string, error) {
	return s.html, nil
}

// Content obtained through a relay is tagged proxy-scrape, one tier
// below a direct hit.
func TestRunProxyScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := newTestPipeline(stubRelay{html: testPage("Cordless Drill Kit", "89.00")})
	product, err := p.Run(context.Background(), srv.URL+"/cordless-drill-kit", "")
	require.NoError(t, err)

	assert.Equal(t, models.QualityProxy, product.Quality)
	assert.Equal(t, 89.00, product.Price)
	assert.Equal(t, models.CategoryToolsHardware, product.Category)
}

// Every fetch tier failing is not fatal: the record is built from URL
// text with a deterministic placeholder price.
func TestRunDegradedToURLHeuristic(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // connection refused for every tier

	target := srv.URL + "/apple-airpods-pro-wireless-earbuds/9999999"
	p := newTestPipeline()
	product, err := p.Run(context.Background(), target, "")
	require.NoError(t, err)

	assert.Equal(t, "Apple Airpods Pro Wireless Earbuds", product.Name)
	assert.Equal(t, models.QualityURLHeuristic, product.Quality)
	assert.Equal(t, extract.PlaceholderPrice(target), product.Price)
	assert.Equal(t, PlaceholderImage, product.Image)
	assert.Equal(t, models.CategoryElectronics, product.Category)
}

// No page content and no usable URL text is the one fatal outcome.
func TestRunExtractionFailed(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close()

	p := newTestPipeline()
	_, err := p.Run(context.Background(), srv.URL+"/", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrExtractionFailed)
}

// A verified table hit skips fetching entirely and carries the highest
// confidence tier.
func TestRunKnownProduct(t *testing.T) {
	p := newTestPipeline()
	product, err := p.Run(context.Background(), "https://www.amazon.com/Apple-AirPods-Pro/dp/B0BDHWDR12", "")
	require.NoError(t, err)

	assert.Equal(t, "Apple AirPods Pro (2nd Generation)", product.Name)
	assert.Equal(t, 199.99, product.Price)
	require.NotNil(t, product.OriginalPrice)
	assert.Equal(t, 249.99, *product.OriginalPrice)
	require.NotNil(t, product.DiscountPercent)
	assert.Equal(t, 20, *product.DiscountPercent)
	assert.Equal(t, models.QualityKnownDatabase, product.Quality)
	assert.Equal(t, models.StoreAmazon, product.Store)
	assert.Equal(t, models.CategoryElectronics, product.Category)
}

// A page that yields a name but no price still produces a record, at
// the lowest confidence tier with the placeholder price.
func TestRunMissingPriceDowngrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testPage("Handmade Ceramic Vase", ""))
	}))
	defer srv.Close()

	target := srv.URL + "/handmade-ceramic-vase"
	p := newTestPipeline()
	product, err := p.Run(context.Background(), target, "")
	require.NoError(t, err)

	assert.Equal(t, "Handmade Ceramic Vase", product.Name)
	assert.Equal(t, models.QualityBasicFallback, product.Quality)
	assert.Equal(t, extract.PlaceholderPrice(target), product.Price)
}

func TestRunCategoryOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testPage("Wireless Bluetooth Speaker", "59.99"))
	}))
	defer srv.Close()

	p := newTestPipeline()
	product, err := p.Run(context.Background(), srv.URL+"/x", models.CategoryOffice)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryOffice, product.Category)
}

// Re-running the same URL yields the same ID so upserts dedupe.
func TestRunStableID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testPage("Wireless Bluetooth Speaker", "59.99"))
	}))
	defer srv.Close()

	p := newTestPipeline()
	first, err := p.Run(context.Background(), srv.URL+"/x", "")
	require.NoError(t, err)
	second, err := p.Run(context.Background(), srv.URL+"/x", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
