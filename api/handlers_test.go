package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"dealradar/config"
	"dealradar/fetcher"
	"dealradar/models"
	"dealradar/pipeline"
	"dealradar/storage"
)

func newTestRouter(t *testing.T) (*mux.Router, *storage.JSONStore) {
	t.Helper()
	store, err := storage.NewJSONStore(filepath.Join(t.TempDir(), "products.json"))
	require.NoError(t, err)

	f := fetcher.New(fetcher.Config{Relays: []fetcher.ProxyRelay{}})
	h := NewHandler(store, pipeline.New(f), nil)

	r := mux.NewRouter()
	h.Register(r)
	return r, store
}

func seedProduct(t *testing.T, store *storage.JSONStore, id, name string, category models.Category, storeTag models.StoreTag, discount int) {
	t.Helper()
	p := &models.Product{
		ID:        id,
		Name:      name,
		Price:     50,
		Store:     storeTag,
		Category:  category,
		Quality:   models.QualityRealTime,
		CreatedAt: time.Now().UTC(),
	}
	if discount > 0 {
		orig := p.Price * 100 / float64(100-discount)
		p.OriginalPrice = &orig
		p.DiscountPercent = &discount
	}
	_, err := store.Upsert(context.Background(), p)
	require.NoError(t, err)
}

func doRequest(r *mux.Router, method, path string, body []byte, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListDealsFilters(t *testing.T) {
	r, store := newTestRouter(t)
	seedProduct(t, store, "p1", "Wireless Earbuds", models.CategoryElectronics, models.StoreAmazon, 0)
	seedProduct(t, store, "p2", "Garden Hose", models.CategoryGarden, models.StoreWalmart, 0)
	seedProduct(t, store, "p3", "USB Charger", models.CategoryElectronics, models.StoreWalmart, 0)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"no filter", "", []string{"p1", "p2", "p3"}},
		{"by category", "?category=electronics", []string{"p1", "p3"}},
		{"by store", "?store=walmart", []string{"p2", "p3"}},
		{"category and store", "?category=electronics&store=walmart", []string{"p3"}},
		{"search", "?search=garden", []string{"p2"}},
		{"search case insensitive", "?search=USB", []string{"p3"}},
		{"no match", "?category=books", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(r, http.MethodGet, "/api/deals"+tt.query, nil, "")
			require.Equal(t, http.StatusOK, rec.Code)

			var got []models.Product
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
		})
	}
}

func TestFeaturedDealsOrder(t *testing.T) {
	r, store := newTestRouter(t)
	seedProduct(t, store, "small", "Deal A", models.CategoryElectronics, models.StoreAmazon, 10)
	seedProduct(t, store, "none", "Deal B", models.CategoryElectronics, models.StoreAmazon, 0)
	seedProduct(t, store, "big", "Deal C", models.CategoryElectronics, models.StoreAmazon, 40)

	rec := doRequest(r, http.MethodGet, "/api/deals/featured", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "big", got[0].ID)
	assert.Equal(t, "small", got[1].ID)
	assert.Equal(t, "none", got[2].ID)
}

func TestGetDeal(t *testing.T) {
	r, store := newTestRouter(t)
	seedProduct(t, store, "p1", "Wireless Earbuds", models.CategoryElectronics, models.StoreAmazon, 0)

	rec := doRequest(r, http.MethodGet, "/api/deals/p1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(r, http.MethodGet, "/api/deals/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCategories(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doRequest(r, http.MethodGet, "/api/categories", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 17)
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doRequest(r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func configureAuth(t *testing.T, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	prevHash, prevSecret := config.AdminPasswordHash, config.JWTSecret
	config.AdminPasswordHash = string(hash)
	config.JWTSecret = "test-secret"
	t.Cleanup(func() {
		config.AdminPasswordHash, config.JWTSecret = prevHash, prevSecret
	})
}

func login(t *testing.T, r *mux.Router, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"password": password})
	rec := doRequest(r, http.MethodPost, "/api/auth/login", body, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func TestLogin(t *testing.T) {
	r, _ := newTestRouter(t)
	configureAuth(t, "hunter2")

	t.Run("valid password", func(t *testing.T) {
		login(t, r, "hunter2")
	})

	t.Run("wrong password", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"password": "wrong"})
		rec := doRequest(r, http.MethodPost, "/api/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing body", func(t *testing.T) {
		rec := doRequest(r, http.MethodPost, "/api/auth/login", []byte("{}"), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginUnconfigured(t *testing.T) {
	r, _ := newTestRouter(t)
	prevHash := config.AdminPasswordHash
	config.AdminPasswordHash = ""
	t.Cleanup(func() { config.AdminPasswordHash = prevHash })

	body, _ := json.Marshal(map[string]string{"password": "anything"})
	rec := doRequest(r, http.MethodPost, "/api/auth/login", body, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	r, store := newTestRouter(t)
	configureAuth(t, "hunter2")
	seedProduct(t, store, "p1", "Wireless Earbuds", models.CategoryElectronics, models.StoreAmazon, 0)

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(r, http.MethodDelete, "/api/deals/p1", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doRequest(r, http.MethodDelete, "/api/deals/p1", nil, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token deletes", func(t *testing.T) {
		token := login(t, r, "hunter2")
		rec := doRequest(r, http.MethodDelete, "/api/deals/p1", nil, token)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(r, http.MethodDelete, "/api/deals/p1", nil, token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAddDeal(t *testing.T) {
	r, _ := newTestRouter(t)
	configureAuth(t, "hunter2")
	token := login(t, r, "hunter2")

	page := fmt.Sprintf(`<html><head>
<meta property="og:title" content="Wireless Gaming Mouse">
<meta property="product:price:amount" content="39.99">
</head><body>%s</body></html>`, strings.Repeat("<p>details</p>", 120))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	t.Run("missing url", func(t *testing.T) {
		rec := doRequest(r, http.MethodPost, "/api/deals", []byte(`{}`), token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("creates then updates", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"url": srv.URL + "/wireless-gaming-mouse"})
		rec := doRequest(r, http.MethodPost, "/api/deals", body, token)
		require.Equal(t, http.StatusCreated, rec.Code)

		var p models.Product
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, "Wireless Gaming Mouse", p.Name)
		assert.Equal(t, 39.99, p.Price)

		rec = doRequest(r, http.MethodPost, "/api/deals", body, token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("hopeless url is a client error", func(t *testing.T) {
		dead := httptest.NewServer(nil)
		dead.Close()

		body, _ := json.Marshal(map[string]string{"url": dead.URL + "/"})
		rec := doRequest(r, http.MethodPost, "/api/deals", body, token)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
