// Package api exposes the deal catalog over HTTP: read-only views for
// the frontend plus authenticated endpoints that run the extraction
// pipeline.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"dealradar/classify"
	"dealradar/models"
	"dealradar/pipeline"
	"dealradar/storage"
)

// Handler wires the HTTP surface to the store and the pipeline.
type Handler struct {
	store  storage.ProductStore
	pipe   *pipeline.Pipeline
	mirror *storage.ImageMirror
}

func NewHandler(store storage.ProductStore, pipe *pipeline.Pipeline, mirror *storage.ImageMirror) *Handler {
	return &Handler{store: store, pipe: pipe, mirror: mirror}
}

// Register mounts all routes on the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/deals", h.ListDeals).Methods(http.MethodGet)
	r.HandleFunc("/api/deals/featured", h.FeaturedDeals).Methods(http.MethodGet)
	r.HandleFunc("/api/deals/{id}", h.GetDeal).Methods(http.MethodGet)
	r.HandleFunc("/api/categories", h.ListCategories).Methods(http.MethodGet)
	r.HandleFunc("/api/deals", h.requireAdmin(h.AddDeal)).Methods(http.MethodPost)
	r.HandleFunc("/api/deals/{id}", h.requireAdmin(h.DeleteDeal)).Methods(http.MethodDelete)
	r.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
}

// ListDeals returns the catalog, optionally filtered by category, store
// and a case-insensitive name/description search. The catalog lives in
// memory; a linear scan is plenty at this size.
func (h *Handler) ListDeals(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.All(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load deals")
		return
	}

	category := r.URL.Query().Get("category")
	store := r.URL.Query().Get("store")
	search := strings.ToLower(r.URL.Query().Get("search"))

	filtered := products[:0]
	for _, p := range products {
		if category != "" && string(p.Category) != category {
			continue
		}
		if store != "" && string(p.Store) != store {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		filtered = append(filtered, p)
	}

	respondJSON(w, http.StatusOK, filtered)
}

const featuredCount = 12

// FeaturedDeals returns the deepest discounts for the landing page.
func (h *Handler) FeaturedDeals(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.All(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load deals")
		return
	}

	sort.SliceStable(products, func(i, j int) bool {
		return discountOf(products[i]) > discountOf(products[j])
	})
	if len(products) > featuredCount {
		products = products[:featuredCount]
	}
	respondJSON(w, http.StatusOK, products)
}

func discountOf(p models.Product) int {
	if p.DiscountPercent == nil {
		return 0
	}
	return *p.DiscountPercent
}

func (h *Handler) GetDeal(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	product, err := h.store.Get(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		respondError(w, http.StatusNotFound, "deal not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load deal")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, classify.Categories())
}

// AddDeal runs the pipeline on a submitted URL and persists the result.
type addDealRequest struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

func (h *Handler) AddDeal(w http.ResponseWriter, r *http.Request) {
	var req addDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		respondError(w, http.StatusBadRequest, "please provide a product 'url' in the JSON body")
		return
	}

	product, err := h.pipe.Run(r.Context(), req.URL, models.Category(req.Category))
	if err != nil {
		// Total extraction failure is a user problem, not a server one.
		if errors.Is(err, models.ErrExtractionFailed) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.WithFields(log.Fields{"url": req.URL, "error": err}).Error("pipeline failure")
		respondError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	if h.mirror != nil {
		product.Image = h.mirror.Mirror(r.Context(), product.Image)
	}

	created, err := h.store.Upsert(r.Context(), product)
	if err != nil {
		log.WithFields(log.Fields{"id": product.ID, "error": err}).Error("failed to persist deal")
		respondError(w, http.StatusInternalServerError, "failed to save deal")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, product)
}

func (h *Handler) DeleteDeal(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		respondError(w, http.StatusNotFound, "deal not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete deal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithField("error", err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
