package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"dealradar/models"
)

// JSONStore keeps the whole catalog in one products.json file, the
// format the frontend consumes directly. All mutations rewrite the file
// atomically via a temp-file rename.
type JSONStore struct {
	path string

	mu       sync.RWMutex
	products []models.Product
}

// NewJSONStore loads (or initializes) the product file at path.
func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product file %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.products); err != nil {
			return nil, fmt.Errorf("failed to parse product file %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *JSONStore) Upsert(ctx context.Context, p *models.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := true
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = *p
			created = false
			break
		}
	}
	if created {
		s.products = append(s.products, *p)
	}
	return created, s.flushLocked()
}

func (s *JSONStore) All(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *JSONStore) Get(ctx context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *JSONStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return s.flushLocked()
		}
	}
	return models.ErrNotFound
}

// flushLocked writes the catalog to disk. Pretty printed so the file
// stays reviewable in git diffs. Caller holds the write lock.
func (s *JSONStore) flushLocked() error {
	data, err := json.MarshalIndent(s.products, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
