// Package storage persists finished products. The pipeline itself never
// touches a store; callers decide where records go.
package storage

import (
	"context"

	"dealradar/models"
)

// ProductStore is the persistence boundary shared by the JSON file
// store and the MongoDB store.
type ProductStore interface {
	// Upsert inserts the product or replaces an existing record with
	// the same ID. Returns true when a new record was created.
	Upsert(ctx context.Context, p *models.Product) (bool, error)

	// All returns every stored product, newest first.
	All(ctx context.Context) ([]models.Product, error)

	// Get returns the product with the given ID or models.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Product, error)

	// Delete removes a product by ID.
	Delete(ctx context.Context, id string) error
}
