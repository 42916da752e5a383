package store

import (
	"context"

	"github.com/amishk599/leadradar/internal/model"
)

// NopStore is a no-op store used in dry-run mode. Nothing is persisted and
// Recent always reports an empty history.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Save(_ context.Context, _ []model.Signal) error { return nil }
func (s *NopStore) Recent(_ context.Context, _ int) ([]model.Signal, error) {
	return []model.Signal{}, nil
}
func (s *NopStore) Close() error { return nil }
