package repository

import (
	"context"

	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
	"github.com/aliskhannn/quiz-bridge/internal/samples"
)

// StaticRepository serves one fixed sample payload for every identifier.
type StaticRepository struct {
	variant int
}

// NewStaticRepository creates a StaticRepository for the given sample variant (1-4).
func NewStaticRepository(variant int) (*StaticRepository, error) {
	if _, err := samples.ByVariant(variant); err != nil {
		return nil, err
	}
	return &StaticRepository{variant: variant}, nil
}

// Get ignores the identifier and builds a fresh copy of the configured sample.
func (r *StaticRepository) Get(_ context.Context, _ string) (*entities.Quiz, error) {
	return samples.ByVariant(r.variant)
}

// Variant returns the configured sample variant.
func (r *StaticRepository) Variant() int {
	return r.variant
}
