package analyses

import "context"

// Repo defines persistence operations for document analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	Update(ctx context.Context, analysis Analysis) error
	List(ctx context.Context, limit, offset int) ([]Analysis, error)
}
