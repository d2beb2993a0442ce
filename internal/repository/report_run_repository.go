package repository

import (
	"context"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
)

// ReportRunRepository keeps the audit trail of generated reports.
type ReportRunRepository interface {
	SaveRun(ctx context.Context, run *domain.ReportRun) (int64, error)
	SetArtifactURL(ctx context.Context, id int64, url string) error
	ListRuns(ctx context.Context, filter RunFilter) ([]domain.ReportRun, error)
	GetRun(ctx context.Context, id int64) (*domain.ReportRun, error)
}

// RunFilter narrows ListRuns. Zero values mean no constraint.
type RunFilter struct {
	Source string
	// From and To select runs whose range overlaps [From, To].
	From  string
	To    string
	Limit int
}

type noopReportRunRepository struct{}

// NewNoopReportRunRepository is used when no database is configured.
func NewNoopReportRunRepository() ReportRunRepository {
	return noopReportRunRepository{}
}

func (noopReportRunRepository) SaveRun(context.Context, *domain.ReportRun) (int64, error) {
	return 0, nil
}

func (noopReportRunRepository) SetArtifactURL(context.Context, int64, string) error {
	return nil
}

func (noopReportRunRepository) ListRuns(context.Context, RunFilter) ([]domain.ReportRun, error) {
	return nil, nil
}

func (noopReportRunRepository) GetRun(context.Context, int64) (*domain.ReportRun, error) {
	return nil, ErrRunNotFound
}
