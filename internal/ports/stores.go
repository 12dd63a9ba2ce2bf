package ports

import (
	"context"

	"riskmatch/internal/domain"
)

// Lookups by id return an error wrapping domain.ErrNotFound when the record
// does not exist. List operations return an empty slice instead.

// AssessmentStore provides assessments and the templates they instantiate.
type AssessmentStore interface {
	GetAssessment(ctx context.Context, id string) (domain.Assessment, error)
	GetTemplate(ctx context.Context, id string) (domain.Template, error)
}

// AnswerStore provides answers with their linked documents.
type AnswerStore interface {
	GetAnswer(ctx context.Context, id string) (domain.Answer, error)
	ListAnswers(ctx context.Context, assessmentID string) ([]domain.Answer, error)
}

// VendorDirectory lists approved marketplace vendors.
type VendorDirectory interface {
	ListApprovedVendors(ctx context.Context) ([]domain.Vendor, error)
}

// GapStore lists the gaps identified for an assessment.
type GapStore interface {
	ListGaps(ctx context.Context, assessmentID string) ([]domain.Gap, error)
}

// PrioritiesStore provides the stated priorities of an assessment.
type PrioritiesStore interface {
	GetPriorities(ctx context.Context, id string) (domain.Priorities, error)
}
