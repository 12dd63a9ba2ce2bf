package ports

import (
	"context"

	"riskmatch/internal/scoring"
)

// ScoreRepository persists computed scores.
type ScoreRepository interface {
	SaveAnswerScore(ctx context.Context, answerID string, score scoring.QuestionScore) error
	SaveAssessmentScore(ctx context.Context, score scoring.OverallScore) error
	GetLatestByAssessment(ctx context.Context, assessmentID string) (exists bool, score scoring.OverallScore, err error)
}
