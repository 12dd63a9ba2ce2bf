package compliance

import (
	"context"
	"fmt"
	"log"

	"riskmatch/internal/domain"
	"riskmatch/internal/ports"
	"riskmatch/internal/scoring"
)

// Service scores answers, sections and assessments by id. When a
// ScoreRepository is set, answer and assessment scores are written back.
type Service struct {
	assessments ports.AssessmentStore
	answers     ports.AnswerStore
	scores      ports.ScoreRepository
}

func New(assessments ports.AssessmentStore, answers ports.AnswerStore, scores ports.ScoreRepository) *Service {
	return &Service{assessments: assessments, answers: answers, scores: scores}
}

func (s *Service) ScoreAnswer(ctx context.Context, answerID string) (scoring.QuestionScore, error) {
	a, err := s.answers.GetAnswer(ctx, answerID)
	if err != nil {
		return scoring.QuestionScore{}, err
	}
	qs := scoring.ScoreAnswer(a)
	if s.scores != nil {
		if err := s.scores.SaveAnswerScore(ctx, a.ID, qs); err != nil {
			return scoring.QuestionScore{}, fmt.Errorf("save answer score: %w", err)
		}
	}
	return qs, nil
}

func (s *Service) ScoreSection(ctx context.Context, assessmentID, sectionID string) (scoring.SectionScore, error) {
	tmpl, err := s.template(ctx, assessmentID)
	if err != nil {
		return scoring.SectionScore{}, err
	}
	section, ok := tmpl.Section(sectionID)
	if !ok {
		return scoring.SectionScore{}, fmt.Errorf("section %s: %w", sectionID, domain.ErrNotFound)
	}
	answers, err := s.answers.ListAnswers(ctx, assessmentID)
	if err != nil {
		return scoring.SectionScore{}, err
	}
	return scoring.ScoreSection(*section, scoring.AnswersByQuestion(answers))
}

// ScoreAssessment reads the template afresh on every call so weight edits
// are enforced immediately.
func (s *Service) ScoreAssessment(ctx context.Context, assessmentID string) (scoring.OverallScore, error) {
	tmpl, err := s.template(ctx, assessmentID)
	if err != nil {
		return scoring.OverallScore{}, err
	}
	answers, err := s.answers.ListAnswers(ctx, assessmentID)
	if err != nil {
		return scoring.OverallScore{}, err
	}
	out, err := scoring.ScoreAssessment(assessmentID, tmpl, scoring.AnswersByQuestion(answers))
	if err != nil {
		return scoring.OverallScore{}, err
	}
	if s.scores == nil {
		return out, nil
	}
	for _, a := range answers {
		if err := s.scores.SaveAnswerScore(ctx, a.ID, scoring.ScoreAnswer(a)); err != nil {
			return scoring.OverallScore{}, fmt.Errorf("save answer score: %w", err)
		}
	}
	if err := s.scores.SaveAssessmentScore(ctx, out); err != nil {
		return scoring.OverallScore{}, fmt.Errorf("save assessment score: %w", err)
	}
	log.Printf("assessment %s scored %d (%s)", assessmentID, out.OverallScore, out.RiskBand)
	return out, nil
}

// Assessment resolves an assessment by id.
func (s *Service) Assessment(ctx context.Context, assessmentID string) (domain.Assessment, error) {
	return s.assessments.GetAssessment(ctx, assessmentID)
}

// Latest returns the last persisted score of an assessment.
func (s *Service) Latest(ctx context.Context, assessmentID string) (scoring.OverallScore, error) {
	if s.scores == nil {
		return scoring.OverallScore{}, fmt.Errorf("assessment score %s: %w", assessmentID, domain.ErrNotFound)
	}
	exists, out, err := s.scores.GetLatestByAssessment(ctx, assessmentID)
	if err != nil {
		return scoring.OverallScore{}, err
	}
	if !exists {
		return scoring.OverallScore{}, fmt.Errorf("assessment score %s: %w", assessmentID, domain.ErrNotFound)
	}
	return out, nil
}

func (s *Service) template(ctx context.Context, assessmentID string) (domain.Template, error) {
	a, err := s.assessments.GetAssessment(ctx, assessmentID)
	if err != nil {
		return domain.Template{}, err
	}
	return s.assessments.GetTemplate(ctx, a.TemplateID)
}
