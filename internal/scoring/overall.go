package scoring

import (
	"fmt"
	"math"

	"riskmatch/internal/domain"
)

// MaxRawScore is the top of the per-question quality scale.
const MaxRawScore = 5.0

const MethodologyComplete = "complete"

type RiskBand string

const (
	RiskLow      RiskBand = "LOW"
	RiskMedium   RiskBand = "MEDIUM"
	RiskCritical RiskBand = "CRITICAL"
)

// BandFor maps a 0-100 score to its risk band.
func BandFor(score int) RiskBand {
	switch {
	case score >= 80:
		return RiskLow
	case score >= 40:
		return RiskMedium
	default:
		return RiskCritical
	}
}

type OverallScore struct {
	AssessmentID  string         `json:"assessmentId"`
	OverallScore  int            `json:"overallScore"`
	RiskBand      RiskBand       `json:"riskBand"`
	Methodology   string         `json:"methodology"`
	WeightedSum   float64        `json:"weightedSum"`
	SectionScores []SectionScore `json:"sectionScores"`
}

// ScoreAssessment scores every section of the template and scales the
// weighted sum to 0-100. Weights are read from tmpl on every call. answers is
// keyed by question id.
func ScoreAssessment(assessmentID string, tmpl domain.Template, answers map[string]domain.Answer) (OverallScore, error) {
	out := OverallScore{
		AssessmentID:  assessmentID,
		Methodology:   MethodologyComplete,
		SectionScores: make([]SectionScore, 0, len(tmpl.Sections)),
	}
	if len(tmpl.Sections) == 0 {
		out.RiskBand = BandFor(0)
		return out, nil
	}

	weights := make([]float64, len(tmpl.Sections))
	for i, s := range tmpl.Sections {
		weights[i] = s.Weight
	}
	if _, err := validateWeights(weights); err != nil {
		return OverallScore{}, fmt.Errorf("template %s: section %w", tmpl.ID, err)
	}

	for _, s := range tmpl.Sections {
		ss, err := ScoreSection(s, answers)
		if err != nil {
			return OverallScore{}, err
		}
		out.SectionScores = append(out.SectionScores, ss)
		out.WeightedSum += ss.Score * s.Weight
	}
	out.OverallScore = Clamp(int(math.Round(out.WeightedSum/MaxRawScore*100)), 0, 100)
	out.RiskBand = BandFor(out.OverallScore)
	return out, nil
}

// AnswersByQuestion indexes answers by question id. When a question has more
// than one answer the last one wins.
func AnswersByQuestion(answers []domain.Answer) map[string]domain.Answer {
	m := make(map[string]domain.Answer, len(answers))
	for _, a := range answers {
		m[a.QuestionID] = a
	}
	return m
}
