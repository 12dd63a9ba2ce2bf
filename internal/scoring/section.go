package scoring

import (
	"fmt"
	"math"

	"riskmatch/internal/domain"
)

// WeightTolerance is the allowed deviation of a weight sum from 1.0.
const WeightTolerance = 0.01

type SectionScore struct {
	SectionID      string          `json:"sectionId"`
	Weight         float64         `json:"weight"`
	Score          float64         `json:"score"`
	ScaledScore    float64         `json:"scaledScore"`
	QuestionScores []QuestionScore `json:"questionScores"`
	TotalWeight    float64         `json:"totalWeight"`
}

// ScoreSection aggregates the weighted final scores of a section's questions.
// answers is keyed by question id; questions without an answer contribute 0.
// The question weights are validated before anything is scored.
func ScoreSection(section domain.Section, answers map[string]domain.Answer) (SectionScore, error) {
	out := SectionScore{
		SectionID:      section.ID,
		Weight:         section.Weight,
		QuestionScores: make([]QuestionScore, 0, len(section.Questions)),
	}
	if len(section.Questions) == 0 {
		return out, nil
	}

	weights := make([]float64, len(section.Questions))
	for i, q := range section.Questions {
		weights[i] = q.Weight
	}
	total, err := validateWeights(weights)
	if err != nil {
		return SectionScore{}, fmt.Errorf("section %s: question %w", section.ID, err)
	}
	out.TotalWeight = total

	for _, q := range section.Questions {
		qs := unanswered(q.ID)
		if a, ok := answers[q.ID]; ok {
			qs = ScoreAnswer(a)
		}
		out.QuestionScores = append(out.QuestionScores, qs)
		out.Score += qs.FinalScore * q.Weight
	}
	out.ScaledScore = Clamp(out.Score/MaxRawScore*100, 0, 100)
	return out, nil
}

// validateWeights checks that every weight lies in [0,1] and that the sum is
// 1.0 within WeightTolerance.
func validateWeights(weights []float64) (float64, error) {
	var sum float64
	for _, w := range weights {
		if w < 0 || w > 1 || math.IsNaN(w) {
			return 0, fmt.Errorf("weight %.4f out of range [0,1]: %w", w, domain.ErrInvalidConfiguration)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > WeightTolerance {
		return sum, fmt.Errorf("weights sum to %.4f, must equal 1.0: %w", sum, domain.ErrInvalidConfiguration)
	}
	return sum, nil
}
