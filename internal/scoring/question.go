package scoring

import (
	"math"

	"riskmatch/internal/domain"
)

type QuestionScore struct {
	QuestionID      string              `json:"questionId"`
	AnswerID        string              `json:"answerId,omitempty"`
	RawQualityScore float64             `json:"rawQualityScore"`
	EvidenceTier    domain.EvidenceTier `json:"evidenceTier"`
	TierMultiplier  float64             `json:"tierMultiplier"`
	FinalScore      float64             `json:"finalScore"`
	Answered        bool                `json:"answered"`
}

// ScoreQuestion discounts a raw quality score by the best evidence tier among
// docs. An absent or NaN raw score counts as 0; others are clamped to
// [0, MaxRawScore].
func ScoreQuestion(raw *float64, docs []domain.Document) QuestionScore {
	tier := BestTier(docs)
	m := Multiplier(tier)
	var r float64
	if raw != nil && !math.IsNaN(*raw) {
		r = Clamp(*raw, 0, MaxRawScore)
	}
	return QuestionScore{
		RawQualityScore: r,
		EvidenceTier:    tier,
		TierMultiplier:  m,
		FinalScore:      r * m,
		Answered:        true,
	}
}

// ScoreAnswer scores a single answer. The answer is not modified.
func ScoreAnswer(a domain.Answer) QuestionScore {
	qs := ScoreQuestion(a.RawQualityScore, a.Documents)
	qs.QuestionID = a.QuestionID
	qs.AnswerID = a.ID
	return qs
}

// unanswered is the contribution of a question without an answer: it keeps
// its weight slot and adds nothing.
func unanswered(questionID string) QuestionScore {
	return QuestionScore{
		QuestionID:     questionID,
		EvidenceTier:   domain.TierSelfDeclared,
		TierMultiplier: Multiplier(domain.TierSelfDeclared),
	}
}

// ValidRawScore reports whether r is on the 0-5 quality scale.
func ValidRawScore(r float64) bool {
	return !math.IsNaN(r) && r >= 0 && r <= MaxRawScore
}
