package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"riskmatch/internal/domain"
	"riskmatch/internal/scoring"
)

// ScoreRepository
func (db *DB) SaveAnswerScore(ctx context.Context, answerID string, qs scoring.QuestionScore) error {
	tag, err := db.Pool.Exec(ctx, `
        UPDATE answers
        SET evidence_tier = $2, tier_multiplier = $3, final_score = $4, scored_at = now()
        WHERE id = $1
    `, answerID, string(qs.EvidenceTier), qs.TierMultiplier, qs.FinalScore)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("answer %s: %w", answerID, domain.ErrNotFound)
	}
	return nil
}

func (db *DB) SaveAssessmentScore(ctx context.Context, s scoring.OverallScore) error {
	sections, err := json.Marshal(s.SectionScores)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx, `
        INSERT INTO assessment_scores (assessment_id, overall_score, risk_band, weighted_sum, methodology, section_scores, scored_at)
        VALUES ($1, $2, $3, $4, $5, $6, now())
        ON CONFLICT (assessment_id) DO UPDATE SET
            overall_score = EXCLUDED.overall_score,
            risk_band = EXCLUDED.risk_band,
            weighted_sum = EXCLUDED.weighted_sum,
            methodology = EXCLUDED.methodology,
            section_scores = EXCLUDED.section_scores,
            scored_at = EXCLUDED.scored_at
    `, s.AssessmentID, s.OverallScore, string(s.RiskBand), s.WeightedSum, s.Methodology, sections)
	return err
}

func (db *DB) GetLatestByAssessment(ctx context.Context, assessmentID string) (bool, scoring.OverallScore, error) {
	out := scoring.OverallScore{AssessmentID: assessmentID}
	var band string
	var sections []byte
	err := db.Pool.QueryRow(ctx, `
        SELECT overall_score, risk_band, weighted_sum, methodology, section_scores
        FROM assessment_scores WHERE assessment_id = $1
    `, assessmentID).Scan(&out.OverallScore, &band, &out.WeightedSum, &out.Methodology, &sections)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, out, nil
	}
	if err != nil {
		return false, out, err
	}
	out.RiskBand = scoring.RiskBand(band)
	if err := json.Unmarshal(sections, &out.SectionScores); err != nil {
		return false, out, fmt.Errorf("decode section scores: %w", err)
	}
	return true, out, nil
}
