package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"riskmatch/internal/domain"
)

func notFound(kind, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return fmt.Errorf("get %s %s: %w", kind, id, err)
}

// AssessmentStore
func (db *DB) GetAssessment(ctx context.Context, id string) (domain.Assessment, error) {
	var a domain.Assessment
	err := db.Pool.QueryRow(ctx, `
        SELECT id, template_id, organization_name, status FROM assessments WHERE id = $1
    `, id).Scan(&a.ID, &a.TemplateID, &a.OrganizationName, &a.Status)
	if err != nil {
		return domain.Assessment{}, notFound("assessment", id, err)
	}
	return a, nil
}

func (db *DB) GetTemplate(ctx context.Context, id string) (domain.Template, error) {
	t := domain.Template{ID: id}
	if err := db.Pool.QueryRow(ctx, `SELECT name FROM templates WHERE id = $1`, id).Scan(&t.Name); err != nil {
		return domain.Template{}, notFound("template", id, err)
	}

	rows, err := db.Pool.Query(ctx, `
        SELECT id, title, weight FROM sections WHERE template_id = $1 ORDER BY position, id
    `, id)
	if err != nil {
		return domain.Template{}, err
	}
	index := map[string]int{}
	for rows.Next() {
		s := domain.Section{TemplateID: id, Questions: []domain.Question{}}
		if err := rows.Scan(&s.ID, &s.Title, &s.Weight); err != nil {
			rows.Close()
			return domain.Template{}, err
		}
		index[s.ID] = len(t.Sections)
		t.Sections = append(t.Sections, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Template{}, err
	}

	rows, err = db.Pool.Query(ctx, `
        SELECT section_id, id, text, weight FROM questions WHERE template_id = $1 ORDER BY position, id
    `, id)
	if err != nil {
		return domain.Template{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.SectionID, &q.ID, &q.Text, &q.Weight); err != nil {
			return domain.Template{}, err
		}
		if i, ok := index[q.SectionID]; ok {
			t.Sections[i].Questions = append(t.Sections[i].Questions, q)
		}
	}
	return t, rows.Err()
}

// AnswerStore
func (db *DB) GetAnswer(ctx context.Context, id string) (domain.Answer, error) {
	var a domain.Answer
	var tier *string
	err := db.Pool.QueryRow(ctx, `
        SELECT id, assessment_id, question_id, raw_quality_score, evidence_tier, tier_multiplier, final_score
        FROM answers WHERE id = $1
    `, id).Scan(&a.ID, &a.AssessmentID, &a.QuestionID, &a.RawQualityScore, &tier, &a.TierMultiplier, &a.FinalScore)
	if err != nil {
		return domain.Answer{}, notFound("answer", id, err)
	}
	if tier != nil {
		a.EvidenceTier = domain.EvidenceTier(*tier)
	}
	docs, err := db.documents(ctx, `WHERE d.answer_id = $1`, id)
	if err != nil {
		return domain.Answer{}, err
	}
	a.Documents = docs[id]
	return a, nil
}

func (db *DB) ListAnswers(ctx context.Context, assessmentID string) ([]domain.Answer, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, assessment_id, question_id, raw_quality_score, evidence_tier, tier_multiplier, final_score
        FROM answers WHERE assessment_id = $1 ORDER BY id
    `, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Answer{}
	for rows.Next() {
		var a domain.Answer
		var tier *string
		if err := rows.Scan(&a.ID, &a.AssessmentID, &a.QuestionID, &a.RawQualityScore, &tier, &a.TierMultiplier, &a.FinalScore); err != nil {
			return nil, err
		}
		if tier != nil {
			a.EvidenceTier = domain.EvidenceTier(*tier)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	docs, err := db.documents(ctx, `JOIN answers a ON a.id = d.answer_id WHERE a.assessment_id = $1`, assessmentID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Documents = docs[out[i].ID]
	}
	return out, nil
}

// documents loads linked documents keyed by answer id in one query.
func (db *DB) documents(ctx context.Context, where string, arg string) (map[string][]domain.Document, error) {
	rows, err := db.Pool.Query(ctx, `SELECT d.answer_id, d.id, d.name, d.tier FROM documents d `+where+` ORDER BY d.id`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]domain.Document{}
	for rows.Next() {
		var answerID, tier string
		var d domain.Document
		if err := rows.Scan(&answerID, &d.ID, &d.Name, &tier); err != nil {
			return nil, err
		}
		d.Tier = domain.EvidenceTier(tier)
		out[answerID] = append(out[answerID], d)
	}
	return out, rows.Err()
}

// VendorDirectory
func (db *DB) ListApprovedVendors(ctx context.Context) ([]domain.Vendor, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, name, website, approved, categories, target_segments, geographic_coverage,
               pricing_range, features, deployment_options, implementation_timeline
        FROM vendors WHERE approved ORDER BY position, id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Vendor{}
	for rows.Next() {
		var v domain.Vendor
		var segments []string
		var pricing string
		if err := rows.Scan(&v.ID, &v.Name, &v.Website, &v.Approved, &v.Categories, &segments, &v.GeographicCoverage,
			&pricing, &v.Features, &v.DeploymentOptions, &v.ImplementationTimeline); err != nil {
			return nil, err
		}
		v.PricingRange = domain.PricingBand(pricing)
		for _, s := range segments {
			v.TargetSegments = append(v.TargetSegments, domain.CompanySize(s))
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GapStore
func (db *DB) ListGaps(ctx context.Context, assessmentID string) ([]domain.Gap, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, assessment_id, category, severity, priority, description
        FROM gaps WHERE assessment_id = $1 ORDER BY position, id
    `, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Gap{}
	for rows.Next() {
		var g domain.Gap
		if err := rows.Scan(&g.ID, &g.AssessmentID, &g.Category, &g.Severity, &g.Priority, &g.Description); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// PrioritiesStore
func (db *DB) GetPriorities(ctx context.Context, id string) (domain.Priorities, error) {
	var p domain.Priorities
	var urgency, budget, size string
	err := db.Pool.QueryRow(ctx, `
        SELECT id, assessment_id, ranked_priorities, must_have_features, deployment_preference,
               implementation_urgency, jurisdictions, budget_range, company_size
        FROM priorities WHERE id = $1
    `, id).Scan(&p.ID, &p.AssessmentID, &p.RankedPriorities, &p.MustHaveFeatures, &p.DeploymentPreference,
		&urgency, &p.Jurisdictions, &budget, &size)
	if err != nil {
		return domain.Priorities{}, notFound("priorities", id, err)
	}
	p.ImplementationUrgency = domain.ImplementationUrgency(urgency)
	p.BudgetRange = domain.PricingBand(budget)
	p.CompanySize = domain.CompanySize(size)
	return p, nil
}
