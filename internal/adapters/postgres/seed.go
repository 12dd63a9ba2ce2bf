package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"riskmatch/internal/fixture"
)

// Import upserts every record of a fixture in one transaction.
func (db *DB) Import(ctx context.Context, f *fixture.Fixture) (err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	batch := &pgx.Batch{}
	t := f.Template
	batch.Queue(`
        INSERT INTO templates (id, name) VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
    `, t.ID, t.Name)
	// Sections and questions are replaced wholesale so removed rows disappear.
	batch.Queue(`DELETE FROM sections WHERE template_id = $1`, t.ID)
	for i, s := range t.Sections {
		batch.Queue(`
            INSERT INTO sections (template_id, id, title, weight, position) VALUES ($1, $2, $3, $4, $5)
        `, t.ID, s.ID, s.Title, s.Weight, i)
		for j, q := range s.Questions {
			batch.Queue(`
                INSERT INTO questions (template_id, section_id, id, text, weight, position) VALUES ($1, $2, $3, $4, $5, $6)
            `, t.ID, s.ID, q.ID, q.Text, q.Weight, j)
		}
	}

	a := f.Assessment
	batch.Queue(`
        INSERT INTO assessments (id, template_id, organization_name, status) VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE SET template_id = EXCLUDED.template_id,
            organization_name = EXCLUDED.organization_name, status = EXCLUDED.status
    `, a.ID, a.TemplateID, a.OrganizationName, a.Status)

	batch.Queue(`DELETE FROM answers WHERE assessment_id = $1`, a.ID)
	for _, ans := range f.Answers {
		batch.Queue(`
            INSERT INTO answers (id, assessment_id, question_id, raw_quality_score) VALUES ($1, $2, $3, $4)
        `, ans.ID, ans.AssessmentID, ans.QuestionID, ans.RawQualityScore)
		for _, d := range ans.Documents {
			batch.Queue(`
                INSERT INTO documents (id, answer_id, name, tier) VALUES ($1, $2, $3, $4)
            `, d.ID, ans.ID, d.Name, string(d.Tier))
		}
	}

	batch.Queue(`DELETE FROM gaps WHERE assessment_id = $1`, a.ID)
	for i, g := range f.Gaps {
		batch.Queue(`
            INSERT INTO gaps (id, assessment_id, category, severity, priority, description, position)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `, g.ID, a.ID, g.Category, g.Severity, g.Priority, g.Description, i)
	}

	for i, v := range f.Vendors {
		segments := make([]string, len(v.TargetSegments))
		for k, s := range v.TargetSegments {
			segments[k] = string(s)
		}
		batch.Queue(`
            INSERT INTO vendors (id, name, website, approved, categories, target_segments, geographic_coverage,
                                 pricing_range, features, deployment_options, implementation_timeline, position)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
            ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, website = EXCLUDED.website,
                approved = EXCLUDED.approved, categories = EXCLUDED.categories,
                target_segments = EXCLUDED.target_segments, geographic_coverage = EXCLUDED.geographic_coverage,
                pricing_range = EXCLUDED.pricing_range, features = EXCLUDED.features,
                deployment_options = EXCLUDED.deployment_options,
                implementation_timeline = EXCLUDED.implementation_timeline, position = EXCLUDED.position
        `, v.ID, v.Name, v.Website, v.Approved, nonNil(v.Categories), segments, nonNil(v.GeographicCoverage),
			string(v.PricingRange), nonNil(v.Features), v.DeploymentOptions, v.ImplementationTimeline, i)
	}

	if p := f.Priorities; p != nil {
		batch.Queue(`
            INSERT INTO priorities (id, assessment_id, ranked_priorities, must_have_features, deployment_preference,
                                    implementation_urgency, jurisdictions, budget_range, company_size)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
            ON CONFLICT (id) DO UPDATE SET assessment_id = EXCLUDED.assessment_id,
                ranked_priorities = EXCLUDED.ranked_priorities, must_have_features = EXCLUDED.must_have_features,
                deployment_preference = EXCLUDED.deployment_preference,
                implementation_urgency = EXCLUDED.implementation_urgency, jurisdictions = EXCLUDED.jurisdictions,
                budget_range = EXCLUDED.budget_range, company_size = EXCLUDED.company_size
        `, p.ID, p.AssessmentID, nonNil(p.RankedPriorities), nonNil(p.MustHaveFeatures), p.DeploymentPreference,
			string(p.ImplementationUrgency), nonNil(p.Jurisdictions), string(p.BudgetRange), string(p.CompanySize))
	}

	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("import %s: %w", f.Assessment.ID, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
