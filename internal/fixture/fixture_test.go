package fixture

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskmatch/internal/domain"
)

func TestLoad(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "acme.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "soc-lite", f.Assessment.TemplateID)
	require.Len(t, f.Template.Sections, 2)
	assert.Equal(t, "soc-lite", f.Template.Sections[0].TemplateID)
	assert.Equal(t, "access", f.Template.Sections[0].Questions[2].SectionID)

	require.Len(t, f.Answers, 3)
	assert.Equal(t, "acme-2026-q1", f.Answers[0].ID)
	assert.Equal(t, "acme-2026", f.Answers[0].AssessmentID)
	assert.Equal(t, domain.TierSystemGenerated, f.Answers[0].Documents[0].Tier)
	assert.Nil(t, f.Answers[2].Documents)

	require.Len(t, f.Gaps, 2)
	assert.Equal(t, "gap-2", f.Gaps[1].ID)
	assert.Equal(t, "acme-2026", f.Gaps[1].AssessmentID)

	require.NotNil(t, f.Priorities)
	assert.Equal(t, "acme-2026-priorities", f.Priorities.ID)
	assert.Equal(t, domain.SizeSMB, f.Priorities.CompanySize)
	assert.Equal(t, domain.Price10KTo50K, f.Priorities.BudgetRange)

	ids := make([]string, len(f.Vendors))
	for i, v := range f.Vendors {
		ids[i] = v.ID
	}
	assert.Equal(t, []string{"keyholder", "lockbox", "draft"}, ids)
	assert.Equal(t, []string{"keyholder-eu"}, f.Duplicates)
	require.NotNil(t, f.Vendors[0].ImplementationTimeline)
	assert.Equal(t, 45, *f.Vendors[0].ImplementationTimeline)
	assert.Equal(t, []domain.CompanySize{domain.SizeSMB, domain.SizeMidmarket}, f.Vendors[0].TargetSegments)
}

func TestStore(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "acme.yaml"))
	require.NoError(t, err)
	s := f.Store()
	ctx := context.Background()

	vendors, err := s.ListApprovedVendors(ctx)
	require.NoError(t, err)
	assert.Len(t, vendors, 2)

	answers, err := s.ListAnswers(ctx, "acme-2026")
	require.NoError(t, err)
	assert.Len(t, answers, 3)

	_, err = s.GetPriorities(ctx, "acme-2026-priorities")
	assert.NoError(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"no assessment", "template: {id: t}\n"},
		{"template mismatch", "template: {id: t}\nassessment: {id: a, template_id: other}\n"},
		{"unknown key", "template: {id: t}\nassessment: {id: a}\nextra: 1\n"},
		{"answer without question", "template: {id: t}\nassessment: {id: a}\nanswers: [{raw_quality_score: 2}]\n"},
		{"negative raw score", "template: {id: t}\nassessment: {id: a}\nanswers: [{question_id: q, raw_quality_score: -1}]\n"},
		{"raw score above scale", "template: {id: t}\nassessment: {id: a}\nanswers: [{question_id: q, raw_quality_score: 5.01}]\n"},
		{"nan raw score", "template: {id: t}\nassessment: {id: a}\nanswers: [{question_id: q, raw_quality_score: .nan}]\n"},
		{"bad tier", "template: {id: t}\nassessment: {id: a}\nanswers: [{question_id: q, documents: [{id: d, tier: TIER_7}]}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestDiscover(t *testing.T) {
	files, err := Discover("testdata", "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "acme.yaml"),
		filepath.Join("testdata", "nested", "bad-weights.yaml"),
	}, files)

	files, err = Discover("testdata", "nested/*.yaml")
	require.NoError(t, err)
	assert.Len(t, files, 1)

	_, err = Discover("testdata", "[")
	assert.Error(t, err)
}
