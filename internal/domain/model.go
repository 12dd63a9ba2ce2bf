package domain

// Core domain models shared by the scoring engines, the services and the
// adapters. Computed score types live next to the engine that produces them.

// EvidenceTier classifies how authoritative a supporting document is.
type EvidenceTier string

const (
	TierSelfDeclared    EvidenceTier = "TIER_0"
	TierPolicyDocument  EvidenceTier = "TIER_1"
	TierSystemGenerated EvidenceTier = "TIER_2"
)

func (t EvidenceTier) Valid() bool {
	switch t {
	case TierSelfDeclared, TierPolicyDocument, TierSystemGenerated:
		return true
	}
	return false
}

type Document struct {
	ID   string       `json:"id" yaml:"id"`
	Name string       `json:"name,omitempty" yaml:"name,omitempty"`
	Tier EvidenceTier `json:"tier" yaml:"tier"`
}

// Answer is a response to one question of an assessment. EvidenceTier,
// TierMultiplier and FinalScore are written back after scoring.
type Answer struct {
	ID              string       `json:"id" yaml:"id"`
	AssessmentID    string       `json:"assessmentId" yaml:"assessment_id"`
	QuestionID      string       `json:"questionId" yaml:"question_id"`
	RawQualityScore *float64     `json:"rawQualityScore,omitempty" yaml:"raw_quality_score,omitempty"`
	Documents       []Document   `json:"documents,omitempty" yaml:"documents,omitempty"`
	EvidenceTier    EvidenceTier `json:"evidenceTier,omitempty" yaml:"-"`
	TierMultiplier  *float64     `json:"tierMultiplier,omitempty" yaml:"-"`
	FinalScore      *float64     `json:"finalScore,omitempty" yaml:"-"`
}

type Question struct {
	ID        string  `json:"id" yaml:"id"`
	SectionID string  `json:"sectionId" yaml:"-"`
	Text      string  `json:"text,omitempty" yaml:"text,omitempty"`
	Weight    float64 `json:"weight" yaml:"weight"`
}

type Section struct {
	ID         string     `json:"id" yaml:"id"`
	TemplateID string     `json:"templateId" yaml:"-"`
	Title      string     `json:"title,omitempty" yaml:"title,omitempty"`
	Weight     float64    `json:"weight" yaml:"weight"`
	Questions  []Question `json:"questions" yaml:"questions"`
}

type Template struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name,omitempty" yaml:"name,omitempty"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Section looks up a section by id.
func (t *Template) Section(id string) (*Section, bool) {
	for i := range t.Sections {
		if t.Sections[i].ID == id {
			return &t.Sections[i], true
		}
	}
	return nil, false
}

type Assessment struct {
	ID               string `json:"id" yaml:"id"`
	TemplateID       string `json:"templateId" yaml:"template_id"`
	OrganizationName string `json:"organizationName,omitempty" yaml:"organization_name,omitempty"`
	Status           string `json:"status,omitempty" yaml:"status,omitempty"`
}

// Gap is a compliance shortfall produced by upstream assessment analysis.
type Gap struct {
	ID           string `json:"id" yaml:"id"`
	AssessmentID string `json:"assessmentId" yaml:"-"`
	Category     string `json:"category" yaml:"category"`
	Severity     string `json:"severity,omitempty" yaml:"severity,omitempty"`
	Priority     string `json:"priority,omitempty" yaml:"priority,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
}

// CompanySize is an ordered company-size band.
type CompanySize string

const (
	SizeStartup    CompanySize = "STARTUP"
	SizeSMB        CompanySize = "SMB"
	SizeMidmarket  CompanySize = "MIDMARKET"
	SizeEnterprise CompanySize = "ENTERPRISE"
)

var companySizeOrder = []CompanySize{SizeStartup, SizeSMB, SizeMidmarket, SizeEnterprise}

// Rank returns the position of the band in the size scale, or -1.
func (s CompanySize) Rank() int {
	for i, v := range companySizeOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// PricingBand is an ordered price band. Ranges of neighbouring bands share
// a boundary; the numeric ranges come from the scoring policy.
type PricingBand string

const (
	PriceUnder10K   PricingBand = "UNDER_10K"
	Price10KTo50K   PricingBand = "10K_50K"
	Price50KTo100K  PricingBand = "50K_100K"
	Price100KTo250K PricingBand = "100K_250K"
	PriceOver250K   PricingBand = "OVER_250K"
)

type ImplementationUrgency string

const (
	UrgencyImmediate  ImplementationUrgency = "IMMEDIATE"
	UrgencyShortTerm  ImplementationUrgency = "SHORT_TERM"
	UrgencyMediumTerm ImplementationUrgency = "MEDIUM_TERM"
	UrgencyFlexible   ImplementationUrgency = "FLEXIBLE"
)

// GlobalRegion in a vendor's coverage matches any jurisdiction.
const GlobalRegion = "GLOBAL"

type Vendor struct {
	ID                     string        `json:"id" yaml:"id"`
	Name                   string        `json:"name" yaml:"name"`
	Website                string        `json:"website,omitempty" yaml:"website,omitempty"`
	Approved               bool          `json:"approved" yaml:"approved"`
	Categories             []string      `json:"categories" yaml:"categories"`
	TargetSegments         []CompanySize `json:"targetSegments" yaml:"target_segments"`
	GeographicCoverage     []string      `json:"geographicCoverage" yaml:"geographic_coverage"`
	PricingRange           PricingBand   `json:"pricingRange,omitempty" yaml:"pricing_range,omitempty"`
	Features               []string      `json:"features,omitempty" yaml:"features,omitempty"`
	DeploymentOptions      string        `json:"deploymentOptions,omitempty" yaml:"deployment_options,omitempty"`
	ImplementationTimeline *int          `json:"implementationTimeline,omitempty" yaml:"implementation_timeline,omitempty"`
}

// Priorities are the user's stated priorities for one assessment.
type Priorities struct {
	ID                    string                `json:"id" yaml:"id"`
	AssessmentID          string                `json:"assessmentId" yaml:"-"`
	RankedPriorities      []string              `json:"rankedPriorities" yaml:"ranked_priorities"`
	MustHaveFeatures      []string              `json:"mustHaveFeatures,omitempty" yaml:"must_have_features,omitempty"`
	DeploymentPreference  string                `json:"deploymentPreference,omitempty" yaml:"deployment_preference,omitempty"`
	ImplementationUrgency ImplementationUrgency `json:"implementationUrgency,omitempty" yaml:"implementation_urgency,omitempty"`
	Jurisdictions         []string              `json:"jurisdictions,omitempty" yaml:"jurisdictions,omitempty"`
	BudgetRange           PricingBand           `json:"budgetRange,omitempty" yaml:"budget_range,omitempty"`
	CompanySize           CompanySize           `json:"companySize,omitempty" yaml:"company_size,omitempty"`
}
