// Package render prints scores, vendor rankings and match runs for the CLI,
// either as styled console tables or as JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	engine "riskmatch/internal/matching"
	"riskmatch/internal/scoring"
)

// Formatter writes one kind of CLI result.
type Formatter interface {
	Score(out scoring.OverallScore) error
	Vendors(scores []engine.BaseScore) error
	Matches(run engine.MatchRun) error
	Batch(results []BatchResult) error
}

// BatchResult is the outcome of scoring one fixture file.
type BatchResult struct {
	Path  string                `json:"path"`
	Score *scoring.OverallScore `json:"score,omitempty"`
	Err   error                 `json:"-"`
}

func (r BatchResult) MarshalJSON() ([]byte, error) {
	type plain BatchResult
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(r)}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// New returns the formatter for format ("console" or "json").
func New(format string, w io.Writer, color bool) (Formatter, error) {
	switch format {
	case "", "console":
		return NewConsole(w, color), nil
	case "json":
		return NewJSON(w), nil
	}
	return nil, fmt.Errorf("unknown format %q (want console or json)", format)
}

type Console struct {
	w     io.Writer
	color bool
}

func NewConsole(w io.Writer, color bool) *Console {
	return &Console{w: w, color: color}
}

func (c *Console) style(color string) lipgloss.Style {
	if !c.color {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func (c *Console) bold() lipgloss.Style {
	if !c.color {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Bold(true)
}

func (c *Console) band(b scoring.RiskBand) string {
	switch b {
	case scoring.RiskLow:
		return c.style("10").Render(string(b))
	case scoring.RiskMedium:
		return c.style("11").Render(string(b))
	}
	return c.style("9").Render(string(b))
}

func (c *Console) Score(out scoring.OverallScore) error {
	dim := c.style("8")
	fmt.Fprintf(c.w, "%s %s\n", c.bold().Render("Assessment"), out.AssessmentID)
	fmt.Fprintf(c.w, "Overall score: %d/100  %s\n\n", out.OverallScore, c.band(out.RiskBand))
	fmt.Fprintf(c.w, "%-20s %7s %7s %7s\n", "SECTION", "WEIGHT", "SCORE", "SCALED")
	for _, s := range out.SectionScores {
		fmt.Fprintf(c.w, "%-20s %7.2f %7.2f %7.1f\n", s.SectionID, s.Weight, s.Score, s.ScaledScore)
		for _, q := range s.QuestionScores {
			line := fmt.Sprintf("  %-18s %-7s x%.1f %7.2f", q.QuestionID, q.EvidenceTier, q.TierMultiplier, q.FinalScore)
			if !q.Answered {
				line += "  unanswered"
			}
			fmt.Fprintln(c.w, dim.Render(line))
		}
	}
	return nil
}

func (c *Console) Vendors(scores []engine.BaseScore) error {
	if len(scores) == 0 {
		fmt.Fprintln(c.w, c.style("8").Render("no vendors"))
		return nil
	}
	fmt.Fprintf(c.w, "%-4s %-24s %5s %5s %5s %5s %6s\n", "#", "VENDOR", "COV", "SIZE", "GEO", "PRICE", "TOTAL")
	for i, s := range scores {
		fmt.Fprintf(c.w, "%-4d %-24s %5d %5d %5d %5d %s\n",
			i+1, truncate(s.VendorName, 24), s.RiskAreaCoverage, s.SizeFit, s.GeoCoverage, s.PriceScore,
			c.bold().Render(fmt.Sprintf("%6d", s.TotalBase)))
	}
	return nil
}

func (c *Console) Matches(run engine.MatchRun) error {
	dim := c.style("8")
	fmt.Fprintf(c.w, "%s %s %s\n", c.bold().Render("Match run"), run.ID, dim.Render(run.GeneratedAt.Format("2006-01-02 15:04:05Z07:00")))
	if len(run.Matches) == 0 {
		fmt.Fprintln(c.w, dim.Render("no vendors"))
		return nil
	}
	for i, m := range run.Matches {
		fmt.Fprintf(c.w, "\n%d. %s  %s  %s\n", i+1, c.bold().Render(m.VendorName),
			c.style("10").Render(fmt.Sprintf("%d/%d", m.TotalScore, engine.MaxTotalScore)),
			dim.Render(fmt.Sprintf("base %d + boost %d", m.Base.TotalBase, m.Boost.TotalBoost)))
		for _, r := range m.MatchReasons {
			fmt.Fprintf(c.w, "   - %s\n", r)
		}
		if len(m.Boost.MissingFeatures) > 0 {
			fmt.Fprintln(c.w, c.style("3").Render("   missing: "+strings.Join(m.Boost.MissingFeatures, ", ")))
		}
	}
	return nil
}

func (c *Console) Batch(results []BatchResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(c.w, "%s %s: %v\n", c.style("9").Render("✗"), r.Path, r.Err)
			continue
		}
		fmt.Fprintf(c.w, "%s %s: %d %s\n", c.style("10").Render("✓"), r.Path, r.Score.OverallScore, c.band(r.Score.RiskBand))
	}
	fmt.Fprintf(c.w, "\n%d scored, %d failed\n", len(results)-failed, failed)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

type JSON struct {
	w io.Writer
}

func NewJSON(w io.Writer) *JSON { return &JSON{w: w} }

func (j *JSON) encode(v any) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (j *JSON) Score(out scoring.OverallScore) error { return j.encode(out) }

func (j *JSON) Vendors(scores []engine.BaseScore) error {
	if scores == nil {
		scores = []engine.BaseScore{}
	}
	return j.encode(scores)
}

func (j *JSON) Matches(run engine.MatchRun) error {
	if run.Matches == nil {
		run.Matches = []engine.VendorMatchScore{}
	}
	return j.encode(run)
}

func (j *JSON) Batch(results []BatchResult) error {
	if results == nil {
		results = []BatchResult{}
	}
	return j.encode(results)
}
