// Package textnorm normalizes free-text labels (categories, features,
// regions) and vendor websites into comparable keys.
package textnorm

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Label returns the comparison key of a label: NFKC, whitespace collapsed,
// case folded.
func Label(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return cases.Fold().String(strings.Join(fields, " "))
}

// Set is a set of normalized labels.
type Set map[string]struct{}

func NewSet(labels []string) Set {
	s := make(Set, len(labels))
	for _, l := range labels {
		if k := Label(l); k != "" {
			s[k] = struct{}{}
		}
	}
	return s
}

// Has reports whether the normalized form of label is in the set.
func (s Set) Has(label string) bool {
	_, ok := s[Label(label)]
	return ok
}

// Domain returns the registrable domain (eTLD+1) of a website, which may be
// given with or without a scheme. It returns "" when no host can be found.
func Domain(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	u, err := url.Parse(website)
	if err != nil {
		return ""
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" {
		return ""
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}
