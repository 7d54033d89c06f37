// Package normalizers provides field normalization functions for matching.
package normalizers

import (
	"regexp"
	"strings"
)

var (
	legalSuffixRe  = regexp.MustCompile(`\b(LLC|INC|CORP|CO|LTD|LP|LLP)\.?\b`)
	dbaRe          = regexp.MustCompile(`\bD\.?B\.?A\.?\b.*$`)
	solarPhraseRe  = regexp.MustCompile(`\bSOLAR\s+(PANELS?|POWER|ENERGY|SYSTEMS?|INSTALLS?|INSTALLATIONS?)\b`)
	companyPunctRe = regexp.MustCompile(`[.,'"()\-]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// NormalizeCompany canonicalizes a contractor/installer company name so that
// the same business collected by two agencies compares equal:
//   - uppercase and trim
//   - drop legal suffixes (LLC, INC, CORP, CO, LTD, LP, LLP)
//   - drop everything from a DBA marker onward
//   - drop a leading "THE "
//   - collapse "SOLAR PANEL/POWER/ENERGY/SYSTEM/INSTALL(S)" phrasing to "SOLAR"
//   - strip punctuation and collapse whitespace
//
// Empty input normalizes to empty, which never matches anything.
func NormalizeCompany(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	s = legalSuffixRe.ReplaceAllString(s, " ")
	s = dbaRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "THE ")
	s = solarPhraseRe.ReplaceAllString(s, "SOLAR")
	s = companyPunctRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}
