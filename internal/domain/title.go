package domain

import "strings"

// titleSuffixes are the syndication suffixes stripped during normalization.
// Unknown suffixes are left untouched.
var titleSuffixes = []string{
	" - Yahoo Finance",
	" - Bloomberg",
	" - Reuters",
	" - CNBC",
	" - MarketWatch",
	" - The Wall Street Journal",
}

// NormalizeTitle trims whitespace and strips known source suffixes. Case is
// preserved; callers that key a map should lower the result themselves.
func NormalizeTitle(title string) string {
	t := strings.TrimSpace(title)
	for _, s := range titleSuffixes {
		if strings.HasSuffix(t, s) {
			t = strings.TrimSpace(strings.TrimSuffix(t, s))
		}
	}
	return t
}

// TitleKey is the lowered normalized form used as the dedup map key.
func TitleKey(title string) string {
	return strings.ToLower(NormalizeTitle(title))
}
