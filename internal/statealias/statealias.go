// Package statealias canonicalizes the 36 Indian states/union territories
// against the messy free-text state names found in counselling data: pin
// codes glued on, old names, typos, conjunctions spelled with "&".
//
// DELHI, DELHI (NCT), and NEW DELHI all canonicalize to "DELHI (NCT)" — an
// explicit resolution of the source's inconsistent Delhi spelling, not a
// guess.
//
// Grounded on the canonical-state table and resolution order of
// match-and-link-counselling/scripts/create_state_mapping.py.
package statealias

import (
	"regexp"
	"strings"
	"sync"
)

// canonicalStates is the fixed catalogue of recognized state/UT names.
var canonicalStates = []string{
	"ANDAMAN AND NICOBAR ISLANDS", "ANDHRA PRADESH", "ARUNACHAL PRADESH",
	"ASSAM", "BIHAR", "CHANDIGARH", "CHHATTISGARH", "DADRA AND NAGAR HAVELI",
	"DAMAN AND DIU", "DELHI (NCT)", "GOA", "GUJARAT", "HARYANA", "HIMACHAL PRADESH",
	"JAMMU AND KASHMIR", "JHARKHAND", "KARNATAKA", "KERALA", "LADAKH",
	"MADHYA PRADESH", "MAHARASHTRA", "MANIPUR", "MEGHALAYA", "MIZORAM",
	"NAGALAND", "ODISHA", "PUDUCHERRY", "PUNJAB", "RAJASTHAN", "SIKKIM",
	"TAMIL NADU", "TELANGANA", "TRIPURA", "UTTAR PRADESH", "UTTARAKHAND",
	"WEST BENGAL",
}

// stateCodes are the two-letter postal codes: Canonicalize accepts them as
// input and Code2 returns them.
var stateCodes = map[string]string{
	"ANDAMAN AND NICOBAR ISLANDS": "AN", "ANDHRA PRADESH": "AP",
	"ARUNACHAL PRADESH": "AR", "ASSAM": "AS", "BIHAR": "BR",
	"CHANDIGARH": "CH", "CHHATTISGARH": "CG", "DADRA AND NAGAR HAVELI": "DN",
	"DAMAN AND DIU": "DD", "DELHI (NCT)": "DL", "GOA": "GA", "GUJARAT": "GJ",
	"HARYANA": "HR", "HIMACHAL PRADESH": "HP", "JAMMU AND KASHMIR": "JK",
	"JHARKHAND": "JH", "KARNATAKA": "KA", "KERALA": "KL", "LADAKH": "LA",
	"MADHYA PRADESH": "MP", "MAHARASHTRA": "MH", "MANIPUR": "MN",
	"MEGHALAYA": "ML", "MIZORAM": "MZ", "NAGALAND": "NL", "ODISHA": "OD",
	"PUDUCHERRY": "PY", "PUNJAB": "PB", "RAJASTHAN": "RJ", "SIKKIM": "SK",
	"TAMIL NADU": "TN", "TELANGANA": "TG", "TRIPURA": "TR",
	"UTTAR PRADESH": "UP", "UTTARAKHAND": "UK", "WEST BENGAL": "WB",
}

// staticAliases are known variations/typos that don't reduce to a simple
// substring match against a canonical name.
var staticAliases = map[string]string{
	"DELHI":                      "DELHI (NCT)",
	"NEW DELHI":                  "DELHI (NCT)",
	"DELHI NCT":                  "DELHI (NCT)",
	"DEL HI":                     "DELHI (NCT)",
	"CHATTISGARH":                "CHHATTISGARH",
	"PONDICHERRY":                "PUDUCHERRY",
	"ORISSA":                     "ODISHA",
	"UTTRAKHAND":                 "UTTARAKHAND",
	"ANDAMAN NICOBAR ISLANDS":    "ANDAMAN AND NICOBAR ISLANDS",
	"JAMMU KASHMIR":              "JAMMU AND KASHMIR",
	"DAMAN DIU":                  "DAMAN AND DIU",
}

var pinOrHyphenRE = regexp.MustCompile(`-?\s*\d{6}`)
var hyphenRE = regexp.MustCompile(`-`)

// Aliaser holds a mutable layer of operator-supplied aliases on top of the
// static catalogue above, added with AddAlias. Config does not load any
// aliases into it; internal/appctx uses it with the static tables only.
type Aliaser struct {
	mu     sync.RWMutex
	extra  map[string]string
}

// New returns an Aliaser seeded with only the static/canonical tables;
// callers may add aliases with AddAlias.
func New() *Aliaser {
	return &Aliaser{extra: make(map[string]string)}
}

// AddAlias registers an additional raw->canonical mapping, upper-cased.
// Added aliases take priority over the built-in tables and heuristics.
func (a *Aliaser) AddAlias(raw, canonical string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.extra[strings.ToUpper(strings.TrimSpace(raw))] = strings.ToUpper(strings.TrimSpace(canonical))
}

// Canonicalize resolves a raw state string to one of the 36 canonical
// names. Returns ("", false) if no rule applies; callers treat that as
// non-fatal (no hard state gate, a prescore penalty in candidate generation).
func (a *Aliaser) Canonicalize(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	up := strings.ToUpper(strings.TrimSpace(raw))

	a.mu.RLock()
	if canonical, ok := a.extra[up]; ok {
		a.mu.RUnlock()
		return canonical, true
	}
	a.mu.RUnlock()

	cleaned := pinOrHyphenRE.ReplaceAllString(up, "")
	cleaned = hyphenRE.ReplaceAllString(cleaned, " ")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	for _, canonical := range canonicalStates {
		if strings.Contains(cleaned, canonical) {
			return canonical, true
		}
	}

	if canonical, ok := staticAliases[cleaned]; ok {
		return canonical, true
	}

	if len(cleaned) == 2 {
		for canonical, code := range stateCodes {
			if code == cleaned {
				return canonical, true
			}
		}
	}

	switch {
	case strings.Contains(cleaned, "DELHI"):
		return "DELHI (NCT)", true
	case strings.Contains(cleaned, "JAMMU") && strings.Contains(cleaned, "KASHMIR"):
		return "JAMMU AND KASHMIR", true
	case strings.Contains(cleaned, "DAMAN") && strings.Contains(cleaned, "DIU"):
		return "DAMAN AND DIU", true
	case strings.Contains(cleaned, "ANDAMAN"):
		return "ANDAMAN AND NICOBAR ISLANDS", true
	}

	return "", false
}

// Code2 returns the two-letter postal code for a canonical state name, or
// "" if name is not a recognized canonical state.
func Code2(canonicalName string) string {
	return stateCodes[strings.ToUpper(canonicalName)]
}

// CanonicalStates returns the fixed catalogue in display order.
func CanonicalStates() []string {
	out := make([]string, len(canonicalStates))
	copy(out, canonicalStates)
	return out
}
