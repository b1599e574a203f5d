package normalize

import (
	"bufio"
	"os"
	"strings"
	"sync"

	"github.com/sbvh/collegematch/internal/matcherr"
)

// abbreviationRule is one ordered word->expansion mapping. Rules are
// applied word-by-word, first match wins, and expansion is idempotent
// (an already-expanded token is left alone because its expanded form no
// longer equals any rule key).
type abbreviationRule struct {
	word       string
	expansion  string
}

var (
	abbrevMu    sync.RWMutex
	abbrevRules = defaultAbbreviations()
)

// defaultAbbreviations seeds the active table; it stays in effect until
// SetAbbreviations or LoadAbbreviationFile replaces it. Config does not
// load normalization.abbreviation_file.
func defaultAbbreviations() []abbreviationRule {
	return []abbreviationRule{
		{"GOVT", "GOVERNMENT"},
		{"GOVERNEMENT", "GOVERNMENT"},
		{"GMC", "GOVERNMENT MEDICAL COLLEGE"},
		{"GDC", "GOVERNMENT DENTAL COLLEGE"},
		{"ESIC", "EMPLOYEES STATE INSURANCE CORPORATION"},
		{"AIIMS", "ALL INDIA INSTITUTE OF MEDICAL SCIENCES"},
		{"JIPMER", "JAWAHARLAL INSTITUTE OF POSTGRADUATE MEDICAL EDUCATION AND RESEARCH"},
		{"PGIMER", "POST GRADUATE INSTITUTE OF MEDICAL EDUCATION AND RESEARCH"},
		{"MCH", "MEDICAL COLLEGE HOSPITAL"},
		{"IMS", "INSTITUTE OF MEDICAL SCIENCES"},
		{"COL", "COLLEGE"},
		{"COLL", "COLLEGE"},
		{"MED", "MEDICAL"},
		{"DEN", "DENTAL"},
		{"UNIV", "UNIVERSITY"},
		{"INST", "INSTITUTE"},
		{"HOSP", "HOSPITAL"},
		{"PVT", "PRIVATE"},
		{"ASSN", "ASSOCIATION"},
		{"SCI", "SCIENCES"},
		{"RSCH", "RESEARCH"},
		{"EDN", "EDUCATION"},
	}
}

// SetAbbreviations replaces the active table, in the given order, first
// match wins. LoadAbbreviationFile calls it.
func SetAbbreviations(rules [][2]string) {
	out := make([]abbreviationRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, abbreviationRule{word: strings.ToUpper(r[0]), expansion: strings.ToUpper(r[1])})
	}
	abbrevMu.Lock()
	abbrevRules = out
	abbrevMu.Unlock()
}

// LoadAbbreviationFile reads a `WORD=EXPANSION` per-line file (blank lines
// and lines starting with "#" are skipped) and installs it as the active
// table. Order in the file is preserved as match priority.
func LoadAbbreviationFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return matcherr.Wrapf(err, "open abbreviation file %s", path)
	}
	defer f.Close()

	var rules [][2]string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return matcherr.Newf("malformed abbreviation line %q in %s", line, path)
		}
		rules = append(rules, [2]string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])})
	}
	if err := sc.Err(); err != nil {
		return matcherr.Wrapf(err, "scan abbreviation file %s", path)
	}
	SetAbbreviations(rules)
	return nil
}

// ExpandAbbreviations applies the active rule table word-by-word. s is
// assumed already upper-cased and whitespace-collapsed.
func ExpandAbbreviations(s string) string {
	if s == "" {
		return s
	}
	abbrevMu.RLock()
	rules := abbrevRules
	abbrevMu.RUnlock()

	lookup := make(map[string]string, len(rules))
	for _, r := range rules {
		if _, exists := lookup[r.word]; !exists {
			lookup[r.word] = r.expansion
		}
	}

	words := strings.Fields(s)
	for i, w := range words {
		if exp, ok := lookup[w]; ok {
			words[i] = exp
		}
	}
	return strings.Join(words, " ")
}
