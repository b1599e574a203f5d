// Package aliastable implements the Alias table used by PipelineOrchestrator
// Pass 2 (§4.7): substituting a seat college name through operator-curated
// aliases before re-attempting Pass 1, longest-match-wins.
//
// Grounded on the shape of ats/alias (a bidirectional alias resolver keyed
// by identifier), reworked here into a one-directional, longest-substring
// table over model.Alias records instead of symmetric identifier pairs —
// the source's ResolveIdentifier/GetAliasesFor return every alias of an
// identifier, which isn't what substitution through a single canonical
// college name needs.
package aliastable

import (
	"sort"
	"strings"
	"sync"

	"github.com/sbvh/collegematch/internal/model"
	"github.com/sbvh/collegematch/internal/normalize"
)

// entry is one alias, pre-normalized for matching.
type entry struct {
	rule      model.Alias
	needle    string
	canonical string
}

// Table resolves raw college/course names through curated aliases.
type Table struct {
	mu      sync.RWMutex
	kind    model.AliasKind
	entries []entry // sorted longest-needle-first
}

// New returns an empty Table for the given alias kind.
func New(kind model.AliasKind) *Table {
	return &Table{kind: kind}
}

// Load replaces the table's contents, re-sorting longest-needle-first so
// Resolve always prefers the more specific rule.
func (t *Table) Load(aliases []model.Alias) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = t.entries[:0]
	for _, a := range aliases {
		if a.Kind != t.kind {
			continue
		}
		t.entries = append(t.entries, entry{
			rule:      a,
			needle:    normalize.Normalize(a.AliasText),
			canonical: normalize.Normalize(a.CanonicalTarget),
		})
	}
	sort.SliceStable(t.entries, func(i, j int) bool {
		return len(t.entries[i].needle) > len(t.entries[j].needle)
	})
}

// Add registers a single alias, keeping entries longest-first.
func (t *Table) Add(a model.Alias) {
	if a.Kind != t.kind {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	e := entry{rule: a, needle: normalize.Normalize(a.AliasText), canonical: normalize.Normalize(a.CanonicalTarget)}
	idx := sort.Search(len(t.entries), func(i int) bool { return len(t.entries[i].needle) <= len(e.needle) })
	t.entries = append(t.entries, entry{})
	copy(t.entries[idx+1:], t.entries[idx:])
	t.entries[idx] = e
}

// Resolve substitutes the longest alias substring found in the normalized
// input with its canonical target, reporting the alias text that fired.
// If no alias applies, it returns the (normalized) input unchanged.
func (t *Table) Resolve(raw string) (resolved string, ruleFired string, ok bool) {
	normalized := normalize.Normalize(raw)

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, e := range t.entries {
		if e.needle == "" {
			continue
		}
		if e.needle == normalized {
			return e.canonical, e.rule.AliasText, true
		}
		if idx := strings.Index(normalized, e.needle); idx >= 0 {
			replaced := normalized[:idx] + e.canonical + normalized[idx+len(e.needle):]
			return strings.Join(strings.Fields(replaced), " "), e.rule.AliasText, true
		}
	}
	return normalized, "", false
}
