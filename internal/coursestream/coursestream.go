// Package coursestream maps a course string to one or more streams
// (MEDICAL, DENTAL, DNB) in priority order. The order defines candidate
// generation priority: the pipeline never searches a lower-priority
// stream once a higher one has produced an accepted match.
package coursestream

import "strings"

type Stream string

const (
	Medical Stream = "MEDICAL"
	Dental  Stream = "DENTAL"
	DNB     Stream = "DNB"
)

// rule is one ordered (match, streams) pair. Mapper evaluates rules in
// order and returns the first match; Mapper.SetOverrides lets config replace
// this default table wholesale via streams.priority_overrides.
type rule struct {
	contains []string
	prefix   string
	streams  []Stream
}

func defaultRules() []rule {
	return []rule{
		{contains: []string{"BDS", "MDS", "DENTAL"}, streams: []Stream{Dental}},
		{prefix: "DNB-", streams: []Stream{DNB, Medical}},
		{contains: []string{"MBBS", "MD", "MS", "DM", "MCH", "DIPLOMA"}, streams: []Stream{Medical}},
	}
}

// Mapper holds the active rule table; config may replace it via
// streams.priority_overrides (§6).
type Mapper struct {
	rules []rule
}

// New returns a Mapper seeded with spec.md §4.3's default rule table.
func New() *Mapper {
	return &Mapper{rules: defaultRules()}
}

// SetOverrides replaces the rule table with operator-supplied overrides.
// Each override names either a literal substring set or a "PREFIX-" form
// and the ordered stream list it should produce.
func (m *Mapper) SetOverrides(overrides []Override) {
	rules := make([]rule, 0, len(overrides))
	for _, o := range overrides {
		streams := make([]Stream, 0, len(o.Streams))
		for _, s := range o.Streams {
			streams = append(streams, Stream(strings.ToUpper(s)))
		}
		rules = append(rules, rule{contains: o.Contains, prefix: strings.ToUpper(o.Prefix), streams: streams})
	}
	m.rules = rules
}

// Override is the config shape of one priority-override rule.
type Override struct {
	Contains []string
	Prefix   string
	Streams  []string
}

// StreamsFor returns the ordered stream list for a (typically already
// normalized/upper-cased) course string. Unknown courses get the least
// restrictive answer: all three streams, in declaration order.
func (m *Mapper) StreamsFor(course string) []Stream {
	up := strings.ToUpper(strings.TrimSpace(course))

	for _, r := range m.rules {
		if r.prefix != "" && strings.HasPrefix(up, r.prefix) {
			return r.streams
		}
		for _, c := range r.contains {
			if strings.Contains(up, c) {
				return r.streams
			}
		}
	}

	return []Stream{Medical, Dental, DNB}
}
