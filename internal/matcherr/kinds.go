package matcherr

// Kind classifies an error the pipeline can produce, per the error handling
// design. Errors whose handling depends on their class carry one of these
// kinds (attached with WithKind) so callers (orchestrator, CLI, row store)
// can apply the documented policy without string-matching messages. Other
// errors, such as config validation errors, carry no kind.
type Kind string

const (
	// KindNormalizationOverflow is unreachable in well-formed input; logged
	// and the row is skipped.
	KindNormalizationOverflow Kind = "normalization_overflow"

	// KindStateUnresolved is not fatal; scoring is penalized but matching
	// still proceeds.
	KindStateUnresolved Kind = "state_unresolved"

	// KindNoCandidates is not an error condition; the group advances to the
	// next pass.
	KindNoCandidates Kind = "no_candidates"

	// KindAmbiguousMatch fires when two candidates land within 0.01 of each
	// other and both clear the accept threshold; the group is routed to
	// review instead of picked arbitrarily.
	KindAmbiguousMatch Kind = "ambiguous_match"

	// KindGuardianReject fires when the rule-based Verifier stage rejects a
	// proposed match.
	KindGuardianReject Kind = "guardian_reject"

	// KindLLMTimeout marks a Stage-B model call that did not return within
	// its soft/hard deadline; the vote is recorded as ABSTAIN.
	KindLLMTimeout Kind = "llm_timeout"

	// KindLLMProviderError marks any other Stage-B provider failure; also
	// recorded as ABSTAIN.
	KindLLMProviderError Kind = "llm_provider_error"

	// KindRowStoreError marks a transient row-store failure; the caller
	// retries with backoff before giving up on the group.
	KindRowStoreError Kind = "row_store_error"

	// KindMasterIndexCorruption is fatal; the process must exit with the
	// code reserved for master-index build failure.
	KindMasterIndexCorruption Kind = "master_index_corruption"
)

type kindError struct {
	kind Kind
	err  error
}

func (k *kindError) Error() string { return k.err.Error() }
func (k *kindError) Unwrap() error { return k.err }

// WithKind attaches a Kind to err so GetKind can recover it later, without
// losing the wrapped error's message, stack, or hints.
func WithKind(err error, kind Kind) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// GetKind returns the Kind attached to err (and whether one was found),
// walking the wrap chain.
func GetKind(err error) (Kind, bool) {
	for err != nil {
		if ke, ok := err.(*kindError); ok {
			return ke.kind, true
		}
		err = Unwrap(err)
	}
	return "", false
}

// IsKind reports whether err carries the given Kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	k, ok := GetKind(err)
	return ok && k == kind
}
