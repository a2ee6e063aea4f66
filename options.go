package oasdoc

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement for duplicate and unknown wire keys.
// The zero value accepts both: duplicates resolve to the last occurrence and
// unknown keys land in Extensions, which matches the wire format's rules.
type Strictness struct {
	OnDuplicateKey Severity // Repeated keys inside one object.
	OnUnknownKey   Severity // Unrecognized keys without the "x-" prefix.
}

// ParseOpt bundles parsing options.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int         // Nesting limit; 0 applies the default.
	MaxBytes   int64       // Input size limit in bytes; 0 means unlimited.
	FailFast   bool        // Stop at the first Error-level issue.
	IssueSink  func(Issue) // Receives Warn-level issues; nil discards them.
}

// lastOpt collapses variadic options; the last one wins.
func lastOpt(opts []ParseOpt) ParseOpt {
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}
