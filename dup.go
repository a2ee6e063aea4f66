package oasdoc

import (
	"io"

	eng "github.com/reoring/oasdoc/internal/engine"
)

// DetectDuplicateKeys scans raw JSON for duplicated object keys without
// building a document, one Issue per duplicate occurrence with its JSON
// Pointer path. Malformed input yields a parse_error issue instead of an
// error return. maxIssues < 0 means unlimited, 0 disables collection, > 0
// caps the list and appends a truncation marker when the cap is hit.
func DetectDuplicateKeys(data []byte, maxIssues int) (Issues, error) {
	si, err := eng.DetectDuplicateKeys(eng.NewBytes(data), maxIssues)
	if err != nil {
		return nil, err
	}
	return fromEngineIssues(si), nil
}

// DetectDuplicateKeysReader is DetectDuplicateKeys over an io.Reader. The
// reader is consumed fully.
func DetectDuplicateKeysReader(r io.Reader, maxIssues int) (Issues, error) {
	si, err := eng.DetectDuplicateKeys(eng.NewReader(r), maxIssues)
	if err != nil {
		return nil, err
	}
	return fromEngineIssues(si), nil
}

func fromEngineIssues(si []eng.SimpleIssue) Issues {
	var iss Issues
	for _, s := range si {
		iss = AppendIssues(iss, issueFromEngine(s))
	}
	return iss
}
