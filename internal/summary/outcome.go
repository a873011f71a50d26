package summary

import "fmt"

// Outcome is the result of one generation call: either the text the
// backend produced or the reason it produced nothing.
type Outcome struct {
	text   string
	reason error
	ok     bool
}

// Text wraps generated text.
func Text(s string) Outcome {
	return Outcome{text: s, ok: true}
}

// Failed records a generation failure.
func Failed(reason error) Outcome {
	if reason == nil {
		reason = fmt.Errorf("no output")
	}
	return Outcome{reason: reason}
}

// Text returns the generated text and whether the call succeeded.
func (o Outcome) Text() (string, bool) {
	return o.text, o.ok
}

// Err returns the failure reason, or nil for a successful outcome.
func (o Outcome) Err() error {
	return o.reason
}
