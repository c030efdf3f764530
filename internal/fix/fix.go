// Package fix applies mechanical repairs to a document corpus. Every
// repair is a pure function from one parsed document to a corrected
// copy; nothing mutates a Document in place. Findings that need a
// judgment call (issues flagged requires-review, prose that must be
// written by a human) have no fixer here on purpose.
package fix

import (
	"github.com/quillctl/quill/internal/doc"
)

// Fixer is one mechanical document repair.
type Fixer interface {
	// Name returns the stable identifier recorded in Change.Fixer.
	Name() string

	// Fix returns a corrected copy of the document, or (nil, false)
	// when the document needs no repair. The input is never modified.
	Fix(d *doc.Document) (*doc.Document, bool)
}

// DefaultFixers returns the standard repair set in execution order.
func DefaultFixers(conv doc.Conventions) []Fixer {
	return []Fixer{
		NewMissingRelatedFixer(conv),
	}
}
