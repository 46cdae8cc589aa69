// Package memory loads operator-supplied context documents that extend the
// system prompt, such as trading guidelines or symbol aliases. Documents are
// read on every invocation so edits take effect without a restart.
package memory

import (
	"context"
	"strings"
)

// Document is one context file. Key is the /-separated path relative to
// the source root.
type Document struct {
	Key  string
	Body string
}

// Source lists the documents to append to the system prompt. Implementations
// perform I/O on each call.
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
}

// Compose appends each non-empty document body to prompt, separated by a
// blank line.
func Compose(prompt string, docs []Document) string {
	var b strings.Builder
	b.WriteString(prompt)

	for _, d := range docs {
		body := strings.TrimSpace(d.Body)
		if body == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(body)
	}

	return b.String()
}
