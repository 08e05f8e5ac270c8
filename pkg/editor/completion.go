package editor

import (
	"context"
)

// CompletionItem is one suggestion from a completion source.
type CompletionItem struct {
	Label  string
	Detail string
}

// CompletionSource supplies completion items for a buffer position. Sources
// are opaque configuration to the core — dialect keyword tables, context
// key listings, whatever the hosting application provides.
type CompletionSource interface {
	Complete(ctx context.Context, buffer string, offset int) ([]CompletionItem, error)
}

// SetCompletionSource installs (or clears, with nil) the session's source.
func (s *Session) SetCompletionSource(src CompletionSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completion = src
}

// Complete delegates a completion request verbatim to the configured
// source against the latest buffer snapshot. Without a source it returns
// nothing.
func (s *Session) Complete(ctx context.Context, offset int) ([]CompletionItem, error) {
	s.mu.Lock()
	src := s.completion
	buffer := s.snapshot.Text
	s.mu.Unlock()

	if src == nil {
		return nil, nil
	}
	return src.Complete(ctx, buffer, offset)
}
