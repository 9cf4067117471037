package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

const (
	schemaContext = "https://schema.org"
	scriptClasses = "schema-graph schema-graph--product schema-graph--footer"
)

// State holds the latest finished product node until it is rendered. A new
// Store replaces the held node; rendering consumes it.
type State struct {
	mu  sync.Mutex
	doc Document
}

// NewState returns an empty state.
func NewState() *State {
	return &State{}
}

// Store holds doc for rendering, replacing any previous node.
func (s *State) Store(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
}

// HasDocument reports whether a non-empty node is held.
func (s *State) HasDocument() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.doc) > 0
}

// Render writes the held node as a graph and discards it. It returns false
// when nothing was held.
func (s *State) Render(w io.Writer) (bool, error) {
	doc, ok := s.take()
	if !ok {
		return false, nil
	}

	data, err := marshalGraph(doc, false)
	if err != nil {
		return false, err
	}
	if _, err := w.Write(data); err != nil {
		return false, fmt.Errorf("failed to write schema graph: %w", err)
	}
	return true, nil
}

// RenderScriptTag is Render wrapped in an application/ld+json script element.
func (s *State) RenderScriptTag(w io.Writer) (bool, error) {
	doc, ok := s.take()
	if !ok {
		return false, nil
	}

	// HTML escaping keeps "</script>" inside values from closing the tag.
	data, err := marshalGraph(doc, true)
	if err != nil {
		return false, err
	}
	if _, err := fmt.Fprintf(w, "<script type=\"application/ld+json\" class=\"%s\">%s</script>\n", scriptClasses, data); err != nil {
		return false, fmt.Errorf("failed to write schema script tag: %w", err)
	}
	return true, nil
}

func (s *State) take() (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.doc) == 0 {
		return nil, false
	}
	doc := s.doc
	s.doc = nil
	return doc, true
}

func marshalGraph(doc Document, escapeHTML bool) ([]byte, error) {
	graph := map[string]interface{}{
		"@context": schemaContext,
		"@graph":   []interface{}{doc},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(escapeHTML)
	if err := enc.Encode(graph); err != nil {
		return nil, fmt.Errorf("failed to encode schema graph: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
