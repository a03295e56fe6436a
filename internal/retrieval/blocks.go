// Package retrieval assembles the evidence context for a question and
// forwards it to the chat model for answer synthesis.
package retrieval

import (
	"fmt"
	"strings"
)

// Evidence source names as they appear in used_sources.
const (
	SourceLocal = "local"
	SourceWeb   = "web"
)

// noteTag marks diagnostic context blocks. The answer synthesizer keys its
// "do not fabricate" instruction off this tag.
const noteTag = "[SYSTEM_NOTE]"

// contextBlock is one labeled unit of evidence for a single request.
type contextBlock struct {
	kind  blockKind
	text  string
	score float64 // local blocks only
}

type blockKind int

const (
	blockLocal blockKind = iota
	blockWeb
	blockNote
)

func localBlock(text string, score float64) contextBlock {
	return contextBlock{kind: blockLocal, text: text, score: score}
}

func webBlock(snippet string) contextBlock {
	return contextBlock{kind: blockWeb, text: snippet}
}

func noteBlock(text string) contextBlock {
	return contextBlock{kind: blockNote, text: text}
}

// render returns the block as one labeled paragraph.
func (b contextBlock) render() string {
	switch b.kind {
	case blockLocal:
		return fmt.Sprintf("[LOCAL score=%.3f] %s", b.score, b.text)
	case blockWeb:
		return fmt.Sprintf("[WEB] %s", b.text)
	default:
		return fmt.Sprintf("%s %s", noteTag, b.text)
	}
}

// renderBlocks concatenates blocks, one paragraph each, in the given order.
func renderBlocks(blocks []contextBlock) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.render()
	}
	return strings.Join(parts, "\n\n")
}

// orderedSet collects strings deduplicated in first-occurrence order.
type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (s *orderedSet) add(item string) {
	if s.seen[item] {
		return
	}
	s.seen[item] = true
	s.items = append(s.items, item)
}

func (s *orderedSet) list() []string {
	if s.items == nil {
		return []string{}
	}
	return s.items
}
