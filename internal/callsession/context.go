// Package callsession implements the per-call conversation state machine. A
// Session owns exactly one phone call: it turns inbound μ-law frames into
// utterances, runs the STT → reasoning → TTS pipeline for each one, keeps
// the conversation context up to date, and produces the outbound audio the
// transport layer plays back to the caller.
package callsession

import (
	"strings"

	"github.com/executiveusa/synthia/pkg/provider/llm"
)

const (
	// briefTurns is how many trailing turns are quoted in a pipeline brief.
	briefTurns = 6
	// briefTurnRunes truncates each quoted turn.
	briefTurnRunes = 200
)

// Context accumulates what was discussed during one call. It is owned and
// mutated exclusively by the Session; it is never shared across calls.
type Context struct {
	// Niche is the caller's detected business vertical, e.g. "ecommerce".
	Niche string
	// PageType is the kind of page the caller asked for. Defaults to "landing".
	PageType string
	// Preferences collects stated client preferences.
	Preferences []string
	// PatternsDiscussed collects design pattern slugs mentioned in conversation.
	PatternsDiscussed []string
	// Notes collects verbatim snippets of caller speech worth keeping.
	Notes []string
	// Turns is the ordered conversation history, oldest first.
	Turns []llm.Message
	// Language is the currently detected caller language ("en", "es", "hi").
	Language string
}

// NewContext returns a Context with defaults applied.
func NewContext() *Context {
	return &Context{
		PageType: "landing",
		Language: "en",
	}
}

// AddTurn appends one conversation line.
func (c *Context) AddTurn(role, content string) {
	c.Turns = append(c.Turns, llm.Message{Role: role, Content: content})
}

// addPattern records a design pattern slug once.
func (c *Context) addPattern(pattern string) {
	for _, p := range c.PatternsDiscussed {
		if p == pattern {
			return
		}
	}
	c.PatternsDiscussed = append(c.PatternsDiscussed, pattern)
}

// Brief renders the context as a pipeline brief: the extracted fields plus
// the last few turns of conversation.
func (c *Context) Brief() string {
	var parts []string
	if c.Niche != "" {
		parts = append(parts, "Niche: "+c.Niche)
	}
	if c.PageType != "" {
		parts = append(parts, "Page type: "+c.PageType)
	}
	if len(c.Preferences) > 0 {
		parts = append(parts, "Preferences: "+strings.Join(c.Preferences, ", "))
	}
	if len(c.PatternsDiscussed) > 0 {
		parts = append(parts, "Patterns: "+strings.Join(c.PatternsDiscussed, ", "))
	}
	if len(c.Notes) > 0 {
		parts = append(parts, "Notes: "+strings.Join(c.Notes, "; "))
	}

	recent := c.Turns
	if len(recent) > briefTurns {
		recent = recent[len(recent)-briefTurns:]
	}
	if len(recent) > 0 {
		parts = append(parts, "Recent conversation:")
		for _, t := range recent {
			text := t.Content
			if runes := []rune(text); len(runes) > briefTurnRunes {
				text = string(runes[:briefTurnRunes])
			}
			parts = append(parts, "  "+t.Role+": "+text)
		}
	}
	return strings.Join(parts, "\n")
}
