package reasoning

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/executiveusa/synthia/pkg/provider/llm"
	llmmock "github.com/executiveusa/synthia/pkg/provider/llm/mock"
)

func TestNewEngine_RequiresProvider(t *testing.T) {
	if _, err := NewEngine(nil, Config{}); err == nil {
		t.Fatal("NewEngine(nil) error = nil, want non-nil")
	}
}

func TestRespond_PrimaryServes(t *testing.T) {
	primary := &llmmock.Provider{NameText: "openai/gpt-4o-mini", Response: "Hello there!"}
	backup := &llmmock.Provider{NameText: "ollama/llama3.2", Response: "backup says hi"}

	eng, err := NewEngine([]llm.Provider{primary, backup}, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	got, err := eng.Respond(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
	}, "You are a helpful receptionist.", "en")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if got != "Hello there!" {
		t.Fatalf("Respond() = %q, want primary reply", got)
	}
	if backup.CallCount() != 0 {
		t.Errorf("backup called %d times, want 0", backup.CallCount())
	}
	if eng.ActiveProvider() != "openai/gpt-4o-mini" {
		t.Errorf("ActiveProvider() = %q, want primary", eng.ActiveProvider())
	}
}

func TestRespond_FallsBackInOrder(t *testing.T) {
	primary := &llmmock.Provider{NameText: "openai/gpt-4o-mini", Err: errors.New("quota exceeded")}
	backup := &llmmock.Provider{NameText: "ollama/llama3.2", Response: "backup reply"}

	eng, err := NewEngine([]llm.Provider{primary, backup}, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	got, err := eng.Respond(context.Background(), nil, "", "en")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if got != "backup reply" {
		t.Fatalf("Respond() = %q, want backup reply", got)
	}
	if primary.CallCount() != 1 {
		t.Errorf("primary called %d times, want 1", primary.CallCount())
	}
	if eng.ActiveProvider() != "ollama/llama3.2" {
		t.Errorf("ActiveProvider() = %q, want backup", eng.ActiveProvider())
	}
}

func TestRespond_AllFailReturnsApology(t *testing.T) {
	boom := errors.New("boom")
	a := &llmmock.Provider{NameText: "a/a", Err: boom}
	b := &llmmock.Provider{NameText: "b/b", Err: boom}

	eng, err := NewEngine([]llm.Provider{a, b}, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	got, err := eng.Respond(context.Background(), nil, "", "es")
	if err != nil {
		t.Fatalf("Respond() error = %v, want nil even when all providers fail", err)
	}
	if got != Apology("es") {
		t.Fatalf("Respond() = %q, want Spanish apology", got)
	}
}

func TestRespond_LanguageDirectiveAppended(t *testing.T) {
	p := &llmmock.Provider{NameText: "a/a", Response: "ok"}
	eng, err := NewEngine([]llm.Provider{p}, Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	if _, err := eng.Respond(context.Background(), nil, "Base prompt.", "hi"); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if p.CallCount() != 1 {
		t.Fatalf("provider called %d times, want 1", p.CallCount())
	}
	sys := p.Calls[0].SystemPrompt
	if !strings.HasPrefix(sys, "Base prompt.") {
		t.Errorf("system prompt = %q, want base prompt preserved", sys)
	}
	if !strings.Contains(sys, "Hindi") {
		t.Errorf("system prompt = %q, want Hindi directive appended", sys)
	}
}

func TestApology_UnknownLanguageFallsBack(t *testing.T) {
	if Apology("fr") != Apology("en") {
		t.Fatal("Apology(fr) should fall back to English")
	}
}
