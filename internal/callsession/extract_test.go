package callsession

import (
	"strings"
	"testing"
)

func TestUpdateContext_NicheAndPage(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateContext(c, "I run a gym and need a landing page with parallax")
	if c.Niche != "fitness" {
		t.Errorf("Niche = %q, want fitness", c.Niche)
	}
	if c.PageType != "landing" {
		t.Errorf("PageType = %q, want landing", c.PageType)
	}
	if len(c.PatternsDiscussed) != 1 || c.PatternsDiscussed[0] != "parallax-depth-layers" {
		t.Errorf("PatternsDiscussed = %v, want [parallax-depth-layers]", c.PatternsDiscussed)
	}
	if len(c.Notes) != 1 {
		t.Errorf("Notes = %v, want the utterance recorded", c.Notes)
	}
}

func TestUpdateContext_FuzzyNiche(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	// Whisper often drops a letter; the phonetic pass should still land.
	e.UpdateContext(c, "an ecomerce website please")
	if c.Niche != "ecommerce" {
		t.Errorf("Niche = %q, want ecommerce via fuzzy match", c.Niche)
	}
}

func TestUpdateContext_PatternDeduped(t *testing.T) {
	e := NewExtractor()
	c := NewContext()

	e.UpdateContext(c, "I want parallax everywhere, lots of parallax")
	e.UpdateContext(c, "did I mention parallax?")
	if len(c.PatternsDiscussed) != 1 {
		t.Errorf("PatternsDiscussed = %v, want a single entry", c.PatternsDiscussed)
	}
}

func TestExtractFacts_Name(t *testing.T) {
	e := NewExtractor()

	ex := e.ExtractFacts("Hi, my name is Maria Lopez and I need help")
	if ex.Name != "Maria Lopez" {
		t.Errorf("Name = %q, want Maria Lopez", ex.Name)
	}
	found := false
	for _, f := range ex.Facts {
		if f.Category == "identity" && strings.Contains(f.Fact, "Maria Lopez") {
			found = true
		}
	}
	if !found {
		t.Errorf("Facts = %v, want identity fact with the name", ex.Facts)
	}
}

func TestExtractFacts_Spanish(t *testing.T) {
	e := NewExtractor()
	ex := e.ExtractFacts("Hola, me llamo Carlos")
	if ex.Name != "Carlos" {
		t.Errorf("Name = %q, want Carlos", ex.Name)
	}
}

func TestExtractFacts_BudgetAndTimeline(t *testing.T) {
	e := NewExtractor()

	ex := e.ExtractFacts("Our budget is $2,500 and we need it by March")
	if ex.Budget != "2,500" {
		t.Errorf("Budget = %q, want 2,500", ex.Budget)
	}
	if ex.Timeline != "March" {
		t.Errorf("Timeline = %q, want March", ex.Timeline)
	}
	if len(ex.Facts) != 2 {
		t.Fatalf("Facts = %v, want budget and timeline facts", ex.Facts)
	}
	if ex.Facts[0].Category != "budget" || ex.Facts[1].Category != "timeline" {
		t.Errorf("fact categories = %q, %q, want budget, timeline",
			ex.Facts[0].Category, ex.Facts[1].Category)
	}
}

func TestExtractFacts_Company(t *testing.T) {
	e := NewExtractor()
	ex := e.ExtractFacts("My company is Sunrise Bakery, we make bread")
	if ex.Company != "Sunrise Bakery" {
		t.Errorf("Company = %q, want Sunrise Bakery", ex.Company)
	}
}

func TestExtractFacts_NothingToExtract(t *testing.T) {
	e := NewExtractor()
	ex := e.ExtractFacts("okay sounds good, thanks")
	if ex.Name != "" || ex.Company != "" || len(ex.Facts) != 0 {
		t.Errorf("ExtractFacts() = %+v, want empty", ex)
	}
}
