package callsession

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/executiveusa/synthia/pkg/memory"
)

// Keyword tables mapping caller vocabulary (English and Spanish) onto the
// vertical, page type and design patterns the pipeline understands.

// keywordSet pairs one canonical value with the vocabulary that implies it.
// Sets are matched in declaration order and the first hit wins.
type keywordSet struct {
	key   string
	words []string
}

var nicheKeywords = []keywordSet{
	{"saas", []string{"saas", "software", "app", "platform", "tool", "dashboard"}},
	{"ecommerce", []string{"shop", "store", "ecommerce", "e-commerce", "products", "sell", "tienda"}},
	{"portfolio", []string{"portfolio", "personal", "freelance", "my work", "portafolio"}},
	{"agency", []string{"agency", "studio", "firm", "company", "agencia"}},
	{"restaurant", []string{"restaurant", "food", "menu", "cafe", "bar", "restaurante"}},
	{"fashion", []string{"fashion", "clothing", "brand", "apparel", "moda", "ropa"}},
	{"tech", []string{"tech", "startup", "ai", "machine learning", "tecnología"}},
	{"medical", []string{"medical", "health", "clinic", "doctor", "salud", "médico"}},
	{"legal", []string{"law", "legal", "attorney", "lawyer", "abogado"}},
	{"real_estate", []string{"real estate", "property", "properties", "inmobiliaria", "bienes raíces"}},
	{"education", []string{"school", "university", "education", "course", "escuela", "educación"}},
	{"fitness", []string{"gym", "fitness", "workout", "training", "gimnasio"}},
}

var pageKeywords = []keywordSet{
	{"landing", []string{"landing", "home", "main page", "front page", "página principal"}},
	{"product", []string{"product", "feature", "pricing", "producto"}},
	{"about", []string{"about", "team", "who we are", "nosotros"}},
	{"blog", []string{"blog", "content", "articles", "artículos"}},
	{"contact", []string{"contact", "get in touch", "contacto"}},
	{"ecommerce", []string{"shop page", "catalog", "catálogo"}},
}

var patternKeywords = map[string]string{
	"animations": "scroll-pin-section",
	"video hero": "video-hero-transition",
	"parallax":   "parallax-depth-layers",
	"bento":      "bento-tilt-grid",
	"clip path":  "clip-path-hero-reveal",
	"3d":         "parallax-depth-layers",
	"cursor":     "cursor-follower",
	"magnetic":   "magnetic-buttons",
	"scramble":   "text-scramble-reveal",
}

var (
	nameRe    = regexp.MustCompile(`(?i:my name is|i'm|i am|this is|me llamo|soy|mi nombre es)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
	companyRe = regexp.MustCompile(`(?i)(?:my company|our company|we are|our business|my business|mi empresa|nuestra empresa)\s+(?:is\s+)?(.+?)(?:\.|,|$)`)
	budgetRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:budget|presupuesto)[\s:]+(?:is\s+)?[$€]?([\d,]+k?)`),
		regexp.MustCompile(`(?i)[$€]([\d,]+k?)\s+(?:budget|dollars|pesos)`),
	}
	timelineRe = regexp.MustCompile(`(?i)(?:need it|deadline|launch|ready|lanzar)\s+(?:by|in|within|para|en)\s+(.+?)(?:\.|,|$)`)
)

// noiseNames are regex captures that look like names but are not.
var noiseNames = map[string]bool{"me": true, "the": true, "a": true}

const defaultFuzzyThreshold = 0.85

// Extraction is the structured information pulled from one utterance.
type Extraction struct {
	Name     string
	Company  string
	Budget   string
	Timeline string
	// Facts is the list of categorized memory facts implied by the fields
	// above.
	Facts []memory.Fact
}

// Extractor pulls business context and client facts out of transcribed
// speech. Keyword matching tolerates STT mis-hearings by combining Double
// Metaphone phonetic codes with Jaro-Winkler similarity, so "e-comerce"
// still lands on "ecommerce". It is read-only after construction and safe
// for concurrent use.
type Extractor struct {
	fuzzyThreshold float64
}

// ExtractorOption configures an [Extractor].
type ExtractorOption func(*Extractor)

// WithFuzzyThreshold sets the minimum Jaro-Winkler score for a fuzzy keyword
// hit. Default: 0.85.
func WithFuzzyThreshold(threshold float64) ExtractorOption {
	return func(e *Extractor) {
		e.fuzzyThreshold = threshold
	}
}

// NewExtractor returns an [Extractor] with the supplied options applied.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{fuzzyThreshold: defaultFuzzyThreshold}
	for _, o := range opts {
		o(e)
	}
	return e
}

// UpdateContext folds one utterance into the conversation context: niche,
// page type, design patterns, and a verbatim note when the utterance carries
// enough substance.
func (e *Extractor) UpdateContext(c *Context, text string) {
	lower := strings.ToLower(text)

	if niche := e.matchKeywordTable(lower, nicheKeywords); niche != "" {
		c.Niche = niche
	}
	if page := e.matchKeywordTable(lower, pageKeywords); page != "" {
		c.PageType = page
	}
	for keyword, pattern := range patternKeywords {
		if strings.Contains(lower, keyword) {
			c.addPattern(pattern)
		}
	}

	if len(text) > 20 {
		note := text
		if runes := []rune(note); len(runes) > briefTurnRunes {
			note = string(runes[:briefTurnRunes])
		}
		c.Notes = append(c.Notes, note)
	}
}

// ExtractFacts pulls client facts (name, company, budget, timeline) out of
// one utterance.
func (e *Extractor) ExtractFacts(text string) Extraction {
	var ex Extraction

	if m := nameRe.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[1])
		if len(name) > 1 && !noiseNames[strings.ToLower(name)] {
			ex.Name = name
			ex.Facts = append(ex.Facts, memory.Fact{
				Category: "identity", Fact: "Client's name is " + name,
			})
		}
	}
	if m := companyRe.FindStringSubmatch(text); m != nil {
		company := strings.TrimSpace(m[1])
		if runes := []rune(company); len(runes) > 100 {
			company = string(runes[:100])
		}
		if len(company) > 2 {
			ex.Company = company
			ex.Facts = append(ex.Facts, memory.Fact{
				Category: "business", Fact: "Company: " + company,
			})
		}
	}
	for _, re := range budgetRes {
		if m := re.FindStringSubmatch(text); m != nil {
			ex.Budget = m[1]
			ex.Facts = append(ex.Facts, memory.Fact{
				Category: "budget", Fact: "Mentioned budget: " + m[1],
			})
			break
		}
	}
	if m := timelineRe.FindStringSubmatch(text); m != nil {
		timeline := strings.TrimSpace(m[1])
		if runes := []rune(timeline); len(runes) > 80 {
			timeline = string(runes[:80])
		}
		if timeline != "" {
			ex.Timeline = timeline
			ex.Facts = append(ex.Facts, memory.Fact{
				Category: "timeline", Fact: "Timeline: " + timeline,
			})
		}
	}
	return ex
}

// matchKeywordTable returns the first table key whose keyword list hits the
// utterance, either as a substring or as a fuzzy single-word match.
func (e *Extractor) matchKeywordTable(lower string, table []keywordSet) string {
	// Exact substring pass first, covering multi-word keywords.
	for _, set := range table {
		for _, kw := range set.words {
			if strings.Contains(lower, kw) {
				return set.key
			}
		}
	}

	// Fuzzy pass over individual tokens for single-word keywords.
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !isWordChar(r) && r < 0x80
	})
	for _, set := range table {
		for _, kw := range set.words {
			if strings.ContainsRune(kw, ' ') {
				continue
			}
			for _, tok := range tokens {
				if e.fuzzyEqual(tok, kw) {
					return set.key
				}
			}
		}
	}
	return ""
}

// fuzzyEqual reports whether two words sound alike: their Double Metaphone
// codes overlap and their Jaro-Winkler similarity clears the threshold.
func (e *Extractor) fuzzyEqual(a, b string) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	p1, s1 := matchr.DoubleMetaphone(a)
	p2, s2 := matchr.DoubleMetaphone(b)
	phoneticHit := p1 != "" && (p1 == p2 || p1 == s2) || s1 != "" && (s1 == p2 || s1 == s2)
	if !phoneticHit {
		return false
	}
	return matchr.JaroWinkler(a, b, false) >= e.fuzzyThreshold
}
