package note

import (
	"strings"
	"sync"
	"unicode"
)

// maxHeaderLineLength bounds how long a line can be and still be
// considered a section header candidate.
const maxHeaderLineLength = 50

// fuzzyHeaderThreshold is the minimum similarity score for a line to
// be accepted as a spelling variant of a canonical header.
const fuzzyHeaderThreshold = 0.6

// HeaderConfig holds the canonical header vocabulary and its known
// alias spellings. It is built once (optionally enriched from an
// offline vocabulary store) and passed into the segmenter explicitly;
// it is never mutated after the segmenter starts using it, so a single
// instance is safe to share across concurrent parses.
type HeaderConfig struct {
	aliases map[string][]string // canonical section -> lowercase alias spellings
	exact   map[string]string   // lowercase alias -> canonical section
}

// NewHeaderConfig returns a config pre-loaded with the built-in header
// vocabulary.
func NewHeaderConfig() *HeaderConfig {
	c := &HeaderConfig{
		aliases: make(map[string][]string),
		exact:   make(map[string]string),
	}
	for canonical, spellings := range builtinHeaderAliases {
		for _, a := range spellings {
			c.AddAlias(canonical, a)
		}
	}
	return c
}

// AddAlias registers an alias spelling for a canonical section.
// Aliases are matched case-insensitively.
func (c *HeaderConfig) AddAlias(canonical, alias string) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if alias == "" {
		return
	}
	if _, ok := c.exact[alias]; ok {
		return
	}
	c.exact[alias] = canonical
	c.aliases[canonical] = append(c.aliases[canonical], alias)
}

// Canonical resolves a header line to its canonical section by exact
// alias lookup after trimming separator characters.
func (c *HeaderConfig) Canonical(line string) (string, bool) {
	key := normalizeHeaderText(line)
	canonical, ok := c.exact[key]
	return canonical, ok
}

// Match resolves a header line to the best-scoring canonical section.
// The score is 1.0 for an exact alias match and a bigram similarity in
// [0,1] otherwise; callers gate on fuzzyHeaderThreshold.
func (c *HeaderConfig) Match(line string) (string, float64) {
	key := normalizeHeaderText(line)
	if key == "" {
		return "", 0
	}
	if canonical, ok := c.exact[key]; ok {
		return canonical, 1.0
	}

	best := ""
	bestScore := 0.0
	for canonical, spellings := range c.aliases {
		for _, a := range spellings {
			if s := bigramSimilarity(key, a); s > bestScore {
				best, bestScore = canonical, s
			}
		}
	}
	return best, bestScore
}

// Learn scans candidate lines and returns alias -> canonical pairs
// that fuzzy-match an existing header without being known spellings.
// This backs the offline vocabulary auxiliary; it never mutates the
// config itself.
func (c *HeaderConfig) Learn(lines []string) map[string]string {
	found := make(map[string]string)
	for _, line := range lines {
		key := normalizeHeaderText(line)
		if key == "" || len(line) > maxHeaderLineLength {
			continue
		}
		if _, ok := c.exact[key]; ok {
			continue
		}
		if canonical, score := c.Match(line); score >= fuzzyHeaderThreshold && score < 1.0 {
			found[key] = canonical
		}
	}
	return found
}

var (
	defaultConfigMu sync.Mutex
	defaultConfig   *HeaderConfig
)

// DefaultHeaderConfig returns the shared built-in config, computing it
// on first use.
func DefaultHeaderConfig() *HeaderConfig {
	defaultConfigMu.Lock()
	defer defaultConfigMu.Unlock()
	if defaultConfig == nil {
		defaultConfig = NewHeaderConfig()
	}
	return defaultConfig
}

// ResetDefaultHeaderConfig discards the shared config so the next
// DefaultHeaderConfig call rebuilds it. Exists for test isolation.
func ResetDefaultHeaderConfig() {
	defaultConfigMu.Lock()
	defaultConfig = nil
	defaultConfigMu.Unlock()
}

var builtinHeaderAliases = map[string][]string{
	SectionChiefComplaint: {"chief complaint", "cc", "reason for visit", "presenting complaint"},
	SectionHPI:            {"hpi", "history of present illness", "history of presenting illness", "present illness"},
	SectionPMH:            {"pmh", "past medical history", "medical history", "pmhx", "past medical hx"},
	SectionPSH:            {"psh", "past surgical history", "surgical history", "pshx"},
	SectionFamilyHistory:  {"family history", "fh", "fam hx", "family hx"},
	SectionSocialHistory:  {"social history", "sh", "soc hx", "social hx"},
	SectionMedications:    {"medications", "meds", "home medications", "current medications", "medication list", "outpatient medications"},
	SectionAllergies:      {"allergies", "allergy", "drug allergies", "allergies/adverse reactions"},
	SectionROS:            {"review of systems", "ros", "systems review"},
	SectionVitals:         {"vitals", "vital signs", "vs", "vital sign flowsheet"},
	SectionDiagnostics:    {"diagnostics", "diagnostic studies", "studies", "imaging", "radiology"},
	SectionLabs:           {"labs", "lab results", "laboratory", "laboratory results", "laboratory data", "lab data"},
	SectionObjective:      {"objective", "physical exam", "physical examination", "exam", "pe"},
	SectionAssessment:     {"assessment", "impression", "assessment and plan", "clinical impression"},
	SectionPlan:           {"plan", "recommendations", "treatment plan"},
	SectionDisposition:    {"disposition", "dispo", "discharge plan"},
}

// normalizeHeaderText lowercases a candidate header line and strips
// the trailing separator and decoration characters.
func normalizeHeaderText(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimRight(s, ":;-=* \t")
	s = strings.TrimLeft(s, "#*- \t")
	return strings.ToLower(strings.TrimSpace(s))
}

// looksLikeHeaderShape reports whether a line has the typographic
// shape of a header independent of its vocabulary: short, and either
// colon-terminated, ALL CAPS, or Title Case with few words.
func looksLikeHeaderShape(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" || len(s) > maxHeaderLineLength {
		return false
	}
	if strings.HasSuffix(s, ":") {
		return true
	}
	words := strings.Fields(s)
	if len(words) > 5 {
		return false
	}
	if isAllCaps(s) {
		return true
	}
	return isTitleCase(words)
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

func isTitleCase(words []string) bool {
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		r := rune(w[0])
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) && w != "of" && w != "and" {
			return false
		}
	}
	return true
}

// bigramSimilarity is the Sorensen-Dice coefficient over character
// bigrams. It tolerates abbreviation and transposition better than
// edit distance at the short lengths headers have.
func bigramSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}
	counts := make(map[string]int)
	for i := 0; i+2 <= len(a); i++ {
		counts[a[i:i+2]]++
	}
	overlap := 0
	for i := 0; i+2 <= len(b); i++ {
		bg := b[i : i+2]
		if counts[bg] > 0 {
			counts[bg]--
			overlap++
		}
	}
	return 2.0 * float64(overlap) / float64(len(a)+len(b)-2)
}
