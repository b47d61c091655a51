package note

import (
	"regexp"
	"strings"
)

// minSectionsForWin is how many canonical sections the header-first
// strategy must produce before the fallback strategies demote to
// gap-filling only.
const minSectionsForWin = 2

// minSignalWordCount is the minimum signal-word hits a paragraph needs
// before signal-word scoring will claim it for a section.
const minSignalWordCount = 2

// Segmenter splits normalized note text into a canonical-section map
// using a three-tier fallback cascade: explicit headers, signal-word
// scoring of unheaded paragraphs, then layout heuristics. Later tiers
// only fill sections earlier tiers left empty.
type Segmenter struct {
	cfg *HeaderConfig
}

// NewSegmenter builds a segmenter around the given header vocabulary.
// A nil config selects the shared default.
func NewSegmenter(cfg *HeaderConfig) *Segmenter {
	if cfg == nil {
		cfg = DefaultHeaderConfig()
	}
	return &Segmenter{cfg: cfg}
}

// Segment returns a mapping of canonical section name to trimmed body
// text. The reserved SectionFullText key always holds the complete
// input. Text preceding any recognized header lands in the
// "subjective" bucket.
func (s *Segmenter) Segment(text string) map[string]string {
	sections := make(map[string]string)
	if strings.TrimSpace(text) == "" {
		sections[SectionFullText] = ""
		return sections
	}

	sections[SectionFullText] = text

	unclaimed := s.headerFirst(text, sections)

	// Fallback tiers operate only on paragraphs no header claimed, and
	// never overwrite a section that already has content.
	if countCanonical(sections) < minSectionsForWin {
		unclaimed = s.signalWordPass(unclaimed, sections)
		s.layoutPass(unclaimed, sections)
	} else if len(unclaimed) > 0 {
		// Header-first won; remaining strategies still fill gaps.
		unclaimed = s.signalWordPass(unclaimed, sections)
		s.layoutPass(unclaimed, sections)
	}

	for k, v := range sections {
		sections[k] = strings.TrimSpace(v)
	}
	return sections
}

// headerFirst scans line by line assigning content to the most recent
// recognized header. It returns the paragraphs it could not attribute
// to any header (the subjective bucket content, split on blank lines).
func (s *Segmenter) headerFirst(text string, sections map[string]string) []string {
	lines := strings.Split(text, "\n")
	current := ""
	var body []string
	var preamble []string

	flush := func() {
		if current == "" {
			return
		}
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if content != "" {
			appendSection(sections, current, content)
		}
		body = body[:0]
	}

	for _, line := range lines {
		if canonical, rest, ok := s.matchHeaderLine(line); ok {
			flush()
			current = canonical
			if rest != "" {
				body = append(body, rest)
			}
			continue
		}
		if current == "" {
			preamble = append(preamble, line)
		} else {
			body = append(body, line)
		}
	}
	flush()

	pre := strings.TrimSpace(strings.Join(preamble, "\n"))
	if pre == "" {
		return nil
	}
	if len(sections) > 1 {
		// At least one header was recognized; preceding narrative is
		// subjective by convention.
		appendSection(sections, SectionSubjective, pre)
		return nil
	}
	return splitParagraphs(pre)
}

// matchHeaderLine decides whether a line is a section header. It
// returns the canonical section and any content that followed the
// separator on the same line ("Allergies: NKDA").
func (s *Segmenter) matchHeaderLine(line string) (canonical, rest string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > maxHeaderLineLength+30 {
		return "", "", false
	}

	head := trimmed
	if idx := strings.Index(trimmed, ":"); idx > 0 {
		head = trimmed[:idx]
		rest = strings.TrimSpace(trimmed[idx+1:])
	}
	if len(head) > maxHeaderLineLength {
		return "", "", false
	}

	if c, found := s.cfg.Canonical(head); found {
		return c, rest, true
	}

	// Fuzzy match only for lines shaped like headers, so narrative
	// sentences containing section words are not misread.
	if !looksLikeHeaderShape(trimmed) {
		return "", "", false
	}
	if c, score := s.cfg.Match(head); score >= fuzzyHeaderThreshold {
		return c, rest, true
	}
	return "", "", false
}

// sectionSignalWords maps canonical sections to domain keywords whose
// presence in an unheaded paragraph indicates membership.
var sectionSignalWords = map[string][]string{
	SectionObjective: {
		"edema", "murmur", "auscultation", "tenderness", "distension",
		"alert and oriented", "no acute distress", "breath sounds", "rales",
		"crackles", "wheezing", "pupils", "extremities",
	},
	SectionPlan: {
		"recommend", "continue", "start", "discontinue", "follow up",
		"follow-up", "monitor", "titrate", "consult", "discharge", "repeat",
	},
	SectionAssessment: {
		"impression", "consistent with", "likely", "differential",
		"suspect", "rule out", "suggestive of", "etiology",
	},
	SectionHPI: {
		"presents with", "complains of", "reports", "states", "describes",
		"developed", "woke up", "since yesterday", "progressively",
	},
	SectionSocialHistory: {
		"tobacco", "alcohol", "smoker", "denies drug use", "lives with",
		"retired", "occupation",
	},
}

// signalWordPass assigns unheaded paragraphs to the section whose
// signal words dominate. Paragraphs it cannot place are returned for
// the layout pass.
func (s *Segmenter) signalWordPass(paragraphs []string, sections map[string]string) []string {
	var leftover []string
	for _, para := range paragraphs {
		lower := strings.ToLower(para)
		best, bestCount := "", 0
		for section, words := range sectionSignalWords {
			count := 0
			for _, w := range words {
				count += strings.Count(lower, w)
			}
			if count > bestCount {
				best, bestCount = section, count
			}
		}
		if bestCount >= minSignalWordCount && sections[best] == "" {
			appendSection(sections, best, para)
			continue
		}
		leftover = append(leftover, para)
	}
	return leftover
}

var (
	dosageToken  = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:mg|mcg|g|ml|units?|meq|tabs?)\b`)
	bpShaped     = regexp.MustCompile(`\b\d{2,3}/\d{2,3}\b`)
	vitalAbbrev  = regexp.MustCompile(`(?i)\b(?:bp|hr|rr|spo2|o2 sat|temp)\b`)
	reasoningCue = regexp.MustCompile(`(?i)\b(?:impression|consistent with|rule out|suggestive of)\b`)
)

// layoutPass classifies remaining paragraphs by their shape: bullet
// density plus dosage tokens means medications, bullets without
// dosages means plan, vital-shaped tokens mean objective, and
// diagnostic-reasoning keywords mean assessment. Unclassifiable
// paragraphs fall into the subjective bucket.
func (s *Segmenter) layoutPass(paragraphs []string, sections map[string]string) {
	for _, para := range paragraphs {
		target := SectionSubjective
		switch {
		case bulletDensity(para) >= 0.5 && dosageToken.MatchString(para):
			target = SectionMedications
		case bulletDensity(para) >= 0.5:
			target = SectionPlan
		case bpShaped.MatchString(para) || vitalAbbrev.MatchString(para):
			target = SectionObjective
		case reasoningCue.MatchString(para):
			target = SectionAssessment
		}
		if target != SectionSubjective && sections[target] != "" {
			target = SectionSubjective
		}
		appendSection(sections, target, para)
	}
}

func bulletDensity(para string) float64 {
	lines := strings.Split(para, "\n")
	if len(lines) == 0 {
		return 0
	}
	bullets := 0
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "-") || strings.HasPrefix(t, "*") ||
			strings.HasPrefix(t, "•") {
			bullets++
		}
	}
	return float64(bullets) / float64(len(lines))
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}

func appendSection(sections map[string]string, name, content string) {
	if existing := sections[name]; existing != "" {
		sections[name] = existing + "\n\n" + content
		return
	}
	sections[name] = content
}

// countCanonical counts real sections, excluding the reserved
// full-text key and the default subjective bucket.
func countCanonical(sections map[string]string) int {
	n := 0
	for name, body := range sections {
		if name == SectionFullText || name == SectionSubjective {
			continue
		}
		if strings.TrimSpace(body) != "" {
			n++
		}
	}
	return n
}
