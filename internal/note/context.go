package note

import (
	"regexp"
	"strings"
)

var (
	// Onset: "sudden onset of chest pain", "gradual onset dyspnea",
	// "acute onset of confusion".
	onsetPattern = regexp.MustCompile(`(?i)\b(sudden|acute|gradual|insidious|abrupt|new)(?:[- ]onset)?\s+(?:onset\s+)?(?:of\s+)?([a-z][a-z /-]{2,40}?)(?:[.,;\n]|$)`)

	// Duration: "chest pain for 3 days", "x 2 weeks", "over the past
	// several hours", "since yesterday".
	durationPattern = regexp.MustCompile(`(?i)\b([a-z][a-z /-]{2,40}?)\s+(?:for|x|over the (?:past|last))\s+((?:\d+|a|an|several|few|the past)\s+(?:minutes?|hours?|days?|weeks?|months?|years?))\b`)
	sincePattern    = regexp.MustCompile(`(?i)\b([a-z][a-z /-]{2,40}?)\s+since\s+(yesterday|this morning|last night|last week|admission)\b`)

	// Severity and trajectory.
	severityPattern = regexp.MustCompile(`(?i)\b(mild|moderate|severe|critical|worsening|improving|stable|resolving|progressive)\s+([a-z][a-z /-]{2,40}?)(?:[.,;\n]|$)`)

	// Causality: "hypotension due to sepsis", "AKI secondary to
	// dehydration", "likely from volume overload".
	causalityPattern = regexp.MustCompile(`(?i)\b([a-z][a-z /-]{2,40}?)\s+(?:due to|secondary to|caused by|likely from|attributed to|in the setting of)\s+([a-z][a-z /-]{2,40}?)(?:[.,;\n]|$)`)

	// Negation statements: "denies chest pain", "no fever", "negative
	// for orthopnea".
	negationPattern = regexp.MustCompile(`(?i)\b(?:denies|denied|no evidence of|negative for|without|\bno\b)\s+([a-z][a-z ,/-]{2,50}?)(?:[.;\n]|$)`)
)

// ExtractContext collects the temporal, severity, causality, and
// negation evidence scattered through the narrative. Output is
// qualifying evidence for disambiguation, never a standalone finding;
// every list is capped to bound work on degenerate input.
func ExtractContext(src TextSource) ClinicalContext {
	text := src.Whole()
	var ctx ClinicalContext

	for _, m := range onsetPattern.FindAllStringSubmatch(text, maxMatchesPerExtractor) {
		entity := cleanContextEntity(m[2])
		if entity == "" {
			continue
		}
		ctx.Temporal = append(ctx.Temporal, TemporalContext{
			Entity:   entity,
			Modifier: strings.ToLower(m[1]),
			Type:     "onset",
		})
	}
	for _, m := range durationPattern.FindAllStringSubmatch(text, maxMatchesPerExtractor) {
		entity := cleanContextEntity(m[1])
		if entity == "" {
			continue
		}
		ctx.Temporal = append(ctx.Temporal, TemporalContext{
			Entity:   entity,
			Modifier: strings.ToLower(strings.TrimSpace(m[2])),
			Type:     "duration",
		})
	}
	for _, m := range sincePattern.FindAllStringSubmatch(text, maxMatchesPerExtractor) {
		entity := cleanContextEntity(m[1])
		if entity == "" {
			continue
		}
		ctx.Temporal = append(ctx.Temporal, TemporalContext{
			Entity:   entity,
			Modifier: "since " + strings.ToLower(m[2]),
			Type:     "duration",
		})
	}

	for _, m := range severityPattern.FindAllStringSubmatch(text, maxMatchesPerExtractor) {
		entity := cleanContextEntity(m[2])
		if entity == "" {
			continue
		}
		ctx.Severity = append(ctx.Severity, SeverityContext{
			Entity: entity,
			Level:  strings.ToLower(m[1]),
		})
	}

	for _, m := range causalityPattern.FindAllStringSubmatch(text, maxMatchesPerExtractor) {
		effect := cleanContextEntity(m[1])
		cause := cleanContextEntity(m[2])
		if effect == "" || cause == "" {
			continue
		}
		ctx.Causality = append(ctx.Causality, CausalityContext{
			Cause:  cause,
			Effect: effect,
		})
	}

	for _, m := range negationPattern.FindAllStringSubmatch(text, maxMatchesPerExtractor) {
		if entity := cleanContextEntity(m[1]); entity != "" {
			ctx.Negations = append(ctx.Negations, entity)
		}
	}

	return ctx
}

// contextStopWords are leading words that carry no entity meaning and
// get trimmed from captured spans.
var contextStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "with": true,
	"his": true, "her": true, "their": true, "any": true, "some": true,
	"patient": true, "patients": true, "pt": true,
}

// cleanContextEntity trims a captured entity span down to its core
// words, dropping spans that are all stop words or too short to name
// anything.
func cleanContextEntity(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	words := strings.Fields(s)
	for len(words) > 0 && contextStopWords[words[0]] {
		words = words[1:]
	}
	for len(words) > 0 && contextStopWords[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		return ""
	}
	out := strings.Join(words, " ")
	if len(out) < 3 {
		return ""
	}
	return out
}
