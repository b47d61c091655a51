package note

import (
	"regexp"
	"strings"
)

var (
	problemsAddressedHeader = regexp.MustCompile(`(?i)problems? addressed\s*:?`)
	numberedDiagnosis       = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+([^\n]+)$`)
	bulletedDiagnosis       = regexp.MustCompile(`(?m)^\s*[-•*]\s+([^\n]+)$`)

	severityPrefix    = regexp.MustCompile(`(?i)^(?:acute|chronic|severe|mild|moderate|worsening|stable|new(?:-| )onset|recurrent|suspected|possible|probable)\s+`)
	parentheticalTail = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	dueToTail         = regexp.MustCompile(`(?i)\s+(?:due to|secondary to|likely from|caused by)\s+.*$`)
	trailingStatus    = regexp.MustCompile(`(?i)\s*[-–—]\s*(?:improv\w+|stable|resolv\w+|worsening|unchanged)\s*\.?$`)
)

// diagnosisKeywords is the always-on vocabulary scanned against the
// whole note regardless of which list passes produced results. Each
// entry maps a pattern to the canonical diagnosis string it emits.
var diagnosisKeywords = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"Heart failure", regexp.MustCompile(`(?i)\b(?:heart failure|chf|hfref|hfpef|congestive heart failure)\b`)},
	{"Atrial fibrillation", regexp.MustCompile(`(?i)\b(?:atrial fibrillation|afib|a-?fib)\b`)},
	{"Myocardial infarction", regexp.MustCompile(`(?i)\b(?:myocardial infarction|stemi|nstemi|mi)\b`)},
	{"Pneumonia", regexp.MustCompile(`(?i)\bpneumonia\b`)},
	{"COPD", regexp.MustCompile(`(?i)\b(?:copd|chronic obstructive pulmonary)\b`)},
	{"Diabetes", regexp.MustCompile(`(?i)\b(?:diabetes|dm2|t2dm|iddm|niddm)\b`)},
	{"Hypertension", regexp.MustCompile(`(?i)\b(?:hypertension|htn)\b`)},
	{"Chronic kidney disease", regexp.MustCompile(`(?i)\b(?:chronic kidney disease|ckd|esrd|renal failure)\b`)},
	{"Sepsis", regexp.MustCompile(`(?i)\b(?:sepsis|septic shock)\b`)},
	{"Stroke", regexp.MustCompile(`(?i)\b(?:stroke|cva|cerebrovascular accident|tia)\b`)},
	{"Pulmonary embolism", regexp.MustCompile(`(?i)\bpulmonary embol\w+`)},
	{"Deep vein thrombosis", regexp.MustCompile(`(?i)\b(?:deep vein thrombosis|dvt)\b`)},
	{"Anemia", regexp.MustCompile(`(?i)\banemia\b`)},
	{"Hyperlipidemia", regexp.MustCompile(`(?i)\b(?:hyperlipidemia|dyslipidemia|hld)\b`)},
	{"Coronary artery disease", regexp.MustCompile(`(?i)\b(?:coronary artery disease|cad)\b`)},
	{"Asthma", regexp.MustCompile(`(?i)\basthma\b`)},
	{"Pancreatitis", regexp.MustCompile(`(?i)\bpancreatitis\b`)},
	{"UTI", regexp.MustCompile(`(?i)\b(?:urinary tract infection|uti)\b`)},
	{"GI bleed", regexp.MustCompile(`(?i)\b(?:gi bleed\w*|gastrointestinal bleed\w*|melena|hematochezia)\b`)},
	{"Acute kidney injury", regexp.MustCompile(`(?i)\b(?:acute kidney injury|aki|acute renal failure)\b`)},
}

// negationCues immediately preceding a keyword hit suppress it.
var negationWindow = regexp.MustCompile(`(?i)\b(?:no|denies|denied|negative for|without|ruled out|rule out|r/o|not)\b[^.\n]{0,40}$`)

// ExtractDiagnoses runs four passes over the note and merges their
// output with case-insensitive de-duplication, preserving first-seen
// order and spelling:
//
//  1. a "Problems Addressed:" block, item per line
//  2. numbered items in the assessment section
//  3. bulleted items in the assessment section, only when the first
//     two passes found nothing
//  4. the always-on diagnosis keyword table against the whole text,
//     with a negation guard
func ExtractDiagnoses(src TextSource) []string {
	text := src.Whole()

	var out []string
	seen := make(map[string]bool)
	add := func(d string) {
		d = strings.TrimSpace(d)
		if d == "" {
			return
		}
		key := strings.ToLower(d)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, d)
	}

	listed := 0

	// Pass 1: Problems Addressed block. Each line is "Diagnosis" or
	// "Diagnosis: severity"; only the left of the colon is the name.
	if block := problemsAddressedBlock(text); block != "" {
		for _, line := range boundedLines(strings.Split(block, "\n"), maxMatchesPerExtractor) {
			item := stripListDecoration(line)
			if idx := strings.Index(item, ":"); idx >= 0 {
				item = item[:idx]
			}
			if d := cleanDiagnosis(item); d != "" {
				add(d)
				listed++
			}
		}
	}

	assessment := src.Section(SectionAssessment)
	if assessment == "" {
		assessment = src.Section(SectionPlan)
	}

	// Pass 2: numbered assessment items.
	for _, m := range numberedDiagnosis.FindAllStringSubmatch(assessment, maxMatchesPerExtractor) {
		if d := cleanDiagnosis(m[1]); d != "" {
			add(d)
			listed++
		}
	}

	// Pass 3: bulleted assessment items, only when nothing listed yet.
	// Bullets are too ambiguous (plan steps, exam findings) to trust
	// when a structured list already exists.
	if listed == 0 {
		for _, m := range bulletedDiagnosis.FindAllStringSubmatch(assessment, maxMatchesPerExtractor) {
			if looksLikeHeaderShape(m[1]) {
				continue
			}
			if d := cleanDiagnosis(m[1]); d != "" {
				add(d)
			}
		}
	}

	// Pass 4: always-on keyword table with negation guard. Runs even
	// when the list passes succeeded, so a diagnosis discussed only in
	// narrative is still surfaced; the dedup map keeps canonical names
	// from doubling differently-spelled list entries only when the
	// spellings collide.
	for _, dk := range diagnosisKeywords {
		loc := dk.pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if isNegatedAt(text, loc[0]) {
			continue
		}
		add(dk.name)
	}

	return out
}

// problemsAddressedBlock returns the lines following a "Problems
// Addressed:" marker up to the first blank line.
func problemsAddressedBlock(text string) string {
	loc := problemsAddressedHeader.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]
	if idx := strings.Index(rest, "\n\n"); idx >= 0 {
		rest = rest[:idx]
	}
	return rest
}

// cleanDiagnosis reduces a list item to the diagnosis itself: severity
// qualifiers, parenthetical asides, causal tails, trailing status
// notes, and dash qualifiers are stripped. Items that reduce to
// nothing, or that are too long to be a diagnosis name, are dropped.
func cleanDiagnosis(s string) string {
	s = strings.TrimSpace(s)
	s = parentheticalTail.ReplaceAllString(s, "")
	s = dueToTail.ReplaceAllString(s, "")
	s = trailingStatus.ReplaceAllString(s, "")
	// Any remaining dash tail is a qualifier ("Chest pain - rule out
	// ACS"), not part of the diagnosis name.
	if idx := strings.Index(s, " - "); idx >= 0 {
		s = s[:idx]
	}
	for {
		next := severityPrefix.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	s = strings.TrimSpace(strings.Trim(s, ".,;:"))
	if s == "" || len(s) > 80 {
		return ""
	}
	return s
}

// isNegatedAt reports whether the text immediately preceding offset
// carries a negation cue within the same sentence.
func isNegatedAt(text string, offset int) bool {
	start := offset - 60
	if start < 0 {
		start = 0
	}
	return negationWindow.MatchString(text[start:offset])
}
