package note

import (
	"regexp"
	"strings"
)

var (
	medSectionLabel = regexp.MustCompile(`(?i)^\s*(?:current\s+|home\s+|outpatient\s+)?(?:medications?|meds)[^:\n]{0,20}:\s*`)
	medSentinel     = regexp.MustCompile(`(?i)^(?:none|nil|nkda|n/a|no(?:ne)?\s+(?:at\s+this\s+time|known|reported))\.?$`)

	allergyHeaderLine = regexp.MustCompile(`(?i)^\s*allerg(?:y|ies)[^:\n]{0,30}:\s*(.*)$`)
	allergyPhrase     = regexp.MustCompile(`(?i)review of (?:the )?patient'?s allergies indicates?\s*:?\s*([^\n.]+)`)
	nkdaPattern       = regexp.MustCompile(`(?i)\bnkda\b|no known (?:drug )?allergies`)

	andSeparator   = regexp.MustCompile(`(?i)\band\b`)
	listItemNumber = regexp.MustCompile(`^\d+[.)]\s*`)
)

// ExtractMedications returns the medication entries found in the
// medications section, split on semicolon, newline, comma, and
// bullet/hyphen delimiters with list decoration stripped. Tokens
// shorter than two characters and none/nil/NKDA sentinels are
// discarded. It requires a medications section body: free narrative
// mentions of drug names are deliberately not collected, because
// without the section context a mention may be historical or negated.
func ExtractMedications(src TextSource) []string {
	body := src.Section(SectionMedications)
	if strings.TrimSpace(body) == "" {
		return nil
	}
	body = medSectionLabel.ReplaceAllString(body, "")

	var meds []string
	for _, tok := range boundedLines(splitMedList(body), maxMatchesPerExtractor) {
		m := stripListDecoration(tok)
		m = strings.TrimSpace(strings.TrimRight(m, "."))
		if len(m) < 2 || medSentinel.MatchString(m) {
			continue
		}
		meds = append(meds, m)
	}
	return meds
}

// splitMedList breaks a medications body on semicolons, newlines, and
// commas; bullet and hyphen markers are handled per token by
// stripListDecoration.
func splitMedList(s string) []string {
	s = strings.ReplaceAll(s, ";", "\n")
	s = strings.ReplaceAll(s, ",", "\n")
	return strings.Split(s, "\n")
}

// ExtractAllergies scans the whole text for an allergy statement. It
// returns exactly [NKDA] when the note explicitly documents no known
// allergies, nil when allergies are not documented at all, and the
// listed allergens otherwise. The NKDA sentinel is exclusive: it never
// coexists with listed allergens.
func ExtractAllergies(src TextSource) []string {
	text := src.Whole()

	statement := ""
	if body := src.Section(SectionAllergies); strings.TrimSpace(body) != "" {
		statement = body
	} else {
		for _, line := range boundedLines(strings.Split(text, "\n"), maxMatchesPerExtractor) {
			if m := allergyHeaderLine.FindStringSubmatch(line); m != nil {
				statement = m[1]
				break
			}
		}
		if statement == "" {
			if m := allergyPhrase.FindStringSubmatch(text); m != nil {
				statement = m[1]
			}
		}
	}

	if strings.TrimSpace(statement) == "" {
		return nil
	}
	if nkdaPattern.MatchString(statement) {
		return []string{NKDA}
	}

	var allergies []string
	for _, part := range splitAllergyList(statement) {
		if a := cleanAllergen(part); a != "" {
			allergies = append(allergies, a)
		}
	}
	if len(allergies) == 0 {
		return nil
	}
	return allergies
}

// splitAllergyList breaks an allergy statement on commas, semicolons,
// newlines, and "and".
func splitAllergyList(s string) []string {
	s = strings.ReplaceAll(s, "\n", ",")
	s = strings.ReplaceAll(s, ";", ",")
	s = andSeparator.ReplaceAllString(s, ",")
	return strings.Split(s, ",")
}

// cleanAllergen strips list decoration and any trailing reaction
// description ("Penicillin - rash" -> "Penicillin").
func cleanAllergen(s string) string {
	s = stripListDecoration(strings.TrimSpace(s))
	if idx := strings.Index(s, " - "); idx >= 0 {
		s = s[:idx]
	} else if idx := strings.Index(s, " ("); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(strings.Trim(s, ".–-"))
	if s == "" || len(s) > 60 {
		return ""
	}
	return s
}

func stripListDecoration(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-•* \t")
	s = listItemNumber.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
