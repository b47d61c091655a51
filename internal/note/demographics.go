package note

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// Age patterns in priority order: an explicit label beats the
	// narrative "NN-year-old" shape, which beats a bare "age NN".
	ageLabeled   = regexp.MustCompile(`(?i)\bage\s*[:=]\s*(\d{1,3})\b`)
	ageNarrative = regexp.MustCompile(`(?i)\b(\d{1,3})[- ]?(?:year[- ]?old|y/?o|yo)\b`)
	ageTrailing  = regexp.MustCompile(`(?i)\bage\s+(\d{1,3})\b`)

	// Gender patterns in priority order: a labeled field, then explicit
	// words, then a single letter adjacent to an age ("80 yo M"), then
	// the trailing-slash shorthand ("M/"). Bare M/F letters elsewhere
	// are never gender: they collide with units like "98.6 F".
	genderLabel       = regexp.MustCompile(`(?i)\b(?:gender|sex)\s*[:=]\s*(male|female|m|f)\b`)
	genderMale        = regexp.MustCompile(`(?i)\b(?:male|man|gentleman)\b`)
	genderFemale      = regexp.MustCompile(`(?i)\b(?:female|woman|lady)\b`)
	genderAgeAdjacent = regexp.MustCompile(`(?i)\b\d{1,3}\s*(?:y/?o|yo|year[- ]?old)\s*,?\s*([mf])\b`)
	genderSlash       = regexp.MustCompile(`\b([MF])/`)

	mrnPattern = regexp.MustCompile(`(?i)\bmrn\s*[:#]?\s*([A-Z0-9-]{4,16})\b`)
	dobPattern = regexp.MustCompile(`(?i)\b(?:dob|date of birth|born)\s*[:=]?\s*([0-9/.-]{6,10})\b`)
)

// ExtractDemographics pulls age, gender, MRN, and date of birth from
// the narrative. Each field resolves independently; a note with only
// an age still yields the age.
func ExtractDemographics(src TextSource) Demographics {
	text := src.Whole()
	var d Demographics

	for _, p := range []*regexp.Regexp{ageLabeled, ageNarrative, ageTrailing} {
		if m := p.FindStringSubmatch(text); m != nil {
			if age := atoiSafe(m[1]); age > 0 && age < 130 {
				d.Age = intPtr(age)
				break
			}
		}
	}

	// Each later gender rule applies only when every earlier rule
	// missed, so an explicit word always beats shorthand.
	switch {
	case genderLabel.MatchString(text):
		m := genderLabel.FindStringSubmatch(text)
		d.Gender = genderFromLetter(m[1])
	case genderFemale.MatchString(text):
		d.Gender = "female"
	case genderMale.MatchString(text):
		d.Gender = "male"
	default:
		if m := genderAgeAdjacent.FindStringSubmatch(text); m != nil {
			d.Gender = genderFromLetter(m[1])
		} else if m := genderSlash.FindStringSubmatch(text); m != nil {
			d.Gender = genderFromLetter(m[1])
		}
	}

	if m := mrnPattern.FindStringSubmatch(text); m != nil {
		d.MRN = strings.ToUpper(m[1])
	}
	if m := dobPattern.FindStringSubmatch(text); m != nil {
		if iso, ok := toISODate(m[1]); ok {
			d.DOB = iso
		}
	}
	return d
}

// genderFromLetter normalizes a matched gender token to male/female.
func genderFromLetter(s string) string {
	switch strings.ToLower(s) {
	case "male", "m":
		return "male"
	case "female", "f":
		return "female"
	}
	return ""
}

// dateFormats are the layouts the date scanner recognizes, tried in
// order. Slash formats assume US month-first ordering, matching the
// EHR exports this engine targets.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"02-Jan-2006",
}

var dateCandidate = regexp.MustCompile(`\b(?:\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4}|(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+\d{1,2},?\s+\d{4}|\d{2}-[A-Za-z]{3}-\d{4})\b`)

// ExtractDates scans the whole text for date-shaped tokens and returns
// them normalized to ISO-8601, de-duplicated, in order of first
// appearance. Tokens that fail to parse under every known layout are
// silently skipped.
func ExtractDates(src TextSource) []string {
	text := src.Whole()

	var out []string
	seen := make(map[string]bool)
	for _, raw := range dateCandidate.FindAllString(text, maxMatchesPerExtractor) {
		iso, ok := toISODate(raw)
		if !ok || seen[iso] {
			continue
		}
		seen[iso] = true
		out = append(out, iso)
	}
	return out
}

// toISODate normalizes one date token to YYYY-MM-DD.
func toISODate(raw string) (string, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ".", ""))
	for _, layout := range dateFormats {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if t.Year() < 1900 || t.Year() > 2100 {
			continue
		}
		return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day()), true
	}
	return "", false
}
