package note

import "strings"

// Parser is the façade over the full pipeline: normalization,
// segmentation, the extractor battery, disambiguation, validation, and
// confidence scoring. A Parser is immutable after construction and
// safe for concurrent use.
type Parser struct {
	segmenter *Segmenter
}

// NewParser builds a parser around the given header vocabulary. A nil
// config selects the shared default vocabulary.
func NewParser(cfg *HeaderConfig) *Parser {
	return &Parser{segmenter: NewSegmenter(cfg)}
}

// Parse runs the full pipeline over raw note text. It never fails:
// malformed or empty input produces a result with warnings and a low
// confidence instead of an error. Empty input short-circuits to a
// zero-confidence result with a single warning.
func (p *Parser) Parse(text string) ParseResult {
	normalized, truncated := normalizeBounded(text)
	if strings.TrimSpace(normalized) == "" {
		return ParseResult{
			Warnings:   []string{"empty note"},
			Confidence: 0,
			Raw:        RawSections{Sections: map[string]string{}},
		}
	}

	sections := p.segmenter.Segment(normalized)

	// Fully templated consults get their template sections folded into
	// the canonical map; consult-only sections keep their own names.
	if IsConsultNote(normalized) {
		consult := SegmentConsult(normalized)
		for name, body := range consult.Sections {
			if strings.TrimSpace(sections[name]) == "" {
				sections[name] = body
			}
		}
		if body := consult.Sections[SectionImpressionPlan]; body != "" &&
			strings.TrimSpace(sections[SectionAssessment]) == "" {
			sections[SectionAssessment] = body
		}
	}

	src := Sectioned(sections)

	parsed := ParsedNote{
		Sections:     sections,
		Vitals:       ExtractVitals(src),
		Labs:         ExtractLabs(src),
		Medications:  ExtractMedications(src),
		Allergies:    ExtractAllergies(src),
		Diagnoses:    ExtractDiagnoses(src),
		Demographics: ExtractDemographics(src),
		Dates:        ExtractDates(src),
	}

	ctx := ExtractContext(src)
	diagnoses := Disambiguate(parsed.Diagnoses, ctx, parsed.Vitals)

	warnings := Validate(parsed)
	if truncated {
		warnings = append(warnings, "note exceeded maximum length and was truncated")
	}

	return ParseResult{
		Data:       parsed,
		Diagnoses:  diagnoses,
		Warnings:   warnings,
		Confidence: ScoreConfidence(warnings),
		Raw:        RawSections{Sections: sections},
	}
}
