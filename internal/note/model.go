// Package note converts free-form clinical encounter notes into a
// structured, typed record of clinical facts: vital signs, laboratory
// values, medications, allergies, diagnoses, demographics, and
// contextual qualifiers. Every extractor is a pure function of its
// input text plus precompiled pattern tables, so the package is safe
// for concurrent use.
package note

import "strings"

// Canonical section names. All recognized header spellings are mapped
// onto this fixed vocabulary.
const (
	SectionFullText       = "full_text"
	SectionSubjective     = "subjective"
	SectionChiefComplaint = "chief_complaint"
	SectionHPI            = "hpi"
	SectionPMH            = "pmh"
	SectionPSH            = "psh"
	SectionFamilyHistory  = "family_history"
	SectionSocialHistory  = "social_history"
	SectionMedications    = "medications"
	SectionAllergies      = "allergies"
	SectionROS            = "review_of_systems"
	SectionVitals         = "vitals"
	SectionDiagnostics    = "diagnostics"
	SectionLabs           = "labs"
	SectionObjective      = "objective"
	SectionAssessment     = "assessment"
	SectionPlan           = "plan"
	SectionDisposition    = "disposition"
)

// maxMatchesPerExtractor caps how many matches (or scanned lines) any
// single pattern pass will collect, bounding work on repetitive or
// adversarial input.
const maxMatchesPerExtractor = 500

// NKDA is the sentinel allergy entry for "no known drug allergies".
// An Allergies slice of exactly [NKDA] means the note explicitly
// documents the absence of allergies; a nil slice means allergies were
// not documented at all.
const NKDA = "NKDA"

// VitalsSource identifies which layout recognizer produced a Vitals
// record. Structured sources are more trustworthy than inline matches;
// callers holding several candidates must prefer the structured one.
type VitalsSource string

const (
	SourceMinMaxTable  VitalsSource = "minmax_table"
	SourceTabular      VitalsSource = "tabular"
	SourceVerticalList VitalsSource = "vertical_list"
	SourceInline       VitalsSource = "inline"
)

// Measurement is a numeric value with its unit, used for weight and
// height where EHR exports mix metric and imperial units.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Vitals is a sparse record of vital signs. Absent fields are nil (or
// empty for BP) rather than zero so "not documented" is distinguishable
// from a measured zero.
type Vitals struct {
	BP     string       `json:"bp,omitempty"` // "systolic/diastolic"
	HR     *int         `json:"hr,omitempty"`
	RR     *int         `json:"rr,omitempty"`
	Temp   *float64     `json:"temp,omitempty"` // Fahrenheit
	SpO2   *int         `json:"spo2,omitempty"` // percent
	Weight *Measurement `json:"weight,omitempty"`
	Height *Measurement `json:"height,omitempty"`
	Source VitalsSource `json:"source,omitempty"`
}

// IsZero reports whether no vital field was extracted.
func (v Vitals) IsZero() bool {
	return v.BP == "" && v.HR == nil && v.RR == nil && v.Temp == nil &&
		v.SpO2 == nil && v.Weight == nil && v.Height == nil
}

// Systolic returns the systolic component of BP, or 0 when BP is
// absent or malformed.
func (v Vitals) Systolic() int {
	if v.BP == "" {
		return 0
	}
	parts := strings.SplitN(v.BP, "/", 2)
	return atoiSafe(parts[0])
}

// LabValue is a single laboratory result. Flag carries the abnormality
// marker ("H", "L", "HH", ...) when the source line had one.
type LabValue struct {
	Value float64 `json:"value"`
	Flag  string  `json:"flag,omitempty"`
}

// Demographics holds patient identity facts found in the narrative.
type Demographics struct {
	Age    *int   `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"` // "male" or "female"
	MRN    string `json:"mrn,omitempty"`
	DOB    string `json:"dob,omitempty"` // ISO-8601
}

// TemporalContext qualifies an entity with onset or duration evidence.
type TemporalContext struct {
	Entity   string `json:"entity"`
	Modifier string `json:"modifier"`
	Type     string `json:"type"` // "onset" or "duration"
}

// SeverityContext qualifies an entity with a severity or trajectory
// level ("mild", "severe", "stable", "worsening", ...).
type SeverityContext struct {
	Entity string `json:"entity"`
	Level  string `json:"level"`
}

// CausalityContext links a clinical effect to its documented cause
// ("hypotension due to sepsis" -> {Cause: "sepsis", Effect: "hypotension"}).
type CausalityContext struct {
	Cause  string `json:"cause"`
	Effect string `json:"effect"`
}

// ClinicalContext is the evidence extracted by the context pass. These
// lists qualify diagnoses during disambiguation; they are never
// presented standalone.
type ClinicalContext struct {
	Temporal  []TemporalContext `json:"temporal,omitempty"`
	Severity  []SeverityContext `json:"severity,omitempty"`
	Causality []CausalityContext `json:"causality,omitempty"`
	Negations []string          `json:"negations,omitempty"`
}

// DisambiguatedDiagnosis is a diagnosis that survived filtering,
// carrying a confidence rank and any supporting or contradicting
// evidence found in the note.
type DisambiguatedDiagnosis struct {
	Diagnosis          string   `json:"diagnosis"`
	Confidence         float64  `json:"confidence"`
	SupportingEvidence []string `json:"supporting_evidence,omitempty"`
	Warnings           []string `json:"warnings,omitempty"`
}

// ParsedNote is the structured record assembled from one note.
type ParsedNote struct {
	Sections     map[string]string   `json:"sections"`
	Vitals       Vitals              `json:"vitals"`
	Labs         map[string]LabValue `json:"labs,omitempty"`
	Medications  []string            `json:"medications,omitempty"`
	Allergies    []string            `json:"allergies,omitempty"`
	Diagnoses    []string            `json:"diagnoses,omitempty"`
	Demographics Demographics        `json:"demographics"`
	Dates        []string            `json:"dates,omitempty"`
}

// RawSections exposes the segmenter output for debugging without
// promising anything about extractor ordering.
type RawSections struct {
	Sections map[string]string `json:"sections"`
}

// ParseResult is the sole contract consumed by downstream
// collaborators (template rendering, safety validation, plan
// generation). Every field of Data must be treated as optional.
type ParseResult struct {
	Data       ParsedNote               `json:"data"`
	Diagnoses  []DisambiguatedDiagnosis `json:"diagnoses,omitempty"`
	Warnings   []string                 `json:"warnings"`
	Confidence float64                  `json:"confidence"`
	Raw        RawSections              `json:"raw"`
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
		if n > 1<<20 {
			return 0
		}
	}
	return n
}

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }
