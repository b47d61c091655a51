package note

import "strings"

// Warning-weight constants for confidence scoring. Critical warnings
// indicate the note is missing the sections downstream consumers rely
// on most, so they cost roughly three times a routine gap. The routine
// weight is sized so a sparse-but-usable note (five routine gaps, as
// in a vitals-plus-assessment fragment) scores clearly above one half
// instead of landing on the boundary.
const (
	warningWeight  = 0.08
	criticalWeight = 0.25
)

// criticalPrefix marks a validation warning as critical. ScoreConfidence
// keys off the prefix, so validators producing their own warnings can
// opt into the heavier weight.
const criticalPrefix = "CRITICAL: "

// Validate inspects a parsed note for structural gaps and returns
// human-readable warnings. It never fails: an empty note simply yields
// warnings for everything absent. The combined absence of assessment
// and plan is escalated to critical because nothing downstream can
// reason about a note with neither.
func Validate(p ParsedNote) []string {
	var warnings []string

	hasAssessment := strings.TrimSpace(p.Sections[SectionAssessment]) != ""
	hasPlan := strings.TrimSpace(p.Sections[SectionPlan]) != ""
	if !hasAssessment && !hasPlan {
		warnings = append(warnings, criticalPrefix+"no assessment or plan section found")
	} else {
		if !hasAssessment {
			warnings = append(warnings, "no assessment section found")
		}
		if !hasPlan {
			warnings = append(warnings, "no plan section found")
		}
	}

	if p.Vitals.IsZero() {
		warnings = append(warnings, "no vital signs found")
	} else if p.Vitals.BP == "" {
		warnings = append(warnings, "vitals present but no blood pressure")
	}

	if len(p.Labs) == 0 {
		warnings = append(warnings, "no laboratory values found")
	}
	if len(p.Medications) == 0 {
		warnings = append(warnings, "no medications found")
	}
	if p.Allergies == nil {
		warnings = append(warnings, "allergies not documented")
	}
	if len(p.Diagnoses) == 0 {
		warnings = append(warnings, criticalPrefix+"no diagnoses identified")
	}
	if p.Demographics.Age == nil {
		warnings = append(warnings, "patient age not found")
	}
	if p.Demographics.Gender == "" {
		warnings = append(warnings, "patient gender not found")
	}

	return warnings
}

// ScoreConfidence converts a warning list into an overall confidence
// in [0,1]: each routine warning subtracts warningWeight and each
// critical warning subtracts criticalWeight from a perfect 1.0.
func ScoreConfidence(warnings []string) float64 {
	score := 1.0
	for _, w := range warnings {
		if strings.HasPrefix(w, criticalPrefix) {
			score -= criticalWeight
		} else {
			score -= warningWeight
		}
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
