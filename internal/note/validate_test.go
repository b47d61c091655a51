package note

import (
	"strings"
	"testing"
)

func TestValidate_MissingAssessmentAndPlanIsCritical(t *testing.T) {
	warnings := Validate(ParsedNote{Sections: map[string]string{}})

	found := false
	for _, w := range warnings {
		if strings.HasPrefix(w, criticalPrefix) && strings.Contains(w, "assessment or plan") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected critical warning for missing assessment and plan, got %v", warnings)
	}
}

func TestValidate_PartialSectionsNotCritical(t *testing.T) {
	warnings := Validate(ParsedNote{
		Sections: map[string]string{SectionAssessment: "1. Pneumonia"},
	})

	for _, w := range warnings {
		if strings.HasPrefix(w, criticalPrefix) && strings.Contains(w, "plan") {
			t.Errorf("missing plan alone must not be critical: %v", warnings)
		}
	}
}

func TestValidate_CompleteNoteHasNoWarnings(t *testing.T) {
	p := ParsedNote{
		Sections: map[string]string{
			SectionAssessment: "1. Heart failure",
			SectionPlan:       "Diuresis",
		},
		Vitals:       Vitals{BP: "120/80", HR: intPtr(72), Source: SourceVerticalList},
		Labs:         map[string]LabValue{"glucose": {Value: 98}},
		Medications:  []string{"Lisinopril 10 mg daily"},
		Allergies:    []string{NKDA},
		Diagnoses:    []string{"Heart failure"},
		Demographics: Demographics{Age: intPtr(67), Gender: "female"},
	}
	if warnings := Validate(p); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestValidate_NKDACountsAsDocumented(t *testing.T) {
	p := ParsedNote{Sections: map[string]string{}, Allergies: []string{NKDA}}
	for _, w := range Validate(p) {
		if strings.Contains(w, "allergies") {
			t.Errorf("NKDA must count as documented allergies: %v", w)
		}
	}
}

func TestScoreConfidence_Weights(t *testing.T) {
	cases := []struct {
		warnings []string
		want     float64
	}{
		{nil, 1.0},
		{[]string{"no laboratory values found"}, 0.92},
		{[]string{criticalPrefix + "no diagnoses identified"}, 0.75},
		{[]string{"a", "b", criticalPrefix + "c"}, 0.59},
	}
	for _, tc := range cases {
		got := ScoreConfidence(tc.warnings)
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("warnings %v: expected %v, got %v", tc.warnings, tc.want, got)
		}
	}
}

func TestScoreConfidence_FiveRoutineWarningsStayUsable(t *testing.T) {
	// A fragment with vitals and an assessment accrues five routine
	// gaps (labs, meds, allergies, age, gender); its score must sit
	// clearly above one half, not on the boundary within float error.
	warnings := []string{"a", "b", "c", "d", "e"}
	got := ScoreConfidence(warnings)
	if got <= 0.55 {
		t.Errorf("expected score clearly above 0.5, got %v", got)
	}
}

func TestScoreConfidence_ClampedAtZero(t *testing.T) {
	warnings := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		warnings = append(warnings, criticalPrefix+"missing")
	}
	if got := ScoreConfidence(warnings); got != 0 {
		t.Errorf("expected clamp at 0, got %v", got)
	}
}
