package note

import (
	"strings"
	"testing"
)

const sampleAdmissionNote = `Chief Complaint: Shortness of breath

HPI: The patient is a female who presents with worsening dyspnea
over the past three days.

Vitals:
BP: 142/88
HR: 96
RR: 20

Assessment:
1. Acute heart failure exacerbation

Plan:
- Start IV diuresis
- Monitor daily weights`

func TestParse_EndToEnd(t *testing.T) {
	result := NewParser(nil).Parse(sampleAdmissionNote)

	if result.Data.Vitals.BP != "142/88" {
		t.Errorf("expected BP 142/88, got %q", result.Data.Vitals.BP)
	}
	if result.Data.Demographics.Gender != "female" {
		t.Errorf("expected gender female, got %q", result.Data.Demographics.Gender)
	}
	if !containsDiagnosis(result.Data.Diagnoses, "Heart failure") {
		t.Errorf("expected heart failure diagnosis, got %v", result.Data.Diagnoses)
	}
	if len(result.Diagnoses) == 0 {
		t.Fatal("expected disambiguated diagnoses")
	}

	// Labs, medications, allergies, and age are absent: four routine
	// warnings, leaving a usable confidence above one half.
	if result.Confidence <= 0.5 {
		t.Errorf("expected confidence above 0.5, got %v (warnings: %v)", result.Confidence, result.Warnings)
	}
	if result.Confidence >= 1.0 {
		t.Errorf("expected discounted confidence for missing data, got %v", result.Confidence)
	}
}

func TestParse_SparseFragmentStaysUsable(t *testing.T) {
	// A bare vitals-plus-assessment fragment: no labs, meds, allergies,
	// or demographics, yet the parse must stay clearly usable.
	text := "BP 145/90\nHR 88 bpm\nTemp 98.6F\n\nAssessment:\n1. Chest pain - rule out ACS\n\nPlan:\n- Serial troponins q6h"
	result := NewParser(nil).Parse(text)

	if result.Data.Vitals.BP != "145/90" {
		t.Errorf("expected BP 145/90, got %q", result.Data.Vitals.BP)
	}
	if result.Data.Vitals.HR == nil || *result.Data.Vitals.HR != 88 {
		t.Errorf("expected HR 88, got %v", result.Data.Vitals.HR)
	}
	if result.Data.Vitals.Temp == nil || *result.Data.Vitals.Temp != 98.6 {
		t.Errorf("expected temp 98.6, got %v", result.Data.Vitals.Temp)
	}
	if !containsDiagnosis(result.Data.Diagnoses, "Chest pain") {
		t.Errorf("expected chest pain diagnosis, got %v", result.Data.Diagnoses)
	}
	if strings.TrimSpace(result.Data.Sections[SectionPlan]) == "" {
		t.Error("expected non-empty plan section")
	}
	// The temperature unit must not read as a gender.
	if result.Data.Demographics.Gender != "" {
		t.Errorf("expected no gender, got %q", result.Data.Demographics.Gender)
	}
	if result.Confidence <= 0.5 {
		t.Errorf("expected confidence above 0.5, got %v (warnings: %v)", result.Confidence, result.Warnings)
	}
}

func TestParse_NeverReturnsError(t *testing.T) {
	// Malformed fragments must produce results, not panics or errors.
	inputs := []string{
		"::::\n\n::::",
		"1. 2. 3. 4.",
		strings.Repeat("BP: ", 300),
		"\x00\x01garbled\xff",
	}
	for _, in := range inputs {
		result := NewParser(nil).Parse(in)
		if result.Confidence < 0 || result.Confidence > 1 {
			t.Errorf("input %q: confidence out of range: %v", in, result.Confidence)
		}
	}
}

func TestParse_EmptyNote(t *testing.T) {
	result := NewParser(nil).Parse("")

	if result.Confidence != 0 {
		t.Errorf("expected confidence 0, got %v", result.Confidence)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected exactly 1 warning, got %v", result.Warnings)
	}
}

func TestParse_OversizedNoteTruncated(t *testing.T) {
	huge := sampleAdmissionNote + "\n" + strings.Repeat("x", MaxNoteLength)
	result := NewParser(nil).Parse(huge)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "truncated") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected truncation warning, got %v", result.Warnings)
	}
}

func TestParse_Deterministic(t *testing.T) {
	p := NewParser(nil)
	first := p.Parse(sampleAdmissionNote)
	second := p.Parse(sampleAdmissionNote)

	if first.Confidence != second.Confidence {
		t.Errorf("confidence differs across runs: %v vs %v", first.Confidence, second.Confidence)
	}
	if len(first.Warnings) != len(second.Warnings) {
		t.Errorf("warnings differ across runs: %v vs %v", first.Warnings, second.Warnings)
	}
	if len(first.Data.Diagnoses) != len(second.Data.Diagnoses) {
		t.Errorf("diagnoses differ across runs: %v vs %v", first.Data.Diagnoses, second.Data.Diagnoses)
	}
}

func TestParse_ConsultTemplate(t *testing.T) {
	text := `Reason for Consult: Atrial fibrillation with rapid ventricular response

Previous Diagnostic Studies:
- Echocardiogram 2024: EF 55%
- Stress test 2023: negative

Impression/Plan:
1. Atrial fibrillation
Rate control with metoprolol.`

	result := NewParser(nil).Parse(text)

	if result.Data.Sections[SectionReasonForConsult] == "" {
		t.Error("expected reason-for-consult section")
	}
	if !containsDiagnosis(result.Data.Diagnoses, "Atrial fibrillation") {
		t.Errorf("expected atrial fibrillation, got %v", result.Data.Diagnoses)
	}
}
