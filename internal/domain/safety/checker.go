// Package safety screens a parsed note for medication and vital-sign
// combinations that warrant clinician review before any downstream
// automation acts on the parse.
package safety

import (
	"fmt"
	"strings"

	"github.com/notecore/notecore/internal/note"
)

// Severity grades how urgently an issue needs review.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Issue is a single safety finding.
type Issue struct {
	Severity   Severity `json:"severity"`
	Category   string   `json:"category"`
	Message    string   `json:"message"`
	Medication string   `json:"medication,omitempty"`
}

// Medication class tables. Matching is substring-based against the
// lowercased medication line, so dosage text does not interfere.
var (
	anticoagulants = []string{
		"warfarin", "apixaban", "rivaroxaban", "dabigatran", "edoxaban",
		"enoxaparin", "heparin", "fondaparinux",
	}
	betaBlockers = []string{
		"metoprolol", "carvedilol", "atenolol", "bisoprolol", "propranolol",
		"labetalol", "nebivolol",
	}
	antihypertensives = []string{
		"lisinopril", "losartan", "amlodipine", "valsartan", "enalapril",
		"ramipril", "hydralazine", "hydrochlorothiazide", "nifedipine",
		"clonidine", "irbesartan",
	}
	nsaids = []string{
		"ibuprofen", "naproxen", "ketorolac", "indomethacin", "diclofenac",
		"meloxicam",
	}
)

// Thresholds for vital and lab gates.
const (
	lowHemoglobin      = 8.0 // g/dL
	highCreatinine     = 1.5 // mg/dL
	bradycardiaHR      = 50
	hypotensiveSysBP   = 90
)

// Check screens the parsed note and returns every issue found. A nil
// result means nothing flagged.
func Check(data note.ParsedNote) []Issue {
	var issues []Issue

	meds := lowercaseAll(data.Medications)

	issues = append(issues, checkAnticoagulation(meds, data.Labs)...)
	issues = append(issues, checkRenalDosing(meds, data.Labs)...)
	issues = append(issues, checkVitalGates(meds, data.Vitals)...)
	issues = append(issues, checkAllergyConflicts(meds, data.Allergies)...)

	return issues
}

// checkAnticoagulation flags anticoagulant use with a low hemoglobin and
// duplicate anticoagulation.
func checkAnticoagulation(meds []string, labs map[string]note.LabValue) []Issue {
	var issues []Issue

	found := matchingMeds(meds, anticoagulants)

	if len(found) > 0 {
		if hgb, ok := labs["hemoglobin"]; ok && hgb.Value > 0 && hgb.Value < lowHemoglobin {
			issues = append(issues, Issue{
				Severity:   SeverityCritical,
				Category:   "bleeding_risk",
				Message:    fmt.Sprintf("anticoagulant with hemoglobin %.1f g/dL", hgb.Value),
				Medication: found[0],
			})
		}
	}

	if len(found) > 1 {
		issues = append(issues, Issue{
			Severity:   SeverityCritical,
			Category:   "duplicate_therapy",
			Message:    "multiple anticoagulants listed: " + strings.Join(found, ", "),
			Medication: found[0],
		})
	}

	return issues
}

// checkRenalDosing flags metformin and NSAID use with an elevated
// creatinine.
func checkRenalDosing(meds []string, labs map[string]note.LabValue) []Issue {
	cr, ok := labs["creatinine"]
	if !ok || cr.Value <= highCreatinine {
		return nil
	}

	var issues []Issue
	for _, m := range meds {
		if strings.Contains(m, "metformin") {
			issues = append(issues, Issue{
				Severity:   SeverityWarning,
				Category:   "renal_dosing",
				Message:    fmt.Sprintf("metformin with creatinine %.2f mg/dL", cr.Value),
				Medication: m,
			})
		}
	}
	for _, found := range matchingMeds(meds, nsaids) {
		issues = append(issues, Issue{
			Severity:   SeverityWarning,
			Category:   "renal_dosing",
			Message:    fmt.Sprintf("NSAID with creatinine %.2f mg/dL", cr.Value),
			Medication: found,
		})
	}
	return issues
}

// checkVitalGates flags rate and pressure agents given vitals already at
// the floor.
func checkVitalGates(meds []string, vitals note.Vitals) []Issue {
	var issues []Issue

	if vitals.HR != nil && *vitals.HR < bradycardiaHR {
		for _, found := range matchingMeds(meds, betaBlockers) {
			issues = append(issues, Issue{
				Severity:   SeverityCritical,
				Category:   "bradycardia",
				Message:    fmt.Sprintf("beta blocker with heart rate %d", *vitals.HR),
				Medication: found,
			})
		}
	}

	if sys := vitals.Systolic(); sys > 0 && sys < hypotensiveSysBP {
		for _, found := range matchingMeds(meds, antihypertensives) {
			issues = append(issues, Issue{
				Severity:   SeverityCritical,
				Category:   "hypotension",
				Message:    fmt.Sprintf("antihypertensive with systolic BP %d", sys),
				Medication: found,
			})
		}
	}

	return issues
}

// checkAllergyConflicts flags a listed medication whose name appears in
// the documented allergy list. The NKDA sentinel never conflicts.
func checkAllergyConflicts(meds []string, allergies []string) []Issue {
	var issues []Issue
	for _, a := range allergies {
		if a == note.NKDA {
			continue
		}
		al := strings.ToLower(strings.TrimSpace(a))
		if al == "" {
			continue
		}
		for _, m := range meds {
			if strings.Contains(m, al) {
				issues = append(issues, Issue{
					Severity:   SeverityCritical,
					Category:   "allergy_conflict",
					Message:    fmt.Sprintf("medication matches documented allergy %q", a),
					Medication: m,
				})
			}
		}
	}
	return issues
}

func lowercaseAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// matchingMeds returns the medication lines containing any of the given
// drug names, in input order, without duplicates.
func matchingMeds(meds []string, drugs []string) []string {
	var found []string
	for _, m := range meds {
		for _, d := range drugs {
			if strings.Contains(m, d) {
				found = append(found, m)
				break
			}
		}
	}
	return found
}
