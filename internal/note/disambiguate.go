package note

import (
	"fmt"
	"sort"
	"strings"
)

// Heart-rate band outside which an optimistic narrative ("stable",
// "improving") is treated as contradicted by the vitals.
const (
	minReassuringHR    = 50
	maxReassuringHR    = 120
	minReassuringSysBP = 90
)

// Disambiguate reconciles the extracted diagnosis list against the
// contextual evidence and the vitals:
//
//   - a diagnosis the note explicitly negates is dropped
//   - when acute and chronic forms of the same clinical entity are
//     both present, the acute form supersedes the chronic one
//   - a diagnosis described as stable or improving while the vitals
//     disagree keeps a discounted confidence rather than the
//     narrative's word: 0.7 when the heart rate is outside the
//     reassuring band, 0.6 when the systolic pressure is also low
//   - causal statements whose effect names the diagnosis become
//     supporting evidence
//
// Results are ordered by descending confidence, ties broken by the
// original extraction order.
func Disambiguate(diagnoses []string, ctx ClinicalContext, vitals Vitals) []DisambiguatedDiagnosis {
	if len(diagnoses) == 0 {
		return nil
	}

	acuteEntities := acuteTemporalEntities(ctx)

	var out []DisambiguatedDiagnosis
	for _, dx := range diagnoses {
		lower := strings.ToLower(dx)

		if negatedByContext(lower, ctx.Negations) {
			continue
		}
		if suppressedChronicForm(lower, diagnoses, acuteEntities) {
			continue
		}

		d := DisambiguatedDiagnosis{Diagnosis: dx, Confidence: 1.0}

		if level, ok := optimisticSeverity(lower, ctx.Severity); ok {
			contradiction := vitalsContradictOptimism(vitals)
			switch contradiction {
			case 1:
				d.Confidence = 0.7
				d.Warnings = append(d.Warnings, fmt.Sprintf(
					"described as %q but heart rate %d is outside %d-%d", level, *vitals.HR, minReassuringHR, maxReassuringHR))
			case 2:
				d.Confidence = 0.6
				d.Warnings = append(d.Warnings, fmt.Sprintf(
					"described as %q but vitals disagree (HR %d, systolic %d)", level, *vitals.HR, vitals.Systolic()))
			}
		}

		for _, c := range ctx.Causality {
			if entityOverlap(lower, c.Effect) {
				d.SupportingEvidence = append(d.SupportingEvidence,
					fmt.Sprintf("%s attributed to %s", c.Effect, c.Cause))
			}
		}
		for _, t := range ctx.Temporal {
			if entityOverlap(lower, t.Entity) {
				d.SupportingEvidence = append(d.SupportingEvidence,
					fmt.Sprintf("%s %s: %s", t.Type, t.Entity, t.Modifier))
			}
		}

		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// acuteTemporalEntities collects entities the note marks with an acute
// or sudden onset.
func acuteTemporalEntities(ctx ClinicalContext) []string {
	var entities []string
	for _, t := range ctx.Temporal {
		if t.Type != "onset" {
			continue
		}
		switch t.Modifier {
		case "acute", "sudden", "abrupt", "new":
			entities = append(entities, t.Entity)
		}
	}
	return entities
}

// suppressedChronicForm reports whether dx is the chronic form of an
// entity for which an acute form is also documented. The suppression
// is scoped to the same clinical entity: chronic kidney disease is not
// suppressed by an acute coronary event.
func suppressedChronicForm(dx string, all []string, acuteEntities []string) bool {
	if !strings.Contains(dx, "chronic") {
		return false
	}
	core := strings.TrimSpace(strings.ReplaceAll(dx, "chronic", ""))

	for _, other := range all {
		lo := strings.ToLower(other)
		if lo == dx || !strings.Contains(lo, "acute") {
			continue
		}
		if entityOverlap(core, strings.ReplaceAll(lo, "acute", "")) {
			return true
		}
	}
	for _, e := range acuteEntities {
		if entityOverlap(core, e) {
			return true
		}
	}
	return false
}

func negatedByContext(dx string, negations []string) bool {
	for _, n := range negations {
		if entityOverlap(dx, n) {
			return true
		}
	}
	return false
}

// optimisticSeverity returns the stable/improving level attached to
// this diagnosis, if any.
func optimisticSeverity(dx string, severities []SeverityContext) (string, bool) {
	for _, s := range severities {
		if s.Level != "stable" && s.Level != "improving" && s.Level != "resolving" {
			continue
		}
		if entityOverlap(dx, s.Entity) {
			return s.Level, true
		}
	}
	return "", false
}

// vitalsContradictOptimism grades how strongly the vitals contradict a
// reassuring narrative: 0 not at all, 1 heart rate outside the
// reassuring band, 2 heart rate outside the band with a low systolic
// pressure as well.
func vitalsContradictOptimism(v Vitals) int {
	if v.HR == nil {
		return 0
	}
	hr := *v.HR
	if hr >= minReassuringHR && hr <= maxReassuringHR {
		return 0
	}
	if sys := v.Systolic(); sys > 0 && sys < minReassuringSysBP {
		return 2
	}
	return 1
}

// entityOverlap reports whether two entity strings share at least one
// meaningful word. Short function words never count as overlap.
func entityOverlap(a, b string) bool {
	aw := strings.Fields(strings.ToLower(a))
	bw := strings.Fields(strings.ToLower(b))
	for _, w1 := range aw {
		if len(w1) < 4 {
			continue
		}
		for _, w2 := range bw {
			if w1 == w2 {
				return true
			}
		}
	}
	return false
}
