package note

import (
	"regexp"
	"strings"
)

// Consult-template section names, a superset of the canonical
// vocabulary used by fully templated cardiology consults.
const (
	SectionReasonForConsult = "reason_for_consult"
	SectionPriorStudies     = "previous_diagnostic_studies"
	SectionReviewManagement = "review_management"
	SectionImpressionPlan   = "impression_plan"
)

// DiagnosticStudy is a line item recognized under "Previous Diagnostic
// Studies".
type DiagnosticStudy struct {
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

// ConsultNote is the result of segmenting a fully templated consult.
type ConsultNote struct {
	Sections     map[string]string `json:"sections"`
	Studies      []DiagnosticStudy `json:"studies,omitempty"`
	ReviewBlocks map[string]string `json:"review_blocks,omitempty"`
}

var consultHeaderAliases = map[string][]string{
	SectionReasonForConsult: {"reason for consult", "reason for consultation", "consult reason"},
	SectionPriorStudies:     {"previous diagnostic studies", "prior diagnostic studies", "previous studies"},
	SectionReviewManagement: {"review/management", "review and management", "review / management"},
	SectionImpressionPlan:   {"impression/plan", "impression and plan", "impression & plan", "assessment/plan"},
	SectionHPI:              {"hpi", "history of present illness"},
	SectionPMH:              {"past medical history", "pmh"},
	SectionMedications:      {"medications", "current medications"},
	SectionAllergies:        {"allergies"},
	SectionVitals:           {"vital signs", "vitals"},
}

// consultStudyPatterns is the fixed table of study-name patterns
// matched against each line under Previous Diagnostic Studies.
var consultStudyPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"Echocardiogram", regexp.MustCompile(`(?i)\b(?:echo(?:cardiogram)?|tte|tee)\b`)},
	{"Stress test", regexp.MustCompile(`(?i)\b(?:stress test|treadmill|nuclear stress|dobutamine stress)\b`)},
	{"Cardiac catheterization", regexp.MustCompile(`(?i)\b(?:cardiac )?cath(?:eterization)?\b`)},
	{"CABG", regexp.MustCompile(`(?i)\bcabg|coronary artery bypass\b`)},
	{"Carotid ultrasound", regexp.MustCompile(`(?i)\bcarotid (?:ultrasound|duplex|doppler)\b`)},
	{"EKG", regexp.MustCompile(`(?i)\b(?:ekg|ecg|electrocardiogram)\b`)},
	{"Holter monitor", regexp.MustCompile(`(?i)\bholter\b`)},
	{"PCI/stent", regexp.MustCompile(`(?i)\b(?:pci|stent(?:ing)?|angioplasty)\b`)},
	{"Pacemaker/ICD", regexp.MustCompile(`(?i)\b(?:pacemaker|icd|defibrillator)\b`)},
}

// reviewBlockHeaders are the documented sub-blocks found inside
// Review/Management, split with the same header-prefix logic applied
// recursively.
var reviewBlockHeaders = map[string][]string{
	"laboratory_results": {"laboratory results", "labs", "lab results"},
	"radiology":          {"radiology", "imaging"},
	"cardiology_results": {"cardiology results", "cardiac studies"},
	"cardiac_monitor":    {"cardiac monitor", "telemetry"},
	"ekg":                {"ekg", "ecg"},
	"condition":          {"condition", "clinical condition"},
}

// IsConsultNote reports whether the text carries the templated-consult
// header set.
func IsConsultNote(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "reason for consult")
}

// SegmentConsult segments a fully templated consult note, extracting
// diagnostic-study line items and Review/Management sub-blocks in
// addition to the section map.
func SegmentConsult(text string) ConsultNote {
	result := ConsultNote{
		Sections: splitByHeaders(text, consultHeaderAliases),
	}

	if body, ok := result.Sections[SectionPriorStudies]; ok {
		result.Studies = extractStudies(body)
	}
	if body, ok := result.Sections[SectionReviewManagement]; ok {
		blocks := splitByHeaders(body, reviewBlockHeaders)
		delete(blocks, SectionSubjective)
		if len(blocks) > 0 {
			result.ReviewBlocks = blocks
		}
	}
	return result
}

// splitByHeaders assigns lines to the most recent matching header from
// the alias table. Content preceding any header lands in the
// subjective bucket. The same logic serves both the top-level consult
// template and the Review/Management sub-blocks.
func splitByHeaders(text string, aliasTable map[string][]string) map[string]string {
	exact := make(map[string]string)
	for section, spellings := range aliasTable {
		for _, a := range spellings {
			exact[a] = section
		}
	}

	sections := make(map[string]string)
	current := SectionSubjective
	var body []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if content != "" {
			appendSection(sections, current, content)
		}
		body = body[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		head, rest := splitHeaderColon(line)
		if section, ok := exact[head]; ok {
			flush()
			current = section
			if rest != "" {
				body = append(body, rest)
			}
			continue
		}
		body = append(body, line)
	}
	flush()

	for k, v := range sections {
		sections[k] = strings.TrimSpace(v)
	}
	return sections
}

// splitHeaderColon lowercases the portion of a line before a colon (or
// the whole trimmed line) for alias lookup, returning any same-line
// content after the colon.
func splitHeaderColon(line string) (head, rest string) {
	trimmed := strings.TrimSpace(line)
	if idx := strings.Index(trimmed, ":"); idx > 0 {
		return strings.ToLower(strings.TrimSpace(trimmed[:idx])), strings.TrimSpace(trimmed[idx+1:])
	}
	return strings.ToLower(trimmed), ""
}

func extractStudies(body string) []DiagnosticStudy {
	var studies []DiagnosticStudy
	for _, line := range strings.Split(body, "\n") {
		t := strings.TrimSpace(strings.TrimLeft(line, "-•* \t"))
		if t == "" {
			continue
		}
		for _, sp := range consultStudyPatterns {
			if sp.pattern.MatchString(t) {
				studies = append(studies, DiagnosticStudy{Name: sp.name, Detail: t})
				break
			}
		}
	}
	return studies
}
