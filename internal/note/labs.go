package note

import (
	"regexp"
	"strconv"
	"strings"
)

// labPatterns is the fixed table of recognized laboratory analytes.
// Each pattern matches a label plus everything to the end of the line;
// the value taken is the RIGHTMOST number on the line, so reference
// ranges printed between label and result ("Glucose (70-100): 185 H")
// never win over the result itself.
var labPatterns = []struct {
	code    string
	pattern *regexp.Regexp
}{
	{"glucose", regexp.MustCompile(`(?i)\bglucose\b([^\n]*)`)},
	{"hemoglobin", regexp.MustCompile(`(?i)\b(?:hemoglobin|hgb|hb)\b([^\n]*)`)},
	{"creatinine", regexp.MustCompile(`(?i)\b(?:creatinine|creat|cr)\b([^\n]*)`)},
	{"wbc", regexp.MustCompile(`(?i)\b(?:wbc|white blood cell(?:s| count)?)\b([^\n]*)`)},
	{"bun", regexp.MustCompile(`(?i)\bbun\b([^\n]*)`)},
	{"bnp", regexp.MustCompile(`(?i)\b(?:bnp|nt-?probnp)\b([^\n]*)`)},
	{"troponin", regexp.MustCompile(`(?i)\btroponin(?:\s*[it])?\b([^\n]*)`)},
	{"lactate", regexp.MustCompile(`(?i)\b(?:lactate|lactic acid)\b([^\n]*)`)},
	{"amylase", regexp.MustCompile(`(?i)\bamylase\b([^\n]*)`)},
	{"lipase", regexp.MustCompile(`(?i)\blipase\b([^\n]*)`)},
}

var (
	// labNumber tolerates thousands separators, which BNP results
	// routinely carry ("BNP: 1,250").
	labNumber = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)
	labFlag   = regexp.MustCompile(`(?i)\b(HH|LL|H|L|crit(?:ical)?|abn)\b\s*$`)

	// anyLabLabel truncates a captured tail at the next analyte on the
	// same line, so "Glucose 185  Creatinine 1.2" attributes each value
	// to its own label.
	anyLabLabel = regexp.MustCompile(`(?i)\b(?:glucose|hemoglobin|hgb|hb|creatinine|creat|cr|wbc|white blood cell|bun|bnp|nt-?probnp|troponin|lactate|lactic acid|amylase|lipase)\b`)
)

// ExtractLabs scans the whole text for the fixed analyte table and
// returns a map of analyte code to value. A label mentioned with no
// parseable number on its line is silently skipped.
func ExtractLabs(src TextSource) map[string]LabValue {
	text := src.Whole()
	labs := make(map[string]LabValue)

	for _, lp := range labPatterns {
		if _, ok := labs[lp.code]; ok {
			continue
		}
		matches := lp.pattern.FindAllStringSubmatch(text, maxMatchesPerExtractor)
		for _, m := range matches {
			rest := m[1]
			if loc := anyLabLabel.FindStringIndex(rest); loc != nil {
				rest = rest[:loc[0]]
			}
			nums := labNumber.FindAllString(rest, -1)
			if len(nums) == 0 {
				continue
			}
			raw := strings.ReplaceAll(nums[len(nums)-1], ",", "")
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			lv := LabValue{Value: value}
			if f := labFlag.FindString(strings.TrimSpace(rest)); f != "" {
				lv.Flag = strings.ToUpper(strings.TrimSpace(f))
			}
			labs[lp.code] = lv
			break
		}
	}

	if len(labs) == 0 {
		return nil
	}
	return labs
}
