package note

import (
	"regexp"
	"strconv"
	"strings"
)

// Systolic plausibility range for accepting a bare NNN/NNN token as a
// blood pressure, which filters out unrelated ratios (doses, dates).
const (
	minPlausibleSystolic = 60
	maxPlausibleSystolic = 250
)

var (
	minMaxHeader   = regexp.MustCompile(`(?i)vital signs.*\bmin\b.*\bmax\b`)
	minMaxLine     = regexp.MustCompile(`(?i)^\s*([a-z][a-z0-9 /%]{1,24}?)\s+min:?\s*(\S+)\s+max:?\s*(\S+)\s+(\S+)\s*$`)
	tabularHeader  = regexp.MustCompile(`(?i)\bbp\b.*\bpulse\b.*\bresp\b.*\btemp\b.*\bspo2\b`)
	alertMarker    = regexp.MustCompile(`\(?!+\)?|\*+`)
	bpToken        = regexp.MustCompile(`\b(\d{2,3})/(\d{2,3})\b`)
	verticalVital  = regexp.MustCompile(`(?i)^\s*(bp|blood pressure|hr|heart rate|pulse|rr|resp(?:iratory)?(?: rate)?|temp(?:erature)?|spo2|o2 sat(?:uration)?|pulse ox|weight|wt|height|ht)\s*[:=]\s*(.+)$`)
	numberToken    = regexp.MustCompile(`\d+(?:\.\d+)?`)
	inlineBP       = regexp.MustCompile(`(?i)(?:blood pressure|\bbp\b)\D{0,20}?(\d{2,3})/(\d{2,3})`)
	inlineHR       = regexp.MustCompile(`(?i)\b(?:hr|heart rate|pulse)\b\D{0,12}?(\d{2,3})\b`)
	inlineRR       = regexp.MustCompile(`(?i)\b(?:rr|resp(?:iratory)? rate)\b\D{0,12}?(\d{1,2})\b`)
	inlineTemp     = regexp.MustCompile(`(?i)\btemp(?:erature)?\b\D{0,12}?(\d{2,3}(?:\.\d+)?)\s*°?\s*f?\b`)
	inlineSpO2     = regexp.MustCompile(`(?i)\b(?:spo2|o2 sat(?:uration)?|sats?|pulse ox)\b\D{0,12}?(\d{2,3})\s*%?`)
	inlineRoomAir  = regexp.MustCompile(`(?i)\b(\d{2,3})\s*%\s*(?:on\s+)?(?:room air|ra\b|\d+\s*l(?:pm)?\b)`)
	inlineWeight   = regexp.MustCompile(`(?i)\b(?:weight|wt)\b\D{0,8}?(\d{1,3}(?:\.\d+)?)\s*(kg|lbs?|pounds?)\b`)
	inlineHeight   = regexp.MustCompile(`(?i)\b(?:height|ht)\b\D{0,8}?(\d{1,3}(?:\.\d+)?)\s*(cm|in(?:ches)?)\b`)
)

// ExtractVitals applies four layout recognizers in priority order —
// min/max range table, tabular header+row, vertical label list, then
// inline free text — and stops structured recognition at the first
// non-empty result. Inline matching only fills fields the structured
// pass left empty, so a tabular block always beats a narrative
// mention.
func ExtractVitals(src TextSource) Vitals {
	text := src.SectionOrWhole(SectionVitals)

	v := extractMinMaxTable(text)
	if v.IsZero() {
		v = extractTabular(text)
	}
	if v.IsZero() {
		v = extractVerticalList(text)
	}
	if v.IsZero() && src.Kind == KindSectioned {
		// The vitals section had nothing structured; retry the whole
		// document before falling back to inline scanning.
		whole := src.Whole()
		if whole != text {
			v = extractMinMaxTable(whole)
			if v.IsZero() {
				v = extractTabular(whole)
			}
			if v.IsZero() {
				v = extractVerticalList(whole)
			}
			text = whole
		}
	}

	fillInline(&v, src.Whole())
	return v
}

// extractMinMaxTable handles flowsheet exports of the shape:
//
//	Vital Signs          Min        Max
//	BP    Min: 102/60    Max: 158/94    144/82
//
// The trailing value on each row is the most recent measurement.
func extractMinMaxTable(text string) Vitals {
	lines := strings.Split(text, "\n")
	start := -1
	for i, l := range lines {
		if minMaxHeader.MatchString(l) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return Vitals{}
	}

	v := Vitals{}
	for _, line := range boundedLines(lines[start:], maxMatchesPerExtractor) {
		m := minMaxLine.FindStringSubmatch(line)
		if m == nil {
			if strings.TrimSpace(line) == "" {
				break
			}
			continue
		}
		assignVital(&v, m[1], m[4])
	}
	if !v.IsZero() {
		v.Source = SourceMinMaxTable
	}
	return v
}

// extractTabular handles a header row "BP Pulse Resp Temp SpO2"
// followed immediately by a positional data row, tolerating an inline
// alert marker that must be stripped first.
func extractTabular(text string) Vitals {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if !tabularHeader.MatchString(l) || bpToken.MatchString(l) {
			continue
		}
		for j := i + 1; j < len(lines) && j <= i+2; j++ {
			row := strings.TrimSpace(alertMarker.ReplaceAllString(lines[j], " "))
			if row == "" {
				continue
			}
			if v := parseTabularRow(row); !v.IsZero() {
				v.Source = SourceTabular
				return v
			}
			break
		}
	}
	return Vitals{}
}

func parseTabularRow(row string) Vitals {
	fields := strings.Fields(row)
	v := Vitals{}
	idx := 0

	// BP is the anchoring first column.
	if idx < len(fields) {
		if m := bpToken.FindStringSubmatch(fields[idx]); m != nil {
			if sys := atoiSafe(m[1]); sys >= minPlausibleSystolic && sys <= maxPlausibleSystolic {
				v.BP = m[1] + "/" + m[2]
			}
			idx++
		}
	}
	take := func() string {
		if idx >= len(fields) {
			return ""
		}
		f := fields[idx]
		idx++
		return f
	}
	if n, err := strconv.Atoi(stripUnit(take())); err == nil {
		v.HR = intPtr(n)
	}
	if n, err := strconv.Atoi(stripUnit(take())); err == nil {
		v.RR = intPtr(n)
	}
	if f, err := strconv.ParseFloat(stripUnit(take()), 64); err == nil {
		v.Temp = floatPtr(f)
	}
	if n, err := strconv.Atoi(stripUnit(take())); err == nil && n <= 100 {
		v.SpO2 = intPtr(n)
	}
	return v
}

// extractVerticalList handles one-vital-per-line exports of the shape
// "Label: value", tolerating an alert marker right after the colon.
func extractVerticalList(text string) Vitals {
	v := Vitals{}
	for _, line := range boundedLines(strings.Split(text, "\n"), maxMatchesPerExtractor) {
		m := verticalVital.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(alertMarker.ReplaceAllString(m[2], " "))
		assignVital(&v, m[1], value)
	}
	if !v.IsZero() {
		v.Source = SourceVerticalList
	}
	return v
}

// fillInline scans the whole text for vital-shaped tokens near vital
// keywords, filling only fields no structured recognizer produced.
func fillInline(v *Vitals, text string) {
	filled := false

	if v.BP == "" {
		if m := inlineBP.FindStringSubmatch(text); m != nil {
			v.BP = m[1] + "/" + m[2]
			filled = true
		} else if m := bpToken.FindStringSubmatch(text); m != nil {
			if sys := atoiSafe(m[1]); sys >= minPlausibleSystolic && sys <= maxPlausibleSystolic {
				v.BP = m[1] + "/" + m[2]
				filled = true
			}
		}
	}
	if v.HR == nil {
		if m := inlineHR.FindStringSubmatch(text); m != nil {
			if n := atoiSafe(m[1]); n > 0 {
				v.HR = intPtr(n)
				filled = true
			}
		}
	}
	if v.RR == nil {
		if m := inlineRR.FindStringSubmatch(text); m != nil {
			if n := atoiSafe(m[1]); n > 0 {
				v.RR = intPtr(n)
				filled = true
			}
		}
	}
	if v.Temp == nil {
		if m := inlineTemp.FindStringSubmatch(text); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				v.Temp = floatPtr(f)
				filled = true
			}
		}
	}
	if v.SpO2 == nil {
		m := inlineSpO2.FindStringSubmatch(text)
		if m == nil {
			m = inlineRoomAir.FindStringSubmatch(text)
		}
		if m != nil {
			if n := atoiSafe(m[1]); n > 0 && n <= 100 {
				v.SpO2 = intPtr(n)
				filled = true
			}
		}
	}
	if v.Weight == nil {
		if m := inlineWeight.FindStringSubmatch(text); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				v.Weight = &Measurement{Value: f, Unit: strings.ToLower(m[2])}
				filled = true
			}
		}
	}
	if v.Height == nil {
		if m := inlineHeight.FindStringSubmatch(text); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				v.Height = &Measurement{Value: f, Unit: strings.ToLower(m[2])}
				filled = true
			}
		}
	}

	if v.Source == "" && filled {
		v.Source = SourceInline
	}
}

// assignVital routes a labeled value string into the right Vitals
// field based on the label spelling.
func assignVital(v *Vitals, label, value string) {
	label = strings.ToLower(strings.TrimSpace(label))
	value = strings.TrimSpace(value)

	switch {
	case label == "bp" || strings.Contains(label, "blood pressure"):
		if m := bpToken.FindStringSubmatch(value); m != nil {
			if sys := atoiSafe(m[1]); sys >= minPlausibleSystolic && sys <= maxPlausibleSystolic {
				v.BP = m[1] + "/" + m[2]
			}
		}
	case label == "hr" || label == "pulse" || strings.Contains(label, "heart rate"):
		if n := firstInt(value); n > 0 {
			v.HR = intPtr(n)
		}
	case label == "rr" || strings.HasPrefix(label, "resp"):
		if n := firstInt(value); n > 0 {
			v.RR = intPtr(n)
		}
	case strings.HasPrefix(label, "temp"):
		if f, ok := firstFloat(value); ok {
			v.Temp = floatPtr(f)
		}
	case label == "spo2" || strings.HasPrefix(label, "o2 sat") || label == "pulse ox":
		if n := firstInt(value); n > 0 && n <= 100 {
			v.SpO2 = intPtr(n)
		}
	case label == "weight" || label == "wt":
		if f, ok := firstFloat(value); ok {
			v.Weight = &Measurement{Value: f, Unit: unitOf(value)}
		}
	case label == "height" || label == "ht":
		if f, ok := firstFloat(value); ok {
			v.Height = &Measurement{Value: f, Unit: unitOf(value)}
		}
	}
}

func firstInt(s string) int {
	if m := numberToken.FindString(s); m != "" {
		if !strings.Contains(m, ".") {
			return atoiSafe(m)
		}
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			return int(f)
		}
	}
	return 0
}

func firstFloat(s string) (float64, bool) {
	if m := numberToken.FindString(s); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

var unitToken = regexp.MustCompile(`(?i)\b(kg|lbs?|pounds?|cm|in(?:ches)?)\b`)

func unitOf(s string) string {
	return strings.ToLower(unitToken.FindString(s))
}

func stripUnit(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "%"), "F")
	s = strings.TrimSuffix(s, "°")
	return s
}

// boundedLines caps how many lines a scanning loop will visit,
// bounding work against repetitive or adversarial input.
func boundedLines(lines []string, max int) []string {
	if len(lines) > max {
		return lines[:max]
	}
	return lines
}
