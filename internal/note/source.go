package note

import "strings"

// SourceKind discriminates the two shapes of extractor input.
type SourceKind int

const (
	// KindRaw means the source carries unsegmented note text.
	KindRaw SourceKind = iota
	// KindSectioned means the source carries a canonical section map.
	KindSectioned
)

// TextSource is the tagged union every extractor accepts: either raw
// note text or a pre-segmented section map. Extractors that prefer a
// specific section fall back to the whole text when the section is
// absent, so both shapes behave identically on unsectioned input.
type TextSource struct {
	Kind     SourceKind
	Text     string
	Sections map[string]string
}

// Raw wraps unsegmented note text.
func Raw(text string) TextSource {
	return TextSource{Kind: KindRaw, Text: text}
}

// Sectioned wraps a segmenter output map.
func Sectioned(sections map[string]string) TextSource {
	return TextSource{Kind: KindSectioned, Sections: sections}
}

// Section returns the named section body, or "" when the source is raw
// or the section was not found.
func (s TextSource) Section(name string) string {
	if s.Kind != KindSectioned {
		return ""
	}
	return s.Sections[name]
}

// Whole returns the full text of the source. For sectioned sources it
// prefers the reserved full-text key and otherwise joins the section
// bodies.
func (s TextSource) Whole() string {
	if s.Kind == KindRaw {
		return s.Text
	}
	if full, ok := s.Sections[SectionFullText]; ok {
		return full
	}
	var b strings.Builder
	for _, body := range s.Sections {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(body)
	}
	return b.String()
}

// SectionOrWhole returns the named section body when present and
// non-empty, and the whole text otherwise.
func (s TextSource) SectionOrWhole(name string) string {
	if body := s.Section(name); strings.TrimSpace(body) != "" {
		return body
	}
	return s.Whole()
}
