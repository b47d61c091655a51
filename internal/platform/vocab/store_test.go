package vocab

import (
	"testing"

	"github.com/notecore/notecore/internal/note"
)

func TestMerge_RegistersAliases(t *testing.T) {
	cfg := note.NewHeaderConfig()

	Merge(cfg, []Alias{
		{Alias: "clinical impression", Canonical: note.SectionAssessment},
		{Alias: "meds on admission", Canonical: note.SectionMedications},
	})

	if got, ok := cfg.Canonical("Clinical Impression:"); !ok || got != note.SectionAssessment {
		t.Errorf("expected merged alias to resolve to assessment, got %q (ok=%v)", got, ok)
	}
	if got, ok := cfg.Canonical("MEDS ON ADMISSION"); !ok || got != note.SectionMedications {
		t.Errorf("expected merged alias to resolve to medications, got %q (ok=%v)", got, ok)
	}
}

func TestMerge_DoesNotOverrideBuiltins(t *testing.T) {
	cfg := note.NewHeaderConfig()

	// A stored alias colliding with a built-in spelling must not flip
	// the established mapping.
	Merge(cfg, []Alias{{Alias: "assessment", Canonical: note.SectionPlan}})

	if got, _ := cfg.Canonical("Assessment:"); got != note.SectionAssessment {
		t.Errorf("expected built-in mapping preserved, got %q", got)
	}
}

func TestMerge_Empty(t *testing.T) {
	cfg := note.NewHeaderConfig()
	Merge(cfg, nil)

	if got, ok := cfg.Canonical("Plan:"); !ok || got != note.SectionPlan {
		t.Errorf("expected built-ins intact after empty merge, got %q (ok=%v)", got, ok)
	}
}

func TestMerge_FeedsLearnCycle(t *testing.T) {
	cfg := note.NewHeaderConfig()

	// Learn finds a misspelling, Merge persists-then-reloads it, and the
	// next config resolves it exactly.
	learned := cfg.Learn([]string{"Cheif Complaint:"})
	if len(learned) != 1 {
		t.Fatalf("expected 1 learned alias, got %v", learned)
	}

	var aliases []Alias
	for alias, canonical := range learned {
		aliases = append(aliases, Alias{Alias: alias, Canonical: canonical})
	}

	fresh := note.NewHeaderConfig()
	Merge(fresh, aliases)

	if got, ok := fresh.Canonical("Cheif Complaint:"); !ok || got != note.SectionChiefComplaint {
		t.Errorf("expected learned alias to resolve exactly, got %q (ok=%v)", got, ok)
	}
}
