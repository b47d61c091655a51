package note

import "testing"

func TestExtractContext_Onset(t *testing.T) {
	ctx := ExtractContext(Raw("Sudden onset of chest pain while climbing stairs."))

	if len(ctx.Temporal) == 0 {
		t.Fatal("expected temporal context")
	}
	got := ctx.Temporal[0]
	if got.Type != "onset" || got.Modifier != "sudden" {
		t.Errorf("expected sudden onset, got %+v", got)
	}
	if got.Entity != "chest pain while climbing stairs" && got.Entity != "chest pain" {
		t.Errorf("unexpected onset entity: %q", got.Entity)
	}
}

func TestExtractContext_Duration(t *testing.T) {
	ctx := ExtractContext(Raw("Chest pain for 3 days."))

	if len(ctx.Temporal) == 0 {
		t.Fatal("expected temporal context")
	}
	got := ctx.Temporal[0]
	if got.Type != "duration" {
		t.Errorf("expected duration, got %+v", got)
	}
	if got.Modifier != "3 days" {
		t.Errorf("expected modifier '3 days', got %q", got.Modifier)
	}
}

func TestExtractContext_Severity(t *testing.T) {
	ctx := ExtractContext(Raw("Severe aortic stenosis. Stable heart failure."))

	if len(ctx.Severity) < 2 {
		t.Fatalf("expected 2 severity entries, got %v", ctx.Severity)
	}
	if ctx.Severity[0].Level != "severe" {
		t.Errorf("expected level severe, got %q", ctx.Severity[0].Level)
	}
	if ctx.Severity[1].Level != "stable" || ctx.Severity[1].Entity != "heart failure" {
		t.Errorf("expected stable heart failure, got %+v", ctx.Severity[1])
	}
}

func TestExtractContext_Causality(t *testing.T) {
	ctx := ExtractContext(Raw("Hypotension due to sepsis."))

	if len(ctx.Causality) == 0 {
		t.Fatal("expected causality context")
	}
	got := ctx.Causality[0]
	if got.Effect != "hypotension" || got.Cause != "sepsis" {
		t.Errorf("expected hypotension <- sepsis, got %+v", got)
	}
}

func TestExtractContext_Negations(t *testing.T) {
	ctx := ExtractContext(Raw("Denies fever. No orthopnea."))

	if len(ctx.Negations) < 2 {
		t.Fatalf("expected 2 negations, got %v", ctx.Negations)
	}
	if ctx.Negations[0] != "fever" {
		t.Errorf("expected 'fever', got %q", ctx.Negations[0])
	}
	if ctx.Negations[1] != "orthopnea" {
		t.Errorf("expected 'orthopnea', got %q", ctx.Negations[1])
	}
}

func TestExtractContext_EmptyNarrative(t *testing.T) {
	ctx := ExtractContext(Raw(""))
	if len(ctx.Temporal)+len(ctx.Severity)+len(ctx.Causality)+len(ctx.Negations) != 0 {
		t.Errorf("expected empty context, got %+v", ctx)
	}
}
