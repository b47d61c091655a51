package note

import "testing"

func TestExtractMedications_BulletedList(t *testing.T) {
	src := Sectioned(map[string]string{
		SectionMedications: "- Lisinopril 10 mg daily\n- Metoprolol 25 mg BID\n- Aspirin",
	})
	meds := ExtractMedications(src)

	if len(meds) != 3 {
		t.Fatalf("expected 3 medications, got %d: %v", len(meds), meds)
	}
	if meds[0] != "Lisinopril 10 mg daily" {
		t.Errorf("expected dosage line kept intact, got %q", meds[0])
	}
	if meds[2] != "Aspirin" {
		t.Errorf("expected bulleted entry without dosage, got %q", meds[2])
	}
}

func TestExtractMedications_NumberedList(t *testing.T) {
	src := Sectioned(map[string]string{
		SectionMedications: "1. Furosemide 40 mg daily\n2) Atorvastatin 80 mg nightly",
	})
	meds := ExtractMedications(src)

	if len(meds) != 2 {
		t.Fatalf("expected 2 medications, got %d: %v", len(meds), meds)
	}
	if meds[0] != "Furosemide 40 mg daily" {
		t.Errorf("expected numbering stripped, got %q", meds[0])
	}
}

func TestExtractMedications_CommaSeparated(t *testing.T) {
	src := Sectioned(map[string]string{
		SectionMedications: "aspirin 81 mg, metoprolol 25 mg, lisinopril 10 mg",
	})
	meds := ExtractMedications(src)

	want := []string{"aspirin 81 mg", "metoprolol 25 mg", "lisinopril 10 mg"}
	if len(meds) != len(want) {
		t.Fatalf("expected %d medications, got %d: %v", len(want), len(meds), meds)
	}
	for i, w := range want {
		if meds[i] != w {
			t.Errorf("medication %d: expected %q, got %q", i, w, meds[i])
		}
	}
}

func TestExtractMedications_UndosedNamesKept(t *testing.T) {
	src := Sectioned(map[string]string{
		SectionMedications: "Lisinopril, Aspirin",
	})
	meds := ExtractMedications(src)

	if len(meds) != 2 || meds[0] != "Lisinopril" || meds[1] != "Aspirin" {
		t.Errorf("expected undosed names kept, got %v", meds)
	}
}

func TestExtractMedications_SemicolonSeparated(t *testing.T) {
	src := Sectioned(map[string]string{
		SectionMedications: "Warfarin 5 mg daily; Furosemide 40 mg BID",
	})
	meds := ExtractMedications(src)

	if len(meds) != 2 {
		t.Fatalf("expected 2 medications, got %d: %v", len(meds), meds)
	}
	if meds[0] != "Warfarin 5 mg daily" {
		t.Errorf("expected semicolon split, got %q", meds[0])
	}
}

func TestExtractMedications_SentinelsDropped(t *testing.T) {
	for _, body := range []string{"None", "none at this time", "NKDA", "n/a"} {
		src := Sectioned(map[string]string{SectionMedications: body})
		if meds := ExtractMedications(src); len(meds) != 0 {
			t.Errorf("body %q: expected sentinel dropped, got %v", body, meds)
		}
	}
}

func TestExtractMedications_ShortTokensDropped(t *testing.T) {
	src := Sectioned(map[string]string{
		SectionMedications: "Aspirin 81 mg, x, Metformin",
	})
	meds := ExtractMedications(src)

	if len(meds) != 2 {
		t.Errorf("expected single-character token dropped, got %v", meds)
	}
}

func TestExtractMedications_RequiresSection(t *testing.T) {
	// Narrative drug mentions are not collected without section context.
	meds := ExtractMedications(Raw("Patient takes lisinopril 10 mg at home."))
	if meds != nil {
		t.Errorf("expected nil without a medications section, got %v", meds)
	}
}

func TestExtractAllergies_NKDA(t *testing.T) {
	src := Sectioned(map[string]string{
		SectionFullText:  "Allergies: NKDA",
		SectionAllergies: "NKDA",
	})
	allergies := ExtractAllergies(src)

	if len(allergies) != 1 || allergies[0] != NKDA {
		t.Errorf("expected exactly [%s], got %v", NKDA, allergies)
	}
}

func TestExtractAllergies_NKDAExclusive(t *testing.T) {
	// The sentinel never coexists with listed allergens.
	src := Sectioned(map[string]string{
		SectionAllergies: "No known drug allergies per patient",
	})
	allergies := ExtractAllergies(src)

	if len(allergies) != 1 || allergies[0] != NKDA {
		t.Errorf("expected exactly [%s], got %v", NKDA, allergies)
	}
}

func TestExtractAllergies_ListWithReactions(t *testing.T) {
	allergies := ExtractAllergies(Raw("Allergies: Penicillin - rash, Sulfa (hives) and Latex"))

	want := []string{"Penicillin", "Sulfa", "Latex"}
	if len(allergies) != len(want) {
		t.Fatalf("expected %d allergens, got %d: %v", len(want), len(allergies), allergies)
	}
	for i, w := range want {
		if allergies[i] != w {
			t.Errorf("allergen %d: expected %q, got %q", i, w, allergies[i])
		}
	}
}

func TestExtractAllergies_ReviewPhrase(t *testing.T) {
	allergies := ExtractAllergies(Raw("Review of patient's allergies indicates penicillin and latex"))

	if len(allergies) != 2 {
		t.Fatalf("expected 2 allergens, got %v", allergies)
	}
	if allergies[0] != "penicillin" || allergies[1] != "latex" {
		t.Errorf("unexpected allergens: %v", allergies)
	}
}

func TestExtractAllergies_Undocumented(t *testing.T) {
	// nil means undocumented, which must stay distinct from [NKDA].
	if allergies := ExtractAllergies(Raw("Patient admitted for chest pain.")); allergies != nil {
		t.Errorf("expected nil for undocumented allergies, got %v", allergies)
	}
}
