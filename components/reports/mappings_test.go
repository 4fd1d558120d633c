package reports

import "testing"

func TestIsCompleteAdvisory(t *testing.T) {
	placeholders := []Placeholder{
		{ID: "sheet1-a1"},
		{ID: "sheet1-b2"},
	}
	mappings := MappingSet{
		"sheet1-a1": {PlaceholderID: "sheet1-a1"},
	}
	if IsComplete(placeholders, mappings) {
		t.Fatal("expected incomplete mapping set")
	}
	mappings["sheet1-b2"] = Mapping{PlaceholderID: "sheet1-b2"}
	if !IsComplete(placeholders, mappings) {
		t.Fatal("expected complete mapping set")
	}
	if !IsComplete(nil, MappingSet{}) {
		t.Fatal("no placeholders should count as complete")
	}
}

func TestMissingMappingsKeepsScanOrder(t *testing.T) {
	placeholders := []Placeholder{
		{ID: "sheet1-a1"},
		{ID: "sheet1-b1"},
		{ID: "sheet2-a1"},
	}
	mappings := MappingSet{"sheet1-b1": {PlaceholderID: "sheet1-b1"}}
	missing := MissingMappings(placeholders, mappings)
	if len(missing) != 2 || missing[0] != "sheet1-a1" || missing[1] != "sheet2-a1" {
		t.Fatalf("unexpected missing list: %#v", missing)
	}
}

func TestStaleMappingsReportedNotRemoved(t *testing.T) {
	placeholders := []Placeholder{{ID: "sheet1-a1"}}
	mappings := MappingSet{
		"sheet1-a1": {PlaceholderID: "sheet1-a1"},
		"sheet1-z9": {PlaceholderID: "sheet1-z9"},
	}
	stale := StaleMappings(placeholders, mappings)
	if len(stale) != 1 || stale[0] != "sheet1-z9" {
		t.Fatalf("unexpected stale list: %#v", stale)
	}
	if _, ok := mappings["sheet1-z9"]; !ok {
		t.Fatal("stale detection must not mutate the mapping set")
	}
}

func TestStaleMappingsSorted(t *testing.T) {
	placeholders := []Placeholder{{ID: "sheet1-a1"}}
	mappings := MappingSet{
		"sheet1-a1": {PlaceholderID: "sheet1-a1"},
		"sheet2-c3": {PlaceholderID: "sheet2-c3"},
		"sheet1-z9": {PlaceholderID: "sheet1-z9"},
		"sheet1-b2": {PlaceholderID: "sheet1-b2"},
	}
	want := []string{"sheet1-b2", "sheet1-z9", "sheet2-c3"}
	for i := 0; i < 10; i++ {
		stale := StaleMappings(placeholders, mappings)
		if len(stale) != len(want) {
			t.Fatalf("unexpected stale list: %#v", stale)
		}
		for j, id := range want {
			if stale[j] != id {
				t.Fatalf("expected sorted stale list %v, got %v", want, stale)
			}
		}
	}
}

func TestMappingSetClone(t *testing.T) {
	original := MappingSet{"sheet1-a1": {PlaceholderID: "sheet1-a1"}}
	clone := original.Clone()
	clone["sheet1-b2"] = Mapping{PlaceholderID: "sheet1-b2"}
	if _, ok := original["sheet1-b2"]; ok {
		t.Fatal("clone must not alias the original map")
	}
	if MappingSet(nil).Clone() != nil {
		t.Fatal("nil clone should stay nil")
	}
}
