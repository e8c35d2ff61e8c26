package corpus

import "testing"

func TestLoad(t *testing.T) {
	docs, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) == 0 {
		t.Fatal("expected a non-empty corpus")
	}

	seen := make(map[string]struct{})
	for _, d := range docs {
		if d.ID == "" {
			t.Error("document with empty id")
		}
		if d.Text == "" {
			t.Errorf("document %q with empty text", d.ID)
		}
		if _, dup := seen[d.ID]; dup {
			t.Errorf("duplicate id %q", d.ID)
		}
		seen[d.ID] = struct{}{}
	}
}

func TestLoad_ContainsSkills(t *testing.T) {
	docs, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, d := range docs {
		if d.ID == "skills" {
			return
		}
	}
	t.Error("corpus missing the skills document")
}

func TestLoad_OrderIsStable(t *testing.T) {
	first, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("order differs at %d: %s != %s", i, first[i].ID, second[i].ID)
		}
	}
}
