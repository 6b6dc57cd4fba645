package tree

import (
	"encoding/json"
	"errors"
	"testing"

	"dockergen/internal/domain"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *Tree
		want  string
	}{
		{
			name:  "empty forest",
			build: func(t *testing.T) *Tree { return New(nil) },
			want:  `{}`,
		},
		{
			name: "imported example",
			build: func(t *testing.T) *Tree {
				tr, err := Import([]string{"root/a/b.txt", "root/a/c.txt", "root/d.txt"}, nil)
				if err != nil {
					t.Fatalf("Import() unexpected error: %v", err)
				}
				return tr
			},
			want: `{"a":{"b.txt":null,"c.txt":null},"d.txt":null}`,
		},
		{
			name: "empty folder",
			build: func(t *testing.T) *Tree {
				tr, _ := mustInsert(t, New(nil), "", KindFolder, "empty")
				return tr
			},
			want: `{"empty":{}}`,
		},
		{
			name: "duplicate sibling names keep the later one",
			build: func(t *testing.T) *Tree {
				tr := New(nil)
				tr, first := mustInsert(t, tr, "", KindFolder, "a")
				tr, _ = mustInsert(t, tr, first.ID(), KindFile, "lost.txt")
				tr, _ = mustInsert(t, tr, "", KindFile, "a")
				return tr
			},
			want: `{"a":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(Serialize(tt.build(t)))
			if err != nil {
				t.Fatalf("json.Marshal() unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Serialize() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSerializeEmptyIsNonNil(t *testing.T) {
	if s := Serialize(New(nil)); s == nil {
		t.Error("Serialize(empty) returned nil map")
	}
}

func TestTreeJSON(t *testing.T) {
	tr := New(NewCounterAllocator())
	tr, src := mustInsert(t, tr, "", KindFolder, "src")
	tr, _ = mustInsert(t, tr, src.ID(), KindFolder, "empty")
	tr, _ = mustInsert(t, tr, "", KindFile, "go.mod")

	got, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("json.Marshal() unexpected error: %v", err)
	}

	want := `[{"id":"n1","name":"src","type":"folder","children":[{"id":"n2","name":"empty","type":"folder","children":[]}]},{"id":"n3","name":"go.mod","type":"file"}]`
	if string(got) != want {
		t.Errorf("json.Marshal(tree) =\n%s\nwant\n%s", got, want)
	}

	empty, _ := json.Marshal(New(nil))
	if string(empty) != `[]` {
		t.Errorf("json.Marshal(empty) = %s, want []", empty)
	}
}

func TestParseStructure(t *testing.T) {
	got, err := ParseStructure([]byte(`{"a":{"b.txt":null},"d.txt":null}`))
	if err != nil {
		t.Fatalf("ParseStructure() unexpected error: %v", err)
	}
	a, ok := got["a"].(Structure)
	if !ok {
		t.Fatalf(`got["a"] = %T, want Structure`, got["a"])
	}
	if v, ok := a["b.txt"]; !ok || v != nil {
		t.Errorf(`a["b.txt"] = %v, %v; want nil, true`, v, ok)
	}

	for _, bad := range []string{`[]`, `null`, `{"a":1}`, `{"a":{"b":"x"}}`, `{"x/y":null}`, `not json`} {
		if _, err := ParseStructure([]byte(bad)); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("ParseStructure(%s) error = %v, want ErrValidation", bad, err)
		}
	}
}
