package model

import "testing"

func TestFlattenCollectsNestedElements(t *testing.T) {
	root := map[string]any{
		"id":           "root",
		"speckle_type": "Speckle.Core.Models.Collection",
		"elements": []any{
			map[string]any{
				"id":           "wall-1",
				"speckle_type": "Objects.BuiltElements.Wall",
				"elements": []any{
					map[string]any{"id": "window-1", "speckle_type": "Objects.BuiltElements.Window"},
				},
			},
			map[string]any{
				"id":           "wall-2",
				"speckle_type": "Objects.BuiltElements.Wall",
			},
		},
	}

	objs := Flatten(root)
	want := []string{"root", "wall-1", "window-1", "wall-2"}
	if len(objs) != len(want) {
		t.Fatalf("Flatten returned %d objects, want %d", len(objs), len(want))
	}
	for i, id := range want {
		if objs[i].ID != id {
			t.Fatalf("objs[%d].ID = %q, want %q", i, objs[i].ID, id)
		}
	}
}

func TestFlattenSkipsReferencesAndDuplicates(t *testing.T) {
	root := []any{
		map[string]any{"id": "a", "speckle_type": "Objects.Thing"},
		map[string]any{"id": "b", "speckle_type": "reference", "referencedId": "b"},
		map[string]any{"id": "a", "speckle_type": "Objects.Thing"},
		map[string]any{"speckle_type": "Objects.Anonymous"},
	}

	objs := Flatten(root)
	if len(objs) != 1 || objs[0].ID != "a" {
		t.Fatalf("Flatten = %v, want single object a", objs)
	}
}

func TestFlattenAtElementsKey(t *testing.T) {
	root := map[string]any{
		"id": "root",
		"@elements": []any{
			map[string]any{"id": "child"},
		},
	}
	objs := Flatten(root)
	if len(objs) != 2 || objs[1].ID != "child" {
		t.Fatalf("Flatten = %v, want root and child", objs)
	}
}
