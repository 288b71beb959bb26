package utils

import (
	"reflect"
	"testing"
)

func TestFlattenInto(t *testing.T) {
	dst := map[string]interface{}{}
	FlattenInto(dst, "details", map[string]interface{}{
		"level": "Intermediate",
		"extra": map[string]interface{}{"note": "x"},
	})
	want := map[string]interface{}{
		"details.level":      "Intermediate",
		"details.extra.note": "x",
	}
	if !reflect.DeepEqual(dst, want) {
		t.Fatalf("FlattenInto = %v, want %v", dst, want)
	}
}

func TestFlattenIntoEmpty(t *testing.T) {
	dst := map[string]interface{}{"title": "keep"}
	FlattenInto(dst, "details", map[string]interface{}{})
	if len(dst) != 1 {
		t.Fatalf("expected dst untouched, got %v", dst)
	}
}
