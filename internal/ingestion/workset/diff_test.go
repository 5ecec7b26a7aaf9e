package workset

import (
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	cases := []struct {
		name             string
		s                []string
		d                map[string]struct{}
		wantToProcess    []string
		wantAlreadyDone  []string
		wantOK           bool
	}{
		{
			name:            "empty source means nothing to do",
			s:               nil,
			d:               map[string]struct{}{"a": {}},
			wantToProcess:   nil,
			wantAlreadyDone: nil,
			wantOK:          false,
		},
		{
			name:            "missing downstream artifact processes everything",
			s:               []string{"a", "b"},
			d:               nil,
			wantToProcess:   []string{"a", "b"},
			wantAlreadyDone: []string{},
			wantOK:          true,
		},
		{
			name:            "partial overlap splits the set",
			s:               []string{"a", "b", "c"},
			d:               map[string]struct{}{"b": {}},
			wantToProcess:   []string{"a", "c"},
			wantAlreadyDone: []string{"b"},
			wantOK:          true,
		},
		{
			name:            "fully processed source",
			s:               []string{"a", "b"},
			d:               map[string]struct{}{"a": {}, "b": {}},
			wantToProcess:   []string{},
			wantAlreadyDone: []string{"a", "b"},
			wantOK:          true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			toProcess, alreadyProcessed, ok := Diff(tc.s, tc.d)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !tc.wantOK {
				return
			}
			if !reflect.DeepEqual(toProcess, tc.wantToProcess) {
				t.Errorf("toProcess = %v, want %v", toProcess, tc.wantToProcess)
			}
			if !reflect.DeepEqual(alreadyProcessed, tc.wantAlreadyDone) {
				t.Errorf("alreadyProcessed = %v, want %v", alreadyProcessed, tc.wantAlreadyDone)
			}
		})
	}
}

func TestKeysOf(t *testing.T) {
	m := map[string]int{"x": 1, "y": 2}
	keys := KeysOf(m)
	if _, ok := keys["x"]; !ok {
		t.Error("expected key x")
	}
	if _, ok := keys["y"]; !ok {
		t.Error("expected key y")
	}
	if len(keys) != 2 {
		t.Errorf("len = %d, want 2", len(keys))
	}
}

func TestRestrictToKeys(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2, "c": 3}
	got := RestrictToKeys(m, []string{"a", "c", "missing"})
	want := map[string]int{"a": 1, "c": 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
