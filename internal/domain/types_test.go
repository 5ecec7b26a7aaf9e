package domain

import "testing"

func TestStructuredRecordValid(t *testing.T) {
	cases := []struct {
		name string
		rec  StructuredRecord
		want bool
	}{
		{
			name: "all fields present",
			rec:  StructuredRecord{Patient: "Jane Doe", Diagnosis: "Flu", Treatment: "Rest", FollowUp: "1 week"},
			want: true,
		},
		{"missing patient", StructuredRecord{Diagnosis: "Flu", Treatment: "Rest", FollowUp: "1 week"}, false},
		{"missing diagnosis", StructuredRecord{Patient: "Jane Doe", Treatment: "Rest", FollowUp: "1 week"}, false},
		{"missing treatment", StructuredRecord{Patient: "Jane Doe", Diagnosis: "Flu", FollowUp: "1 week"}, false},
		{"missing follow up", StructuredRecord{Patient: "Jane Doe", Diagnosis: "Flu", Treatment: "Rest"}, false},
		{"all empty", StructuredRecord{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rec.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}
