package utils

import (
	"reflect"
	"testing"
)

func TestUpdatesFromPtrDTO(t *testing.T) {
	type patch struct {
		PatientName *string `json:"patient_name"`
		Procedure   *string `json:"procedure"`
		Memo        *string `json:"memo"`
		Ignored     *string `json:"-"`
	}
	name := "Jane Roe"
	proc := "LASIK"
	skip := "x"
	dto := patch{PatientName: &name, Procedure: &proc, Ignored: &skip}

	got := UpdatesFromPtrDTO(&dto, map[string]string{"procedure": "procedure_name"})
	want := map[string]any{
		"patient_name":   "Jane Roe",
		"procedure_name": "LASIK",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("UpdatesFromPtrDTO = %v, want %v", got, want)
	}
}

func TestParseIntDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"42", 0, 42},
		{" 7 ", 0, 7},
		{"", 5, 5},
		{"abc", 5, 5},
		{"-3", 5, 5},
	}
	for _, tt := range cases {
		if got := ParseIntDefault(tt.in, tt.def); got != tt.want {
			t.Fatalf("ParseIntDefault(%q, %d) = %d, want %d", tt.in, tt.def, got, tt.want)
		}
	}
}
