package terms

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		phrases []string
		terms   []string
	}{
		{"empty", "", []string{}, []string{}},
		{"single term", "budget", []string{}, []string{"budget"}},
		{"comma separated", "budget, report", []string{}, []string{"budget", "report"}},
		{"plus separated", "budget+report", []string{}, []string{"budget", "report"}},
		{"phrase and terms", `"a b", c+d`, []string{"a b"}, []string{"c", "d"}},
		{"phrase only", `"annual report"`, []string{"annual report"}, []string{}},
		{"two phrases keep order", `"second draft" x "first draft"`,
			[]string{"second draft", "first draft"}, []string{"x"}},
		{"url encoded", "%22annual%20report%22%2C+budget",
			[]string{"annual report"}, []string{"budget"}},
		{"empty quotes dropped", `"" budget`, []string{}, []string{"budget"}},
		{"whitespace fragments dropped", " , + ,budget, ", []string{}, []string{"budget"}},
		{"mixed separators", "a,b+c, d", []string{}, []string{"a", "b", "c", "d"}},
		{"consignment reference", "TDR-2023-GXFH", []string{}, []string{"TDR-2023-GXFH"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phrases, terms := Extract(tt.query)
			if !reflect.DeepEqual(phrases, tt.phrases) {
				t.Errorf("phrases = %v, want %v", phrases, tt.phrases)
			}
			if !reflect.DeepEqual(terms, tt.terms) {
				t.Errorf("terms = %v, want %v", terms, tt.terms)
			}
		})
	}
}
