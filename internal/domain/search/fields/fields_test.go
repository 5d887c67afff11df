package fields

import (
	"reflect"
	"testing"
)

func TestForArea(t *testing.T) {
	record := ForArea(AreaRecord)
	if !reflect.DeepEqual(record, []string{"file_name", "content"}) {
		t.Errorf("record area = %v", record)
	}

	metadata := ForArea(AreaMetadata)
	for _, f := range metadata {
		if f == "file_name" || f == "content" {
			t.Errorf("metadata area must not include %q", f)
		}
	}

	everywhere := ForArea(AreaEverywhere)
	if len(everywhere) != len(metadata)+2 {
		t.Errorf("everywhere = %d fields, metadata = %d", len(everywhere), len(metadata))
	}

	// Unknown areas fall back to the full set.
	unknown := ForArea("bogus")
	if !reflect.DeepEqual(unknown, everywhere) {
		t.Errorf("unknown area = %v, want full set", unknown)
	}
}

func TestForArea_ReturnsCopies(t *testing.T) {
	a := ForArea(AreaEverywhere)
	a[0] = "mutated"
	b := ForArea(AreaEverywhere)
	if b[0] == "mutated" {
		t.Error("ForArea shares its backing array with callers")
	}
}

func TestForSearch_Boosts(t *testing.T) {
	specs, sorting := ForSearch(AreaRecord, SortRecord)
	if !reflect.DeepEqual(specs, []string{"file_name^2", "content^4"}) {
		t.Errorf("specs = %v", specs)
	}
	wantSort := []map[string]any{{"_score": map[string]any{"order": "desc"}}}
	if !reflect.DeepEqual(sorting, wantSort) {
		t.Errorf("sorting = %v", sorting)
	}
}

func TestForSearch_UnboostedFieldsStayBare(t *testing.T) {
	specs, _ := ForSearch(AreaEverywhere, SortFileName)
	for _, s := range specs {
		if s == "file_name^4" {
			continue
		}
		if BaseName(s) != s {
			t.Errorf("unexpected boost on %q", s)
		}
	}
}

func TestForSearch_SortOrders(t *testing.T) {
	tests := []struct {
		sort  string
		order string
	}{
		{SortLeastMatch, "asc"},
		{SortMostMatch, "desc"},
		{SortFileName, "desc"},
		{"unrecognized", "desc"},
		{"", "desc"},
	}
	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			specs, sorting := ForSearch(AreaEverywhere, tt.sort)
			got := sorting[0]["_score"].(map[string]any)["order"]
			if got != tt.order {
				t.Errorf("order = %v, want %s", got, tt.order)
			}
			if tt.sort == "unrecognized" || tt.sort == "" {
				for _, s := range specs {
					if BaseName(s) != s {
						t.Errorf("unrecognized sort must be boost-free, got %q", s)
					}
				}
			}
		})
	}
}

func TestIsNonFuzzy(t *testing.T) {
	tests := []struct {
		field string
		want  bool
	}{
		{"consignment_reference", true},
		{"series_name", true},
		{"date_last_modified", true},
		{"opening_date", true},
		{"file_name", false},
		{"content", false},
		{"description", false},
		{"transferring_body", false},
		{"series_name^3", true},
		{"content^4", false},
	}
	for _, tt := range tests {
		if got := IsNonFuzzy(tt.field); got != tt.want {
			t.Errorf("IsNonFuzzy(%q) = %v, want %v", tt.field, got, tt.want)
		}
	}
}

func TestSplit(t *testing.T) {
	nonFuzzy, fuzzy := Split([]string{"file_name", "series_name", "content", "date_last_modified"})
	if !reflect.DeepEqual(nonFuzzy, []string{"series_name", "date_last_modified"}) {
		t.Errorf("nonFuzzy = %v", nonFuzzy)
	}
	if !reflect.DeepEqual(fuzzy, []string{"file_name", "content"}) {
		t.Errorf("fuzzy = %v", fuzzy)
	}
}
