package extractor

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"no matches", "nothing to see here @ all", []string{}},
		{"single", "contact: info@school.edu", []string{"info@school.edu"}},
		{
			"duplicates collapse",
			"a@x.com, b@x.com; a@x.com",
			[]string{"a@x.com", "b@x.com"},
		},
		{
			"case distinct",
			"Team@X.com team@x.com",
			[]string{"Team@X.com", "team@x.com"},
		},
		{
			"mailto href",
			`<a href="mailto:dean@uni.ac.uk?subject=Hi">Dean</a>`,
			[]string{"dean@uni.ac.uk"},
		},
		{"short tld rejected", "x@y.z", []string{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Extract(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	t.Parallel()

	text := "hr@corp.io ceo@corp.io hr@corp.io press@news.org ceo@corp.io"
	first := Extract(text)
	second := Extract(strings.Join(first, " "))

	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-extraction changed result: %v vs %v", first, second)
	}
}
