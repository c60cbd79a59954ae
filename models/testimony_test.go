package models

import "testing"

func TestIsValidReligion(t *testing.T) {
	for _, r := range Religions {
		if !IsValidReligion(r) {
			t.Fatalf("%q should be a valid religion", r)
		}
	}

	for _, r := range []string{"", "all", "islam", "Jedi", "Trending"} {
		if IsValidReligion(r) {
			t.Fatalf("%q should not be a valid religion", r)
		}
	}
}
