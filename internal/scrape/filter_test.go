package scrape

import (
	"testing"

	"autoapply-engine/internal/config"
)

func TestIsEligible(t *testing.T) {
	f := config.Default().Filters

	cases := []struct {
		title string
		want  bool
	}{
		{"Senior Sales Account Executive", false},
		{"Security Engineer Intern", true},
		{"SOC Analyst II", true},
		{"Head of Security", false}, // block wins over allow
		{"security ENGINEER", true}, // case-insensitive
		{"Chef de Cuisine", false},  // neither list
		{"Marketing AI Specialist", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsEligible(f, tc.title); got != tc.want {
			t.Errorf("IsEligible(%q) = %v, want %v", tc.title, got, tc.want)
		}
	}
}

func TestClassifyBlockPrecedence(t *testing.T) {
	f := config.FilterConfig{
		Block: []string{"sales"},
		Allow: []string{"sales engineer", "engineer"},
	}
	v := Classify(f, "Sales Engineer")
	if v.Eligible {
		t.Fatalf("block list must win: %+v", v)
	}
	if v.Reason != "blocked:sales" {
		t.Fatalf("reason = %q", v.Reason)
	}
}

func TestClassifyTags(t *testing.T) {
	f := config.FilterConfig{Allow: []string{"Security", "Engineer", "Intern"}}
	v := Classify(f, "Security Engineer Intern")
	if !v.Eligible || len(v.Tags) != 3 {
		t.Fatalf("got %+v", v)
	}
}

func TestClassifyDefaultDeny(t *testing.T) {
	v := Classify(config.FilterConfig{}, "Anything At All")
	if v.Eligible || v.Reason != "no_allow_match" {
		t.Fatalf("got %+v", v)
	}
}

func TestClassifyIgnoresBlankTerms(t *testing.T) {
	f := config.FilterConfig{Block: []string{"  "}, Allow: []string{"", "dev"}}
	if !IsEligible(f, "Developer") {
		t.Fatalf("blank block term must not match everything")
	}
}
