package search

import (
	"strings"
	"testing"

	"github.com/kalambet/frank/internal/expert"
)

func seed(t *testing.T) []expert.Expert {
	t.Helper()
	experts, err := expert.Seed()
	if err != nil {
		t.Fatalf("loading seed: %v", err)
	}
	return experts
}

func ids(experts []expert.Expert) []string {
	out := make([]string, len(experts))
	for i, e := range experts {
		out[i] = e.ID
	}
	return out
}

func TestKeyword_EmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		got := Keyword(q, seed(t))
		if got == nil || len(got) != 0 {
			t.Errorf("Keyword(%q) = %v, want empty non-nil", q, got)
		}
	}
}

func TestKeyword_Nuclear(t *testing.T) {
	got := Keyword("nuclear", seed(t))
	want := []string{"int-001", "ext-001"}
	if strings.Join(ids(got), ",") != strings.Join(want, ",") {
		t.Errorf("Keyword() = %v, want %v", ids(got), want)
	}
}

func TestKeyword_PhraseIsLiteral(t *testing.T) {
	if got := Keyword("nuclear safety regulations", seed(t)); len(got) != 0 {
		t.Errorf("Keyword() = %v, want no literal phrase match", ids(got))
	}
	got := Keyword("nuclear safety", seed(t))
	if strings.Join(ids(got), ",") != "ext-001" {
		t.Errorf("Keyword(nuclear safety) = %v, want [ext-001]", ids(got))
	}
}

func TestKeyword_CaseInsensitive(t *testing.T) {
	got := Keyword("MINING", seed(t))
	want := []string{"int-005", "ext-005"}
	if strings.Join(ids(got), ",") != strings.Join(want, ",") {
		t.Errorf("Keyword() = %v, want %v", ids(got), want)
	}
}

func TestKeyword_MatchesLead(t *testing.T) {
	got := Keyword("kamran", seed(t))
	want := []string{"int-003", "ext-003"}
	if strings.Join(ids(got), ",") != strings.Join(want, ",") {
		t.Errorf("Keyword() = %v, want %v", ids(got), want)
	}
}

func TestKeyword_InternalFirstStable(t *testing.T) {
	experts := []expert.Expert{
		{ID: "e1", Name: "alpha", Type: expert.TypeExternal},
		{ID: "i1", Name: "alpha", Type: expert.TypeInternal},
		{ID: "e2", Name: "alpha", Type: expert.TypeExternal},
		{ID: "i2", Name: "alpha", Type: expert.TypeInternal},
		{ID: "x", Name: "beta", Type: expert.TypeInternal},
	}
	got := ids(Keyword("alpha", experts))
	want := "i1,i2,e1,e2"
	if strings.Join(got, ",") != want {
		t.Errorf("order = %v, want %s", got, want)
	}
}

func TestKeyword_EveryResultContainsQuery(t *testing.T) {
	for _, q := range []string{"ai", "capital", "robot", "canada", "phd", "zzz"} {
		sawExternal := false
		for _, e := range Keyword(q, seed(t)) {
			if !strings.Contains(Text(e), strings.ToLower(q)) {
				t.Errorf("%s does not contain %q", e.ID, q)
			}
			if e.Type == expert.TypeExternal {
				sawExternal = true
			} else if sawExternal {
				t.Errorf("query %q: internal %s after external", q, e.ID)
			}
		}
	}
}

func TestText_NilLead(t *testing.T) {
	e := expert.Expert{Name: "Ann", Expertise: []string{"Go"}}
	if got := Text(e); !strings.Contains(got, "ann") || !strings.Contains(got, "go") {
		t.Errorf("Text() = %q", got)
	}
}
