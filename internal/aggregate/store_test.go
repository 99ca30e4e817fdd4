package aggregate

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/nao1215/guidecrawl/internal/model"
)

func restaurant(website string) model.Restaurant {
	return model.Restaurant{Website: website, City: "Cupertino", Price: "$$", Cuisine: "French"}
}

func TestStorePut(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		policy      Policy
		wantKey     string
		wantOutcome Outcome
		wantLen     int
		wantAtKey   string
	}{
		{name: "suffix", policy: PolicySuffix, wantKey: "Chez Test (2)", wantOutcome: OutcomeSuffixed, wantLen: 2, wantAtKey: "https://x/r/1"},
		{name: "overwrite", policy: PolicyOverwrite, wantKey: "Chez Test", wantOutcome: OutcomeOverwritten, wantLen: 1, wantAtKey: "https://x/r/2"},
		{name: "reject", policy: PolicyReject, wantKey: "Chez Test", wantOutcome: OutcomeRejected, wantLen: 1, wantAtKey: "https://x/r/1"},
		{name: "empty policy suffixes", policy: "", wantKey: "Chez Test (2)", wantOutcome: OutcomeSuffixed, wantLen: 2, wantAtKey: "https://x/r/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewStore(tt.policy)
			if key, outcome := s.Put("Chez Test", restaurant("https://x/r/1")); key != "Chez Test" || outcome != OutcomeAdded {
				t.Fatalf("first Put() = (%q, %v)", key, outcome)
			}

			key, outcome := s.Put(" Chez  Test ", restaurant("https://x/r/2"))
			if key != tt.wantKey || outcome != tt.wantOutcome {
				t.Errorf("Put() = (%q, %v), want (%q, %v)", key, outcome, tt.wantKey, tt.wantOutcome)
			}
			if s.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", s.Len(), tt.wantLen)
			}
			if got, _ := s.Get("Chez Test"); got.Website != tt.wantAtKey {
				t.Errorf("Get(\"Chez Test\").Website = %q, want %q", got.Website, tt.wantAtKey)
			}
		})
	}
}

func TestStorePut_MergesSameRestaurant(t *testing.T) {
	t.Parallel()

	s := NewStore(PolicySuffix)
	s.Put("Chez Test", restaurant("https://x/r/1"))

	later := model.Restaurant{Website: "https://x/r/1", Address: "1 Main St, Cupertino, CA 95014, USA"}
	key, outcome := s.Put("Chez Test", later)
	if key != "Chez Test" || outcome != OutcomeMerged {
		t.Fatalf("Put() = (%q, %v), want merge", key, outcome)
	}
	got, _ := s.Get("Chez Test")
	if got.Address != later.Address || got.Cuisine != "French" {
		t.Errorf("merged record = %+v", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStorePut_SuffixSequence(t *testing.T) {
	t.Parallel()

	s := NewStore(PolicySuffix)
	for i := 1; i <= 4; i++ {
		s.Put("Sushi", restaurant(fmt.Sprintf("https://x/r/%d", i)))
	}
	want := []string{"Sushi", "Sushi (2)", "Sushi (3)", "Sushi (4)"}
	if got := s.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	key, outcome := s.Put("Sushi", restaurant("https://x/r/3"))
	if key != "Sushi (3)" || outcome != OutcomeMerged {
		t.Errorf("re-Put of suffixed restaurant = (%q, %v), want (\"Sushi (3)\", merged)", key, outcome)
	}
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	t.Parallel()

	s := NewStore(PolicySuffix)
	s.Put("A", restaurant("https://x/a"))
	snap := s.Snapshot()
	delete(snap, "A")
	if s.Len() != 1 {
		t.Error("Snapshot() shares storage with the store")
	}
}

func TestStoreConcurrentPut(t *testing.T) {
	t.Parallel()

	s := NewStore(PolicySuffix)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Put(fmt.Sprintf("R%d", i%10), restaurant(fmt.Sprintf("https://x/r/%d", i)))
		}()
	}
	wg.Wait()
	if s.Len() != 50 {
		t.Errorf("Len() = %d, want 50", s.Len())
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"overwrite", "reject", "suffix"} {
		if p, err := ParsePolicy(in); err != nil || string(p) != in {
			t.Errorf("ParsePolicy(%q) = (%q, %v)", in, p, err)
		}
	}
	if p, err := ParsePolicy(""); err != nil || p != PolicySuffix {
		t.Errorf("ParsePolicy(\"\") = (%q, %v), want suffix", p, err)
	}
	if _, err := ParsePolicy("merge"); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("ParsePolicy(\"merge\") error = %v", err)
	}
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	if OutcomeSuffixed.String() != "suffixed" || Outcome(99).String() != "Outcome(99)" {
		t.Errorf("unexpected strings: %q %q", OutcomeSuffixed, Outcome(99))
	}
}
