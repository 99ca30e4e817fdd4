package aggregate

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/nao1215/guidecrawl/internal/model"
)

// Policy decides what Put does when a name is already taken by a different
// restaurant.
type Policy string

const (
	// PolicyOverwrite replaces the earlier restaurant.
	PolicyOverwrite Policy = "overwrite"

	// PolicyReject keeps the earlier restaurant and drops the new one.
	PolicyReject Policy = "reject"

	// PolicySuffix stores the new restaurant under "Name (2)", "Name (3)"...
	PolicySuffix Policy = "suffix"
)

// ErrUnknownPolicy is returned by ParsePolicy for an unrecognized value.
var ErrUnknownPolicy = errors.New("unknown collision policy")

// ParsePolicy converts a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyOverwrite, PolicyReject, PolicySuffix:
		return p, nil
	case "":
		return PolicySuffix, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Outcome is the result of a Put.
type Outcome int

const (
	// OutcomeAdded means the name was free.
	OutcomeAdded Outcome = iota
	// OutcomeMerged means the same restaurant was already stored.
	OutcomeMerged
	// OutcomeOverwritten means a different restaurant was replaced.
	OutcomeOverwritten
	// OutcomeRejected means the new restaurant was dropped.
	OutcomeRejected
	// OutcomeSuffixed means the restaurant was stored under a suffixed name.
	OutcomeSuffixed
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeMerged:
		return "merged"
	case OutcomeOverwritten:
		return "overwritten"
	case OutcomeRejected:
		return "rejected"
	case OutcomeSuffixed:
		return "suffixed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Store is a concurrency-safe map of restaurants keyed by normalized name.
type Store struct {
	mu      sync.RWMutex
	policy  Policy
	records map[string]model.Restaurant
}

// NewStore returns an empty Store. An empty policy means PolicySuffix.
func NewStore(policy Policy) *Store {
	if policy == "" {
		policy = PolicySuffix
	}
	return &Store{
		policy:  policy,
		records: make(map[string]model.Restaurant),
	}
}

// Put stores r under name and returns the key actually used.
// For OutcomeRejected the key is the name of the record that was kept.
func (s *Store) Put(name string, r model.Restaurant) (string, Outcome) {
	key := model.NormalizeText(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[key]
	if !ok {
		s.records[key] = r
		return key, OutcomeAdded
	}
	if sameEntity(existing, r) {
		s.records[key] = existing.Merge(r)
		return key, OutcomeMerged
	}

	switch s.policy {
	case PolicyOverwrite:
		s.records[key] = r
		return key, OutcomeOverwritten
	case PolicyReject:
		return key, OutcomeRejected
	default:
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s (%d)", key, n)
			existing, ok := s.records[candidate]
			if !ok {
				s.records[candidate] = r
				return candidate, OutcomeSuffixed
			}
			if sameEntity(existing, r) {
				s.records[candidate] = existing.Merge(r)
				return candidate, OutcomeMerged
			}
		}
	}
}

// Get returns the restaurant stored under key.
func (s *Store) Get(key string) (model.Restaurant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[key]
	return r, ok
}

// Len returns the number of stored restaurants.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Names returns the keys in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.records))
	for k := range s.records {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Snapshot returns a copy of the stored restaurants.
func (s *Store) Snapshot() map[string]model.Restaurant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.Restaurant, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}

// sameEntity reports whether two records describe the same restaurant.
// The detail-page URL identifies a restaurant.
func sameEntity(a, b model.Restaurant) bool {
	return a.Website == b.Website
}
