package crawler

import (
	"net/url"
	"strings"
	"sync"
)

// Frontier is the LIFO stack of listing-page paths still to crawl plus the
// set of paths already crawled. A path is handed out by Next at most once.
type Frontier struct {
	mu      sync.Mutex
	stack   []string
	visited map[string]struct{}
}

// NewFrontier returns a Frontier holding seeds. The last seed is crawled
// first.
func NewFrontier(seeds ...string) *Frontier {
	f := &Frontier{visited: make(map[string]struct{})}
	for _, s := range seeds {
		f.Push(s)
	}
	return f
}

// Push adds path unless it has already been crawled. It reports whether the
// path was added.
func (f *Frontier) Push(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.visited[path]; ok {
		return false
	}
	f.stack = append(f.stack, path)
	return true
}

// Next pops paths until it finds one not yet crawled, marks it crawled and
// returns it. ok is false when nothing is left.
func (f *Frontier) Next() (path string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.stack) > 0 {
		path = f.stack[len(f.stack)-1]
		f.stack = f.stack[:len(f.stack)-1]
		if _, seen := f.visited[path]; seen {
			continue
		}
		f.visited[path] = struct{}{}
		return path, true
	}
	return "", false
}

// Visited returns the number of paths handed out so far.
func (f *Frontier) Visited() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// Pending returns the number of stack entries, duplicates included.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stack)
}

// frontierKey resolves href against from and returns its request URI
// (path and query, fragment dropped). Links to a host other than host or
// with a scheme other than http(s) are rejected.
func frontierKey(from *url.URL, host, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	u := from.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(u.Host, host) {
		return "", false
	}
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u.RequestURI(), true
}
