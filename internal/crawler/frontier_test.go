package crawler

import (
	"net/url"
	"testing"
)

func TestFrontier(t *testing.T) {
	t.Parallel()

	t.Run("LIFO order", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("/a")
		f.Push("/b")
		f.Push("/c")

		var got []string
		for {
			p, ok := f.Next()
			if !ok {
				break
			}
			got = append(got, p)
		}
		want := []string{"/c", "/b", "/a"}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("got %v, want %v", got, want)
				break
			}
		}
	})

	t.Run("path pushed twice is yielded once", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("/a")
		f.Push("/b")
		f.Push("/b")

		seen := map[string]int{}
		for {
			p, ok := f.Next()
			if !ok {
				break
			}
			seen[p]++
		}
		if seen["/b"] != 1 || seen["/a"] != 1 {
			t.Errorf("seen = %v", seen)
		}
		if f.Visited() != 2 || f.Pending() != 0 {
			t.Errorf("Visited() = %d, Pending() = %d", f.Visited(), f.Pending())
		}
	})

	t.Run("visited path is not pushed again", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier("/a")
		if p, _ := f.Next(); p != "/a" {
			t.Fatalf("Next() = %q", p)
		}
		if f.Push("/a") {
			t.Error("Push() of visited path returned true")
		}
		if _, ok := f.Next(); ok {
			t.Error("Next() returned a path from an exhausted frontier")
		}
	})
}

func TestFrontierKey(t *testing.T) {
	t.Parallel()

	from, err := url.Parse(testBase + "/us/en/restaurants/page/1")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		href   string
		want   string
		wantOK bool
	}{
		{name: "relative path", href: "/us/en/restaurants/page/2", want: "/us/en/restaurants/page/2", wantOK: true},
		{name: "query kept", href: "/us/en/restaurants?page=3", want: "/us/en/restaurants?page=3", wantOK: true},
		{name: "fragment dropped", href: "/us/en/restaurants#top", want: "/us/en/restaurants", wantOK: true},
		{name: "absolute same host", href: "https://guide.example.com/p/2", want: "/p/2", wantOK: true},
		{name: "host case ignored", href: "https://GUIDE.example.com/p/2", want: "/p/2", wantOK: true},
		{name: "other host", href: "https://ads.example.com/p", wantOK: false},
		{name: "javascript", href: "javascript:void(0)", wantOK: false},
		{name: "empty path", href: "https://guide.example.com", want: "/", wantOK: true},
		{name: "fragment only is the current page", href: "#top", want: "/us/en/restaurants/page/1", wantOK: true},
		{name: "relative to current page", href: "2", want: "/us/en/restaurants/page/2", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := frontierKey(from, "guide.example.com", tt.href)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("frontierKey(%q) = (%q, %v), want (%q, %v)", tt.href, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
