package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func noop(w http.ResponseWriter, r *http.Request, p Param) {}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	rt := NewRouter(noop)
	for _, p := range []string{"/", "/handle", "/handle/:name"} {
		if err := rt.Get(p, noop); err != nil {
			t.Fatalf("Get(%q) error = %v", p, err)
		}
	}
	if err := rt.Mount("/assets", http.NotFoundHandler(), http.MethodGet); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return rt
}

func TestRouterMatch(t *testing.T) {
	rt := newTestRouter(t)

	tests := []struct {
		name        string
		method      string
		path        string
		wantPattern string
		wantParam   string
		wantOK      bool
	}{
		{"root", "GET", "/", "/", "", false},
		{"handle", "GET", "/handle", "/handle", "", false},
		{"handle trailing slash", "GET", "/handle/", "/handle", "", false},
		{"handle name", "GET", "/handle/alice", "/handle/:name", "alice", true},
		{"handle name trailing slash", "GET", "/handle/alice/", "/handle/:name", "alice", true},
		{"decoded name", "GET", "/handle/John Doe", "/handle/:name", "John Doe", true},
		{"double trailing slash", "GET", "/handle//", "", "", false},
		{"too deep", "GET", "/handle/alice/extra", "", "", false},
		{"unknown", "GET", "/nope", "", "", false},
		{"unknown trailing slash", "GET", "/nope/", "", "", false},
		{"head uses get routes", "HEAD", "/handle/bob", "/handle/:name", "bob", true},
		{"post root", "POST", "/", "", "", false},
		{"post handle", "POST", "/handle/alice", "", "", false},
		{"delete unknown", "DELETE", "/nope", "", "", false},
		{"assets file", "GET", "/assets/app.css", "/assets", "", false},
		{"assets nested", "GET", "/assets/img/logo.svg", "/assets", "", false},
		{"assets root", "GET", "/assets/", "/assets", "", false},
		{"assets lookalike", "GET", "/assetsx", "", "", false},
		{"assets post", "POST", "/assets/app.css", "", "", false},
		{"empty path", "GET", "", "/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := rt.Match(tt.method, tt.path)
			if m.Pattern != tt.wantPattern {
				t.Errorf("Match(%s %q).Pattern = %q, want %q", tt.method, tt.path, m.Pattern, tt.wantPattern)
			}
			got, ok := m.Param.Get()
			if ok != tt.wantOK || got != tt.wantParam {
				t.Errorf("Match(%s %q).Param = (%q, %v), want (%q, %v)", tt.method, tt.path, got, ok, tt.wantParam, tt.wantOK)
			}
			if m.Found() != (tt.wantPattern != "") {
				t.Errorf("Found() = %v, want %v", m.Found(), tt.wantPattern != "")
			}
		})
	}
}

func TestRouterTrailingSlashIdempotence(t *testing.T) {
	rt := newTestRouter(t)

	paths := []string{"/handle", "/handle/alice", "/handle/a.b-c", "/nope", "/a/b/c", "/assets", "/assets/x.js"}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			plain := rt.Match(http.MethodGet, p)
			slashed := rt.Match(http.MethodGet, p+"/")
			if plain.Pattern != slashed.Pattern {
				t.Errorf("Pattern differs: %q vs %q", plain.Pattern, slashed.Pattern)
			}
			if plain.Param != slashed.Param {
				t.Errorf("Param differs: %+v vs %+v", plain.Param, slashed.Param)
			}
		})
	}
}

func TestRouterRegistrationOrder(t *testing.T) {
	rt := NewRouter(noop)
	if err := rt.Get("/handle/admin", noop); err != nil {
		t.Fatal(err)
	}
	if err := rt.Get("/handle/:name", noop); err != nil {
		t.Fatal(err)
	}

	if m := rt.Match("GET", "/handle/admin"); m.Pattern != "/handle/admin" {
		t.Errorf("literal registered first should win, got %q", m.Pattern)
	}
	if m := rt.Match("GET", "/handle/other"); m.Pattern != "/handle/:name" {
		t.Errorf("Pattern = %q, want /handle/:name", m.Pattern)
	}

	rt = NewRouter(noop)
	if err := rt.Get("/handle/:name", noop); err != nil {
		t.Fatal(err)
	}
	if err := rt.Get("/handle/admin", noop); err != nil {
		t.Fatal(err)
	}
	if m := rt.Match("GET", "/handle/admin"); m.Pattern != "/handle/:name" {
		t.Errorf("param registered first should win, got %q", m.Pattern)
	}
}

func TestRouterHandleErrors(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		pattern  string
	}{
		{"no leading slash", nil, "handle"},
		{"two named segments", nil, "/handle/:a/:b"},
		{"empty name", nil, "/handle/:"},
		{"empty segment", nil, "/handle//x"},
		{"duplicate", []string{"/handle"}, "/handle"},
		{"duplicate after normalization", []string{"/handle"}, "/handle/"},
		{"same shape different name", []string{"/handle/:name"}, "/handle/:id/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewRouter(noop)
			for _, p := range tt.existing {
				if err := rt.Get(p, noop); err != nil {
					t.Fatalf("Get(%q) error = %v", p, err)
				}
			}
			if err := rt.Get(tt.pattern, noop); err == nil {
				t.Errorf("Get(%q) should fail", tt.pattern)
			}
		})
	}
}

func TestRouterSamePatternDifferentMethods(t *testing.T) {
	rt := NewRouter(noop)
	if err := rt.Handle(http.MethodGet, "/handle", noop); err != nil {
		t.Fatal(err)
	}
	if err := rt.Handle(http.MethodPost, "/handle", noop); err != nil {
		t.Errorf("POST /handle should not conflict with GET /handle: %v", err)
	}
}

func TestRouterMountErrors(t *testing.T) {
	rt := NewRouter(noop)
	if err := rt.Mount("/", http.NotFoundHandler(), http.MethodGet); err == nil {
		t.Error("mounting the root should fail")
	}
	if err := rt.Mount("assets", http.NotFoundHandler(), http.MethodGet); err == nil {
		t.Error("mount without leading slash should fail")
	}
	if err := rt.Mount("/assets", http.NotFoundHandler(), http.MethodGet); err != nil {
		t.Fatal(err)
	}
	if err := rt.Mount("/assets/", http.NotFoundHandler(), http.MethodGet); err == nil {
		t.Error("duplicate mount should fail")
	}
}

func TestRouterServeHTTP(t *testing.T) {
	var gotParam Param
	var hit string

	rt := NewRouter(func(w http.ResponseWriter, r *http.Request, p Param) {
		hit = "notfound"
		gotParam = p
	})
	_ = rt.Get("/handle/:name", func(w http.ResponseWriter, r *http.Request, p Param) {
		hit = "handle"
		gotParam = p
	})

	rt.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/handle/carol/", nil))
	if hit != "handle" {
		t.Fatalf("hit = %q, want handle", hit)
	}
	if v, ok := gotParam.Get(); !ok || v != "carol" {
		t.Errorf("param = (%q, %v), want (carol, true)", v, ok)
	}

	rt.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/elsewhere", nil))
	if hit != "notfound" {
		t.Fatalf("hit = %q, want notfound", hit)
	}
	if _, ok := gotParam.Get(); ok {
		t.Error("not-found handler should receive an absent param")
	}
}

func TestParamOr(t *testing.T) {
	if got := (Param{}).Or("INCOGNITO"); got != "INCOGNITO" {
		t.Errorf("absent Or() = %q, want INCOGNITO", got)
	}
	if got := SomeParam("alice").Or("INCOGNITO"); got != "alice" {
		t.Errorf("present Or() = %q, want alice", got)
	}
	if got := SomeParam("").Or("INCOGNITO"); got != "" {
		t.Errorf("present empty Or() = %q, want empty", got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "/"},
		{"/", "/"},
		{"/handle", "/handle"},
		{"/handle/", "/handle"},
		{"/handle//", "/handle/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizePath(tt.input); got != tt.expected {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
