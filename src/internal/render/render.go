// Package render compiles HTML templates once and renders them with a flat
// string context.
//
// Escaping uses html/template's contextual auto-escaping: values placed in
// element text are HTML-escaped (< > & ' " +), values placed in URL
// attributes are URL-normalized and filtered. Context values are never
// trusted as markup.
//
// Rendering is strict: every key the template references must be present in
// the context, otherwise Render returns a *MissingVariableError.
package render

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"text/template/parse"
)

// Context maps template variable names to their values.
type Context map[string]string

// TemplateSyntaxError reports a template that cannot be compiled.
type TemplateSyntaxError struct {
	Name string
	Err  error
}

func (e *TemplateSyntaxError) Error() string {
	return fmt.Sprintf("template %q: %v", e.Name, e.Err)
}

func (e *TemplateSyntaxError) Unwrap() error {
	return e.Err
}

// MissingVariableError reports a referenced key absent from the context.
type MissingVariableError struct {
	Template string
	Key      string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template %q: missing variable %q", e.Template, e.Key)
}

// Template is an immutable compiled template, safe for concurrent Render.
type Template struct {
	name string
	tmpl *template.Template
	keys []string
}

// Compile parses source and verifies that it can be escaped and executed.
func Compile(name, source string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, &TemplateSyntaxError{Name: name, Err: err}
	}

	keys := referencedKeys(tmpl)

	// html/template escapes lazily on first execution; force it now so
	// context errors show up at compile time instead of on a request.
	probe := make(Context, len(keys))
	for _, k := range keys {
		probe[k] = ""
	}
	if err := tmpl.Execute(io.Discard, probe); err != nil {
		return nil, &TemplateSyntaxError{Name: name, Err: err}
	}

	return &Template{name: name, tmpl: tmpl, keys: keys}, nil
}

// MustCompile is like Compile but panics on error. Only for templates known
// at build time.
func MustCompile(name, source string) *Template {
	t, err := Compile(name, source)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) Name() string {
	return t.name
}

// Keys returns the sorted top-level keys the template references.
func (t *Template) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Render executes the template with ctx.
func (t *Template) Render(ctx Context) (string, error) {
	for _, k := range t.keys {
		if _, ok := ctx[k]; !ok {
			return "", &MissingVariableError{Template: t.name, Key: k}
		}
	}

	var b strings.Builder
	if err := t.tmpl.Execute(&b, ctx); err != nil {
		return "", fmt.Errorf("render %q: %w", t.name, err)
	}
	return b.String(), nil
}

// IsMissingVariable reports whether err is or wraps a *MissingVariableError.
func IsMissingVariable(err error) bool {
	var mv *MissingVariableError
	return errors.As(err, &mv)
}

// referencedKeys walks every parse tree and collects the first identifier
// of field chains evaluated against the root data (".name" and "$.name").
// Fields inside range/with bodies are relative to a different dot and are
// skipped.
func referencedKeys(tmpl *template.Template) []string {
	seen := make(map[string]struct{})
	for _, t := range tmpl.Templates() {
		if t.Tree == nil || t.Tree.Root == nil {
			continue
		}
		walk(t.Tree.Root, true, seen)
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func walk(node parse.Node, rootDot bool, seen map[string]struct{}) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			walk(c, rootDot, seen)
		}
	case *parse.ActionNode:
		walk(n.Pipe, rootDot, seen)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, cmd := range n.Cmds {
			walk(cmd, rootDot, seen)
		}
	case *parse.CommandNode:
		for _, arg := range n.Args {
			walk(arg, rootDot, seen)
		}
	case *parse.FieldNode:
		if rootDot && len(n.Ident) > 0 {
			seen[n.Ident[0]] = struct{}{}
		}
	case *parse.VariableNode:
		if len(n.Ident) > 1 && n.Ident[0] == "$" {
			seen[n.Ident[1]] = struct{}{}
		}
	case *parse.ChainNode:
		walk(n.Node, rootDot, seen)
	case *parse.IfNode:
		walk(n.Pipe, rootDot, seen)
		walk(n.List, rootDot, seen)
		walk(n.ElseList, rootDot, seen)
	case *parse.RangeNode:
		walk(n.Pipe, rootDot, seen)
		walk(n.List, false, seen)
		walk(n.ElseList, rootDot, seen)
	case *parse.WithNode:
		walk(n.Pipe, rootDot, seen)
		walk(n.List, false, seen)
		walk(n.ElseList, rootDot, seen)
	case *parse.TemplateNode:
		walk(n.Pipe, rootDot, seen)
	}
}
