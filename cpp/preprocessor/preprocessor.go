// Package preprocessor performs the minimal preprocessing the completion
// engine needs: it collects raw #include directives and expands object-like
// #define macros. Directive lines are blanked rather than removed, so line
// numbers in the processed text match the original source.
package preprocessor

import (
	"regexp"
	"strings"
)

type definition struct {
	name    string
	value   string
	pattern *regexp.Regexp
}

type Preprocessor struct {
	source      string
	definitions []definition
	includes    []string
	processed   string
	done        bool
}

func New(source string) *Preprocessor {
	return &Preprocessor{source: source}
}

// Process returns the macro-expanded text. Columns on lines containing a
// macro shift with the expansion; line numbers never do.
func (p *Preprocessor) Process() string {
	if p.done {
		return p.processed
	}
	lines := strings.Split(p.source, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			p.handleDirective(trimmed)
			out[i] = ""
			continue
		}
		out[i] = p.substitute(line)
	}
	p.processed = strings.Join(out, "\n")
	p.done = true
	return p.processed
}

// IncludedPaths returns the raw include directives, as written in the source
// (e.g. `<stdio.h>` or `"point.h"`), in order of appearance. Only meaningful
// after Process.
func (p *Preprocessor) IncludedPaths() []string {
	p.Process()
	return p.includes
}

func (p *Preprocessor) handleDirective(line string) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	name, arguments, _ := strings.Cut(rest, " ")
	arguments = strings.TrimSpace(arguments)
	switch name {
	case "include":
		if arguments != "" {
			p.includes = append(p.includes, arguments)
		}
	case "define":
		p.define(arguments)
	}
}

func (p *Preprocessor) define(arguments string) {
	name, value, _ := strings.Cut(arguments, " ")
	if name == "" {
		return
	}
	// Function-like macros are recorded nowhere: expanding them correctly
	// needs argument substitution, and a wrong expansion is worse for
	// completion than none.
	if strings.Contains(name, "(") {
		return
	}
	p.definitions = append(p.definitions, definition{
		name:    name,
		value:   strings.TrimSpace(value),
		pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`),
	})
}

func (p *Preprocessor) substitute(line string) string {
	for _, def := range p.definitions {
		line = def.pattern.ReplaceAllString(line, def.value)
	}
	return line
}
