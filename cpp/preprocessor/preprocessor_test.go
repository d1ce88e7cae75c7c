package preprocessor

import (
	"strings"
	"testing"
)

func TestIncludedPaths(t *testing.T) {
	source := `#include <stdio.h>
#include "point.h"
#include
int x;
`
	p := New(source)
	p.Process()

	got := p.IncludedPaths()
	want := []string{"<stdio.h>", `"point.h"`}
	if len(got) != len(want) {
		t.Fatalf("IncludedPaths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IncludedPaths[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestProcessPreservesLineCount(t *testing.T) {
	source := "#include <stdio.h>\nint x;\n#define N 10\nint y;"
	processed := New(source).Process()

	if got, want := strings.Count(processed, "\n"), strings.Count(source, "\n"); got != want {
		t.Errorf("processed has %d newlines, want %d", got, want)
	}
	if strings.Contains(processed, "#include") || strings.Contains(processed, "#define") {
		t.Errorf("directives leaked into processed text: %q", processed)
	}
}

func TestObjectMacroExpansion(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "simple value",
			source: "#define SIZE 10\nint buffer[SIZE];",
			want:   "int buffer[10];",
		},
		{
			name:   "word boundary respected",
			source: "#define N 10\nint NUM = N;",
			want:   "int NUM = 10;",
		},
		{
			name:   "function-like macro left alone",
			source: "#define MAX(a, b) ((a) > (b) ? (a) : (b))\nint x = MAX(1, 2);",
			want:   "int x = MAX(1, 2);",
		},
		{
			name:   "empty replacement",
			source: "#define NORETURN\nNORETURN void f();",
			want:   " void f();",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processed := New(tt.source).Process()
			lines := strings.Split(processed, "\n")
			if got := lines[len(lines)-1]; got != tt.want {
				t.Errorf("last line = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	p := New("#define A 1\nint x = A;")
	first := p.Process()
	second := p.Process()
	if first != second {
		t.Errorf("Process not stable: %q then %q", first, second)
	}
	if len(p.IncludedPaths()) != 0 {
		t.Errorf("IncludedPaths = %v, want empty", p.IncludedPaths())
	}
}
