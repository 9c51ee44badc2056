package scaffold

import (
	"strings"
	"testing"
)

func TestSanitizePath(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"simple source file", "src/main.py", "src/main.py", true},
		{"nested path", "backend/app/api/routes.go", "backend/app/api/routes.go", true},
		{"leading slash stripped", "/src/index.ts", "src/index.ts", true},
		{"backslashes normalized", `src\components\App.tsx`, "src/components/App.tsx", true},
		{"double slashes collapsed", "src//main.py", "src/main.py", true},
		{"extensionless file", "Makefile", "Makefile", true},
		{"dockerfile", "Dockerfile", "Dockerfile", true},
		{"env example", ".env.example", ".env.example", true},
		{"gitignore", ".gitignore", ".gitignore", true},
		{"github workflow", ".github/workflows/ci.yml", ".github/workflows/ci.yml", true},

		{"traversal", "../../etc/passwd", "", false},
		{"embedded traversal", "src/../../../etc/shadow", "", false},
		{"home reference", "~/secrets.txt", "", false},
		{"git internals", ".git/config", "", false},
		{"node modules", "node_modules/pkg/index.js", "", false},
		{"pycache", "__pycache__/mod.pyc", "", false},
		{"vendor dir", "vendor/lib/code.go", "", false},
		{"unknown dotfile", ".ssh/id_rsa", "", false},
		{"disallowed extension", "payload.exe", "", false},
		{"shared object", "lib/native.so", "", false},
		{"empty", "", "", false},
		{"only slashes", "///", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SanitizePath(tc.in)
			if ok != tc.ok {
				t.Fatalf("SanitizePath(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			}
			if got != tc.want {
				t.Errorf("SanitizePath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizePathLength(t *testing.T) {
	long := "src/" + strings.Repeat("a", maxPathLen) + ".py"
	_, ok := SanitizePath(long)
	if ok {
		t.Error("Expected over-long path to be rejected")
	}
}

func TestEnforceBudget(t *testing.T) {
	files := []GeneratedFile{
		{Path: "a.py", Content: strings.Repeat("x", 100)},
		{Path: "b.py", Content: strings.Repeat("x", 200)},
		{Path: "c.py", Content: strings.Repeat("x", 300)},
	}

	kept := EnforceBudget(files, 350)
	if len(kept) != 2 {
		t.Fatalf("Expected 2 files kept, got %d", len(kept))
	}
	if kept[0].Path != "a.py" || kept[1].Path != "b.py" {
		t.Errorf("Expected prefix [a.py b.py], got %v", kept)
	}
}

func TestEnforceBudgetAllFit(t *testing.T) {
	files := []GeneratedFile{
		{Path: "a.py", Content: "small"},
		{Path: "b.py", Content: "tiny"},
	}

	kept := EnforceBudget(files, MaxContentBytes)
	if len(kept) != 2 {
		t.Errorf("Expected all files kept, got %d", len(kept))
	}
}

func TestEnforceBudgetEmpty(t *testing.T) {
	kept := EnforceBudget(nil, MaxContentBytes)
	if len(kept) != 0 {
		t.Errorf("Expected no files, got %d", len(kept))
	}
}
