package scaffold

import (
	"strings"
)

const (
	// MaxContentBytes caps the cumulative UTF-8 size of all generated file
	// contents in one scaffold (512 KiB).
	MaxContentBytes = 512 * 1024
	// maxPathLen rejects absurdly long generated paths.
	maxPathLen = 300
)

// allowedExtensions is the whitelist of file extensions permitted in a
// generated scaffold. Extensionless filenames (Makefile, Dockerfile) pass.
var allowedExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".go": true, ".rs": true, ".java": true, ".kt": true,
	".html": true, ".css": true, ".scss": true, ".json": true,
	".yaml": true, ".yml": true, ".toml": true, ".cfg": true,
	".md": true, ".txt": true, ".sql": true, ".sh": true, ".bash": true,
	".dockerfile": true, ".env": true, ".gitignore": true,
	".dockerignore": true, ".editorconfig": true, ".prettierrc": true,
	".eslintrc": true, ".ini": true, ".lock": true, ".xml": true,
	".gradle": true, ".properties": true, ".example": true, ".tmpl": true,
}

// allowedDotNames is the small allow-list of known-safe dotfile and
// dot-directory segment names.
var allowedDotNames = map[string]bool{
	".env": true, ".env.example": true, ".gitignore": true,
	".dockerignore": true, ".editorconfig": true, ".prettierrc": true,
	".eslintrc": true, ".github": true,
}

// forbiddenSegments blocks traversal, home references, version-control
// folders, and dependency caches.
var forbiddenSegments = map[string]bool{
	"..": true, "~": true, ".git": true,
	"node_modules": true, "__pycache__": true,
	"vendor": true, "target": true,
}

// GeneratedFile is one file in a scaffolded repository, already past the
// path filter.
type GeneratedFile struct {
	Path        string `json:"path"`
	Content     string `json:"content"`
	Language    string `json:"language"`
	Description string `json:"description"`
}

// SanitizePath validates a model-proposed file path against traversal and
// extension rules. It returns the rejoined forward-slash relative path, or
// ok=false on any rejection.
func SanitizePath(raw string) (clean string, ok bool) {
	path := strings.TrimSpace(raw)
	path = strings.TrimLeft(path, "/\\")
	if path == "" || len(path) > maxPathLen {
		return clean, false
	}

	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(parts) == 0 {
		return clean, false
	}

	for _, part := range parts {
		if forbiddenSegments[part] {
			return clean, false
		}
		if strings.HasPrefix(part, ".") && !allowedDotNames[part] {
			return clean, false
		}
	}

	// Enforce the extension whitelist on the final segment. Extensionless
	// filenames such as Makefile or Dockerfile pass through.
	filename := parts[len(parts)-1]
	if idx := strings.LastIndex(filename, "."); idx > 0 {
		ext := strings.ToLower(filename[idx:])
		if !allowedExtensions[ext] && !allowedDotNames[filename] {
			return clean, false
		}
	}

	clean = strings.Join(parts, "/")
	ok = true
	return clean, ok
}

// EnforceBudget accepts candidate files in order until the cumulative
// content size would exceed maxBytes. The file that would overflow, and
// every file after it, are dropped; files already accepted are kept. Order
// is preserved, making the result deterministic for a given input.
func EnforceBudget(files []GeneratedFile, maxBytes int) (kept []GeneratedFile) {
	kept = make([]GeneratedFile, 0, len(files))
	total := 0
	for _, f := range files {
		size := len(f.Content)
		if total+size > maxBytes {
			break
		}
		total += size
		kept = append(kept, f)
	}
	return kept
}
