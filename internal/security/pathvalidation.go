package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidSegment is returned for selector values that are not a single
// plain directory name.
var ErrInvalidSegment = errors.New("invalid path segment")

// ValidateSegment checks that s names exactly one entry of a directory: it must
// be non-empty, must not be "." or "..", and must not contain a separator.
func ValidateSegment(s string) error {
	switch {
	case s == "":
		return fmt.Errorf("%w: empty", ErrInvalidSegment)
	case s == "." || s == "..":
		return fmt.Errorf("%w: %q", ErrInvalidSegment, s)
	case strings.ContainsAny(s, `/\`+"\x00"):
		return fmt.Errorf("%w: %q contains a separator", ErrInvalidSegment, s)
	}
	return nil
}

// JoinWithin joins segments under root after validating each one, and checks
// lexically that the result stays inside root. It does not touch the disk, so
// it works for in-memory trees as well.
func JoinWithin(root string, segments ...string) (string, error) {
	for _, s := range segments {
		if err := ValidateSegment(s); err != nil {
			return "", err
		}
	}
	cleanRoot := filepath.Clean(root)
	joined := filepath.Join(append([]string{cleanRoot}, segments...)...)
	rel, err := filepath.Rel(cleanRoot, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %s attempts to escape %s", joined, root)
	}
	return joined, nil
}

// ValidatePathWithinDirectory checks if a file path is within a safe directory.
// Symlinks are resolved for whichever part of the path exists, so a link inside
// safeDir that points elsewhere is rejected.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	absSafeDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory path: %w", err)
	}

	canonicalPath := resolveExisting(absPath)

	canonicalSafeDir, err := filepath.EvalSymlinks(absSafeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory symlinks: %w", err)
	}

	relPath, err := filepath.Rel(canonicalSafeDir, canonicalPath)
	if err != nil {
		return fmt.Errorf("path is outside safe directory: %w", err)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) || filepath.IsAbs(relPath) {
		return fmt.Errorf("path traversal detected: %s attempts to escape %s", filePath, safeDir)
	}
	return nil
}

// resolveExisting evaluates symlinks on the longest existing prefix of p and
// re-appends the remainder.
func resolveExisting(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	for check := p; ; {
		parent := filepath.Dir(check)
		if parent == check {
			return p
		}
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			rel, _ := filepath.Rel(parent, p)
			return filepath.Join(resolved, rel)
		}
		check = parent
	}
}

// ValidateExportPath validates an output path for the export command. It must
// be within the temp directory or the current working directory.
func ValidateExportPath(filePath string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	for _, dir := range []string{os.TempDir(), cwd} {
		if err := ValidatePathWithinDirectory(filePath, dir); err == nil {
			return nil
		}
	}
	return fmt.Errorf("export path must be within %s or %s", os.TempDir(), cwd)
}

// SanitizeFilename makes a safe filename from an arbitrary string. Characters
// other than ASCII letters, digits, dot, underscore or dash become a single
// underscore and the result is capped at 128 bytes.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.', r == '_' && !lastUnderscore, r == '-':
			b.WriteRune(r)
			lastUnderscore = r == '_'
		case !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
