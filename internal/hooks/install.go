package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Names are the hooks ticketprefix can manage
var Names = []string{"commit-msg", "prepare-commit-msg", "pre-push"}

func markerStart(name string) string {
	return "# >>> ticketprefix " + name + " hook >>>"
}

func markerEnd(name string) string {
	return "# <<< ticketprefix " + name + " hook <<<"
}

// IsKnown reports whether name is a hook ticketprefix can run
func IsKnown(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Path returns where hook name lives inside gitDir
func Path(gitDir, name string) string {
	return filepath.Join(gitDir, "hooks", name)
}

func generateSection(name string) string {
	var b strings.Builder
	b.WriteString(markerStart(name) + "\n")
	b.WriteString("# Managed by ticketprefix. Edit outside the markers only.\n")
	b.WriteString("if command -v ticketprefix >/dev/null 2>&1; then\n")
	b.WriteString("  ticketprefix hook run " + name + " \"$@\" || exit $?\n")
	b.WriteString("fi\n")
	b.WriteString(markerEnd(name) + "\n")
	return b.String()
}

// replaceSection swaps the managed section in existing, or appends it
func replaceSection(existing, name, section string) string {
	start := strings.Index(existing, markerStart(name))
	end := strings.Index(existing, markerEnd(name))

	if start == -1 || end == -1 || start > end {
		result := existing
		if !strings.HasSuffix(result, "\n") {
			result += "\n"
		}
		return result + section
	}

	end += len(markerEnd(name))
	if end < len(existing) && existing[end] == '\n' {
		end++
	}
	return existing[:start] + section + existing[end:]
}

// removeSection drops the managed section. The bool is false when there was none.
func removeSection(content, name string) (string, bool) {
	start := strings.Index(content, markerStart(name))
	end := strings.Index(content, markerEnd(name))
	if start == -1 || end == -1 || start > end {
		return content, false
	}

	end += len(markerEnd(name))
	if end < len(content) && content[end] == '\n' {
		end++
	}
	return content[:start] + content[end:], true
}

// Install writes or refreshes the managed section of each hook. Existing
// hook content outside the markers is kept.
func Install(gitDir string, names []string) ([]string, error) {
	var installed []string
	for _, name := range names {
		if !IsKnown(name) {
			return installed, fmt.Errorf("unknown hook %q (known: %s)", name, strings.Join(Names, ", "))
		}
		path := Path(gitDir, name)

		existing, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return installed, fmt.Errorf("reading hook %s: %w", name, err)
		}

		var content string
		if len(existing) == 0 {
			content = "#!/bin/sh\n" + generateSection(name)
		} else {
			content = replaceSection(string(existing), name, generateSection(name))
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return installed, fmt.Errorf("creating hooks directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
			return installed, fmt.Errorf("writing hook %s: %w", name, err)
		}
		installed = append(installed, path)
	}
	return installed, nil
}

// Uninstall removes the managed section of each hook, deleting hook files
// that are left with nothing but a shebang.
func Uninstall(gitDir string, names []string) ([]string, error) {
	var removed []string
	for _, name := range names {
		if !IsKnown(name) {
			return removed, fmt.Errorf("unknown hook %q (known: %s)", name, strings.Join(Names, ", "))
		}
		path := Path(gitDir, name)

		existing, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("reading hook %s: %w", name, err)
		}

		content, found := removeSection(string(existing), name)
		if !found {
			continue
		}

		trimmed := strings.TrimSpace(content)
		if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
			if err := os.Remove(path); err != nil {
				return removed, fmt.Errorf("removing hook %s: %w", name, err)
			}
		} else if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
			return removed, fmt.Errorf("writing hook %s: %w", name, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
