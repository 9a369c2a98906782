// Package expand performs the small subset of shell expansion used in
// oci-run config values: a leading tilde plus $VAR, ${VAR} and ${VAR:-default}.
package expand

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnset is returned when a referenced variable is not defined and has no default.
var ErrUnset = errors.New("environment variable not found")

// ErrSyntax is returned for malformed ${...} references.
var ErrSyntax = errors.New("bad substitution")

// Expand expands a leading "~" and environment variable references in value.
func Expand(value string) (string, error) {
	if value == "" {
		return value, nil
	}
	value, err := expandTilde(value)
	if err != nil {
		return "", err
	}
	if err := checkBraces(value); err != nil {
		return "", fmt.Errorf("expand %q: %w", value, err)
	}
	var missing string
	out := os.Expand(value, func(key string) string {
		if missing != "" {
			return ""
		}
		name, def, hasDefault := strings.Cut(key, ":-")
		if name == "$" {
			return "$"
		}
		if val, ok := lookupEnv(name); ok && (val != "" || !hasDefault) {
			return val
		}
		if hasDefault {
			return def
		}
		missing = name
		return ""
	})
	if missing != "" {
		return "", fmt.Errorf("expand %q: %w: %s", value, ErrUnset, missing)
	}
	return out, nil
}

// ExpandAll expands every entry of values, stopping at the first error.
func ExpandAll(values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		expanded, err := Expand(v)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}

// checkBraces rejects "${" without a closing brace and references with an
// empty name, both of which os.Expand would silently rewrite.
func checkBraces(value string) error {
	for i := 0; i < len(value)-1; i++ {
		if value[i] != '$' {
			continue
		}
		switch value[i+1] {
		case '$':
			i++
		case '{':
			end := strings.IndexByte(value[i+2:], '}')
			if end < 0 {
				return fmt.Errorf("%w: unterminated %q", ErrSyntax, value[i:])
			}
			ref := value[i+2 : i+2+end]
			if name, _, _ := strings.Cut(ref, ":-"); name == "" {
				return fmt.Errorf("%w: empty name in %q", ErrSyntax, "${"+ref+"}")
			}
			i += 2 + end
		}
	}
	return nil
}

func expandTilde(value string) (string, error) {
	if value != "~" && !strings.HasPrefix(value, "~/") {
		return value, nil
	}
	home, err := homeDir()
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", value, err)
	}
	return home + strings.TrimPrefix(value, "~"), nil
}

func homeDir() (string, error) {
	if home, ok := os.LookupEnv("HOME"); ok && home != "" {
		return home, nil
	}
	return os.UserHomeDir()
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}
