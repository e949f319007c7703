package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// resolveFormat picks the flag value, then the configured value, then yaml
// for terminals and json for everything else.
func resolveFormat(w io.Writer, flag, configured string) (string, error) {
	for _, candidate := range []string{flag, configured} {
		switch strings.ToLower(strings.TrimSpace(candidate)) {
		case "":
			continue
		case formatJSON:
			return formatJSON, nil
		case formatYAML:
			return formatYAML, nil
		default:
			return "", fmt.Errorf("output must be json or yaml, got %q", candidate)
		}
	}

	if isTerminal(w) {
		return formatYAML, nil
	}
	return formatJSON, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeOutput(w io.Writer, format string, v any) error {
	if format != formatYAML {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	// API types only carry json tags; going through JSON keeps the key names.
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}
