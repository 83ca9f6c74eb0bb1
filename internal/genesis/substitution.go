package genesis

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrMultilineBlock is returned when a module block of the original genesis
// spans lines, which a line oriented stream editor cannot match.
var ErrMultilineBlock = errors.New("module block spans multiple lines")

// Substitutions renders one sed substitution command per changed module. The
// pattern matches the module block byte for byte as it appears in original,
// whitespace after the key included, and the replacement is the module as it
// now stands in genesis. A module missing from original is spliced in at the
// start of app_state.
func Substitutions(original []byte, genesis Document, changes ChangeSet) ([]string, error) {
	appState := genesis.AppState()
	lines := make([]string, 0, changes.Len())
	for _, module := range changes.Modules() {
		encoded, err := Encode(appState[module])
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", module, err)
		}
		key := `"` + module + `":`
		replacement := EscapeReplacement(key + string(encoded))

		block := gjson.GetBytes(original, "app_state."+module)
		if !block.Exists() {
			opening := `"app_state":{`
			if parent := gjson.GetBytes(original, "app_state"); parent.IsObject() {
				if start, ok := keyStart(original, "app_state", parent); ok {
					opening = string(original[start : parent.Index+1])
				}
			}
			if strings.ContainsAny(opening, "\r\n") {
				return nil, fmt.Errorf("%w: app_state", ErrMultilineBlock)
			}
			lines = append(lines, fmt.Sprintf("s/%s/%s%s,/", EscapePattern(opening), EscapeReplacement(opening), replacement))
			continue
		}

		matched := key + block.Raw
		if start, ok := keyStart(original, module, block); ok {
			matched = string(original[start : block.Index+len(block.Raw)])
		}
		if strings.ContainsAny(matched, "\r\n") {
			return nil, fmt.Errorf("%w: %s", ErrMultilineBlock, module)
		}
		lines = append(lines, fmt.Sprintf("s/%s/%s/", EscapePattern(matched), replacement))
	}
	return lines, nil
}

// keyStart returns the offset in original of the quoted key whose value is
// value. Only whitespace and the colon may separate the two.
func keyStart(original []byte, key string, value gjson.Result) (int, bool) {
	if value.Index <= 0 || value.Index+len(value.Raw) > len(original) {
		return 0, false
	}
	quoted := []byte(`"` + key + `"`)
	start := bytes.LastIndex(original[:value.Index], quoted)
	if start < 0 {
		return 0, false
	}
	if between := bytes.TrimSpace(original[start+len(quoted) : value.Index]); string(between) != ":" {
		return 0, false
	}
	return start, true
}

var (
	patternEscaper     = strings.NewReplacer(`\`, `\\`, `/`, `\/`, `.`, `\.`, `*`, `\*`, `[`, `\[`, `]`, `\]`, `^`, `\^`, `$`, `\$`)
	replacementEscaper = strings.NewReplacer(`\`, `\\`, `/`, `\/`, `&`, `\&`)
)

// EscapePattern escapes s for literal use in a basic regular expression
// delimited by '/'.
func EscapePattern(s string) string { return patternEscaper.Replace(s) }

// EscapeReplacement escapes s for use as the replacement of a '/' delimited
// sed substitution.
func EscapeReplacement(s string) string { return replacementEscaper.Replace(s) }
