package genesis

import "encoding/json"

// Section merges a patch list into one list of the genesis document.
type Section interface {
	// Name identifies the section in logs and metrics, e.g. "pools".
	Name() string
	// Module is the app_state module the list belongs to, e.g. "thorchain".
	Module() string
	// Path locates the list below app_state.
	Path() []string
	// Merge folds patch into current and returns the resulting list.
	Merge(current, patch []any) MergeResult
}

// MergeResult describes the outcome of a single Section.Merge call.
type MergeResult struct {
	Entries  []any
	Replaced int
	Appended int
	Changed  bool
}

// KeyFunc extracts the identity of an entry. The second result is false when
// the entry carries no usable identity.
type KeyFunc func(entry map[string]any) (string, bool)

// FieldKey identifies entries by a string or numeric field. Numbers and
// strings with the same text share an identity, so code_id 5 matches "5".
func FieldKey(field string) KeyFunc {
	return func(entry map[string]any) (string, bool) {
		switch v := entry[field].(type) {
		case string:
			return v, true
		case json.Number:
			return v.String(), true
		case float64, int, int64:
			text, _ := CanonicalAmount(v)
			return text, true
		}
		return "", false
	}
}

// keyedList is the default Section: an entry whose key matches an existing
// one replaces it wholesale, anything else is appended in patch order.
type keyedList struct {
	name   string
	module string
	path   []string
	key    KeyFunc

	// replace builds the stored entry when incoming matches existing.
	replace func(existing, incoming map[string]any) map[string]any
	// insert builds the stored entry for an incoming entry with a new key.
	insert func(incoming map[string]any) map[string]any
}

var _ Section = (*keyedList)(nil)

func (s *keyedList) Name() string   { return s.name }
func (s *keyedList) Module() string { return s.module }
func (s *keyedList) Path() []string { return s.path }

func (s *keyedList) Merge(current, patch []any) MergeResult {
	entries := objects(current)
	index := make(map[string]int, len(entries))
	for i, entry := range entries {
		if k, ok := s.key(entry); ok {
			if _, seen := index[k]; !seen {
				index[k] = i
			}
		}
	}

	result := MergeResult{Entries: make([]any, 0, len(entries)+len(patch))}
	for _, entry := range entries {
		result.Entries = append(result.Entries, entry)
	}
	for _, incoming := range objects(patch) {
		k, ok := s.key(incoming)
		if pos, found := index[k]; ok && found {
			existing := result.Entries[pos].(map[string]any)
			result.Entries[pos] = s.replaceEntry(existing, incoming)
			result.Replaced++
		} else {
			if ok {
				index[k] = len(result.Entries)
			}
			result.Entries = append(result.Entries, s.insertEntry(incoming))
			result.Appended++
		}
		result.Changed = true
	}
	return result
}

func (s *keyedList) replaceEntry(existing, incoming map[string]any) map[string]any {
	if s.replace == nil {
		return incoming
	}
	return s.replace(existing, incoming)
}

func (s *keyedList) insertEntry(incoming map[string]any) map[string]any {
	if s.insert == nil {
		return incoming
	}
	return s.insert(incoming)
}

// Accounts merges app_state.auth.accounts by account_number.
func Accounts() Section {
	return &keyedList{name: "accounts", module: "auth", path: []string{"auth", "accounts"}, key: FieldKey("account_number")}
}

// Mimirs merges app_state.thorchain.mimirs by key.
func Mimirs() Section {
	return &keyedList{name: "mimirs", module: "thorchain", path: []string{"thorchain", "mimirs"}, key: FieldKey("key")}
}

// Pools merges app_state.thorchain.pools by asset.
func Pools() Section {
	return &keyedList{name: "pools", module: "thorchain", path: []string{"thorchain", "pools"}, key: FieldKey("asset")}
}

// Codes merges app_state.wasm.codes by code_id.
func Codes() Section {
	return &keyedList{name: "codes", module: "wasm", path: []string{"wasm", "codes"}, key: FieldKey("code_id")}
}
