package genesis

import (
	"fmt"
	"sync"
)

// MembershipFunc supplies the signer membership for vaults the diff inserts.
type MembershipFunc func() []any

// OnceMembership wraps load so it runs at most once. A nil result from load
// is treated as an empty membership.
func OnceMembership(load func() []any) MembershipFunc {
	return sync.OnceValue(func() []any {
		if m := load(); m != nil {
			return m
		}
		return []any{}
	})
}

// Vaults merges app_state.thorchain.vaults by pub_key. The membership of an
// existing vault is never taken from the diff; new vaults get the membership
// returned by membership.
func Vaults(membership MembershipFunc) Section {
	if membership == nil {
		membership = func() []any { return []any{} }
	}
	return &keyedList{
		name:   "vaults",
		module: "thorchain",
		path:   []string{"thorchain", "vaults"},
		key:    FieldKey("pub_key"),
		replace: func(existing, incoming map[string]any) map[string]any {
			merged := cloneObject(incoming)
			kept := existing["membership"]
			if kept == nil {
				kept = []any{}
			}
			merged["membership"] = kept
			return merged
		},
		insert: func(incoming map[string]any) map[string]any {
			merged := cloneObject(incoming)
			merged["membership"] = deepCopy(membership())
			return merged
		},
	}
}

// DecodeMembership parses a membership document, a JSON array of opaque
// signer identities.
func DecodeMembership(data []byte) ([]any, error) {
	v, err := decodeValue(data)
	if err != nil {
		return nil, err
	}
	members, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %T", v)
	}
	return members, nil
}
