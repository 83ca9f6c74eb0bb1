package genesis

import (
	"encoding/json"
	"reflect"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func pool(asset string, depth any) map[string]any {
	return map[string]any{"asset": asset, "balance_rune": depth}
}

func TestKeyedListMerge(t *testing.T) {
	current := []any{pool("BTC.BTC", "1"), "garbage", pool("ETH.ETH", "2"), pool("BTC.BTC", "3")}
	patch := []any{pool("ETH.ETH", "20"), 17, pool("DOGE.DOGE", "4"), map[string]any{"balance_rune": "5"}}

	result := Pools().Merge(current, patch)

	require.True(t, result.Changed)
	require.Equal(t, 1, result.Replaced)
	require.Equal(t, 2, result.Appended)
	require.Equal(t, []any{
		pool("BTC.BTC", "1"),
		pool("ETH.ETH", "20"),
		pool("BTC.BTC", "3"),
		pool("DOGE.DOGE", "4"),
		map[string]any{"balance_rune": "5"},
	}, result.Entries)
}

func TestKeyedListMergeEmptyPatch(t *testing.T) {
	result := Mimirs().Merge([]any{map[string]any{"key": "HALTCHAINGLOBAL", "value": json.Number("1")}}, []any{})
	require.False(t, result.Changed)
	require.Len(t, result.Entries, 1)
}

func TestFieldKeyMatchesNumbersAndStrings(t *testing.T) {
	current := []any{map[string]any{"code_id": "5", "code_bytes": "old"}}
	patch := []any{map[string]any{"code_id": json.Number("5"), "code_bytes": "new"}}

	result := Codes().Merge(current, patch)

	require.Equal(t, 1, result.Replaced)
	require.Equal(t, []any{patch[0]}, result.Entries)
}

func TestKeyedListProperties(t *testing.T) {
	entries := func(keys []int, tag string) []any {
		out := make([]any, 0, len(keys))
		for i, k := range keys {
			out = append(out, map[string]any{"asset": strconv.Itoa(k), "tag": tag + strconv.Itoa(i)})
		}
		return out
	}
	unique := func(keys []int) []int {
		seen := make(map[int]bool)
		var out []int
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
		return out
	}

	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("keys are unique and ordered current-first", prop.ForAll(
		func(currentKeys, patchKeys []int) bool {
			result := Pools().Merge(entries(unique(currentKeys), "c"), entries(patchKeys, "p"))
			var got []int
			for _, entry := range result.Entries {
				k, _ := strconv.Atoi(entry.(map[string]any)["asset"].(string))
				got = append(got, k)
			}
			want := unique(append(unique(currentKeys), patchKeys...))
			return reflect.DeepEqual(got, want)
		},
		gen.SliceOf(gen.IntRange(0, 9)),
		gen.SliceOf(gen.IntRange(0, 9)),
	))

	properties.Property("reapplying a patch is idempotent", prop.ForAll(
		func(currentKeys, patchKeys []int) bool {
			patch := entries(patchKeys, "p")
			once := Pools().Merge(entries(unique(currentKeys), "c"), patch)
			twice := Pools().Merge(once.Entries, patch)
			return reflect.DeepEqual(once.Entries, twice.Entries)
		},
		gen.SliceOf(gen.IntRange(0, 9)),
		gen.SliceOf(gen.IntRange(0, 9)),
	))

	properties.TestingRun(t)
}

func balance(address string, coins ...string) map[string]any {
	list := make([]any, 0, len(coins)/2)
	for i := 0; i+1 < len(coins); i += 2 {
		list = append(list, map[string]any{"denom": coins[i], "amount": coins[i+1]})
	}
	return map[string]any{"address": address, "coins": list}
}

func TestBalancesMergeByDenom(t *testing.T) {
	current := []any{balance("A", "y", "3"), balance("B", "rune", "1")}
	patch := []any{balance("A", "x", "5"), balance("C", "rune", "9")}

	result := Balances().Merge(current, patch)

	require.True(t, result.Changed)
	require.Equal(t, 1, result.Replaced)
	require.Equal(t, 1, result.Appended)
	require.Equal(t, []any{
		balance("A", "y", "3", "x", "5"),
		balance("B", "rune", "1"),
		balance("C", "rune", "9"),
	}, result.Entries)
}

func TestBalancesMergeOverwritesDenomAndSkipsMalformed(t *testing.T) {
	current := []any{
		balance("A", "rune", "3"),
		balance("", "rune", "100"),
		"garbage",
		balance("A", "eth", "1"),
	}
	patch := []any{
		balance("A", "rune", "4"),
		map[string]any{"coins": []any{map[string]any{"denom": "rune", "amount": "8"}}},
		map[string]any{"address": "A", "coins": []any{map[string]any{"denom": "btc"}, 5}},
	}

	result := Balances().Merge(current, patch)

	require.Equal(t, []any{balance("A", "rune", "4", "eth", "1")}, result.Entries)
}

func TestBalancesMergeWithoutCoinsIsUnchanged(t *testing.T) {
	current := []any{balance("A", "rune", "3")}
	result := Balances().Merge(current, []any{map[string]any{"address": "B"}})

	require.False(t, result.Changed)
	require.Equal(t, current, result.Entries)
}

func TestVaultsKeepExistingMembership(t *testing.T) {
	loads := 0
	membership := OnceMembership(func() []any {
		loads++
		return []any{"pubA", "pubB"}
	})
	current := []any{
		map[string]any{"pub_key": "v1", "status": "ActiveVault", "membership": []any{"old"}},
		map[string]any{"pub_key": "v2", "status": "ActiveVault"},
	}
	patch := []any{
		map[string]any{"pub_key": "v1", "status": "RetiringVault", "membership": []any{"evil"}},
		map[string]any{"pub_key": "v2", "status": "RetiringVault"},
		map[string]any{"pub_key": "v3", "status": "ActiveVault", "membership": []any{"ignored"}},
		map[string]any{"pub_key": "v4"},
	}

	result := Vaults(membership).Merge(current, patch)

	require.Equal(t, 2, result.Replaced)
	require.Equal(t, 2, result.Appended)
	require.Equal(t, []any{
		map[string]any{"pub_key": "v1", "status": "RetiringVault", "membership": []any{"old"}},
		map[string]any{"pub_key": "v2", "status": "RetiringVault", "membership": []any{}},
		map[string]any{"pub_key": "v3", "status": "ActiveVault", "membership": []any{"pubA", "pubB"}},
		map[string]any{"pub_key": "v4", "membership": []any{"pubA", "pubB"}},
	}, result.Entries)
	require.Equal(t, 1, loads)
	require.Equal(t, []any{"evil"}, patch[0].(map[string]any)["membership"], "patch entries are not mutated")
}

func TestVaultsWithoutMembershipSource(t *testing.T) {
	result := Vaults(nil).Merge(nil, []any{map[string]any{"pub_key": "v1"}})
	require.Equal(t, []any{map[string]any{"pub_key": "v1", "membership": []any{}}}, result.Entries)
}

func TestContractsSanitiseContractInfo(t *testing.T) {
	current := []any{map[string]any{"contract_address": "c1", "contract_state": []any{}}}
	patch := []any{
		map[string]any{
			"contract_address": "c1",
			"contract_info": map[string]any{
				"code_id":     "1",
				"contract":    "AGFzbQ==",
				"admin":       `"thor1admin"`,
				"ibc_port_id": `{"port":1}`,
			},
		},
		map[string]any{"contract_address": "c2", "contract_info": map[string]any{"admin": json.Number("3")}},
	}

	result := Contracts().Merge(current, patch)

	require.Equal(t, []any{
		map[string]any{
			"contract_address": "c1",
			"contract_info":    map[string]any{"code_id": "1", "admin": "thor1admin", "ibc_port_id": ""},
		},
		map[string]any{"contract_address": "c2", "contract_info": map[string]any{"admin": ""}},
	}, result.Entries)
}

func TestSanitizeContractIsIdempotent(t *testing.T) {
	contract := map[string]any{"contract_info": map[string]any{"admin": `"thor1"`, "contract": "blob"}}

	require.True(t, SanitizeContract(contract))
	require.False(t, SanitizeContract(contract))
	require.Equal(t, map[string]any{"admin": "thor1"}, contract["contract_info"])
	require.False(t, SanitizeContract(map[string]any{"contract_address": "c"}))
}
