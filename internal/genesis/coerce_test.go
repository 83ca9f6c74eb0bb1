package genesis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoerceLists(t *testing.T) {
	appState := map[string]any{
		"thorchain": map[string]any{
			"pools":         nil,
			"mimirs":        []any{map[string]any{"key": "K"}},
			"node_accounts": "[]",
		},
	}

	Coerce(appState)

	tc := appState["thorchain"].(map[string]any)
	for _, field := range thorchainLists {
		require.IsType(t, []any{}, tc[field], field)
	}
	require.Empty(t, tc["pools"])
	require.Empty(t, tc["node_accounts"])
	require.Len(t, tc["mimirs"], 1)
}

func TestCoerceWithoutThorchain(t *testing.T) {
	appState := map[string]any{"bank": map[string]any{"balances": []any{}}}
	Coerce(appState)
	require.NotContains(t, appState, "thorchain")
}

func TestCoerceNested(t *testing.T) {
	appState := map[string]any{
		"thorchain": map[string]any{
			"vaults": []any{
				map[string]any{"pub_key": "a", "membership": `["m1","m2"]`},
				map[string]any{"pub_key": "b", "membership": `{"m":1}`},
				map[string]any{"pub_key": "c", "membership": "m1,m2"},
				map[string]any{"pub_key": "d", "membership": json.Number("4")},
				map[string]any{"pub_key": "e"},
				map[string]any{"pub_key": "f", "membership": []any{"keep"}},
			},
			"observed_tx_in_voters": []any{
				map[string]any{"tx_id": "1", "txs": ` [{"id":"x"}] `},
				map[string]any{"tx_id": "2", "txs": "[broken"},
			},
			"observed_tx_out_voters": []any{
				map[string]any{"tx_id": "3", "txs": nil},
			},
			"pools": []any{
				map[string]any{
					"asset":               "BTC.BTC",
					"pending_inbound_tx":  `[{"hash":"h"}]`,
					"pending_outbound_tx": nil,
					"pending_liquidity":   true,
				},
			},
		},
	}

	Coerce(appState)

	tc := appState["thorchain"].(map[string]any)
	vaults := tc["vaults"].([]any)
	require.Equal(t, []any{"m1", "m2"}, vaults[0].(map[string]any)["membership"])
	for _, i := range []int{1, 2, 3, 4} {
		require.Equal(t, []any{}, vaults[i].(map[string]any)["membership"], i)
	}
	require.Equal(t, []any{"keep"}, vaults[5].(map[string]any)["membership"])

	in := tc["observed_tx_in_voters"].([]any)
	require.Equal(t, []any{map[string]any{"id": "x"}}, in[0].(map[string]any)["txs"])
	require.Equal(t, []any{}, in[1].(map[string]any)["txs"])
	require.Equal(t, []any{}, tc["observed_tx_out_voters"].([]any)[0].(map[string]any)["txs"])

	p := tc["pools"].([]any)[0].(map[string]any)
	require.Equal(t, []any{map[string]any{"hash": "h"}}, p["pending_inbound_tx"])
	require.Nil(t, p["pending_outbound_tx"])
	require.Equal(t, []any{}, p["pending_liquidity"])
}

func TestCoerceRestringifiesAfterDestringify(t *testing.T) {
	appState := map[string]any{
		"thorchain": map[string]any{
			"pools": []any{map[string]any{"asset": "BTC.BTC", "balance_rune": `"100"`, "LP_units": json.Number("5.0")}},
		},
		"bank": map[string]any{
			"balances": []any{balance("A", "rune", "7")},
		},
	}
	appState["bank"].(map[string]any)["balances"].([]any)[0].(map[string]any)["coins"].([]any)[0].(map[string]any)["amount"] = json.Number("7.0")

	Coerce(appState)

	p := appState["thorchain"].(map[string]any)["pools"].([]any)[0].(map[string]any)
	require.Equal(t, "100", p["balance_rune"])
	require.Equal(t, "5", p["LP_units"])
	require.Equal(t, []any{balance("A", "rune", "7")}, appState["bank"].(map[string]any)["balances"])
}
