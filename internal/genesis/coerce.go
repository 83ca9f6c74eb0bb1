package genesis

import "strings"

// thorchainLists are the thorchain genesis fields that must always be arrays.
var thorchainLists = []string{
	"pools",
	"liquidity_providers",
	"observed_tx_in_voters",
	"observed_tx_out_voters",
	"tx_outs",
	"node_accounts",
	"vaults",
	"reserve_contributors",
	"last_chain_heights",
	"adv_swap_queue_items",
	"network_fees",
	"chain_contracts",
	"THORNames",
	"mimirs",
	"bond_providers",
	"loans",
	"streaming_swaps",
	"swap_queue_items",
	"swapper_clout",
	"trade_accounts",
	"trade_units",
	"outbound_fee_withheld_rune",
	"outbound_fee_spent_rune",
	"rune_providers",
	"secured_assets",
	"nodeMimirs",
	"loan_total_collateral",
	"affiliate_collectors",
	"tcy_claimers",
	"tcy_stakers",
}

// pendingPoolFields are the pool fields holding lists of pending work.
var pendingPoolFields = []string{"pending_inbound_tx", "pending_outbound_tx", "pending_liquidity"}

// Coerce repairs the shape of a merged app_state in place. It forces the
// known thorchain list fields to arrays, decodes nested list fields that were
// stored as strings, flattens string-encoded scalars and finally puts amounts
// back into string form.
func Coerce(appState map[string]any) {
	coerceLists(appState)
	coerceNested(appState)
	Destringify(appState)
	StringifyAmounts(appState)
}

func thorchain(appState map[string]any) map[string]any {
	tc, _ := appState["thorchain"].(map[string]any)
	return tc
}

func coerceLists(appState map[string]any) {
	tc := thorchain(appState)
	if tc == nil {
		return
	}
	for _, field := range thorchainLists {
		if _, ok := tc[field].([]any); !ok {
			tc[field] = []any{}
		}
	}
}

func coerceNested(appState map[string]any) {
	tc := thorchain(appState)
	if tc == nil {
		return
	}
	if vaults, ok := tc["vaults"].([]any); ok {
		for _, vault := range objects(vaults) {
			vault["membership"] = decodeList(vault["membership"])
		}
	}
	for _, field := range []string{"observed_tx_in_voters", "observed_tx_out_voters"} {
		voters, ok := tc[field].([]any)
		if !ok {
			continue
		}
		for _, voter := range objects(voters) {
			voter["txs"] = decodeList(voter["txs"])
		}
	}
	if pools, ok := tc["pools"].([]any); ok {
		for _, pool := range objects(pools) {
			for _, field := range pendingPoolFields {
				// Pools may legitimately omit these or leave them null.
				if v := pool[field]; v != nil {
					pool[field] = decodeList(v)
				}
			}
		}
	}
}

// decodeList returns v as a list: lists pass through, strings holding an
// encoded JSON list are decoded and everything else becomes an empty list.
func decodeList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case string:
		s := strings.TrimSpace(t)
		if s == "" || (s[0] != '[' && s[0] != '{') {
			return []any{}
		}
		decoded, err := decodeValue([]byte(s))
		if err != nil {
			return []any{}
		}
		if l, ok := decoded.([]any); ok {
			return l
		}
	}
	return []any{}
}
