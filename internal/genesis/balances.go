package genesis

// balances merges app_state.bank.balances at (address, denom) granularity:
// a patch record only overwrites the denominations it names.
type balances struct{}

var _ Section = balances{}

// Balances returns the bank balances Section.
func Balances() Section { return balances{} }

func (balances) Name() string   { return "balances" }
func (balances) Module() string { return "bank" }
func (balances) Path() []string { return []string{"bank", "balances"} }

// coinBook keeps addresses and their denominations in first-seen order.
type coinBook struct {
	addresses []string
	coins     map[string]*orderedCoins
}

type orderedCoins struct {
	denoms  []string
	amounts map[string]any
}

func newCoinBook() *coinBook {
	return &coinBook{coins: make(map[string]*orderedCoins)}
}

// account returns the coins for address, registering it when new. The
// second result reports whether the address was already known.
func (b *coinBook) account(address string) (*orderedCoins, bool) {
	if c, ok := b.coins[address]; ok {
		return c, true
	}
	c := &orderedCoins{amounts: make(map[string]any)}
	b.coins[address] = c
	b.addresses = append(b.addresses, address)
	return c, false
}

func (c *orderedCoins) set(denom string, amount any) {
	if _, ok := c.amounts[denom]; !ok {
		c.denoms = append(c.denoms, denom)
	}
	c.amounts[denom] = amount
}

// fold adds every well-formed {denom, amount} pair of a balance record and
// returns how many were folded.
func (c *orderedCoins) fold(record map[string]any) int {
	coins, _ := record["coins"].([]any)
	folded := 0
	for _, coin := range objects(coins) {
		denom, ok := coin["denom"].(string)
		amount, hasAmount := coin["amount"]
		if !ok || !hasAmount || amount == nil {
			continue
		}
		c.set(denom, amount)
		folded++
	}
	return folded
}

func (b *coinBook) entries() []any {
	out := make([]any, 0, len(b.addresses))
	for _, address := range b.addresses {
		c := b.coins[address]
		coins := make([]any, 0, len(c.denoms))
		for _, denom := range c.denoms {
			coins = append(coins, map[string]any{"denom": denom, "amount": c.amounts[denom]})
		}
		out = append(out, map[string]any{"address": address, "coins": coins})
	}
	return out
}

func (balances) Merge(current, patch []any) MergeResult {
	book := newCoinBook()
	for _, record := range objects(current) {
		address, _ := record["address"].(string)
		if address == "" {
			continue
		}
		c, _ := book.account(address)
		c.fold(record)
	}

	var result MergeResult
	for _, record := range objects(patch) {
		address, _ := record["address"].(string)
		if address == "" {
			continue
		}
		c, known := book.account(address)
		if c.fold(record) == 0 {
			continue
		}
		result.Changed = true
		if known {
			result.Replaced++
		} else {
			result.Appended++
		}
	}
	if result.Changed {
		result.Entries = book.entries()
	} else {
		result.Entries = current
	}
	return result
}
