package genesis

// Contracts merges app_state.wasm.contracts by contract_address, sanitising
// each incoming contract_info first.
func Contracts() Section {
	sanitize := func(incoming map[string]any) map[string]any {
		SanitizeContract(incoming)
		return incoming
	}
	return &keyedList{
		name:    "contracts",
		module:  "wasm",
		path:    []string{"wasm", "contracts"},
		key:     FieldKey("contract_address"),
		replace: func(_, incoming map[string]any) map[string]any { return sanitize(incoming) },
		insert:  sanitize,
	}
}

// SanitizeContract drops the opaque contract blob from contract_info and
// flattens its admin and ibc_port_id fields. It reports whether anything
// changed and is idempotent.
func SanitizeContract(contract map[string]any) bool {
	info, ok := contract["contract_info"].(map[string]any)
	if !ok {
		return false
	}
	changed := false
	if _, ok := info["contract"]; ok {
		delete(info, "contract")
		changed = true
	}
	for _, field := range []string{"admin", "ibc_port_id"} {
		v, ok := info[field]
		if !ok {
			continue
		}
		normalized := NormalizeStringField(v)
		if current, isString := v.(string); !isString || current != normalized {
			info[field] = normalized
			changed = true
		}
	}
	return changed
}

// sweepContracts re-sanitises every contract in the list.
func sweepContracts(contracts []any) bool {
	changed := false
	for _, contract := range objects(contracts) {
		if SanitizeContract(contract) {
			changed = true
		}
	}
	return changed
}
