package genesis

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/wI2L/jsondiff"
)

// ChangeReport computes, per changed module, the JSON Patch operations that
// turn the module in original into the module in genesis.
func ChangeReport(original []byte, genesis Document, changes ChangeSet) (map[string]jsondiff.Patch, error) {
	appState := genesis.AppState()
	report := make(map[string]jsondiff.Patch, changes.Len())
	for _, module := range changes.Modules() {
		before := []byte("{}")
		if block := gjson.GetBytes(original, "app_state."+module); block.Exists() {
			before = []byte(block.Raw)
		}
		after, err := Encode(appState[module])
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", module, err)
		}
		patch, err := jsondiff.CompareJSON(before, after)
		if err != nil {
			return nil, fmt.Errorf("comparing %s: %w", module, err)
		}
		report[module] = patch
	}
	return report, nil
}
