package genesis

import "strings"

// ChangeSet records, in first-touched order, the app_state modules a merge
// modified.
type ChangeSet struct {
	modules []string
}

// Add marks module as changed. Adding a module twice is a no-op.
func (c *ChangeSet) Add(module string) {
	if !c.Has(module) {
		c.modules = append(c.modules, module)
	}
}

func (c ChangeSet) Has(module string) bool {
	for _, m := range c.modules {
		if m == module {
			return true
		}
	}
	return false
}

func (c ChangeSet) Len() int { return len(c.modules) }

func (c ChangeSet) Empty() bool { return len(c.modules) == 0 }

// Modules returns the changed modules in first-touched order.
func (c ChangeSet) Modules() []string {
	return append([]string(nil), c.modules...)
}

func (c ChangeSet) String() string {
	return strings.Join(c.modules, ",")
}
