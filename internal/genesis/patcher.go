package genesis

import (
	"fmt"

	"go.uber.org/zap"
)

var contractsPath = []string{"wasm", "contracts"}

// DefaultSections lists the mergeable genesis sections in merge order.
func DefaultSections(membership MembershipFunc) []Section {
	return []Section{
		Accounts(),
		Balances(),
		Mimirs(),
		Vaults(membership),
		Pools(),
		Codes(),
		Contracts(),
	}
}

// SectionReport summarises what a diff did to one section.
type SectionReport struct {
	Name     string
	Module   string
	Replaced int
	Appended int
}

// Report is the outcome of Patcher.Apply.
type Report struct {
	Changes  ChangeSet
	Sections []SectionReport
	// Swept is set when the final contract_info sweep altered a contract.
	Swept bool
}

// Patcher applies diff documents to a genesis document.
type Patcher struct {
	sections []Section
	logger   *zap.Logger
}

type Option func(*Patcher)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Patcher) { p.logger = logger }
}

func WithSections(sections ...Section) Option {
	return func(p *Patcher) { p.sections = sections }
}

// NewPatcher returns a Patcher over DefaultSections. membership is consulted
// only when a diff inserts a new vault.
func NewPatcher(membership MembershipFunc, opts ...Option) *Patcher {
	p := &Patcher{
		sections: DefaultSections(membership),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply merges diff into genesis in place. When any module changed, the
// whole app_state is coerced back into the shape the node expects. genesis is
// left in an unspecified state when an error is returned.
func (p *Patcher) Apply(genesis, diff Document) (Report, error) {
	var report Report

	appState, err := object(genesis, []string{"app_state"}, true)
	if err != nil {
		return report, err
	}
	for _, section := range p.sections {
		if err := ensureList(appState, section.Path()); err != nil {
			return report, fmt.Errorf("preparing %s: %w", section.Name(), err)
		}
	}

	diffState := diff.AppState()
	for _, section := range p.sections {
		patch, ok := patchList(diffState, section.Path())
		if !ok {
			continue
		}
		result := section.Merge(list(appState, section.Path()), patch)
		if !result.Changed {
			p.logger.Debug("Section unchanged", zap.String("section", section.Name()))
			continue
		}
		if err := setList(appState, section.Path(), result.Entries); err != nil {
			return report, fmt.Errorf("storing %s: %w", section.Name(), err)
		}
		report.Changes.Add(section.Module())
		report.Sections = append(report.Sections, SectionReport{
			Name:     section.Name(),
			Module:   section.Module(),
			Replaced: result.Replaced,
			Appended: result.Appended,
		})
		p.logger.Info("Merged section",
			zap.String("section", section.Name()),
			zap.Int("replaced", result.Replaced),
			zap.Int("appended", result.Appended))
	}

	if sweepContracts(list(appState, contractsPath)) {
		report.Swept = true
		report.Changes.Add("wasm")
		p.logger.Info("Sanitised contract_info in existing contracts")
	}

	if !report.Changes.Empty() {
		Coerce(appState)
	}
	return report, nil
}

// patchList returns the diff list at path, if the diff carries one.
func patchList(diffState map[string]any, path []string) ([]any, bool) {
	if diffState == nil {
		return nil, false
	}
	parent, err := object(diffState, path[:len(path)-1], false)
	if err != nil || parent == nil {
		return nil, false
	}
	l, ok := parent[path[len(path)-1]].([]any)
	return l, ok
}
