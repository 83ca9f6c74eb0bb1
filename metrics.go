package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/thorfork/forkctl/internal/genesis"
)

// writeMetrics exports the outcome of a merge run in the node exporter
// textfile format.
func writeMetrics(path string, report genesis.Report) error {
	registry := prometheus.NewRegistry()

	modulesChanged := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "forkctl",
		Subsystem: "genesis",
		Name:      "modules_changed",
		Help:      "Number of app_state modules changed by the last merge.",
	})
	entriesMerged := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "forkctl",
		Subsystem: "genesis",
		Name:      "entries_merged",
		Help:      "Entries replaced or appended per genesis section by the last merge.",
	}, []string{"section", "module", "op"})
	contractsSwept := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "forkctl",
		Subsystem: "genesis",
		Name:      "contracts_swept",
		Help:      "1 if the contract_info sweep altered an existing contract.",
	})
	lastMerge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "forkctl",
		Subsystem: "genesis",
		Name:      "last_merge_timestamp_seconds",
		Help:      "Unix time of the last merge that changed the genesis.",
	})
	registry.MustRegister(modulesChanged, entriesMerged, contractsSwept, lastMerge)

	modulesChanged.Set(float64(report.Changes.Len()))
	for _, section := range report.Sections {
		entriesMerged.WithLabelValues(section.Name, section.Module, "replaced").Set(float64(section.Replaced))
		entriesMerged.WithLabelValues(section.Name, section.Module, "appended").Set(float64(section.Appended))
	}
	if report.Swept {
		contractsSwept.Set(1)
	}
	lastMerge.SetToCurrentTime()

	return prometheus.WriteToTextfile(path, registry)
}
