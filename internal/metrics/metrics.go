// Package metrics provides application-level counters using stdlib expvar.
// Counters are automatically exported on the /debug/vars HTTP endpoint
// when net/http/pprof is imported in the main binary.
package metrics

import "expvar"

// Operation counters.
var (
	LoadTotal       = expvar.NewInt("canvas_load_total")
	TransformTotal  = expvar.NewInt("canvas_transform_total")
	ReconcileTotal  = expvar.NewInt("canvas_reconcile_total")
	ReconcileNoop   = expvar.NewInt("canvas_reconcile_noop_total")
	GenerateTotal   = expvar.NewInt("canvas_generate_total")
	ExportTotal     = expvar.NewInt("canvas_export_total")
	ParseErrorTotal = expvar.NewInt("canvas_parse_error_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
