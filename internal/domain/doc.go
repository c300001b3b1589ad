// Package domain holds the values shared by every layer: the queued [Action],
// its [Kind] with per-kind payload rules, the [Connectivity] signal, and
// the sentinel errors. It imports nothing from the rest of the module.
package domain
