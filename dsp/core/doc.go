// Package core holds small numeric helpers shared by the feature pipeline:
// the machine-epsilon floor applied before logarithms, decibel-style log
// compression and finiteness checks.
package core
