// Package dataset segments tri-axial vibration recordings into fixed-size
// windows and builds labeled feature datasets from them.
//
// A build runs in two passes. The first pass segments every recording and
// fixes a sorted label [Vocabulary] over the sources that yield at least
// one window. The second pass computes per-axis features for every
// (source, window, axis) work item on a bounded worker pool and assembles
// the samples in (source, window) order, so the result does not depend on
// scheduling or worker count.
package dataset
