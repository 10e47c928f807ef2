// Command vibefeat turns directories of tri-axial vibration recordings into
// labeled cepstral feature datasets.
//
// Usage:
//
//	vibefeat build [flags] <dir>
//	vibefeat inspect [flags] <file.csv>
//	vibefeat filters [flags]
//
// Settings are layered from defaults, a vibefeat.yaml config file,
// VIBEFEAT_* environment variables and flags.
//
// Examples:
//
//	vibefeat build ./data --out ./build --workers 8
//	vibefeat build ./data --cache --progress json
//	vibefeat inspect ./data/bearing.csv --window 2
//	vibefeat filters --num-filters 40 --nfft 512
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
