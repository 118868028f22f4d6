// Command slaslice slices a watertight triangle mesh into a stack of
// per-layer grayscale PNGs for MSLA resin printing.
package main

import "github.com/arl/slaslice/cmd/slaslice/cmd"

func main() {
	cmd.Execute()
}
