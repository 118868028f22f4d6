package slicer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arl/slaslice/mesh"
)

// Result summarizes one completed slicing run.
type Result struct {
	TriangleCount    int              `json:"triangle_count"`
	WidthPx          int              `json:"width_px"`
	HeightPx         int              `json:"height_px"`
	NumLayers        int              `json:"num_layers"`
	EmittedLayers    int              `json:"emitted_layers"`
	OddParityColumns int32            `json:"odd_parity_columns"`
	Bounds           mesh.AABB        `json:"bounds"`
	PhaseDurationsMs map[string]int64 `json:"phase_durations_ms"`
}

// writeManifest drops a small manifest.json in the output directory
// alongside the PNGs: the run's Result as JSON, readable without
// re-decoding every layer image. It is not a rendered artifact and isn't
// gated by any Non-goal.
func writeManifest(dir string, res Result) error {
	path := filepath.Join(dir, "manifest.json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("slicer: creating manifest: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("slicer: encoding manifest: %w", err)
	}
	return nil
}

func phaseDurations(ctx *Context) map[string]int64 {
	out := make(map[string]int64, int(numPhases))
	for p := Phase(0); p < numPhases; p++ {
		out[p.String()] = ctx.Elapsed(p).Milliseconds()
	}
	return out
}
