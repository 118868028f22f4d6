package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/arl/slaslice/progress"
	"github.com/arl/slaslice/slicer"
	"github.com/spf13/cobra"
)

var (
	pixelSizeUm   float64
	layerHeightUm float64
	zeroSlicePos  bool
	keepAboveZero bool
	keepOutputDir bool
	openOutputDir bool
	configPath    string
	dryRun        bool
)

var sliceCmd = &cobra.Command{
	Use:   "slice INPUT_STL OUTPUT_DIR",
	Short: "slice a mesh into a stack of layer images",
	Long: `Slice reads a binary STL mesh and rasterizes it into a stack of
binary grayscale PNGs written to OUTPUT_DIR, one file per layer, named
after that layer's Z height in micrometers.`,
	Args: cobra.ExactArgs(2),
	RunE: runSlice,
}

func init() {
	RootCmd.AddCommand(sliceCmd)

	def := slicer.Default()
	sliceCmd.Flags().StringVar(&configPath, "config", "", "YAML settings file (overrides built-in defaults; flags override the file)")
	sliceCmd.Flags().Float64VarP(&pixelSizeUm, "pixel-size", "p", def.PixelSizeUm, "pixel size in micrometers")
	sliceCmd.Flags().Float64VarP(&layerHeightUm, "layer-height", "l", def.LayerHeightUm, "layer height in micrometers")
	sliceCmd.Flags().BoolVar(&zeroSlicePos, "zero-slice-position", def.ZeroSlicePosition, "label layers in micrometers counted from 0 at the bottommost emitted layer instead of by world Z")
	sliceCmd.Flags().BoolVar(&keepAboveZero, "keep-above-zero", !def.DeleteBelowZero, "keep layers below Z=0 instead of skipping them")
	sliceCmd.Flags().BoolVar(&keepOutputDir, "keep-output-dir", !def.DeleteOutputDir, "do not clear OUTPUT_DIR before writing")
	sliceCmd.Flags().BoolVar(&openOutputDir, "open-output-dir", def.OpenOutputDir, "open OUTPUT_DIR in the OS file browser once slicing completes")
	sliceCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the resolved settings and exit; the mesh is not loaded, so no layer schedule is computed, and nothing is written")
}

func runSlice(cmd *cobra.Command, args []string) error {
	cfg := slicer.Default()
	if configPath != "" {
		loaded, err := slicer.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	cfg.InputPath = args[0]
	cfg.OutputDir = args[1]

	if cmd.Flags().Changed("pixel-size") {
		cfg.PixelSizeUm = pixelSizeUm
	}
	if cmd.Flags().Changed("layer-height") {
		cfg.LayerHeightUm = layerHeightUm
	}
	if cmd.Flags().Changed("zero-slice-position") {
		cfg.ZeroSlicePosition = zeroSlicePos
	}
	if cmd.Flags().Changed("keep-above-zero") {
		cfg.DeleteBelowZero = !keepAboveZero
	}
	if cmd.Flags().Changed("keep-output-dir") {
		cfg.DeleteOutputDir = !keepOutputDir
	}
	if cmd.Flags().Changed("open-output-dir") {
		cfg.OpenOutputDir = openOutputDir
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if dryRun {
		return printDryRun(cfg)
	}

	if cfg.DeleteOutputDir {
		if ok, err := confirmIfExists(cfg.OutputDir,
			fmt.Sprintf("output directory %q already exists and will be cleared, continue? [y/N]", cfg.OutputDir)); !ok {
			if err != nil {
				return err
			}
			fmt.Println("aborted by user")
			return nil
		}
	}

	sink := progress.NewSink(16)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case ev := <-sink.Events():
				fmt.Printf("\r[%5.1f%%] %-60s", ev.Fraction*100, ev.Status)
			case <-stop:
				return
			}
		}
	}()

	res, err := slicer.Run(context.Background(), cfg, sink)
	close(stop)
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("wrote %d of %d layers to %s (%d triangles, %dx%d px)\n",
		res.EmittedLayers, res.NumLayers, cfg.OutputDir, res.TriangleCount, res.WidthPx, res.HeightPx)
	if res.OddParityColumns > 0 {
		fmt.Printf("warning: %d columns had an odd number of ray crossings (likely a non-manifold mesh)\n", res.OddParityColumns)
	}

	if cfg.OpenOutputDir {
		openInFileBrowser(cfg.OutputDir)
	}
	return nil
}

func printDryRun(cfg slicer.Config) error {
	fmt.Printf("input:            %s\n", cfg.InputPath)
	fmt.Printf("output directory: %s\n", cfg.OutputDir)
	fmt.Printf("pixel size:       %g um\n", cfg.PixelSizeUm)
	fmt.Printf("layer height:     %g um\n", cfg.LayerHeightUm)
	fmt.Printf("zero slice pos.:  %v\n", cfg.ZeroSlicePosition)
	fmt.Printf("delete below z=0: %v\n", cfg.DeleteBelowZero)
	fmt.Println("dry run: no files were written")
	return nil
}

func openInFileBrowser(dir string) {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", dir)
	case "windows":
		c = exec.Command("explorer", dir)
	default:
		c = exec.Command("xdg-open", dir)
	}
	if err := c.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "could not open %s: %v\n", dir, err)
	}
}
