package cmd

import (
	"fmt"
	"os"

	"github.com/arl/slaslice/mesh"
	"github.com/arl/slaslice/stl"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info INPUT_STL",
	Short: "show triangle count and bounds for a mesh",
	Long: `Read a binary STL mesh and print its triangle count and
axis-aligned bounding box, without slicing it.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	RootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	tris, err := stl.Decode(f)
	if err != nil {
		return err
	}

	bounds := mesh.MeshBounds(tris)
	extent := bounds.Extent()

	fmt.Printf("triangles: %d\n", len(tris))
	fmt.Printf("bounds:    [%.4f %.4f %.4f] .. [%.4f %.4f %.4f]\n",
		bounds.Min.X, bounds.Min.Y, bounds.Min.Z,
		bounds.Max.X, bounds.Max.Y, bounds.Max.Z)
	fmt.Printf("extent:    %.4f x %.4f x %.4f mm\n", extent.X, extent.Y, extent.Z)
	return nil
}
