// Command meshlint lints the meshes of a scene.
package main

import (
	"os"

	"github.com/chazu/meshlint/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
