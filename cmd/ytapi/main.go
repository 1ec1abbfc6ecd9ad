// Command ytapi serves video metadata, ranked stream lists and stream
// downloads over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/ytget/ytapi/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	fs := afero.NewOsFs()
	root := newRootCmd(&cli{fs: fs, v: config.New(fs)})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
