package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "charnnections",
		Short:        "Daily character connections puzzle server",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "charnnections.yaml", "Path to the project config")
	root.AddCommand(serveCmd())
	root.AddCommand(mcpCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(puzzleCmd())
	root.AddCommand(indexCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
