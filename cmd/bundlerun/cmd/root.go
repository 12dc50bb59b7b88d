// Package cmd implements the bundlerun command tree, grounded on
// cmd/dwscript/cmd's cobra structure.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xushengj/bundlekit/internal/config"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bundlerun",
	Short: "Validate and run bundlekit IR schemas, instances, and tasks",
	Long: `bundlerun is the execution driver for a bundlekit Bundle: a
collection of IR schemas and the tasks that walk instances of them.

It is a thin external collaborator over the bundlekit core — all
validation and execution logic lives in the bundle/internal packages;
this command only deserializes its inputs and reports results.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", configPath, err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".bundlerun.yaml", "path to bundlerun configuration file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
}
