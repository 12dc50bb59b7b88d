package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xushengj/bundlekit/bundle"
	"github.com/xushengj/bundlekit/internal/diag"
)

var (
	validateInstancePath string
	validateTaskPath     string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an IR instance and task against the built-in schema",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateInstancePath, "instance", "", "path to an IR instance XML document (required)")
	validateCmd.Flags().StringVar(&validateTaskPath, "task", "", "path to a Task manifest JSON document (required)")
	validateCmd.MarkFlagRequired("instance")
	validateCmd.MarkFlagRequired("task")
}

func runValidate(cmd *cobra.Command, args []string) error {
	b := bundle.New()
	schemaIdx := b.AddSchema(demoSchema())
	d := diag.NewCollectingSink()

	instanceFile, err := os.Open(validateInstancePath)
	if err != nil {
		return fmt.Errorf("failed to open instance file %s: %w", validateInstancePath, err)
	}
	defer instanceFile.Close()

	ri, ok := b.LoadInstanceXML(instanceFile, schemaIdx, d)
	if ok {
		ri.Validate(d)
	}

	taskJSON, err := os.ReadFile(validateTaskPath)
	if err != nil {
		return fmt.Errorf("failed to read task file %s: %w", validateTaskPath, err)
	}
	b.LoadTaskJSON(taskJSON, schemaIdx, bundle.NoOutput, d)
	b.Validate(d)

	formatter := diag.Formatter{Color: cfg.Color}
	if d.HasErrors() {
		fmt.Fprintln(os.Stderr, formatter.FormatAll(d.Records()))
		exitWithError("validation failed with errors")
		return fmt.Errorf("validation failed")
	}
	if len(d.Records()) > 0 {
		fmt.Fprintln(os.Stderr, formatter.FormatAll(d.Records()))
	}
	fmt.Println("OK")
	return nil
}
