package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xushengj/bundlekit/bundle"
	"github.com/xushengj/bundlekit/internal/diag"
	"github.com/xushengj/bundlekit/internal/sink"
)

var (
	runInstancePath string
	runTaskPath     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a task against an IR instance and print the decoded output",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runInstancePath, "instance", "", "path to an IR instance XML document (required)")
	runCmd.Flags().StringVar(&runTaskPath, "task", "", "path to a Task manifest JSON document (required)")
	runCmd.MarkFlagRequired("instance")
	runCmd.MarkFlagRequired("task")
}

func encodingFromConfig(name string) sink.ByteEncoding {
	switch name {
	case "utf16le":
		return sink.UTF16LE
	case "utf16be":
		return sink.UTF16BE
	case "windows1252":
		return sink.Windows1252
	default:
		return sink.UTF8
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	b := bundle.New()
	schemaIdx := b.AddSchema(demoSchema())
	d := diag.NewCollectingSink()

	instanceFile, err := os.Open(runInstancePath)
	if err != nil {
		return fmt.Errorf("failed to open instance file %s: %w", runInstancePath, err)
	}
	defer instanceFile.Close()

	ri, ok := b.LoadInstanceXML(instanceFile, schemaIdx, d)
	if !ok || !ri.Validate(d) {
		printDiagnostics(d)
		return fmt.Errorf("invalid instance")
	}

	taskJSON, err := os.ReadFile(runTaskPath)
	if err != nil {
		return fmt.Errorf("failed to read task file %s: %w", runTaskPath, err)
	}
	taskIdx, ok := b.LoadTaskJSON(taskJSON, schemaIdx, bundle.ExternalOutput, d)
	if !ok || !b.Validate(d) {
		printDiagnostics(d)
		return fmt.Errorf("invalid task")
	}

	out := sink.NewTextSink(encodingFromConfig(cfg.OutputEncoding))
	if !b.RunWithMaxDepth(taskIdx, ri, d, out, cfg.MaxCallStackDepth) {
		printDiagnostics(d)
		return fmt.Errorf("execution failed")
	}

	os.Stdout.Write(out.Result())
	return nil
}

func printDiagnostics(d *diag.CollectingSink) {
	if len(d.Records()) == 0 {
		return
	}
	formatter := diag.Formatter{Color: cfg.Color}
	fmt.Fprintln(os.Stderr, formatter.FormatAll(d.Records()))
}
