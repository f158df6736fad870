package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shipgate/internal/app"
	apperrors "shipgate/internal/errors"
	"shipgate/internal/ui"
)

// version is set at build time via ldflags
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "shipgate",
	Short:   "Shipgate - fail-fast deploy pipeline for serverless applications",
	Version: version,
	Long: `Shipgate runs an ordered deploy pipeline of external commands (lint, build,
deploy) and stops at the first failing step. Each command's exit status is the
only gate: the first non-zero status aborts the run with exit code 1.`,
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Run the complete deploy pipeline",
	Long: `Deploy executes every pipeline step in order: linting the sources, building
the application, and deploying the stack. The first failing step aborts the
run; a later invocation resumes after the last successful step.

Without --file, a shipgate.yml manifest in the working directory is used, and
the built-in lint/build/deploy pipeline is the fallback.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		retainState, _ := cmd.Flags().GetBool("retain-state")
		noResume, _ := cmd.Flags().GetBool("no-resume")

		opts := app.Options{
			ManifestPath: file,
			DryRun:       dryRun,
			RetainState:  retainState,
			NoResume:     noResume,
		}

		if err := app.Deploy(opts); err != nil {
			apperrors.HandleError(err)
			os.Exit(1)
		}
	},
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Run only the lint step",
	Run: func(cmd *cobra.Command, args []string) {
		runSingleStep(cmd, "lint")
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run only the build step",
	Run: func(cmd *cobra.Command, args []string) {
		runSingleStep(cmd, "build")
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that every step command is available",
	Long: `Doctor verifies that each pipeline step's command can be located before a
run starts, and that the Docker daemon is reachable when the container runtime
is configured.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")

		if err := app.ValidatePrerequisites(file); err != nil {
			apperrors.HandleError(err)
			os.Exit(1)
		}

		ui.NewConsole().PrintSuccess("All step commands are available.")
	},
}

// runSingleStep executes one named pipeline step outside the stateful
// deploy workflow.
func runSingleStep(cmd *cobra.Command, name string) {
	file, _ := cmd.Flags().GetString("file")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if err := app.RunStep(file, name, dryRun); err != nil {
		apperrors.HandleError(err)
		os.Exit(1)
	}
}

func init() {
	deployCmd.Flags().StringP("file", "f", "", "Path to the pipeline manifest (defaults to shipgate.yml, then the built-in pipeline)")
	deployCmd.Flags().Bool("dry-run", false, "Print the commands each step would run without executing anything")
	deployCmd.Flags().Bool("retain-state", false, "Keep the state file after successful completion for auditing purposes")
	deployCmd.Flags().Bool("no-resume", false, "Discard any previous execution state and start from the first step")
	rootCmd.AddCommand(deployCmd)

	lintCmd.Flags().StringP("file", "f", "", "Path to the pipeline manifest")
	lintCmd.Flags().Bool("dry-run", false, "Print the command without executing it")
	rootCmd.AddCommand(lintCmd)

	buildCmd.Flags().StringP("file", "f", "", "Path to the pipeline manifest")
	buildCmd.Flags().Bool("dry-run", false, "Print the command without executing it")
	rootCmd.AddCommand(buildCmd)

	doctorCmd.Flags().StringP("file", "f", "", "Path to the pipeline manifest")
	rootCmd.AddCommand(doctorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
