package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"scribed/cmd/scribed/cmd/serve"
	"scribed/cmd/scribed/cmd/sweep"
	"scribed/cmd/scribed/cmd/version"
	"scribed/internal/config"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scribed",
	Short: "Transcription job backend: HTTP API and retention sweeper",
	Long: `Backend for a transcription service.
- serve runs the HTTP API: jobs, LLM operations, usage and quota
- sweep runs one pass of the history retention engine
Records live in Postgres or a local SQLite file.`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(cfg *config.Config) {
	serve.Configure(cfg)
	sweep.Configure(cfg)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(sweep.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
