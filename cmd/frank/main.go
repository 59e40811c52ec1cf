package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// noColor disables ANSI colours in CLI output.
var noColor bool

var rootCmd = &cobra.Command{
	Use:   "frank",
	Short: "Find internal and external experts for a natural-language need",
	Long: `frank runs the expert finder service and talks to it.

Start the service with "frank serve", then search it:
  frank search "nuclear safety regulations"
  frank search --mode keyword mining
  frank discover "venture funding for robotics startups"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the frank version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "frank %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable coloured output")
	rootCmd.AddCommand(
		serveCmd,
		statusCmd,
		mcpCmd,
		searchCmd,
		discoverCmd,
		expertsCmd,
		configCmd,
		versionCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
