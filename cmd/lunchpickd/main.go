package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/lunchpick/internal/cli"
	"github.com/cloo-solutions/lunchpick/internal/cli/daemon"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lunchpickd",
		Short: "Lunchpick web server",
		Long:  "Lunchpick daemon serving the search page, JSON API and rendered maps",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(daemon.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
