package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/lunchpick/internal/cli"
	"github.com/cloo-solutions/lunchpick/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "lunchpick",
		Short: "Lunchpick CLI - find a place to eat",
		Long: `Lunchpick finds restaurants around an address or your location and picks
some at random.

Environment variables:
  LUNCHPICK_KAKAO_REST_API_KEY   Kakao REST API key (required unless logged in)
  LUNCHPICK_KAKAO_BASE_URL       Kakao Local API base URL (default: https://dapi.kakao.com)
  LUNCHPICK_LOCATE_URL           IP location endpoint (default: http://ip-api.com/json/)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	client.AddPersistentFlags(rootCmd)
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.NearbyCmd())
	rootCmd.AddCommand(client.LocateCmd())
	rootCmd.AddCommand(client.RecommendCmd())
	rootCmd.AddCommand(client.AuthCmd())
	rootCmd.AddCommand(client.ConfigCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
