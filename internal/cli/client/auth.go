package client

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Kakao API credentials",
		Long:  "Login, logout, and check which Kakao REST API key lunchpick uses",
	}

	cmd.AddCommand(authLoginCmd(), authLogoutCmd(), authStatusCmd())
	return cmd
}

func authLoginCmd() *cobra.Command {
	var apiKey, baseURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a Kakao REST API key",
		Long: `Store the REST API key in the user config file.

Without --key the key is read from stdin. Other stored settings are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(cmd.InOrStdin(), cmd.OutOrStdout(), apiKey, baseURL)
		},
	}

	cmd.Flags().StringVar(&apiKey, "key", "", "Kakao REST API key (32 hex characters)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Kakao API base URL override")
	return cmd
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogout(cmd.OutOrStdout())
		},
	}
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which API key is in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			flagKey, _ := cmd.Flags().GetString("api-key")
			return runAuthStatus(cmd.OutOrStdout(), flagKey, outputJSON)
		},
	}
}

func runAuthLogin(in io.Reader, out io.Writer, apiKey, baseURL string) error {
	if apiKey == "" {
		fmt.Fprint(out, "Enter Kakao REST API key: ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		apiKey = strings.TrimSpace(line)
	}
	if !IsValidAPIKey(apiKey) {
		return errors.New("invalid API key format (expected: 32 hex characters)")
	}

	err := UpdateGlobalConfig(func(cfg *GlobalConfig) {
		cfg.KakaoRESTAPIKey = apiKey
		if baseURL != "" {
			cfg.KakaoBaseURL = baseURL
		}
	})
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Fprintln(out, "Successfully logged in")
	return nil
}

func runAuthLogout(out io.Writer) error {
	err := UpdateGlobalConfig(func(cfg *GlobalConfig) {
		cfg.KakaoRESTAPIKey = ""
		cfg.KakaoBaseURL = ""
	})
	if err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	fmt.Fprintln(out, "Successfully logged out")
	return nil
}

type authStatus struct {
	Authenticated bool             `json:"authenticated"`
	Source        CredentialSource `json:"source"`
	APIKey        string           `json:"api_key,omitempty"`
}

func runAuthStatus(out io.Writer, flagKey string, outputJSON bool) error {
	source, apiKey := GetCredentialSource(flagKey)
	status := authStatus{
		Authenticated: source != SourceNone,
		Source:        source,
	}
	if status.Authenticated {
		status.APIKey = maskAPIKey(apiKey)
	}

	if outputJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if !status.Authenticated {
		fmt.Fprintln(out, "Not authenticated")
		fmt.Fprintln(out, "Run 'lunchpick auth login' or set "+envAPIKey)
		return nil
	}

	fmt.Fprintln(out, "Authenticated: yes")
	fmt.Fprintf(out, "Source: %s\n", status.Source)
	fmt.Fprintf(out, "API Key: %s\n", status.APIKey)
	return nil
}

func maskAPIKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
