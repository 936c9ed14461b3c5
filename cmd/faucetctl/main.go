// Command faucetctl is an operator CLI for the faucet HTTP surface:
// request funds, check wallet balance, and read or update dynamic
// rate-limit settings. Grounded on cmd/cli/faucet.go's cobra command
// tree (request/balance/config under a persistent-pre-run initializer),
// re-pointed at the faucet's own HTTP API instead of an in-process
// ledger core.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	apiKey    string
	adminJWT  string
	client    *http.Client
)

func init() {
	client = &http.Client{Timeout: 15 * time.Second}
}

func rootInit(*cobra.Command, []string) error {
	if serverURL == "" {
		return fmt.Errorf("--server is required")
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:               "faucetctl",
	Short:             "Operate the SUI testnet faucet service",
	PersistentPreRunE: rootInit,
}

var requestCmd = &cobra.Command{
	Use:   "request <address>",
	Short: "Request tokens for an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, _ := cmd.Flags().GetInt64("amount")
		body := map[string]interface{}{"walletAddress": args[0]}
		if amount > 0 {
			body["amount"] = amount
		}
		resp, err := doRequest(http.MethodPost, "/api/v1/faucet/request", body, true)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp)
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show faucet wallet balance and mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		resp, err := doRequest(http.MethodGet, "/api/v1/faucet/status", nil, false)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or update dynamic rate-limit settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, _ := cmd.Flags().GetStringToString("set")
		if len(settings) == 0 {
			resp, err := doRequest(http.MethodGet, "/api/v1/admin/rate-limits", nil, false)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp)
			return nil
		}

		values := make(map[string]interface{}, len(settings))
		for k, v := range settings {
			values[k] = v
		}
		resp, err := doRequest(http.MethodPut, "/api/v1/admin/rate-limits/bulk", map[string]interface{}{"settings": values}, false)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp)
		return nil
	},
}

func doRequest(method, path string, body map[string]interface{}, useAPIKey bool) (string, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, serverURL+path, reader)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if useAPIKey && apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	if adminJWT != "" {
		req.Header.Set("Authorization", "Bearer "+adminJWT)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("faucetctl: server returned %d: %s", resp.StatusCode, string(raw))
	}
	return string(raw), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", os.Getenv("FAUCET_SERVER_URL"), "faucet server base URL (e.g. http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("FAUCET_API_KEY"), "API key for faucet/client endpoints")
	rootCmd.PersistentFlags().StringVar(&adminJWT, "admin-token", os.Getenv("FAUCET_ADMIN_TOKEN"), "admin JWT for protected endpoints")

	requestCmd.Flags().Int64("amount", 0, "amount in base-units (defaults to the server's configured default)")
	configCmd.Flags().StringToString("set", nil, "rate-limit settings to write, e.g. --set faucet_max_per_wallet=5")

	rootCmd.AddCommand(requestCmd, balanceCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
