package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const apiKeyFileName = "credentials.json"

type savedCredentials struct {
	APIKey string `json:"api_key"`
}

func newLoginCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save the server API key",
		Long:  "Store the sheetsync API key so later commands can omit --api-key.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				fmt.Fprint(cmd.OutOrStdout(), "API key: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read API key: %w", err)
				}
				key = strings.TrimSpace(line)
			}

			if key == "" {
				return fmt.Errorf("API key cannot be empty")
			}

			p, err := apiKeyPath()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}

			data, err := json.MarshalIndent(savedCredentials{APIKey: key}, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal credentials: %w", err)
			}
			if err := os.WriteFile(p, data, 0600); err != nil {
				return fmt.Errorf("write credentials: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "API key saved to %s\n", p)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "API key (prompted if omitted)")
	return cmd
}

// apiKeyPath returns ~/.sheetsync/credentials.json.
func apiKeyPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".sheetsync", apiKeyFileName), nil
}

// LoadAPIKey reads the stored API key, returning empty string if not found.
func LoadAPIKey() string {
	p, err := apiKeyPath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return ""
	}
	var creds savedCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return ""
	}
	return creds.APIKey
}
