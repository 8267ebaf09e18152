package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/asknews/asknews-go/cli/config"
	"github.com/asknews/asknews-go/cli/keystore"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store AskNews API credentials",
	Long: `Store your AskNews client ID and client secret. The secret is
prompted without echo and kept in an encrypted keystore; the client ID
is written to the config file.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored AskNews credentials",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Client ID: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read client ID: %w", err)
	}
	clientID := strings.TrimSpace(line)
	if clientID == "" {
		return fmt.Errorf("client ID cannot be empty")
	}

	fmt.Print("Client secret: ")
	var secret string
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secretBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read secret: %w", err)
		}
		secret = string(secretBytes)
		fmt.Println()
	} else {
		// Fallback for piped input.
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read secret: %w", err)
		}
		secret = strings.TrimSpace(line)
	}
	if secret == "" {
		return fmt.Errorf("client secret cannot be empty")
	}

	ks, err := keystore.NewKeystore()
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}
	if err := ks.Set(secretKeyName, secret); err != nil {
		return fmt.Errorf("failed to store secret: %w", err)
	}

	cfg.ClientID = clientID
	if err := config.SaveConfig(configPath(), cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Println("Credentials stored.")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ks, err := keystore.NewKeystore()
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}
	if err := ks.Delete(secretKeyName); err != nil {
		var notFound *keystore.ErrKeyNotFound
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to delete secret: %w", err)
		}
	}

	cfg.ClientID = ""
	if err := config.SaveConfig(configPath(), cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Println("Credentials removed.")
	return nil
}
