// Package commands implements the CLI command structure using Cobra.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asknews/asknews-go"
	"github.com/asknews/asknews-go/cli/config"
	"github.com/asknews/asknews-go/cli/keystore"
	"github.com/asknews/asknews-go/core"
)

// Exit codes.
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitAPI        = 2
	ExitNetwork    = 3
)

// secretKeyName is the keystore entry holding the client secret.
const secretKeyName = "client_secret"

var (
	// Global flags.
	cfgFile    string
	jsonOutput bool
	verbose    bool

	// Loaded configuration.
	cfg *config.Config
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "asknews",
	Short: "AskNews - news intelligence CLI",
	Long: `AskNews is a command-line interface for the AskNews platform.

Use it to search indexed news, chat with news-grounded models, and
manage your API credentials.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.asknews/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug output")
}

// initConfig reads in the config file.
func initConfig() error {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	var err error
	cfg, err = config.LoadConfig(path)
	return err
}

// configPath returns the effective config file path.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// newSDK builds an SDK from the stored credentials and config.
func newSDK() (*asknews.SDK, error) {
	if cfg.ClientID == "" {
		return nil, exitWithCode(ExitValidation,
			fmt.Errorf("not logged in: run 'asknews login' first"))
	}

	ks, err := keystore.NewKeystore()
	if err != nil {
		return nil, exitWithCode(ExitValidation, fmt.Errorf("failed to open keystore: %w", err))
	}
	secret, err := ks.Get(secretKeyName)
	if err != nil {
		var notFound *keystore.ErrKeyNotFound
		if errors.As(err, &notFound) {
			return nil, exitWithCode(ExitValidation,
				fmt.Errorf("no stored client secret: run 'asknews login' first"))
		}
		return nil, exitWithCode(ExitValidation, err)
	}

	var opts []core.Option
	if cfg.BaseURL != "" {
		opts = append(opts, core.WithBaseURL(cfg.BaseURL))
	}
	if cfg.TokenURL != "" {
		opts = append(opts, core.WithTokenURL(cfg.TokenURL))
	}
	if len(cfg.Scopes) > 0 {
		scopes := make([]core.Scope, len(cfg.Scopes))
		for i, s := range cfg.Scopes {
			scopes[i] = core.Scope(s)
		}
		opts = append(opts, core.WithScopes(scopes...))
	}

	sdk, err := asknews.New(core.NewClientCredentials(cfg.ClientID, secret), opts...)
	if err != nil {
		return nil, exitWithCode(ExitValidation, err)
	}
	return sdk, nil
}

// handleAPIError prints an API error and maps it to an exit code.
func handleAPIError(err error) error {
	var apiErr *core.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", apiErr.Detail)
		if apiErr.RequestID != "" {
			fmt.Fprintf(os.Stderr, "  Request ID: %s\n", apiErr.RequestID)
		}
		return exitWithCode(ExitAPI, err)
	}

	if errors.Is(err, core.ErrNetwork) {
		fmt.Fprintf(os.Stderr, "Error: network error: %v\n", err)
		return exitWithCode(ExitNetwork, err)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitWithCode(ExitAPI, err)
}

// exitError wraps an error with an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) ExitCode() int {
	return e.code
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}
