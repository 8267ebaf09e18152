package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check API liveness",
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	sdk, err := newSDK()
	if err != nil {
		return err
	}
	defer sdk.Close()

	resp, err := sdk.Ping(context.Background())
	if err != nil {
		return handleAPIError(err)
	}

	fmt.Printf("%s %s\n", resp.App, resp.Version)
	return nil
}
