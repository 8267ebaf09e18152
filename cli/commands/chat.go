package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asknews/asknews-go/chat"
)

var (
	chatModel  string
	chatSystem string
	chatStream bool
)

var chatCmd = &cobra.Command{
	Use:   "chat <prompt>",
	Short: "Chat with a news-grounded model",
	Long: `Send a chat completion request grounded in the news index.

Examples:
  asknews chat "What happened in the markets today?"
  asknews chat "Summarize the latest on the trade talks" --stream`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatModel, "model", "", "Model ID (default from config)")
	chatCmd.Flags().StringVar(&chatSystem, "system", "", "System message")
	chatCmd.Flags().BoolVar(&chatStream, "stream", false, "Stream the answer as it is generated")
}

func runChat(cmd *cobra.Command, args []string) error {
	sdk, err := newSDK()
	if err != nil {
		return err
	}
	defer sdk.Close()

	model := chatModel
	if model == "" {
		model = cfg.DefaultModel
	}

	var messages []chat.Message
	if chatSystem != "" {
		messages = append(messages, chat.Message{Role: "system", Content: chatSystem})
	}
	messages = append(messages, chat.Message{Role: "user", Content: args[0]})

	req := &chat.CompletionRequest{
		Model:    model,
		Messages: messages,
	}

	ctx := context.Background()
	if chatStream {
		return runStreamingChat(ctx, sdk.Chat, req)
	}
	return runBufferedChat(ctx, sdk.Chat, req)
}

func runBufferedChat(ctx context.Context, api *chat.API, req *chat.CompletionRequest) error {
	resp, err := api.CreateCompletion(ctx, req)
	if err != nil {
		return handleAPIError(err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	for _, choice := range resp.Choices {
		fmt.Println(choice.Message.Content)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Usage: %d prompt + %d completion = %d total tokens\n",
			resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
	}
	return nil
}

func runStreamingChat(ctx context.Context, api *chat.API, req *chat.CompletionRequest) error {
	chunks, errs, err := api.StreamCompletion(ctx, req)
	if err != nil {
		return handleAPIError(err)
	}

	for chunk := range chunks {
		for _, choice := range chunk.Choices {
			fmt.Print(choice.Delta.Content)
		}
	}
	fmt.Println()

	if err := <-errs; err != nil {
		return handleAPIError(err)
	}
	return nil
}
