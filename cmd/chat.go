package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aetherhq/aether/internal/genai"
	"github.com/aetherhq/aether/internal/server"
)

func newChatCmd() *cobra.Command {
	var (
		devMode           bool
		owner             string
		geminiAPIKey      string
		geminiModel       string
		googleAccessToken string
		calendarID        string
		timeZone          string
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a single chat turn to the assistant",
		Long: `Send one natural-language message through the assistant pipeline and
print the reply. Useful for trying out prompts without an MCP client.

Examples:
  aether chat --dev "show me my events for today"
  aether chat "book a meeting with Jane tomorrow at 2pm"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			capConfig := CapabilityConfig{
				Dev:               devMode,
				GeminiAPIKey:      geminiAPIKey,
				GeminiModel:       geminiModel,
				GoogleAccessToken: googleAccessToken,
				CalendarID:        calendarID,
				TimeZone:          timeZone,
				MetadataStore:     "memory",
			}
			loadCapabilityEnvVars(cmd, &capConfig)

			message := strings.Join(args, " ")
			return runChat(cmd.Context(), capConfig, owner, message)
		},
	}

	cmd.Flags().BoolVar(&devMode, "dev", false, "Run against fixture capabilities (fake calendar, scripted generator)")
	cmd.Flags().StringVar(&owner, "owner", "default", "Owner id the chat turn runs as")
	cmd.Flags().StringVar(&geminiAPIKey, "gemini-api-key", "", "Gemini API key for intent extraction. Can also use GEMINI_API_KEY env var.")
	cmd.Flags().StringVar(&geminiModel, "gemini-model", genai.DefaultGeminiModel, "Gemini model used for intent extraction")
	cmd.Flags().StringVar(&googleAccessToken, "google-access-token", "", "Google Calendar access token. Can also use GOOGLE_ACCESS_TOKEN env var.")
	cmd.Flags().StringVar(&calendarID, "calendar-id", "primary", "Google calendar to operate on")
	cmd.Flags().StringVar(&timeZone, "time-zone", "UTC", "Time zone attached to event times written to the provider")

	return cmd
}

func runChat(ctx context.Context, capConfig CapabilityConfig, owner, message string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	caps, cleanup, err := buildCapabilities(ctx, capConfig)
	if err != nil {
		return err
	}
	defer cleanup()

	serverContext := server.NewServerContext(ctx, caps, nil)
	defer func() {
		_ = serverContext.Shutdown()
	}()

	reply := serverContext.Service().HandleChatTurn(ctx, owner, capConfig.GoogleAccessToken, message)
	fmt.Println(reply)
	return nil
}
