package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/summon-almanac/internal/cli"
	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/config"
	"github.com/Veraticus/summon-almanac/internal/export"
	"github.com/Veraticus/summon-almanac/internal/sheets"
)

// Files written by `almanac sheets`.
const (
	sheetBannerFile  = "sheet_banner_data.json"
	sheetServantFile = "sheet_servant_data.json"
)

func sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Import the community rateup spreadsheet",
		Long: `Read the banner and servant tabs of the community rateup spreadsheet and
write them next to the harvest exports.

Authenticate once with 'almanac sheets auth', or configure a service account
with sheets.service_account_path.`,
		RunE: runSheets,
	}

	cmd.Flags().StringP("out", "o", "", "Export directory (default: ./data)")
	cmd.Flags().String("spreadsheet", "", "Spreadsheet ID (overrides config)")
	_ = viper.BindPFlag("sheets.spreadsheet_id", cmd.Flags().Lookup("spreadsheet"))

	cmd.AddCommand(sheetsAuthCmd())
	return cmd
}

func runSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	outFlag, _ := cmd.Flags().GetString("out")

	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return common.NewUserError("Google Sheets is not configured; run `almanac sheets auth` first", err)
	}

	reader, err := sheets.NewReader(ctx, *sheetsConfig, slog.Default())
	if err != nil {
		return err
	}

	slog.Info(cli.FormatTitle("Reading rateup spreadsheet"))
	data, err := reader.Read(ctx)
	if err != nil {
		return err
	}

	writer, err := export.NewWriter(exportDir(outFlag), slog.Default())
	if err != nil {
		return err
	}
	if err := writer.WriteJSON(sheetBannerFile, data.Banners); err != nil {
		return err
	}
	if err := writer.WriteJSON(sheetServantFile, data.Servants); err != nil {
		return err
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("✓ Imported %d banners and %d servants", len(data.Banners), len(data.Servants))))
	return nil
}

func sheetsAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Open your browser to authenticate with Google
2. Save the token for future use

A valid stored token is refreshed instead.`,
		RunE: runSheetsAuth,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")

	return cmd
}

func runSheetsAuth(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// Get OAuth2 config
	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")

	// Override with flags if provided
	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}

	// Check for environment variables as fallback
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}

	if clientID == "" || clientSecret == "" {
		return errors.New("OAuth2 credentials not found. Please set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret flags")
	}

	tokenFile := viper.GetString("sheets.token_file")
	if tokenFile == "" {
		tokenFile = "~/.config/almanac/sheets_token.json"
	}
	tokenFile = config.ExpandPath(tokenFile)

	slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

	if _, err := sheets.GetOrCreateToken(ctx, sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
	}); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	slog.Info(cli.FormatSuccess("✅ Authentication successful!"))
	slog.Info("Run 'almanac sheets' to import the spreadsheet.")
	return nil
}
