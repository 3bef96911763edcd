package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/dinah/internal/chat"
	"github.com/Veraticus/dinah/internal/cli"
	"github.com/Veraticus/dinah/internal/common"
	"github.com/Veraticus/dinah/internal/dialogue"
	"github.com/Veraticus/dinah/internal/summary"
	"github.com/Veraticus/dinah/internal/tui"
	"github.com/Veraticus/dinah/internal/tui/themes"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to Dinah about your money",
		Long: `Start a conversation with Dinah.

Examples of what you can say:
  criar conta Nubank com 500
  gastei 45 no almoço no nubank
  recebi 3200 de salário
  transferi 200 do nubank pro itaú
  paguei o aluguel
  quanto gastei esse mês?`,
		RunE: runChat,
	}

	cmd.Flags().Bool("tui", false, "Use the full-screen interface")
	cmd.Flags().String("theme", "default", "Full-screen theme (default, mono)")
	_ = viper.BindPFlag("chat.tui", cmd.Flags().Lookup("tui"))

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	useTUI := viper.GetBool("chat.tui")

	closeLog, err := chatLogging(useTUI)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	engine := dialogue.NewEngine(appConfig.Engine.Dialogue())
	session := chat.NewSession(engine, store, chat.WithSummarizer(summary.New(store)))

	slog.Debug("Starting chat", "database", appConfig.DatabasePath, "tui", useTUI)

	if useTUI {
		themeName, _ := cmd.Flags().GetString("theme")
		return tui.Run(ctx, session, tui.WithTheme(themes.ByName(themeName)))
	}

	handler := cli.NewInterruptHandler(cmd.OutOrStdout())
	ctx = handler.HandleInterrupts(ctx)
	return cli.NewREPL(session, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
}

// chatLogging keeps log lines out of the conversation. The terminal chat only
// shows warnings unless debugging; the full-screen chat logs to a file next to
// the database.
func chatLogging(useTUI bool) (func(), error) {
	level, err := common.ParseLevel(appConfig.LogLevel)
	if err != nil {
		return nil, err
	}

	if !useTUI {
		if level < slog.LevelWarn && level != slog.LevelDebug {
			level = slog.LevelWarn
		}
		return func() {}, common.SetupLogger(os.Stderr, level, appConfig.LogFormat)
	}

	path := filepath.Join(filepath.Dir(appConfig.DatabasePath), "dinah.log")
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if err := common.SetupLogger(f, level, appConfig.LogFormat); err != nil {
		_ = f.Close()
		return nil, err
	}
	return func() { _ = f.Close() }, nil
}
