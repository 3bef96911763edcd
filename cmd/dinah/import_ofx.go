package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/dinah/internal/cli"
	"github.com/Veraticus/dinah/internal/model"
	"github.com/Veraticus/dinah/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX statements",
		Long: `Import a bank or credit card statement exported as OFX or QFX into one of
your accounts. Credits become income and debits become expenses. Lines
already imported are skipped, and expenses the account cannot cover are
reported instead of booked.

Examples:
  dinah import-ofx --account Itaú ~/Downloads/extrato_marco.ofx
  dinah import-ofx --account Nubank --dry-run ~/Downloads/nubank_*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().StringP("account", "a", "", "Account to book the entries into")
	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	accountName, _ := cmd.Flags().GetString("account")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	parser := ofx.NewParser()
	var entries []ofx.Entry
	for _, path := range files {
		parsed, err := parseFile(cmd, parser, path)
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}
		slog.Info("Processed file", "file", filepath.Base(path), "entries", len(parsed))
		entries = append(entries, parsed...)
	}
	if len(entries) == 0 {
		return errors.New("no transactions found in any file")
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	accounts, err := store.GetAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	acc, err := findAccount(accounts, accountName)
	if err != nil {
		return err
	}

	bar := newProgressBar(out, len(entries), dryRun)
	importer := ofx.NewImporter(store,
		ofx.WithDryRun(dryRun),
		ofx.WithProgress(func() { _ = bar.Add(1) }),
	)
	report, err := importer.Import(ctx, acc.ID, entries)
	if err != nil {
		return fmt.Errorf("import stopped: %w", err)
	}

	fmt.Fprintln(out, renderReport(acc, report))
	return nil
}

func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				slog.Warn("No files found matching pattern", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, errors.New("no files found to import")
	}
	return files, nil
}

func parseFile(cmd *cobra.Command, parser *ofx.Parser, path string) ([]ofx.Entry, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided statement path
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return parser.ParseFile(cmd.Context(), f)
}

func newProgressBar(w io.Writer, total int, dryRun bool) *progressbar.ProgressBar {
	description := "[cyan][bold]Importando lançamentos...[reset]"
	if dryRun {
		description = "[cyan][bold]Simulando importação...[reset]"
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}

func renderReport(acc model.Account, report *ofx.Report) string {
	var b strings.Builder
	label := "Lançamentos importados"
	if report.DryRun {
		label = "Lançamentos que seriam importados"
	}
	fmt.Fprintf(&b, "%s em %s: %d\n", label, acc.Name, report.Booked)
	fmt.Fprintf(&b, "Receitas: %s\n", model.FormatBRL(report.Income))
	fmt.Fprintf(&b, "Gastos: %s", model.FormatBRL(report.Expenses))
	if report.Duplicates > 0 {
		fmt.Fprintf(&b, "\nJá importados antes: %d", report.Duplicates)
	}
	for _, s := range report.Skipped {
		fmt.Fprintf(&b, "\n%s %s %s em %s: %s",
			cli.ErrorIcon,
			s.Entry.Timestamp.Format("02/01"),
			model.FormatBRL(s.Entry.Amount),
			s.Entry.Description,
			s.Reason)
	}
	title := "Importação OFX"
	if report.DryRun {
		title += " (simulação)"
	}
	return cli.RenderBox(title, b.String())
}
