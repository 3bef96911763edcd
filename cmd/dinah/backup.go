package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dinah/internal/cli"
	"github.com/Veraticus/dinah/internal/config"
)

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [DEST]",
		Short: "Copy the database to a verified backup file",
		Long: `Write a consistent copy of the database and check its integrity.
Without DEST the backup goes next to the database, named after the current time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBackup,
	}
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dest := filepath.Join(filepath.Dir(appConfig.DatabasePath),
		fmt.Sprintf("dinah-%s.db", time.Now().Format("20060102-150405")))
	if len(args) == 1 {
		dest = config.ExpandPath(args[0])
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	info, err := store.Backup(ctx, dest)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	tables := make([]string, 0, len(info.RowCounts))
	for table := range info.RowCounts {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var b strings.Builder
	fmt.Fprintf(&b, "Arquivo: %s\nTamanho: %d bytes\nVersão do esquema: %d", info.Path, info.FileSize, info.SchemaVersion)
	for _, table := range tables {
		fmt.Fprintf(&b, "\n%s: %d", table, info.RowCounts[table])
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(cli.SuccessIcon+" Backup concluído", b.String()))
	return nil
}
