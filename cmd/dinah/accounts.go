package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dinah/internal/cli"
	"github.com/Veraticus/dinah/internal/common"
	"github.com/Veraticus/dinah/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"contas"},
		Short:   "Manage your accounts",
		RunE:    runListAccounts,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts and balances",
		RunE:  runListAccounts,
	})

	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Open an account",
		Args:  cobra.ExactArgs(1),
		RunE:  runAddAccount,
	}
	addCmd.Flags().Float64("balance", 0, "Initial balance")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an account with no transactions",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteAccount,
	})

	return cmd
}

func runListAccounts(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	accounts, err := store.GetAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(accounts) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("Nenhuma conta cadastrada. Crie uma com: dinah accounts add Nubank --balance 500"))
		return nil
	}

	var b strings.Builder
	for _, acc := range accounts {
		fmt.Fprintf(&b, "%-20s %15s\n", acc.Name, model.FormatBRL(acc.Balance))
	}
	fmt.Fprintf(&b, "%-20s %15s", "Total", model.FormatBRL(model.TotalBalance(accounts)))
	fmt.Fprintln(out, cli.RenderBox(cli.WalletIcon+" Contas", b.String()))
	return nil
}

func runAddAccount(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	balance, _ := cmd.Flags().GetFloat64("balance")

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	acc, err := store.AddAccount(ctx, model.NewAccount{Name: args[0], InitialBalance: balance})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			return fmt.Errorf("account %q already exists", args[0])
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Conta %s criada com saldo de %s.", acc.Name, model.FormatBRL(acc.Balance))))
	return nil
}

func runDeleteAccount(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	accounts, err := store.GetAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	acc, err := findAccount(accounts, args[0])
	if err != nil {
		return err
	}

	if err := store.DeleteAccount(ctx, acc.ID); err != nil {
		if errors.Is(err, common.ErrAccountInUse) {
			return fmt.Errorf("account %s has transactions and cannot be deleted", acc.Name)
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Conta %s removida.", acc.Name)))
	return nil
}
