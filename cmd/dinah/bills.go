package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dinah/internal/cli"
	"github.com/Veraticus/dinah/internal/common"
	"github.com/Veraticus/dinah/internal/extract"
	"github.com/Veraticus/dinah/internal/knowledge"
	"github.com/Veraticus/dinah/internal/model"
	"github.com/Veraticus/dinah/internal/summary"
)

func billsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bills",
		Aliases: []string{"contas-fixas"},
		Short:   "Manage fixed monthly bills",
		RunE:    runListBills,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List fixed bills and this month's status",
		RunE:  runListBills,
	})

	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Register a fixed bill",
		Args:  cobra.ExactArgs(1),
		RunE:  runAddBill,
	}
	addCmd.Flags().Float64("amount", 0, "Monthly amount")
	addCmd.Flags().Int("due-day", 0, "Day of the month the bill is due (1-31)")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("due-day")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a fixed bill",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteBill,
	})

	return cmd
}

func runListBills(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	bills, err := store.GetRecurringBills(ctx)
	if err != nil {
		return fmt.Errorf("failed to load fixed bills: %w", err)
	}
	active := model.ActiveBills(bills)
	if len(active) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nenhuma conta fixa cadastrada."))
		return nil
	}

	now := time.Now()
	status := summary.ClassifyBills(active, now)
	var b strings.Builder
	for i, bill := range active {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-18s %14s  %s", bill.Name, model.FormatBRL(bill.Amount), billState(bill, status))
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Contas fixas", b.String()))
	return nil
}

func billState(bill model.FixedBill, status summary.BillStatus) string {
	day := bill.DueDate(status.Now).Day()
	for _, group := range []struct {
		bills []model.FixedBill
		text  string
	}{
		{status.Paid, cli.SuccessStyle.Render("paga")},
		{status.Overdue, cli.ErrorStyle.Render(fmt.Sprintf("vencida no dia %d", day))},
		{status.Upcoming, cli.WarningStyle.Render(fmt.Sprintf("vence no dia %d", day))},
	} {
		for _, b := range group.bills {
			if b.ID == bill.ID {
				return group.text
			}
		}
	}
	return cli.SubtleStyle.Render(fmt.Sprintf("todo dia %d", bill.DueDay))
}

func runAddBill(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	amount, _ := cmd.Flags().GetFloat64("amount")
	dueDay, _ := cmd.Flags().GetInt("due-day")

	category := knowledge.BillOther
	if match, ok := extract.FixedBill(args[0], nil); ok {
		category = match.Category
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	bill, err := store.AddRecurringBill(ctx, model.NewFixedBill{
		Name:     args[0],
		Category: string(category),
		Amount:   amount,
		DueDay:   dueDay,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			return fmt.Errorf("fixed bill %q already exists", args[0])
		}
		return fmt.Errorf("failed to register fixed bill: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Conta fixa %s cadastrada: %s todo dia %d.",
		bill.Name, model.FormatBRL(bill.Amount), bill.DueDay)))
	return nil
}

func runDeleteBill(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	bills, err := store.GetRecurringBills(ctx)
	if err != nil {
		return fmt.Errorf("failed to load fixed bills: %w", err)
	}
	bill, err := findBill(bills, args[0])
	if err != nil {
		return err
	}
	if err := store.DeleteRecurringBill(ctx, bill.ID); err != nil {
		return fmt.Errorf("failed to delete fixed bill: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Conta fixa %s removida.", bill.Name)))
	return nil
}
