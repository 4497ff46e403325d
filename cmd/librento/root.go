// Command librento is a thin operator CLI over the library core. It connects
// to the configured Postgres database, runs one command, and prints the
// result as JSON.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/librento/librento"
	"github.com/librento/librento/config"
	"github.com/librento/librento/ledger"
	"github.com/librento/librento/oteladapters"
	"github.com/librento/librento/postgresengine"
	"github.com/librento/librento/present"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "librento",
		Short:         "Library management over Postgres",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newBorrowCommand(),
		newReturnCommand(),
		newLoansCommand(),
		newBooksCommand(),
		newMembersCommand(),
		newStatsCommand(),
	)

	return root
}

// openService builds a Service over a pgx pool from the environment
// configuration. The returned cleanup closes the pool.
func openService(ctx context.Context) (*librento.Service, func(), error) {
	cfg, err := config.ParseEnv()
	if err != nil {
		return nil, nil, err
	}

	pool, err := cfg.OpenPGXPool(ctx)
	if err != nil {
		return nil, nil, err
	}

	logger := oteladapters.NewSlogBridgeLoggerWithHandler(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	engine, err := postgresengine.NewEngineFromPGXPool(pool, postgresengine.WithLogger(logger))
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	policy, err := cfg.LedgerPolicy()
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	locale, err := language.Parse(cfg.SortLocale)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	service, err := librento.NewService(
		engine.BookStore(),
		engine.MemberDirectory(),
		engine.LoanStore(),
		librento.WithPolicy(policy),
		librento.WithLogger(logger),
		librento.WithLocale(locale),
	)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	return service, pool.Close, nil
}

func printJSON(cmd *cobra.Command, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

	return nil
}

func newBorrowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <book-id> <member-email>",
		Short: "Lend one copy of a book to a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			service, cleanup, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			record, err := service.Borrow(cmd.Context(), bookID, args[1])
			if err != nil {
				return err
			}

			return printJSON(cmd, record)
		},
	}
}

func newReturnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "return <book-id> <member-email>",
		Short: "Take a book back and print the settlement bill",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			service, cleanup, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			_, bill, err := service.Return(cmd.Context(), bookID, args[1])
			if err != nil {
				return err
			}

			encoded, err := present.EncodeBill(bill)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

			return nil
		},
	}
}

func newLoansCommand() *cobra.Command {
	var (
		query      string
		status     string
		member     string
		sortKey    string
		descending bool
	)

	cmd := &cobra.Command{
		Use:   "loans",
		Short: "List loans with derived status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, cleanup, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			filter := present.LoanFilter{Query: query, Status: ledger.Status(status)}

			sortState := present.SortState{Key: present.SortKey(sortKey), Direction: present.Ascending}
			if descending {
				sortState.Direction = present.Descending
			}

			var rows []present.LoanRow
			if member != "" {
				rows, err = service.MemberLoanRows(cmd.Context(), member, filter, sortState)
			} else {
				rows, err = service.LoanRows(cmd.Context(), filter, sortState)
			}
			if err != nil {
				return err
			}

			encoded, err := present.EncodeLoanRows(rows)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "substring filter over title, author, member name, and email")
	cmd.Flags().StringVar(&status, "status", "", "filter by status: borrowed, overdue, or returned")
	cmd.Flags().StringVar(&member, "member", "", "restrict to one member email")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort key: bookTitle, memberName, borrowDate, dueDate, or status")
	cmd.Flags().BoolVar(&descending, "desc", false, "sort descending")

	return cmd
}

func newBooksCommand() *cobra.Command {
	var (
		query         string
		category      string
		onlyAvailable bool
	)

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, cleanup, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if onlyAvailable {
				books, listErr := service.AvailableBooks(cmd.Context())
				if listErr != nil {
					return listErr
				}

				return printJSON(cmd, books)
			}

			books, err := service.Books(cmd.Context(), present.BookFilter{Query: query, Category: category})
			if err != nil {
				return err
			}

			return printJSON(cmd, books)
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "substring filter over title, author, and category")
	cmd.Flags().StringVar(&category, "category", "", "filter by exact category")
	cmd.Flags().BoolVar(&onlyAvailable, "available", false, "only books with available copies")

	return cmd
}

func newMembersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "List registered members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, cleanup, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			members, err := service.Members(cmd.Context())
			if err != nil {
				return err
			}

			return printJSON(cmd, members)
		},
	}
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, cleanup, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := service.Stats(cmd.Context())
			if err != nil {
				return err
			}

			return printJSON(cmd, stats)
		},
	}
}
