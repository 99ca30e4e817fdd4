package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/guidecrawl/internal/database"
)

// queryFunc runs one read-only lookup and returns its result.
type queryFunc func(ctx context.Context, db *database.RestaurantDB, args []string) (any, error)

// NewQueryCmd creates the query command and its lookups.
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Look up restaurants in the database",
		Long: `Query runs read-only lookups against the restaurant database built by
"guidecrawl load" or "guidecrawl run".

Examples:
  guidecrawl query cities
  guidecrawl query cuisines
  guidecrawl query city Cupertino
  guidecrawl query cuisine Japanese
  guidecrawl query show "Sushi Taro" --json`,
	}

	cmd.AddCommand(newQuerySubCmd("cities", "List every city", cobra.NoArgs,
		func(ctx context.Context, db *database.RestaurantDB, _ []string) (any, error) {
			return db.Cities(ctx)
		}))
	cmd.AddCommand(newQuerySubCmd("cuisines", "List every cuisine", cobra.NoArgs,
		func(ctx context.Context, db *database.RestaurantDB, _ []string) (any, error) {
			return db.Cuisines(ctx)
		}))
	cmd.AddCommand(newQuerySubCmd("city <name>", "List the restaurants in a city", cobra.ExactArgs(1),
		func(ctx context.Context, db *database.RestaurantDB, args []string) (any, error) {
			return db.RestaurantsByCity(ctx, args[0])
		}))
	cmd.AddCommand(newQuerySubCmd("cuisine <name>", "List the restaurants serving a cuisine", cobra.ExactArgs(1),
		func(ctx context.Context, db *database.RestaurantDB, args []string) (any, error) {
			return db.RestaurantsByCuisine(ctx, args[0])
		}))
	cmd.AddCommand(newQuerySubCmd("show <name>", "Show a restaurant's details", cobra.ExactArgs(1),
		func(ctx context.Context, db *database.RestaurantDB, args []string) (any, error) {
			return db.Details(ctx, args[0])
		}))

	return cmd
}

func newQuerySubCmd(use, short string, args cobra.PositionalArgs, fn queryFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, fn)
		},
	}

	addStorageFlags(cmd)
	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, fn queryFunc) error {
	// Positional arguments here are lookup keys, not a seed path.
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	db, err := openQueryDB(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := fn(ctx, db, args)
	if err != nil {
		return err
	}

	if cfg.JSONReport {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printResult(cmd.OutOrStdout(), result)
}

func printResult(w io.Writer, result any) error {
	switch v := result.(type) {
	case []string:
		for _, s := range v {
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
		}
	case *database.Details:
		_, err := fmt.Fprintf(w, "Name:     %s\nURL:      %s\nCity:     %s\nCost:     %s\nCuisine:  %s\nAddress:  %s\n",
			v.Name, v.URL, v.City, v.Cost, v.Cuisine, orNone(v.Address))
		return err
	default:
		return fmt.Errorf("unexpected query result %T", result)
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
