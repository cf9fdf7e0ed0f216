package pgrest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/edgeflare/pgrest/pkg/rest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// queryFlags are shared by every subcommand that takes filters.
type queryFlags struct {
	filters []string
	orders  []string
	columns string
	limit   int
	offset  int
	count   string
	single  bool
}

func (q *queryFlags) register(f *pflag.FlagSet, reads bool) {
	f.StringArrayVarP(&q.filters, "filter", "f", nil, "filter as column:op:value, e.g. age:gte:18 or id:in:1,2,3 (repeatable)")
	f.IntVar(&q.limit, "limit", 0, "maximum number of rows")
	f.IntVar(&q.offset, "offset", 0, "number of rows to skip")
	if reads {
		f.StringVar(&q.columns, "columns", "", "comma-separated columns to select")
		f.StringArrayVar(&q.orders, "order", nil, "order as column[.asc|.desc][.nullsfirst|.nullslast] (repeatable)")
		f.StringVar(&q.count, "count", "", "count algorithm: exact, planned or estimated")
		f.BoolVar(&q.single, "single", false, "expect a single object")
	}
}

func (q *queryFlags) apply(cmd *cobra.Command, b *rest.Builder) error {
	for _, f := range q.filters {
		if err := applyFilter(b, f); err != nil {
			return err
		}
	}
	if q.columns != "" {
		b.Select(strings.Split(q.columns, ",")...)
	}
	for _, o := range q.orders {
		for _, term := range rest.ParseOrder(o) {
			b.Order(term.Column, term.Direction, term.NullsPosition)
		}
	}
	if cmd.Flags().Changed("limit") {
		b.Limit(q.limit)
	}
	if cmd.Flags().Changed("offset") {
		b.Offset(q.offset)
	}
	if q.count != "" {
		switch c := rest.Count(q.count); c {
		case rest.CountExact, rest.CountPlanned, rest.CountEstimated:
			b.Count(c)
		default:
			return fmt.Errorf("invalid count %q", q.count)
		}
	}
	if q.single {
		b.Single()
	}
	return nil
}

// applyFilter adds a filter given as column:op:value. Full-text operators take
// an optional text search configuration as op(config), e.g. fts(english).
func applyFilter(b *rest.Builder, s string) error {
	column, remainder, ok := strings.Cut(s, ":")
	if !ok || column == "" {
		return fmt.Errorf("invalid filter %q: want column:op:value", s)
	}
	opName, value, ok := strings.Cut(remainder, ":")
	if !ok {
		return fmt.Errorf("invalid filter %q: want column:op:value", s)
	}

	var ftsConfig string
	if name, cfg, found := strings.Cut(opName, "("); found {
		opName, ftsConfig = name, strings.TrimSuffix(cfg, ")")
	}
	op, err := rest.ParseOperator(opName)
	if err != nil {
		return fmt.Errorf("invalid filter %q: %w", s, err)
	}

	switch op {
	case rest.OpFts:
		b.Fts(column, value, ftsConfig)
	case rest.OpPlfts:
		b.Plfts(column, value, ftsConfig)
	case rest.OpPhfts:
		b.Phfts(column, value, ftsConfig)
	case rest.OpWfts:
		b.Wfts(column, value, ftsConfig)
	default:
		if ftsConfig != "" {
			return fmt.Errorf("invalid filter %q: only full-text operators take a config", s)
		}
		b.Filter(column, op, value)
	}
	return nil
}

// bodyFlags read a request body inline or from a file ("-" for stdin).
type bodyFlags struct {
	data string
	file string
	csv  bool
}

func (bf *bodyFlags) register(f *pflag.FlagSet) {
	f.StringVarP(&bf.data, "data", "d", "", "request body")
	f.StringVar(&bf.file, "file", "", "read the request body from a file, - for stdin")
}

func (bf *bodyFlags) read(cmd *cobra.Command) (string, error) {
	if bf.data != "" && bf.file != "" {
		return "", fmt.Errorf("--data and --file are mutually exclusive")
	}
	switch bf.file {
	case "":
		return bf.data, nil
	case "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	default:
		b, err := os.ReadFile(bf.file)
		if err != nil {
			return "", fmt.Errorf("failed to read body: %w", err)
		}
		return string(b), nil
	}
}

func (a *app) readCmd(use, short string, head bool) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   use + " TABLE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := a.client().From(args[0])
			if head {
				b.Head()
			}
			if err := q.apply(cmd, b); err != nil {
				return err
			}
			return a.run(cmd, b)
		},
	}
	q.register(cmd.Flags(), true)
	return cmd
}

func (a *app) writeCmd(verb, short string) *cobra.Command {
	var (
		q          queryFlags
		body       bodyFlags
		onConflict string
		returning  string
	)
	cmd := &cobra.Command{
		Use:   verb + " TABLE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := body.read(cmd)
			if err != nil {
				return err
			}

			b := a.client().From(args[0])
			switch verb {
			case "insert":
				if body.csv {
					b.InsertCSV(data)
				} else {
					b.Insert(data)
				}
			case "upsert":
				b.Upsert(data)
			case "update":
				b.Update(data)
			}
			if onConflict != "" {
				b.OnConflict(strings.Split(onConflict, ",")...)
			}
			if returning != "" {
				b.Returning(rest.Return(returning))
			}
			if err := q.apply(cmd, b); err != nil {
				return err
			}
			return a.run(cmd, b)
		},
	}
	body.register(cmd.Flags())
	q.register(cmd.Flags(), false)
	cmd.Flags().StringVar(&returning, "returning", "", "return preference: minimal, representation or headers-only")
	switch verb {
	case "insert":
		cmd.Flags().BoolVar(&body.csv, "csv", false, "send the body as text/csv")
	case "upsert":
		cmd.Flags().StringVar(&onConflict, "on-conflict", "", "comma-separated unique columns to resolve conflicts on")
	}
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	var q queryFlags
	var returning string
	cmd := &cobra.Command{
		Use:   "delete TABLE",
		Short: "Delete the rows matched by the filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := a.client().From(args[0]).Delete()
			if returning != "" {
				b.Returning(rest.Return(returning))
			}
			if err := q.apply(cmd, b); err != nil {
				return err
			}
			return a.run(cmd, b)
		},
	}
	q.register(cmd.Flags(), false)
	cmd.Flags().StringVar(&returning, "returning", "", "return preference: minimal, representation or headers-only")
	return cmd
}

func (a *app) rpcCmd() *cobra.Command {
	var q queryFlags
	var body bodyFlags
	cmd := &cobra.Command{
		Use:   "rpc FUNCTION",
		Short: "Call a database function with JSON arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := body.read(cmd)
			if err != nil {
				return err
			}
			b := a.client().Rpc(args[0], data)
			if err := q.apply(cmd, b); err != nil {
				return err
			}
			return a.run(cmd, b)
		},
	}
	body.register(cmd.Flags())
	q.register(cmd.Flags(), true)
	return cmd
}
