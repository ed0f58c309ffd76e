package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/dracor"
	"github.com/kailas-cloud/dracor/internal/domain/record"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show API instance information",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, c *dracor.Client, p *printer, _ []string) error {
			info, err := c.Info(ctx)
			if err != nil {
				return err
			}
			if p.isJSON() {
				return p.json(info)
			}
			p.kv([][2]string{
				{"Name", info.Name},
				{"Status", info.Status},
				{"Version", info.Version},
				{"eXist-db", info.ExistDB},
				{"Base", info.Base},
			})
			return nil
		}),
	}
}

func newCorporaCmd() *cobra.Command {
	var withMetrics bool
	cmd := &cobra.Command{
		Use:   "corpora",
		Short: "List corpora",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, c *dracor.Client, p *printer, _ []string) error {
			list, err := c.Corpora(ctx, withMetrics)
			if err != nil {
				return err
			}
			if p.isJSON() {
				return p.json(list)
			}
			header := []string{"NAME", "TITLE"}
			if withMetrics {
				header = append(header, "PLAYS")
			}
			rows := make([][]string, 0, len(list))
			for _, corpus := range list {
				row := []string{record.String(corpus["name"]), record.String(corpus["title"])}
				if withMetrics {
					m, _ := record.AsMap(corpus["metrics"])
					row = append(row, record.String(m["plays"]))
				}
				rows = append(rows, row)
			}
			p.table(header, rows)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "include corpus metrics")
	return cmd
}

func newFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filter <corpus> <condition=value>...",
		Short: "List ids of plays matching every condition",
		Long: "Conditions are named <field-path>__<operator>, e.g. written_year__eq=1913 or\n" +
			"authors__name__contains=Gorky. Operators: eq ne gt ge lt le contains icontains exact iexact in.",
		Args: cobra.MinimumNArgs(1),
		RunE: run(func(ctx context.Context, c *dracor.Client, p *printer, args []string) error {
			conditions, err := parseConditions(args[1:])
			if err != nil {
				return err
			}
			ids, err := c.Corpus(args[0]).Filter(ctx, conditions)
			if err != nil {
				return err
			}
			if p.isJSON() {
				return p.json(map[string]any{"corpus": args[0], "ids": ids})
			}
			p.lines(ids)
			return nil
		}),
	}
}

// parseConditions splits name=value arguments. A comma-separated value of an
// __in condition becomes a list.
func parseConditions(args []string) (dracor.Conditions, error) {
	conditions := make(dracor.Conditions, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("condition %q: want <field-path>__<operator>=<value>", arg)
		}
		if strings.HasSuffix(name, "__in") && strings.Contains(value, ",") {
			conditions[name] = strings.Split(value, ",")
			continue
		}
		conditions[name] = value
	}
	return conditions, nil
}

func newAuthorsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "authors <corpus>",
		Short: "List authors by number of plays",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, c *dracor.Client, p *printer, args []string) error {
			authors, err := c.Corpus(args[0]).Authors(ctx, limit)
			if err != nil {
				return err
			}
			if p.isJSON() {
				return p.json(authors)
			}
			rows := make([][]string, len(authors))
			for i, a := range authors {
				rows[i] = []string{a.Name, strconv.Itoa(a.Plays)}
			}
			p.table([]string{"AUTHOR", "PLAYS"}, rows)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of authors (0 for all)")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <corpus>",
		Short: "Show a corpus's year coverage",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, c *dracor.Client, p *printer, args []string) error {
			sum, err := c.Corpus(args[0]).Summary(ctx)
			if err != nil {
				return err
			}
			if p.isJSON() {
				return p.json(sum)
			}
			p.kv([][2]string{
				{"Corpus", sum.Name},
				{"Title", sum.Title},
				{"Plays", strconv.Itoa(sum.NumOfPlays)},
				{"Written", yearRange(sum.WrittenYears)},
				{"Premiered", yearRange(sum.PremiereYears)},
				{"Printed", yearRange(sum.PrintYears)},
				{"Normalized", fmt.Sprintf("%d-%d", sum.NormalizedYears.From, sum.NormalizedYears.To)},
			})
			return nil
		}),
	}
}

func yearRange(r dracor.YearRange) string {
	if r.Empty() {
		return "-"
	}
	return r.From + "-" + r.To
}

func newPlayCmd() *cobra.Command {
	var withMetrics bool
	cmd := &cobra.Command{
		Use:   "play <corpus> <play>",
		Short: "Show play metadata",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, c *dracor.Client, p *printer, args []string) error {
			play := c.Play(args[0], args[1])
			var (
				rec dracor.Record
				err error
			)
			if withMetrics {
				rec, err = play.Metrics(ctx)
			} else {
				rec, err = play.Info(ctx)
			}
			if err != nil {
				return err
			}
			if p.isJSON() {
				return p.json(rec)
			}
			p.kv(scalarPairs(rec))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "show network metrics instead of metadata")
	return cmd
}

// scalarPairs lists the record's non-nested fields sorted by name.
func scalarPairs(rec dracor.Record) [][2]string {
	keys := make([]string, 0, len(rec))
	for k, v := range rec {
		if _, isMap := record.AsMap(v); isMap {
			continue
		}
		if _, isList := record.AsList(v); isList {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([][2]string, len(keys))
	for i, k := range keys {
		pairs[i] = [2]string{k, record.String(rec[k])}
	}
	return pairs
}
