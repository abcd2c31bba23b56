package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"FinLevels/internal/domain/models"
	"FinLevels/internal/services/benchmark"
	"FinLevels/internal/services/consensus"
	"FinLevels/internal/services/dividends"
	"FinLevels/internal/services/levels"

	"github.com/google/subcommands"
)

// io shared by every subcommand; -f replaces stdin.
type ioFlags struct {
	file   string
	stdin  io.Reader
	stdout io.Writer
}

func (o *ioFlags) setFlags(f *flag.FlagSet) {
	f.StringVar(&o.file, "f", "", "read JSON input from file instead of stdin")
}

func (o *ioFlags) decode(v interface{}) error {
	r := o.stdin
	if o.file != "" {
		fh, err := os.Open(o.file)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer fh.Close()
		r = fh
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

func (o *ioFlags) print(v interface{}) subcommands.ExitStatus {
	enc := json.NewEncoder(o.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitUsageError
}

func commands(stdin io.Reader, stdout io.Writer) []subcommands.Command {
	o := ioFlags{stdin: stdin, stdout: stdout}
	return []subcommands.Command{
		&pivotCmd{ioFlags: o},
		&signalCmd{ioFlags: o},
		&consensusCmd{ioFlags: o},
		&dividendsCmd{ioFlags: o},
		&benchmarkCmd{ioFlags: o},
	}
}

type pivotCmd struct {
	ioFlags
	window string
}

func (*pivotCmd) Name() string     { return "pivot" }
func (*pivotCmd) Synopsis() string { return "compute pivot levels from daily bars" }
func (*pivotCmd) Usage() string {
	return `levelctl pivot [-window 1|3..8|week|month] [-f bars.json]

  Reads a JSON array of daily bars (oldest first) and prints the pivot levels.
`
}

func (c *pivotCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.window, "window", "1", "pivot window")
}

func (c *pivotCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	window, err := models.ParseWindowSize(c.window)
	if err != nil {
		return fail(err)
	}
	var bars []models.OhlcBar
	if err := c.decode(&bars); err != nil {
		return fail(err)
	}
	if p := window.Period(); p != models.PeriodDay {
		bars = levels.AggregateBars(bars, p)
	}
	lv, ok := levels.ComputeLevels(bars, window)
	out := struct {
		Window  models.WindowSize   `json:"window"`
		Present bool                `json:"present"`
		Levels  *models.PivotLevels `json:"levels"`
	}{Window: window, Present: ok}
	if ok {
		out.Levels = &lv
	}
	return c.print(out)
}

type signalInput struct {
	Levels         models.PivotLevels           `json:"levels"`
	Quote          models.Quote                 `json:"quote"`
	Recommendation *models.RecommendationCounts `json:"recommendation"`
}

type signalCmd struct {
	ioFlags
	price float64
}

func (*signalCmd) Name() string     { return "signal" }
func (*signalCmd) Synopsis() string { return "classify a price against trading levels" }
func (*signalCmd) Usage() string {
	return `levelctl signal [-price p] [-f input.json]

  Reads {"levels": {...}, "quote": {...}, "recommendation": {...}} and prints the
  trading levels and signal. -price overrides quote.price.
`
}

func (c *signalCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.Float64Var(&c.price, "price", 0, "price to classify (defaults to quote.price)")
}

func (c *signalCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var in signalInput
	if err := c.decode(&in); err != nil {
		return fail(err)
	}
	if c.price > 0 {
		in.Quote.Price = c.price
	}
	tl := levels.DeriveTradingLevels(in.Levels, in.Quote, in.Recommendation)
	var price *float64
	if in.Quote.Price > 0 {
		price = &in.Quote.Price
	}
	sig := levels.Classify(price, &tl)
	return c.print(struct {
		Levels      models.TradingLevels `json:"levels"`
		Signal      models.Signal        `json:"signal"`
		AnalystView models.AnalystView   `json:"analyst_view"`
	}{tl, sig, consensus.Resolve(in.Recommendation)})
}

type consensusCmd struct {
	ioFlags
}

func (*consensusCmd) Name() string     { return "consensus" }
func (*consensusCmd) Synopsis() string { return "resolve analyst recommendation counts" }
func (*consensusCmd) Usage() string {
	return `levelctl consensus [-f counts.json]

  Reads recommendation counts (or null) and prints the consensus view.
`
}

func (c *consensusCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *consensusCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var counts *models.RecommendationCounts
	if err := c.decode(&counts); err != nil {
		return fail(err)
	}
	return c.print(map[string]models.AnalystView{"view": consensus.Resolve(counts)})
}

type dividendsCmd struct {
	ioFlags
}

func (*dividendsCmd) Name() string     { return "dividends" }
func (*dividendsCmd) Synopsis() string { return "rank dividend records" }
func (*dividendsCmd) Usage() string {
	return `levelctl dividends [-f records.json]

  Reads a JSON array of dividend records and prints the total and rankings.
`
}

func (c *dividendsCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *dividendsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var records []models.DividendRecord
	if err := c.decode(&records); err != nil {
		return fail(err)
	}
	return c.print(dividends.Aggregate(records))
}

type benchmarkInput struct {
	Assets          []models.Asset                      `json:"assets"`
	AssetSeries     map[string][]models.TimeSeriesPoint `json:"asset_series"`
	BenchmarkSeries []models.TimeSeriesPoint            `json:"benchmark_series"`
}

type benchmarkCmd struct {
	ioFlags
	granularity string
}

func (*benchmarkCmd) Name() string     { return "benchmark" }
func (*benchmarkCmd) Synopsis() string { return "compare a portfolio against a benchmark series" }
func (*benchmarkCmd) Usage() string {
	return `levelctl benchmark [-granularity day|week|month] [-f input.json]

  Reads {"assets": [...], "asset_series": {...}, "benchmark_series": [...]} and prints
  both series normalized to 100.
`
}

func (c *benchmarkCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.granularity, "granularity", "day", "date label granularity")
}

func (c *benchmarkCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var in benchmarkInput
	if err := c.decode(&in); err != nil {
		return fail(err)
	}
	return c.print(benchmark.Compare(in.Assets, in.AssetSeries, in.BenchmarkSeries, c.granularity))
}
