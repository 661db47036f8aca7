package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"trade-journal-lab/internal/campaign"
	"trade-journal-lab/internal/grouping"
	"trade-journal-lab/internal/ingestion"
	"trade-journal-lab/internal/pipeline"
	"trade-journal-lab/internal/reporting"
	"trade-journal-lab/internal/storage"
	"trade-journal-lab/internal/verification"
)

// Files written by report --output-dir.
const (
	reportFile       = "REPORT.md"
	closedTradesFile = "closed_trades.csv"
	strategiesFile   = "strategies.csv"
	campaignsFile    = "campaigns.csv"
	equityCurveFile  = "equity_curve.csv"
)

var (
	errChecksFailed = errors.New("integrity checks failed")
	errStale        = errors.New("stored closed trades diverge from the journal, run analyze")
)

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [statement.xml...]",
		Short: "Import Flex statements into the journal",
		Long: `Parse IBKR Flex XML statements and merge their trades and cash transactions
into the journal. Rows already stored are ignored, so overlapping statements
can be imported repeatedly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !a.fixtures {
				return errors.New("no statement given (pass files or --fixtures)")
			}
			ctx := cmd.Context()

			loc, err := a.cfg.Ingestion.Location()
			if err != nil {
				return err
			}

			return a.withStores(ctx, func(stores *storage.Stores) error {
				importer := ingestion.NewImporter(ingestion.ImporterOptions{
					Executions:       stores.Executions,
					CashTransactions: stores.CashTransactions,
					Parser:           ingestion.NewParser(ingestion.WithLocation(loc), ingestion.WithParserLogger(a.logger)),
					Logger:           a.logger,
				})

				out := cmd.OutOrStdout()
				for _, path := range args {
					res, err := importer.ImportFile(ctx, path)
					if err != nil {
						return err
					}
					a.metrics.RecordImport(res.ExecutionsRead, res.ExecutionsInserted,
						res.CashTransactionsRead, res.CashInserted, res.Skipped, res.Filtered)
					fmt.Fprintf(out, "%s: %d/%d executions, %d/%d cash transactions inserted (%d skipped, %d filtered)\n",
						path, res.ExecutionsInserted, res.ExecutionsRead,
						res.CashInserted, res.CashTransactionsRead, res.Skipped, res.Filtered)
				}
				return nil
			})
		},
	}
}

func (a *app) analyzeCmd() *cobra.Command {
	var (
		metricsTextfile string
		workers         int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Rebuild closed trades, strategies and campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("workers") {
				a.cfg.Matching.Workers = workers
			}
			if metricsTextfile == "" {
				metricsTextfile = a.cfg.Metrics.Textfile
			}

			return a.withStores(ctx, func(stores *storage.Stores) error {
				analysis, err := a.analyze(ctx, stores)
				if err != nil {
					return err
				}

				perf := analysis.Performance
				fmt.Fprintf(cmd.OutOrStdout(),
					"%d closed trades, %d open positions, %d strategies, %d campaigns, net P&L %.2f\n",
					perf.TradeCount, len(analysis.Open), len(analysis.Strategies), len(analysis.Campaigns), perf.NetPnL)

				if metricsTextfile != "" {
					if err := a.metrics.WriteTextfile(metricsTextfile); err != nil {
						return err
					}
					a.logger.WithField("path", metricsTextfile).Info("wrote metrics textfile")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Parallel matching workers (>1 matches asset keys concurrently)")

	return cmd
}

func (a *app) analyze(ctx context.Context, stores *storage.Stores) (*pipeline.Analysis, error) {
	analyzer := pipeline.NewAnalyzer(pipeline.AnalyzerOptions{
		Stores: stores,
		Grouper: grouping.NewGrouper(
			grouping.WithGap(a.cfg.Grouping.Gap),
			grouping.WithLogger(a.logger),
		),
		Builder: campaign.NewBuilder(
			campaign.WithTolerances(a.cfg.Campaigns.ShortTolerance, a.cfg.Campaigns.LongTolerance),
			campaign.WithExcludedRoots(a.cfg.Campaigns.ExcludedRoots),
			campaign.WithLogger(a.logger),
		),
		Workers: a.cfg.Matching.Workers,
		Metrics: a.metrics,
		Logger:  a.logger,
	})
	return analyzer.Run(ctx)
}

type reportOptions struct {
	outputDir string
	from      string
	to        string
	symbols   []string
	currency  string
	analyze   bool
	check     bool
	render    bool
}

func (a *app) reportCmd() *cobra.Command {
	opts := reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the journal report as Markdown and CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			filter, err := opts.filter()
			if err != nil {
				return err
			}

			return a.withStores(ctx, func(stores *storage.Stores) error {
				if opts.analyze {
					if _, err := a.analyze(ctx, stores); err != nil {
						return err
					}
				}

				loc, err := a.cfg.Ingestion.Location()
				if err != nil {
					return err
				}

				gen := reporting.NewGenerator(stores).
					WithFilter(filter).
					WithCurrency(opts.currency).
					WithLocation(loc)
				if opts.check {
					gen = gen.WithIntegrity(pipeline.NewIntegrityChecker(stores.Executions, stores.CashTransactions))
				}

				report, err := gen.Generate(ctx)
				if err != nil {
					return err
				}

				files, err := writeReport(opts.outputDir, report)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if opts.render {
					rendered, err := renderTerminal(reporting.RenderMarkdown(report))
					if err != nil {
						return err
					}
					fmt.Fprint(out, rendered)
				}

				fmt.Fprintln(out, "Report generated successfully:")
				for _, f := range files {
					fmt.Fprintf(out, "  - %s\n", f)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "docs", "Output directory for generated files")
	cmd.Flags().StringVar(&opts.from, "from", "", "Only trades closed on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.to, "to", "", "Only trades closed before this date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&opts.symbols, "symbols", nil, "Only these root symbols (comma separated)")
	cmd.Flags().StringVar(&opts.currency, "currency", reporting.DefaultCurrency, "Currency of money cells")
	cmd.Flags().BoolVar(&opts.analyze, "analyze", false, "Run analyze before rendering")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Include integrity checks")
	cmd.Flags().BoolVar(&opts.render, "render", false, "Print the Markdown report rendered for the terminal")

	return cmd
}

func (o reportOptions) filter() (reporting.Filter, error) {
	f := reporting.Filter{Roots: o.symbols}
	var err error
	if o.from != "" {
		if f.From, err = time.Parse(time.DateOnly, o.from); err != nil {
			return f, fmt.Errorf("parse --from: %w", err)
		}
	}
	if o.to != "" {
		if f.To, err = time.Parse(time.DateOnly, o.to); err != nil {
			return f, fmt.Errorf("parse --to: %w", err)
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return f, fmt.Errorf("--from %s must be before --to %s", o.from, o.to)
	}
	return f, nil
}

// writeReport writes the markdown report and the CSV tables to dir.
func writeReport(dir string, r *reporting.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{reportFile, func(w io.Writer) error {
			_, err := io.WriteString(w, reporting.RenderMarkdown(r))
			return err
		}},
		{closedTradesFile, func(w io.Writer) error {
			return reporting.RenderClosedTradesCSV(w, r.ClosedTrades, r.Location)
		}},
		{strategiesFile, func(w io.Writer) error {
			return reporting.RenderStrategyCSV(w, r.Strategies, r.Location)
		}},
		{campaignsFile, func(w io.Writer) error {
			return reporting.RenderCampaignCSV(w, r.Campaigns, r.Location)
		}},
		{equityCurveFile, func(w io.Writer) error {
			return reporting.RenderEquityCurveCSV(w, r.EquityCurve, r.Location)
		}},
	}

	files := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := writeFile(path, o.write); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func renderTerminal(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	return renderer.Render(md)
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the raw journal for gaps that distort P&L",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStores(ctx, func(stores *storage.Stores) error {
				result, err := pipeline.NewIntegrityChecker(stores.Executions, stores.CashTransactions).Check(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CHECK\tTHRESHOLD\tACTUAL\tSTATUS")
				for _, c := range result.Checks {
					status := "FAIL"
					if c.Pass {
						status = "PASS"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, c.Threshold, c.Actual, status)
				}
				if err := tw.Flush(); err != nil {
					return err
				}

				if !result.AllPass {
					fmt.Fprintln(out)
					fmt.Fprintln(out, strings.Join(result.Errors, "\n"))
					return errChecksFailed
				}
				return nil
			})
		},
	}
}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [trade-id]",
		Short: "Verify stored closed trades against a replay of the journal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStores(ctx, func(stores *storage.Stores) error {
				v := verification.NewReplayVerifier(verification.ReplayVerifierOptions{
					Executions:       stores.Executions,
					CashTransactions: stores.CashTransactions,
					ClosedTrades:     stores.ClosedTrades,
				})
				out := cmd.OutOrStdout()

				if len(args) == 1 {
					result, err := v.VerifyTrade(ctx, args[0])
					if err != nil {
						return err
					}
					printVerification(out, *result)
					if !result.Match {
						return errStale
					}
					return nil
				}

				report, err := v.VerifyAll(ctx)
				if err != nil {
					return err
				}
				for _, r := range report.Results {
					if !r.Match {
						printVerification(out, r)
					}
				}
				for _, id := range report.UnstoredTrades {
					fmt.Fprintf(out, "%s: produced by replay but not stored\n", id)
				}
				fmt.Fprintf(out, "%d/%d stored trades match, %d diverge, %d unstored\n",
					report.MatchedTrades, report.TotalTrades, report.DivergentTrades, len(report.UnstoredTrades))

				if !report.Consistent() {
					return errStale
				}
				return nil
			})
		},
	}
}

func printVerification(w io.Writer, r verification.VerificationResult) {
	switch {
	case r.MissingInReplay:
		fmt.Fprintf(w, "%s: stored but no longer produced by replay\n", r.TradeID)
	case r.Match:
		fmt.Fprintf(w, "%s: match\n", r.TradeID)
	default:
		for _, d := range r.Divergences {
			fmt.Fprintf(w, "%s: %s stored %v, replayed %v\n", r.TradeID, d.Field, d.Expected, d.Actual)
		}
	}
}
