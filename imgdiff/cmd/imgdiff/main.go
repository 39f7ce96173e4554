// imgdiff compares a tree of baseline images against a tree of candidate
// images, writes a diff image for every pair whose pixels differ and
// summarizes the result on stdout and in an HTML page.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opencensus.io/trace"
	"golang.org/x/term"

	"go.skia.org/imgdiff/go/metrics2"
	"go.skia.org/imgdiff/go/skerr"
	"go.skia.org/imgdiff/go/sklog"
	"go.skia.org/imgdiff/go/timer"
	"go.skia.org/imgdiff/imgdiff/go/artifactstore"
	"go.skia.org/imgdiff/imgdiff/go/codec"
	"go.skia.org/imgdiff/imgdiff/go/compare"
	"go.skia.org/imgdiff/imgdiff/go/config"
	"go.skia.org/imgdiff/imgdiff/go/pairs"
	"go.skia.org/imgdiff/imgdiff/go/report"
	"go.skia.org/imgdiff/imgdiff/go/scheduler"
	"go.skia.org/imgdiff/imgdiff/go/summary"
	"go.skia.org/imgdiff/imgdiff/go/types"
)

// runEnv provides the environment for a run.
type runEnv struct {
	configFile string
	workers    int
	jsonReport string
	extension  string
	promPort   string
	verbose    bool
}

func main() {
	if err := rootCmd(os.Stdout).Execute(); err != nil {
		sklog.Fatalf("imgdiff failed: %s", err)
	}
}

// rootCmd returns the definition of the imgdiff command, which prints its
// report to out.
func rootCmd(out io.Writer) *cobra.Command {
	return newRootCmd(&runEnv{}, out)
}

func newRootCmd(env *runEnv, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imgdiff [good] [bad] [ugly] [diff]",
		Short: "Compare two trees of rendered images",
		Long: `
Pairs every image under the good directory with the file at the same relative
path under the bad directory and classifies each pair as byte-equal,
pixel-equal, missing, incomparable or pixel-diff.

Diff images are written to the diff directory, named by their content. The
HTML report (ugly) links them next to the inputs, most changed first.

Defaults: good=good bad=bad ugly=ugly.html diff=/tmp.
`,
		Args:          cobra.MaximumNArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.loadConfig(cmd, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, out)
		},
	}
	cmd.Flags().StringVar(&env.configFile, "config", "", "JSON5 file with the run configuration. Positional arguments and flags override it.")
	cmd.Flags().IntVar(&env.workers, "workers", 0, "Pairs compared at once. 0 means one per CPU.")
	cmd.Flags().StringVar(&env.jsonReport, "json", "", "If set, also write a JSON report to this file. A .gz suffix compresses it.")
	cmd.Flags().StringVar(&env.extension, "ext", pairs.DefaultExtension, "Suffix of the files to compare.")
	cmd.Flags().StringVar(&env.promPort, "prom_port", "", "If set, serve Prometheus metrics on this address, e.g. ':20000'.")
	cmd.Flags().BoolVar(&env.verbose, "verbose", false, "List every pair that is not equal and log debug output.")
	return cmd
}

// loadConfig merges, in increasing priority, the defaults, the config file,
// the positional arguments and any flags set on the command line.
func (e *runEnv) loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()
	if e.configFile != "" {
		var err error
		if cfg, err = config.LoadFromJSON5(e.configFile); err != nil {
			return config.Config{}, err
		}
	}
	for i, dst := range []*string{&cfg.GoodDir, &cfg.BadDir, &cfg.HTMLReport, &cfg.ArtifactDir} {
		if i < len(args) {
			*dst = args[i]
		}
	}
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = e.workers
	}
	if flags.Changed("json") {
		cfg.JSONReport = e.jsonReport
	}
	if flags.Changed("ext") || cfg.Extension == "" {
		cfg.Extension = e.extension
	}
	if flags.Changed("prom_port") {
		cfg.PromPort = e.promPort
	}
	if flags.Changed("verbose") {
		cfg.Verbose = e.verbose
	}
	return cfg, nil
}

// run compares every pair described by cfg and writes the reports. Only setup
// problems are returned; the classification of individual pairs never fails
// the run.
func run(ctx context.Context, cfg config.Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := trace.StartSpan(ctx, "imgdiff_Run")
	defer span.End()
	defer metrics2.NewTimer("imgdiff_run").Stop()

	sklog.SetVerbose(cfg.Verbose)
	if cfg.PromPort != "" {
		servePrometheus(cfg.PromPort)
	}

	store, err := artifactstore.New(cfg.ArtifactDir, codec.PNG{})
	if err != nil {
		return err
	}
	items, err := pairs.Find(cfg.GoodDir, cfg.BadDir, cfg.Extension)
	if err != nil {
		return err
	}
	span.AddAttributes(trace.Int64Attribute("pairs", int64(len(items))))
	metrics2.GetInt64Metric("imgdiff_pairs_found").Update(int64(len(items)))

	comparator := compare.New(codec.PNG{}, store)
	t := timer.New(fmt.Sprintf("Comparing %d pairs", len(items)))
	scheduler.Run(ctx, len(items), cfg.Workers, func(ctx context.Context, i int) {
		comparator.Compare(ctx, &items[i])
	})
	t.Stop()
	sklog.Infof("Diff images: %d written, %d already present", store.Misses(), store.Hits())

	s := summary.Summarize(items)
	if err := report.WriteText(out, s, report.TextOptions{
		Verbose:      cfg.Verbose,
		Color:        isTerminal(out),
		ArtifactPath: store.Path,
	}); err != nil {
		return skerr.Wrapf(err, "writing text report")
	}
	if cfg.JSONReport != "" {
		err := report.WriteFile(cfg.JSONReport, func(w io.Writer) error {
			return report.WriteJSON(w, s)
		})
		if err != nil {
			return skerr.Wrapf(err, "writing JSON report")
		}
	}
	if cfg.HTMLReport != "" {
		err := report.WriteFile(cfg.HTMLReport, func(w io.Writer) error {
			return report.WriteHTML(w, s, store.Path)
		})
		if err != nil {
			return skerr.Wrapf(err, "writing HTML report")
		}
		if _, err := fmt.Fprintln(out, cfg.HTMLReport); err != nil {
			return skerr.Wrap(err)
		}
	}
	sklog.Infof("%d of %d pairs differ, %d equal", s.Count(types.Diff), s.Total, s.Equal())
	return nil
}

// isTerminal returns true if w is a terminal, where colored output is wanted.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// servePrometheus serves the metrics endpoint in the background for the rest
// of the process.
func servePrometheus(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		sklog.Infof("Serving metrics on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			sklog.Errorf("Metrics server stopped: %s", err)
		}
	}()
}
