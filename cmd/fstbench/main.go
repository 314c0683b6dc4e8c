// Command fstbench runs a fixed battery of optimize/compose/determinize
// timings over every AT&T text FST in a corpus directory and prints a
// table of results to stdout.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jamra/gofst/fst"
	"github.com/jamra/gofst/internal/logging"
	"github.com/jamra/gofst/ops"
	"github.com/jamra/gofst/semiring"
	"github.com/jamra/gofst/textio"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var semiringName string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "fstbench <corpus-dir>",
		Short: "Time optimize/compose/determinize over a directory of AT&T text FSTs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logging.SetLogger(zerolog.New(os.Stderr).With().Timestamp().Logger())
			}
			switch semiringName {
			case "tropical":
				return run(semiring.Tropical{}, args[0])
			case "log":
				return run(semiring.Log{}, args[0])
			default:
				return fmt.Errorf("unknown semiring %q: want tropical or log", semiringName)
			}
		},
	}
	cmd.Flags().StringVar(&semiringName, "semiring", "tropical", "weight semiring: tropical or log")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "emit structured progress logging to stderr")
	return cmd
}

type result struct {
	file            string
	states          int
	determinizeTime time.Duration
	optimizeTime    time.Duration
	composeTime     time.Duration
}

func run[S semiring.Semiring](sr S, dir string) error {
	entries, err := filepath.Glob(filepath.Join(dir, "*.fst.txt"))
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no *.fst.txt files found in %s", dir)
	}
	sort.Strings(entries)

	loaded := make([]*fst.Mutable[S], len(entries))
	for i, path := range entries {
		m, err := loadOne(sr, path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		loaded[i] = m
	}

	results := make([]result, len(entries))
	var mu sync.Mutex // guards logging.Logger() calls made concurrently below

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range entries {
		i, path, m := i, path, loaded[i]
		g.Go(func() error {
			r := result{file: filepath.Base(path), states: m.NumStates()}

			start := time.Now()
			_ = ops.Determinize[S](sr, m)
			r.determinizeTime = time.Since(start)

			start = time.Now()
			optimized, err := ops.Optimize[S](sr, m.Clone())
			if err != nil {
				return fmt.Errorf("optimizing %s: %w", path, err)
			}
			r.optimizeTime = time.Since(start)

			start = time.Now()
			_ = ops.Compose[S](sr, optimized, m)
			r.composeTime = time.Since(start)

			mu.Lock()
			logging.Logger().Debug().Str("file", r.file).Dur("optimize", r.optimizeTime).Msg("benchmarked fst")
			mu.Unlock()

			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	printTable(results)
	return nil
}

func loadOne[S semiring.Semiring](sr S, path string) (*fst.Mutable[S], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return textio.Read(sr, f)
}

func printTable(results []result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSTATES\tDETERMINIZE\tOPTIMIZE\tCOMPOSE")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", r.file, r.states, r.determinizeTime, r.optimizeTime, r.composeTime)
	}
	w.Flush()
}
