// Command fstconvert compiles an AT&T-format text FST into this
// engine's native binary snapshot format.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jamra/gofst/boundary"
	"github.com/jamra/gofst/internal/logging"
	"github.com/jamra/gofst/semiring"
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
		Use:   "fstconvert <att.txt> <out.bin>",
		Short: "Compile an AT&T text FST into the native binary format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logging.SetLogger(zerolog.New(os.Stderr).With().Timestamp().Logger())
			}
			return convert(args[0], args[1], semiringName)
		},
	}
	cmd.Flags().StringVar(&semiringName, "semiring", "tropical", "weight semiring: tropical or log")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "emit structured progress logging to stderr")
	return cmd
}

func convert(inPath, outPath, semiringName string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inPath, err)
	}

	switch semiringName {
	case "tropical":
		return convertWith(boundary.Tropical, inPath, string(data), outPath)
	case "log":
		return convertWith(boundary.Log, inPath, string(data), outPath)
	default:
		return fmt.Errorf("unknown semiring %q: want tropical or log", semiringName)
	}
}

// convertWith runs the conversion entirely through the handle
// boundary, the same surface an external caller on the far side of an
// interop line would use: compile, inspect, save, free.
func convertWith[S semiring.Semiring](r *boundary.Registry[S], inPath, text, outPath string) error {
	h, err := r.Compile(text)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", inPath, err)
	}
	defer r.Free(h)

	n, err := r.NumStates(h)
	if err != nil {
		return fmt.Errorf("inspecting parsed fst: %w", err)
	}
	logging.Logger().Info().Int("states", n).Str("semiring", r.Name()).Msg("parsed AT&T fst")

	if err := r.Save(h, outPath); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	logging.Logger().Info().Str("path", outPath).Msg("wrote native snapshot")
	return nil
}
