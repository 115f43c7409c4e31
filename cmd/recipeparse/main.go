// Command recipeparse extracts a structured recipe from a photo, document or
// plain text file without running the HTTP service.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dgallion1/recipeocr/internal/config"
	"github.com/dgallion1/recipeocr/internal/ocr"
	"github.com/dgallion1/recipeocr/internal/source"
)

type options struct {
	configPath string
	langs      []string
	maxDim     int
	verbose    bool

	cfg config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "recipeparse",
		Short: "Turn recipe photos and documents into structured recipes",
		Long: `recipeparse recovers the text of a recipe card, cookbook page or saved
web page and splits it into title, ingredients, instructions and metadata.

Examples:
  recipeparse parse card.jpg
  recipeparse parse --format yaml grandma.docx
  pbpaste | recipeparse parse -
  recipeparse ocr --lang eng+fra carte.png`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd.ErrOrStderr(), opts.verbose)
			return opts.load()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringSliceVar(&opts.langs, "lang", nil, "OCR languages, e.g. eng or eng+fra (default from config)")
	root.PersistentFlags().IntVar(&opts.maxDim, "max-dim", 0, "downscale images so the longest side is at most this many pixels")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(parseCmd(opts))
	root.AddCommand(ocrCmd(opts))
	return root
}

func setupLogging(w io.Writer, verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// load resolves environment, config file and flags, in increasing priority.
func (o *options) load() error {
	cfg := config.Load()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(o.configPath, cfg); err != nil {
			return err
		}
		log.Debug().Str("path", o.configPath).Msg("loaded config file")
	}
	if langs := splitLangs(o.langs); len(langs) > 0 {
		cfg.OCRLanguages = langs
	}
	if o.maxDim > 0 {
		cfg.OCRMaxDimension = o.maxDim
	}
	o.cfg = cfg
	return nil
}

func (o *options) engine() ocr.Engine {
	return ocr.NewTesseract(ocr.Options{Languages: o.cfg.OCRLanguages, MaxDimension: o.cfg.OCRMaxDimension})
}

func (o *options) sources() source.Options {
	return source.Options{
		OCR:                  o.engine(),
		Languages:            o.cfg.OCRLanguages,
		PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext,
	}
}

// splitLangs accepts both repeated flags and tesseract's "eng+fra" form.
func splitLangs(in []string) []string {
	var out []string
	for _, s := range in {
		for _, l := range strings.Split(s, "+") {
			if l != "" {
				out = append(out, l)
			}
		}
	}
	return out
}
