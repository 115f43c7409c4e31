package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dgallion1/recipeocr/internal/ocr"
	"github.com/dgallion1/recipeocr/internal/source"
)

func ocrCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ocr <image>",
		Short: "Print the raw text recognized in an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !source.IsImage(path) {
				return fmt.Errorf("not an image: %s", path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, opts.cfg.OCRTimeout)
			defer cancel()

			stats := ocr.NewStats(0)
			engine := ocr.Timed{Engine: opts.engine(), Stats: stats}
			res, err := engine.Recognize(ctx, ocr.Input{ID: path, Image: data, Languages: opts.cfg.OCRLanguages})
			snap := stats.Snapshot()
			if errors.Is(err, ocr.ErrNoText) {
				log.Warn().Str("file", path).Msg("no text found, please retry or enter manually")
				return nil
			}
			if err != nil {
				return err
			}
			log.Debug().
				Str("engine", engine.Name()).
				Int64("ms", snap.MaxMs).
				Float64("confidence", res.Confidence).
				Msg("recognized")
			fmt.Fprint(cmd.OutOrStdout(), source.Clean(res.Text))
			return nil
		},
	}
}
