package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/recipeocr/internal/recipe"
	"github.com/dgallion1/recipeocr/internal/source"
)

func parseCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse a recipe from a file, or plain text on stdin",
		Long: `Parse extracts text from the file (running OCR for images) and prints the
structured recipe. With no argument or "-", stdin is read as plain text.

Supported files: .txt .md .html .pdf .docx .png .jpg .gif .tif .webp`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}

			text, err := readText(cmd, opts, args)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				log.Warn().Msg("no text found, please retry or enter manually")
			}

			r := recipe.Parse(text)
			log.Debug().
				Str("name", r.Name).
				Int("ingredients", len(r.Ingredients)).
				Int("instructions", len(r.Instructions)).
				Str("category", r.Category).
				Msg("parsed recipe")
			return writeRecipe(cmd.OutOrStdout(), r, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func readText(cmd *cobra.Command, opts *options, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return source.Clean(string(data)), nil
	}

	path := args[0]
	if !source.IsSupportedExtension(path) {
		return "", fmt.Errorf("unsupported file type: %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if source.IsImage(path) {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.cfg.OCRTimeout)
		defer cancel()
	}
	log.Debug().Str("file", path).Msg("extracting text")
	return source.Extract(ctx, f, path, opts.sources())
}

func writeRecipe(w io.Writer, r recipe.ParsedRecipe, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
