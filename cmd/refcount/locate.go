// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/refcount/internal/convert"
	"github.com/pdiddy/refcount/internal/section"
)

var locateCmd = &cobra.Command{
	Use:   "locate <pdf>",
	Short: "Print the reference section that count would use",
	Long: `Locate extracts the text of a PDF and prints the block between the
References, Bibliography or Works Cited heading and the next section. No
model is called. Useful for checking the heading heuristic on a paper.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runLocate(cmd.Context(), convert.NewExtractor(cfg.Extraction, logger), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

// runLocate prints the located block to out and a summary line to status.
func runLocate(ctx context.Context, ex extractor, out, status io.Writer, source string) error {
	text, err := ex.Extract(ctx, source)
	if err != nil {
		reportExtractError(status, source, err)
		return err
	}

	sec, ok := section.Find(text)
	switch {
	case !ok:
		fmt.Fprintf(status, "No reference heading found in %s; count would search the full text (%d characters).\n", source, len(text))
		return nil
	case sec.Text == "":
		fmt.Fprintf(status, "Found %q heading with nothing after it; count would search the full text (%d characters).\n", sec.Heading, len(text))
		return nil
	}
	fmt.Fprintf(status, "Found %q heading: characters %d-%d of %d.\n", sec.Heading, sec.Start, sec.End, len(text))
	_, err = fmt.Fprintln(out, sec.Text)
	return err
}
