package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/corrfill/am"
	"github.com/teranos/corrfill/display"
	"github.com/teranos/corrfill/letter"
	"github.com/teranos/corrfill/sym"
)

// MergeCmd represents the merge command
var MergeCmd = &cobra.Command{
	Use:   "merge",
	Short: sym.Merge + " Assemble the LetterData payload from its fragments",
	Long: sym.Merge + ` merge - Assemble the LetterData payload from its fragments

Reads input.json (which must hold a LetterData object) and the docInfo.json,
pdf_insert.json, ui.json and optionList.json fragments from the input
directory, folds the fragments into LetterData and doubles every "/" in
string values. A TOML manifest can rename any of the files.

Examples:
  corrfill merge
  corrfill merge --input-dir letters/renewal --output out/renewal.json
  corrfill merge --manifest letters/renewal/manifest.toml`,
	Args: cobra.NoArgs,
	RunE: runMerge,
}

var (
	mergeInputDir string
	mergeOutput   string
	mergeManifest string
)

func init() {
	MergeCmd.Flags().StringVarP(&mergeInputDir, "input-dir", "i", "", "Fragment directory (default: paths.input_dir)")
	MergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Output file (default: <paths.output_dir>/output.json)")
	MergeCmd.Flags().StringVarP(&mergeManifest, "manifest", "m", "", "TOML manifest naming the files (default: merge.manifest)")
	MergeCmd.Flags().Bool("json", false, "Print the merged document instead of a status line")
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(verbosity(cmd))
	if err != nil {
		return err
	}

	inputDir := mergeInputDir
	if inputDir == "" {
		inputDir = cfg.Paths.InputDir
	}
	inputDir = am.ExpandHome(inputDir)
	outputDir := am.ExpandHome(cfg.Paths.OutputDir)

	manifestPath := mergeManifest
	if manifestPath == "" {
		manifestPath = cfg.Merge.Manifest
	}

	m := letter.DefaultManifest(inputDir, outputDir)
	if manifestPath != "" {
		if m, err = letter.LoadManifest(am.ExpandHome(manifestPath), inputDir, outputDir); err != nil {
			return err
		}
	}
	if mergeOutput != "" {
		m.Output = am.ExpandHome(mergeOutput)
	}

	doc, err := letter.Assemble(m)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), doc)
	}
	display.Success(cmd.OutOrStdout(), "%s LetterData written to %s", sym.Merge, m.Output)
	return nil
}
