package cmd

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/echantillon-cli/internal/analysis"
	"github.com/KaramelBytes/echantillon-cli/internal/export"
	"github.com/KaramelBytes/echantillon-cli/internal/sampling"
	"github.com/KaramelBytes/echantillon-cli/internal/table"
	"github.com/KaramelBytes/echantillon-cli/internal/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	smpMethod     string
	smpSize       int
	smpColumn     string
	smpClusters   int
	smpSeed       uint64
	smpFormat     string
	smpOutputDir  string
	smpOutput     string
	smpSheetName  string
	smpSheetIndex int
	smpDelimiter  string
	smpPreview    int
	smpManifest   bool
	smpDryRun     bool
	smpReport     bool
)

var sampleCmd = &cobra.Command{
	Use:   "sample <file>",
	Short: "Draw a sample from a CSV/TSV/XLSX dataset",
	Long: `Draw a sample with one of the supported designs:

  random      simple random sampling without replacement (--size)
  systematic  every k-th row starting at the first (--size)
  stratified  equal draws per stratum, with replacement (--size, --column)
  cluster1    every row of randomly chosen clusters (--column, --clusters)
  cluster2    chosen clusters, then a proportional subsample (--column, --clusters, --size)

The sample is written as Echantillon_<name>_<YYYYMMDD_HHMMSS>.<ext>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := globalConfig()
		opt, err := loaderOptions(c, smpDelimiter, smpSheetName, smpSheetIndex)
		if err != nil {
			return err
		}
		t, err := table.LoadFile(path, opt)
		if err != nil {
			return err
		}
		pterm.Debug.Printfln("loaded %s: %d rows, %d columns", t.Name(), t.Len(), len(t.Columns()))

		methodName := c.DefaultMethod
		if cmd.Flags().Changed("method") {
			methodName = smpMethod
		}
		m, err := sampling.ParseMethod(methodName)
		if err != nil {
			return err
		}
		size := c.DefaultSampleSize
		if cmd.Flags().Changed("size") {
			size = smpSize
		}
		req, err := sampling.NewRequest(m, sampling.Params{SampleSize: size, Column: smpColumn, ClusterCount: smpClusters})
		if err != nil {
			return err
		}

		seed := c.Seed
		if cmd.Flags().Changed("seed") {
			seed = smpSeed
		}
		if seed == 0 {
			seed = rand.Uint64()
		}
		res, err := sampling.NewSeeded(seed).Run(t, req)
		if err != nil {
			return err
		}

		format, err := resolveFormat(cmd, c.ExportFormat)
		if err != nil {
			return err
		}
		now := time.Now()
		out := smpOutput
		if out == "" {
			dir := c.OutputDir
			if cmd.Flags().Changed("output-dir") {
				dir = smpOutputDir
			}
			if dir == "" {
				dir = "."
			}
			out = filepath.Join(dir, export.FileName(path, now, format))
		}

		printSummary(t, res, seed)
		if !smpDryRun {
			var buf bytes.Buffer
			if err := export.Write(&buf, res.Sample, format); err != nil {
				return fmt.Errorf("export sample: %w", err)
			}
			if err := utils.SafeWriteFile(out, buf.Bytes()); err != nil {
				return err
			}
			pterm.Success.Printfln("Sample written: %s (%d rows)", out, res.Sample.Len())
			if smpManifest || c.WriteManifest {
				mf := export.NewManifest(t, res, seed, filepath.Base(out), now)
				b, err := mf.YAML()
				if err != nil {
					return err
				}
				mpath := export.ManifestName(out)
				if err := utils.SafeWriteFile(mpath, b); err != nil {
					return err
				}
				pterm.Success.Printfln("Manifest written: %s", mpath)
			}
		} else {
			pterm.Info.Printfln("Dry run: %d rows would be written to %s", res.Sample.Len(), out)
		}
		if smpReport {
			rep := analysis.Compare(t, res.Sample, string(req.Method()), analysis.DefaultOptions())
			for _, w := range rep.Warnings {
				pterm.Warning.Println(w)
			}
			if smpDryRun {
				fmt.Println(rep.Markdown())
			} else {
				rpath := analysis.ReportName(out)
				if err := utils.SafeWriteFile(rpath, []byte(rep.Markdown())); err != nil {
					return err
				}
				pterm.Success.Printfln("Report written: %s", rpath)
			}
		}

		preview := c.PreviewRows
		if cmd.Flags().Changed("preview") {
			preview = smpPreview
		}
		return renderPreview(res.Sample, preview)
	},
}

// resolveFormat picks the export format from --format, the --output
// extension, then configuration.
func resolveFormat(cmd *cobra.Command, configured string) (export.Format, error) {
	if cmd.Flags().Changed("format") {
		return export.ParseFormat(smpFormat)
	}
	if smpOutput != "" {
		if ext := strings.TrimPrefix(filepath.Ext(smpOutput), "."); ext != "" {
			if f, err := export.ParseFormat(ext); err == nil {
				return f, nil
			}
		}
	}
	return export.ParseFormat(configured)
}

func printSummary(t *table.Table, res *sampling.Result, seed uint64) {
	m := res.Request.Method()
	lines := []string{
		fmt.Sprintf("Source: %s (%d rows)", t.Name(), t.Len()),
		fmt.Sprintf("Method: %s", m.Label()),
	}
	for _, kv := range sampling.Describe(res.Request) {
		lines = append(lines, fmt.Sprintf("%s: %s", kv[0], kv[1]))
	}
	lines = append(lines, fmt.Sprintf("Seed: %d", seed), fmt.Sprintf("Sample rows: %d", res.Sample.Len()))
	title := pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Sample")
	pterm.Println(pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(strings.Join(lines, "\n")))

	if len(res.Groups) > 0 {
		data := pterm.TableData{{"Group", "Size", "Drawn"}}
		for _, g := range res.Groups {
			data = append(data, []string{g.Key, fmt.Sprint(g.Size), fmt.Sprint(g.Drawn)})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
	for _, w := range res.Warnings {
		pterm.Warning.Println(w)
	}
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().StringVarP(&smpMethod, "method", "m", "random", "sampling design: random|systematic|stratified|cluster1|cluster2")
	sampleCmd.Flags().IntVarP(&smpSize, "size", "n", 0, "sample size (random, systematic, stratified, cluster2)")
	sampleCmd.Flags().StringVarP(&smpColumn, "column", "c", "", "strata column (stratified) or cluster column (cluster1, cluster2)")
	sampleCmd.Flags().IntVarP(&smpClusters, "clusters", "k", 0, "number of clusters to select (cluster1, cluster2)")
	sampleCmd.Flags().Uint64Var(&smpSeed, "seed", 0, "random seed for reproducible samples (0 = random)")
	sampleCmd.Flags().StringVarP(&smpFormat, "format", "f", "xlsx", "export format: xlsx|csv|parquet")
	sampleCmd.Flags().StringVar(&smpOutputDir, "output-dir", ".", "directory for the generated file")
	sampleCmd.Flags().StringVarP(&smpOutput, "output", "o", "", "explicit output path (overrides --output-dir)")
	sampleCmd.Flags().StringVar(&smpSheetName, "sheet-name", "", "XLSX: sheet name to read")
	sampleCmd.Flags().IntVar(&smpSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (default 1)")
	sampleCmd.Flags().StringVar(&smpDelimiter, "delimiter", "", "CSV delimiter: ',' ';' 'tab' or '|' (default: sniff)")
	sampleCmd.Flags().IntVar(&smpPreview, "preview", 10, "rows of the sample to print (0 to disable)")
	sampleCmd.Flags().BoolVar(&smpManifest, "manifest", false, "write a YAML manifest next to the export")
	sampleCmd.Flags().BoolVar(&smpReport, "report", false, "compare the sample with the source and write a Markdown report")
	sampleCmd.Flags().BoolVar(&smpDryRun, "dry-run", false, "validate and draw without writing files")
	sampleCmd.MarkFlagsMutuallyExclusive("output", "output-dir")
	sampleCmd.MarkFlagsMutuallyExclusive("sheet-name", "sheet-index")
}
