package cmd

import (
	"fmt"

	"github.com/KaramelBytes/echantillon-cli/internal/sampling"
	"github.com/KaramelBytes/echantillon-cli/internal/table"
	"github.com/KaramelBytes/echantillon-cli/internal/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	insColumn     string
	insSheetName  string
	insSheetIndex int
	insDelimiter  string
	insJSON       bool
	insValues     bool
)

type inspectReport struct {
	Name    string            `json:"name"`
	Rows    int               `json:"rows"`
	Columns []table.Column    `json:"columns"`
	Bounds  []sampling.Bounds `json:"bounds"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show columns and the legal sampling parameters for a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := loaderOptions(globalConfig(), insDelimiter, insSheetName, insSheetIndex)
		if err != nil {
			return err
		}
		t, err := table.LoadFile(args[0], opt)
		if err != nil {
			return err
		}
		rep := inspectReport{Name: t.Name(), Rows: t.Len(), Columns: t.Schema()}
		for _, m := range sampling.Methods {
			col := ""
			if m.ColumnField() != "" {
				col = insColumn
			}
			b, err := sampling.ComputeBounds(t, m, col)
			if err != nil {
				return err
			}
			rep.Bounds = append(rep.Bounds, b)
		}
		if insJSON {
			b, err := utils.PrettyJSON(rep)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}

		pterm.DefaultSection.Printfln("%s (%d rows)", rep.Name, rep.Rows)
		data := pterm.TableData{{"Column", "Kind", "Non-null", "Distinct"}}
		for _, c := range rep.Columns {
			data = append(data, []string{c.Name, string(c.Kind), fmt.Sprint(c.NonNull), fmt.Sprint(c.Distinct)})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}

		pterm.DefaultSection.Println("Parameter bounds")
		var items []pterm.BulletListItem
		for _, b := range rep.Bounds {
			items = append(items, pterm.BulletListItem{Level: 0, Text: b.Method.Label() + " (" + string(b.Method) + ")"})
			if b.ColumnField != "" {
				text := fmt.Sprintf("%s: any column", b.ColumnField)
				if b.Column != "" {
					text = fmt.Sprintf("%s: %s", b.ColumnField, b.Column)
				}
				items = append(items, pterm.BulletListItem{Level: 1, Text: text})
			}
			for _, f := range b.Fields {
				items = append(items, pterm.BulletListItem{Level: 1, Text: fmt.Sprintf("%s: %d..%d", f.Field, f.Range.Min, f.Range.Max)})
			}
			if b.ColumnField == sampling.FieldClusterColumn && b.Column == "" {
				items = append(items, pterm.BulletListItem{Level: 1, Text: "cluster_count: pass --column to compute"})
			}
		}
		if err := pterm.DefaultBulletList.WithItems(items).Render(); err != nil {
			return err
		}

		if insValues && insColumn != "" {
			values, err := t.DistinctValues(insColumn)
			if err != nil {
				return err
			}
			pterm.DefaultSection.Printfln("Values of %s", insColumn)
			groups, _ := t.Groups(insColumn)
			sizes := make(map[string]int, len(groups))
			for _, g := range groups {
				sizes[g.Key] = len(g.Rows)
			}
			vals := pterm.TableData{{"Value", "Rows"}}
			for _, v := range values {
				vals = append(vals, []string{v, fmt.Sprint(sizes[v])})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(vals).Render()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&insColumn, "column", "c", "", "strata or cluster column to compute bounds for")
	inspectCmd.Flags().BoolVar(&insValues, "values", false, "list the distinct values of --column with their row counts")
	inspectCmd.Flags().StringVar(&insSheetName, "sheet-name", "", "XLSX: sheet name to read")
	inspectCmd.Flags().IntVar(&insSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (default 1)")
	inspectCmd.Flags().StringVar(&insDelimiter, "delimiter", "", "CSV delimiter: ',' ';' 'tab' or '|' (default: sniff)")
	inspectCmd.Flags().BoolVar(&insJSON, "json", false, "print the report as JSON")
}
