// Command xlsheet lists, reads and converts xlsx workbooks from the
// terminal.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/celled/xlsx"
)

var (
	sheetSelector string
	headerMode    bool
	startRow      int
	maxRows       int
	columns       []string
	rangeExpr     string
	upperKeys     bool
	outputPath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "xlsheet",
		Short:         "Read and write xlsx workbooks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	sheetsCmd := &cobra.Command{
		Use:   "sheets [input.xlsx]",
		Short: "List sheet names with their positions",
		Args:  cobra.ExactArgs(1),
		RunE:  runSheets,
	}

	readCmd := &cobra.Command{
		Use:   "read [input.xlsx]",
		Short: "Decode sheet rows and print them, or re-encode to a new file",
		Args:  cobra.ExactArgs(1),
		RunE:  runRead,
	}
	readCmd.Flags().StringVarP(&sheetSelector, "sheet", "s", "", "Sheet name or 1-based position (default: all sheets)")
	readCmd.Flags().BoolVar(&headerMode, "header", false, "Treat the first row as a header")
	readCmd.Flags().IntVar(&startRow, "start-row", 0, "Rows to skip before the header or data")
	readCmd.Flags().IntVar(&maxRows, "max-rows", 0, "Row limit (0: default cap, negative: unbounded)")
	readCmd.Flags().StringSliceVar(&columns, "columns", nil, "Output columns to retain")
	readCmd.Flags().StringVar(&rangeExpr, "range", "", "Cell range to select, e.g. A1:C5")
	readCmd.Flags().BoolVar(&upperKeys, "upper-keys", false, "Uppercase header keys")
	readCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write an xlsx file instead of printing")

	rootCmd.AddCommand(sheetsCmd, readCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func runSheets(cmd *cobra.Command, args []string) error {
	sheets, err := xlsx.ListSheetNames(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "IDX\tNAME")
	for _, sheet := range sheets {
		fmt.Fprintf(w, "%d\t%s\n", sheet.Idx, sheet.Name)
	}
	return w.Flush()
}

func runRead(cmd *cobra.Command, args []string) error {
	opts := &xlsx.Options{
		StartRow: startRow,
		Header:   headerMode,
		MaxRows:  maxRows,
		Columns:  columns,
	}
	if upperKeys {
		opts.HeaderTransform = func(v any) string {
			return strings.ToUpper(fmt.Sprint(v))
		}
	}

	sheets, err := readSheets(args[0], opts)
	if err != nil {
		return err
	}

	if rangeExpr != "" {
		for i := range sheets {
			selected, err := xlsx.SelectRange(sheets[i].Rows, rangeExpr)
			if err != nil {
				return err
			}
			sheets[i].Rows = selected
		}
	}

	if outputPath != "" {
		return writeSheets(outputPath, sheets)
	}

	for _, sheet := range sheets {
		fmt.Printf("%s (sheet %d)\n", sheet.Name, sheet.Idx)
		printRows(sheet.Rows)
		fmt.Println()
	}
	return nil
}

func readSheets(path string, opts *xlsx.Options) ([]xlsx.SheetRows, error) {
	if sheetSelector == "" {
		return xlsx.ReadAllSheets(path, opts)
	}

	var selector any = sheetSelector
	if idx, err := strconv.Atoi(sheetSelector); err == nil {
		selector = idx
	}
	rows, err := xlsx.ReadSheet(path, selector, opts)
	if err != nil {
		return nil, err
	}
	return []xlsx.SheetRows{{Name: fmt.Sprint(sheetSelector), Idx: 1, Rows: rows}}, nil
}

func writeSheets(path string, sheets []xlsx.SheetRows) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	out := make([]xlsx.SheetData, 0, len(sheets))
	for _, sheet := range sheets {
		out = append(out, xlsx.SheetData{
			Name:    sheet.Name,
			Records: toRecords(sheet.Rows),
		})
	}

	if err := xlsx.WriteWorkbook(path, out); err != nil {
		return err
	}
	log.Infof("wrote %d sheet(s) to %s", len(out), path)
	return nil
}

// toRecords flattens decoded rows into write-side records over the union of
// the observed keys, so sparse rows line up under a common header.
func toRecords(rows []xlsx.Row) []xlsx.Record {
	seen := map[string]bool{}
	var keys []string
	for _, row := range rows {
		for _, key := range row.Columns() {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}

	records := make([]xlsx.Record, 0, len(rows))
	for _, row := range rows {
		record := make(xlsx.Record, 0, len(keys))
		for _, key := range keys {
			// every record carries the full key set so the first one
			// defines the complete header
			record = append(record, xlsx.Field{Key: key, Value: row.Cells[key]})
		}
		records = append(records, record)
	}
	return records
}

func printRows(rows []xlsx.Row) {
	seen := map[string]bool{}
	var keys []string
	for _, row := range rows {
		for _, key := range row.Columns() {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\t"+strings.Join(keys, "\t"))
	for _, row := range rows {
		cells := make([]string, len(keys))
		for i, key := range keys {
			if value, ok := row.Cells[key]; ok {
				cells[i] = xlsx.DisplayString(value)
			}
		}
		fmt.Fprintf(w, "%d\t%s\n", row.Num, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
}
