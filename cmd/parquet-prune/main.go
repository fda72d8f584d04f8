package main

import (
	"fmt"
	"log"
	"os"

	"github.com/olekukonko/tablewriter"
	parquet "github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/parquetql/pushdown"
	"github.com/parquetql/pushdown/filter"
	"github.com/parquetql/pushdown/predicate"
)

var (
	configPath string
	filterPath string
)

var rootCmd = &cobra.Command{
	Use:          "parquet-prune",
	Short:        "Inspect parquet schemas and test which row groups a filter would skip",
	SilenceUsage: true,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "List the file's top-level columns and their pushdown eligibility",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, closer, err := openParquetFile(args[0])
		if err != nil {
			return err
		}
		defer closer()

		config, err := readConfig()
		if err != nil {
			return err
		}
		translator := pushdown.NewTranslator(file.Schema(), config)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"column", "physical type", "logical type", "pushdown"})
		table.SetAutoFormatHeaders(false)
		for _, field := range file.Schema().Fields() {
			if !field.Leaf() {
				table.Append([]string{field.Name(), "group", "", "no (nested)"})
				continue
			}
			logicalType := ""
			if lt := field.Type().LogicalType(); lt != nil {
				logicalType = lt.String()
			}
			eligibility := "no"
			if translator.CanPushDown(field.Name()) {
				eligibility = "yes"
			}
			table.Append([]string{field.Name(), field.Type().Kind().String(), logicalType, eligibility})
		}
		table.Render()
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune FILE --filter filter.json",
	Short: "Translate a filter and report per row group whether it can be skipped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, closer, err := openParquetFile(args[0])
		if err != nil {
			return err
		}
		defer closer()

		config, err := readConfig()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(filterPath)
		if err != nil {
			return errors.Wrap(err, "couldn't read filter file")
		}
		f, err := filter.FromJSON(data)
		if err != nil {
			return errors.Wrap(err, "couldn't decode filter")
		}

		translator := pushdown.NewTranslator(file.Schema(), config)
		p, ok := translator.Translate(f)
		if !ok {
			fmt.Printf("filter: %s\n", f)
			fmt.Println("no predicate can be pushed down; every row group has to be read")
			return nil
		}
		fmt.Printf("filter:    %s\n", f)
		fmt.Printf("predicate: %s\n", p)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"row group", "rows", "decision"})
		table.SetAutoFormatHeaders(false)
		dropped := 0
		meta := file.Metadata()
		for i := range meta.RowGroups {
			stats := rowGroupStats(&meta.RowGroups[i])
			decision := "read"
			if predicate.CanDrop(p, stats) {
				decision = "skip"
				dropped++
			}
			table.Append([]string{fmt.Sprint(i), fmt.Sprint(meta.RowGroups[i].NumRows), decision})
		}
		table.Render()
		fmt.Printf("%d of %d row groups can be skipped\n", dropped, len(meta.RowGroups))
		return nil
	},
}

func openParquetFile(path string) (*parquet.File, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "couldn't open file")
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, "couldn't stat file")
	}
	file, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, "couldn't open parquet file")
	}
	return file, func() { f.Close() }, nil
}

func readConfig() (pushdown.Config, error) {
	if configPath == "" {
		return pushdown.DefaultConfig(), nil
	}
	config, err := pushdown.ReadConfig(configPath)
	if err != nil {
		return pushdown.Config{}, errors.Wrap(err, "couldn't read configuration")
	}
	return config, nil
}

// rowGroupStats assembles chunk statistics for the row group's top-level
// columns from the file footer.
func rowGroupStats(rowGroup *format.RowGroup) *predicate.ChunkStats {
	out := &predicate.ChunkStats{
		Rows:    rowGroup.NumRows,
		Columns: make(map[string]predicate.ColumnStats, len(rowGroup.Columns)),
	}
	for i := range rowGroup.Columns {
		metaData := &rowGroup.Columns[i].MetaData
		if len(metaData.PathInSchema) != 1 {
			continue
		}
		kind := parquet.Kind(metaData.Type)
		stats := metaData.Statistics

		column := predicate.ColumnStats{}
		minRaw, maxRaw := stats.MinValue, stats.MaxValue
		if minRaw == nil && maxRaw == nil {
			// Fall back to the deprecated fields written by older writers.
			minRaw, maxRaw = stats.Min, stats.Max
		}
		if minRaw != nil && maxRaw != nil {
			min, okMin := predicate.StatValue(kind, minRaw)
			max, okMax := predicate.StatValue(kind, maxRaw)
			if okMin && okMax {
				column.Min, column.Max, column.HasBounds = min, max, true
			}
		}
		// The footer can't distinguish an absent null count from zero, so
		// only trust zero when the writer recorded bounds too.
		if column.HasBounds || stats.NullCount > 0 {
			column.NullCount, column.HasNullCount = stats.NullCount, true
		}
		out.Columns[metaData.PathInSchema[0]] = column
	}
	return out
}

func main() {
	pruneCmd.Flags().StringVar(&filterPath, "filter", "", "path to the JSON filter tree")
	if err := pruneCmd.MarkFlagRequired("filter"); err != nil {
		log.Fatal(err)
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML pushdown configuration")
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(pruneCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
