package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/narumiruna/powerflow/internal/collector"
	"github.com/narumiruna/powerflow/internal/errors"
	"github.com/narumiruna/powerflow/internal/store"
	"github.com/spf13/pflag"
)

const (
	timeFormat = "2006-01-02 15:04:05"

	significantDegradation = -2.0
	normalWearDegradation  = -0.5
)

func openRepository() (store.Repository, error) {
	return store.NewRepository(store.Config{DBPath: cfg.Database})
}

func runHistory(arguments []string) error {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	limit := fs.IntP("limit", "n", cfg.HistoryLimit, "Number of readings to show")
	if err := fs.Parse(arguments); err != nil {
		return err
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	readings, err := repo.History(context.Background(), *limit)
	if err != nil {
		return err
	}

	if len(readings) == 0 {
		fmt.Println("No readings recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tWATTS\tNEGOTIATED\tBATTERY\tCHARGING\tCHARGER")
	// History returns newest first; print oldest first
	for i := len(readings) - 1; i >= 0; i-- {
		r := &readings[i]
		fmt.Fprintf(w, "%s\t%.2f\t%d\t%d%%\t%s\t%s\n",
			r.Timestamp.Local().Format(timeFormat),
			r.WattsActual,
			r.WattsNegotiated,
			r.BatteryPercent,
			yesNo(r.IsCharging),
			r.ChargerName,
		)
	}

	return w.Flush()
}

func runStats(arguments []string) error {
	fs := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	limit := fs.Int("limit", cfg.StatsLimit, "Number of recent readings to summarize")
	if err := fs.Parse(arguments); err != nil {
		return err
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	stats, err := repo.Statistics(context.Background(), *limit)
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s\n", cfg.Database)
	if info, err := os.Stat(cfg.Database); err == nil {
		fmt.Printf("Size: %.1f KB\n", float64(info.Size())/1024)
	}
	fmt.Printf("Readings: %d\n", stats.Count)
	if stats.Count == 0 {
		return nil
	}

	fmt.Printf("Power: avg %.2f W, min %.2f W, max %.2f W\n",
		stats.AvgWatts, stats.MinWatts, stats.MaxWatts)
	fmt.Printf("Battery: avg %.1f%%\n", stats.AvgBattery)
	fmt.Printf("Range: %s to %s\n",
		formatStoredTime(stats.Earliest), formatStoredTime(stats.Latest))

	return nil
}

func runExport(arguments []string) error {
	errFactory := errors.New()

	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	limit := fs.IntP("limit", "n", cfg.ExportLimit, "Number of readings to export")
	format := fs.StringP("format", "f", "", "Export format (csv or json)")
	if err := fs.Parse(arguments); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return errFactory.WithMessage(errors.ErrInvalidArgument,
			"export requires an output file")
	}
	path := fs.Arg(0)

	if *format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			*format = "json"
		default:
			*format = "csv"
		}
	}
	if *format != "csv" && *format != "json" {
		return errFactory.WithData(errors.ErrInvalidArgument, *format)
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	readings, err := repo.History(context.Background(), *limit)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return errFactory.Wrap(errors.ErrOperationFailed, err)
	}
	defer file.Close()

	switch *format {
	case "json":
		err = exportJSON(file, readings)
	case "csv":
		err = exportCSV(file, readings)
	}
	if err != nil {
		return errFactory.Wrap(errors.ErrOperationFailed, err)
	}

	fmt.Printf("Exported %d readings to %s\n", len(readings), path)

	return nil
}

func exportJSON(file *os.File, readings []collector.PowerReading) error {
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")

	return enc.Encode(readings)
}

func exportCSV(file *os.File, readings []collector.PowerReading) error {
	w := csv.NewWriter(file)

	header := []string{
		"timestamp", "watts_actual", "watts_negotiated",
		"voltage", "amperage",
		"current_capacity", "max_capacity", "battery_percent",
		"is_charging", "external_connected",
		"charger_name", "charger_manufacturer",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range readings {
		r := &readings[i]
		record := []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(r.WattsActual, 'f', 2, 64),
			strconv.Itoa(r.WattsNegotiated),
			strconv.FormatFloat(r.Voltage, 'f', 3, 64),
			strconv.FormatFloat(r.Amperage, 'f', 3, 64),
			strconv.Itoa(r.CurrentCapacity),
			strconv.Itoa(r.MaxCapacity),
			strconv.Itoa(r.BatteryPercent),
			strconv.FormatBool(r.IsCharging),
			strconv.FormatBool(r.ExternalConnected),
			r.ChargerName,
			r.ChargerManufacturer,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

func runCleanup(arguments []string) error {
	errFactory := errors.New()

	fs := pflag.NewFlagSet("cleanup", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	days := fs.Int("days", 0, "Delete readings older than this many days")
	all := fs.Bool("all", false, "Delete all readings")
	if err := fs.Parse(arguments); err != nil {
		return err
	}

	if *all == (*days > 0) {
		return errFactory.WithMessage(errors.ErrInvalidArgument,
			"cleanup requires exactly one of --days or --all")
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	var deleted int64
	if *all {
		deleted, err = repo.Clear(context.Background())
	} else {
		deleted, err = repo.Cleanup(context.Background(), *days)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d readings\n", deleted)

	return nil
}

func runHealth(arguments []string) error {
	fs := pflag.NewFlagSet("health", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	days := fs.Int("days", 30, "Number of days to analyze")
	if err := fs.Parse(arguments); err != nil {
		return err
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	trend, err := repo.HealthTrend(context.Background(), *days)
	if err != nil {
		return err
	}

	if len(trend) == 0 {
		fmt.Println("No readings in the selected period.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tAVG MAX CAPACITY\tREADINGS")
	for _, point := range trend {
		fmt.Fprintf(w, "%s\t%.0f mAh\t%d\n",
			point.Date, point.AvgMaxCapacity, point.Count)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	first := trend[0].AvgMaxCapacity
	last := trend[len(trend)-1].AvgMaxCapacity
	if first <= 0 || len(trend) < 2 {
		return nil
	}

	change := (last - first) / first * 100
	fmt.Printf("\nCapacity change over %d days: %+.2f%%\n", *days, change)
	fmt.Printf("Assessment: %s\n", degradationVerdict(change))

	return nil
}

func degradationVerdict(changePercent float64) string {
	switch {
	case changePercent < significantDegradation:
		return "significant degradation"
	case changePercent < normalWearDegradation:
		return "normal wear"
	default:
		return "stable"
	}
}

func formatStoredTime(value string) string {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts.Local().Format(timeFormat)
	}

	return value
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}
