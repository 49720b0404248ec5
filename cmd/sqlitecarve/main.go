// Command sqlitecarve is a forensic row carver for an embedded-RDBMS
// page file: it scans a raw byte image and writes recovered rows as
// CSV to stdout. main stays a thin flag-parsing wrapper around the
// carver library package.
package main

import (
	"fmt"
	"os"

	"sqlitecarve/internal/carver"
	"sqlitecarve/internal/cliconfig"
	"sqlitecarve/internal/fileimage"
)

const version = "sqlitecarve 1.0.0"

func main() {
	cfg, err := cliconfig.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.ShowHelp {
		cliconfig.Usage(os.Stderr)
		os.Exit(0)
	}
	if cfg.ShowVersion {
		fmt.Fprintln(os.Stdout, version)
		os.Exit(0)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg cliconfig.Config) error {
	img, err := fileimage.Open(cfg.InputPath)
	if err != nil {
		return err
	}

	scanCfg := carver.Config{
		CellCountMin:     cfg.CellCountMin,
		CellCountMax:     cfg.CellCountMax,
		RowSizeMin:       cfg.RowSizeMin,
		RowSizeMax:       cfg.RowSizeMax,
		PageSizeOverride: cfg.PageSizeOverride,
		NoBlobs:          cfg.NoBlobs,
		BlobSizeLimit:    cfg.BlobSizeLimit,
		FineSearch:       cfg.FineSearch,
		Freespace:        cfg.Freespace,
		RemovedOnly:      cfg.RemovedOnly,
		Verbose:          cfg.Verbose,
		DiagOut:          os.Stderr,
	}

	stats, err := carver.Scan(scanCfg, img, os.Stdout, ".")
	if err != nil {
		return err
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "scanned %d pages, emitted %d rows, rejected %d candidates\n",
			stats.PagesScanned, stats.RowsEmitted, stats.RowsRejected)
	}
	return nil
}
