// Package cliconfig parses and validates the sqlitecarve CLI surface:
// a Config struct populated by flag.*Var, a flag.Usage override with
// worked examples, and a distinct error type for validation failures
// so the caller can print just the message rather than a Go stack.
package cliconfig

import (
	"flag"
	"fmt"
	"io"
)

// Config is the fully-parsed and validated set of scan options.
type Config struct {
	InputPath string

	Verbose     bool
	ShowVersion bool
	ShowHelp    bool

	CellCountMin int
	CellCountMax int
	RowSizeMin   int
	RowSizeMax   int // 0 means unbounded

	PageSizeOverride int // 0 means "use the header's page_size"

	// PageStart/PageEnd and FreespaceMinimum are parsed and stored but
	// never consulted by internal/carver yet; see DESIGN.md. They are
	// reserved switches whose intended semantics are undefined.
	PageStart        int
	PageEnd          int
	FreespaceMinimum int

	NoBlobs       bool
	BlobSizeLimit int
	FineSearch    bool
	Freespace     bool
	RemovedOnly   bool
}

// ConfigError distinguishes a CLI validation failure (exit 1 with a
// plain diagnostic) from any other error type.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// Usage prints the tool's banner and worked examples, without the
// per-flag default listing (which only flag.FlagSet.PrintDefaults can
// produce, since it owns the registered flags).
func Usage(w io.Writer) {
	fmt.Fprintf(w, "sqlitecarve - forensic row carver for an embedded-RDBMS page file\n\n")
	fmt.Fprintf(w, "Usage:\n  sqlitecarve -i FILE [options] > recovered.csv\n\n")
	fmt.Fprintf(w, "Examples:\n")
	fmt.Fprintf(w, "  sqlitecarve -i damaged.db > rows.csv\n")
	fmt.Fprintf(w, "  sqlitecarve -i damaged.db --removed-only --freespace > deleted.csv\n")
	fmt.Fprintf(w, "  sqlitecarve -i damaged.db --no-blobs --rowsize-max=4096\n\n")
}

const (
	defaultCellCountMin  = 2
	defaultCellCountMax  = 1000
	defaultRowSizeMin    = 10
	defaultBlobSizeLimit = 512
)

// Parse parses args (excluding the program name) into a Config.
// Validation is skipped when -h/--help or -V/--version is set, since
// the caller exits before acting on the rest of the config; errOut
// receives flag-package diagnostics.
func Parse(args []string, errOut io.Writer) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("sqlitecarve", flag.ContinueOnError)
	fs.SetOutput(errOut)

	fs.StringVar(&cfg.InputPath, "i", "", "input file (required)")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose diagnostics to stderr")
	fs.BoolVar(&cfg.Verbose, "d", false, "debug diagnostics to stderr (same level as -v)")
	fs.BoolVar(&cfg.ShowVersion, "V", false, "print version and exit")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "print usage and exit")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "print usage and exit")

	fs.IntVar(&cfg.CellCountMin, "cellcount-min", defaultCellCountMin, "accept rows only with cell count >= N")
	fs.IntVar(&cfg.CellCountMax, "cellcount-max", defaultCellCountMax, "accept rows only with cell count <= N")
	fs.IntVar(&cfg.RowSizeMin, "rowsize-min", defaultRowSizeMin, "accept rows only with declared length >= N")
	fs.IntVar(&cfg.RowSizeMax, "rowsize-max", 0, "accept rows only with declared length <= N (0 = unbounded)")

	fs.IntVar(&cfg.PageSizeOverride, "page-size", 0, "override the header's declared page size")
	fs.IntVar(&cfg.PageStart, "page-start", 0, "reserved")
	fs.IntVar(&cfg.PageEnd, "page-end", 0, "reserved")

	fs.BoolVar(&cfg.NoBlobs, "no-blobs", false, "omit BLOB cells from output entirely")
	fs.IntVar(&cfg.BlobSizeLimit, "blob-size-limit", defaultBlobSizeLimit, "BLOBs >= N bytes go to sidecar files")
	fs.BoolVar(&cfg.FineSearch, "fine-search", false, "on a successful decode, advance 1 byte instead of length")
	fs.BoolVar(&cfg.Freespace, "freespace", false, "only scan page free-blocks, not normal records")
	fs.IntVar(&cfg.FreespaceMinimum, "freespace-minimum", 0, "reserved")
	fs.BoolVar(&cfg.RemovedOnly, "removed-only", false, "emit only rows whose key is missing/negative")

	fs.Usage = func() {
		Usage(errOut)
		fmt.Fprintf(errOut, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return cfg, &ConfigError{Msg: err.Error()}
	}

	if cfg.ShowHelp || cfg.ShowVersion {
		return cfg, nil
	}

	if cfg.InputPath == "" {
		return cfg, &ConfigError{Msg: "missing required -i PATH"}
	}
	if cfg.CellCountMin < 0 || cfg.CellCountMax < cfg.CellCountMin {
		return cfg, &ConfigError{Msg: "invalid --cellcount-min/--cellcount-max range"}
	}
	if cfg.RowSizeMin < 0 {
		return cfg, &ConfigError{Msg: "--rowsize-min must be >= 0"}
	}
	if cfg.RowSizeMax < 0 {
		return cfg, &ConfigError{Msg: "--rowsize-max must be >= 0"}
	}
	if cfg.RowSizeMax != 0 && cfg.RowSizeMax < cfg.RowSizeMin {
		return cfg, &ConfigError{Msg: "--rowsize-max must be >= --rowsize-min"}
	}
	if cfg.BlobSizeLimit < 0 {
		return cfg, &ConfigError{Msg: "--blob-size-limit must be >= 0"}
	}
	if cfg.PageSizeOverride != 0 {
		if cfg.PageSizeOverride < 512 || cfg.PageSizeOverride > 65536 || cfg.PageSizeOverride&(cfg.PageSizeOverride-1) != 0 {
			return cfg, &ConfigError{Msg: "--page-size must be a power of two in [512, 65536]"}
		}
	}

	return cfg, nil
}
