// Command-line entry point for the port normaliser.
//
// Input formats
// -------------
// Port commands (resolve, standardize, sort) read one port spelling per line
// from -input or stdin, or take them as arguments.
//
// The dedupe command reads schedule rows as JSONL (one object per line) or as
// a single JSON array. Rows are keyed by spreadsheet headers in English or
// Chinese ("vessel", "船名航次", "开航日期", ...); see internal/schedule.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"shipping_schedule/internal/catalog"
	"shipping_schedule/internal/config"
	"shipping_schedule/internal/dedup"
	"shipping_schedule/internal/ordering"
	"shipping_schedule/internal/schedule"
	"shipping_schedule/internal/storage"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "portnorm - commands:")
	fmt.Fprintln(w, "  resolve      - print the canonical code of each port")
	fmt.Fprintln(w, "  standardize  - rewrite ports as canonical display strings")
	fmt.Fprintln(w, "  sort         - sort ports (or -regions) in curated order")
	fmt.Fprintln(w, "  regions      - list regions in curated order")
	fmt.Fprintln(w, "  dedupe       - drop duplicate sailings from schedule rows")
	fmt.Fprintln(w, "  check        - load the alias asset and report problems")
	fmt.Fprintln(w, "  unresolved   - list or prune the unresolved-port report")
	fmt.Fprintln(w, "  import       - copy the alias asset into PostgreSQL")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  portnorm resolve [-trace] [-input ports.txt] [PORT...]")
	fmt.Fprintln(w, "  portnorm standardize [-input ports.txt] [-report unresolved.sqlite] [-source NAME]")
	fmt.Fprintln(w, "  portnorm sort [-regions] [-input lines.txt]")
	fmt.Fprintln(w, "  portnorm dedupe -input rows.jsonl [-output out.json] [-pretty] [-stats]")
	fmt.Fprintln(w, "  portnorm check [-asset port_aliases.txt]")
	fmt.Fprintln(w, "  portnorm unresolved -report unresolved.sqlite [-limit N] [-prune]")
	fmt.Fprintln(w, "  portnorm import -asset port_aliases.txt")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Every command accepts -config, -asset and -log-level.")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	args := os.Args[2:]
	switch cmd {
	case "resolve":
		runResolve(args)
	case "standardize", "standardise":
		runStandardize(args)
	case "sort":
		runSort(args)
	case "regions":
		runRegions(args)
	case "dedupe":
		runDedupe(args)
	case "check":
		runCheck(args)
	case "unresolved":
		runUnresolved(args)
	case "import":
		runImport(args)
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runResolve(args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	c := addCommon(fs)
	inPath := fs.String("input", "", "Input file, one port per line (default: arguments or stdin)")
	trace := fs.Bool("trace", false, "Print every matcher attempt as JSON")
	_ = fs.Parse(args)

	ctx := context.Background()
	e := c.setup(ctx)
	defer e.Close()

	lines := readLines(*inPath, fs.Args())
	if *trace {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, line := range lines {
			_ = enc.Encode(e.resolver.Trace(line))
		}
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, line := range lines {
		code, ok := e.resolver.Lookup(line)
		if !ok {
			fmt.Fprintf(tw, "%s\t-\t\n", line)
			continue
		}
		display, _ := e.resolver.DisplayOf(code)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", line, code, display)
	}
	_ = tw.Flush()
}

func runStandardize(args []string) {
	fs := flag.NewFlagSet("standardize", flag.ExitOnError)
	c := addCommon(fs)
	inPath := fs.String("input", "", "Input file, one port per line (default: arguments or stdin)")
	reportPath := fs.String("report", "", "SQLite file collecting unresolved spellings")
	source := fs.String("source", "cli", "Source name recorded in the report")
	_ = fs.Parse(args)

	ctx := context.Background()
	e := c.setup(ctx)
	defer e.Close()

	if *reportPath == "" {
		*reportPath = e.cfg.Storage.SQLitePath
	}

	var unresolved []string
	w := bufio.NewWriter(os.Stdout)
	for _, line := range readLines(*inPath, fs.Args()) {
		if _, ok := e.resolver.Lookup(line); !ok && strings.TrimSpace(line) != "" {
			unresolved = append(unresolved, line)
		}
		fmt.Fprintln(w, e.resolver.Standardize(line))
	}
	_ = w.Flush()

	if *reportPath != "" && len(unresolved) > 0 {
		report, err := storage.OpenReport(*reportPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening report: %v\n", err)
			os.Exit(1)
		}
		defer report.Close()
		if err := report.RecordAll(unresolved, *source, time.Now()); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
		e.logger.Info("unresolved ports recorded", "count", len(unresolved), "report", *reportPath)
	}
}

func runSort(args []string) {
	fs := flag.NewFlagSet("sort", flag.ExitOnError)
	c := addCommon(fs)
	inPath := fs.String("input", "", "Input file, one item per line (default: arguments or stdin)")
	regions := fs.Bool("regions", false, "Sort region names instead of ports")
	_ = fs.Parse(args)

	ctx := context.Background()
	e := c.setup(ctx)
	defer e.Close()

	engine := ordering.New(e.resolver)
	lines := readLines(*inPath, fs.Args())

	var sorted []string
	if *regions {
		sorted = engine.SortRegions(lines)
	} else {
		sorted = engine.SortPorts(lines)
	}
	w := bufio.NewWriter(os.Stdout)
	for _, s := range sorted {
		fmt.Fprintln(w, s)
	}
	_ = w.Flush()
}

func runRegions(args []string) {
	fs := flag.NewFlagSet("regions", flag.ExitOnError)
	c := addCommon(fs)
	_ = fs.Parse(args)

	ctx := context.Background()
	e := c.setup(ctx)
	defer e.Close()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tREGION\tLAST INDEX")
	for _, r := range e.resolver.Catalog().Regions() {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", r.Rank, r.Name, r.HighWaterMark)
	}
	_ = tw.Flush()
}

// DedupeOut is the output of the dedupe command.
type DedupeOut struct {
	Records []schedule.SailingRecord `json:"records"`
	Stats   dedup.Stats              `json:"stats"`
}

func runDedupe(args []string) {
	fs := flag.NewFlagSet("dedupe", flag.ExitOnError)
	c := addCommon(fs)
	inPath := fs.String("input", "", "Input JSONL or JSON array file (default: stdin)")
	outPath := fs.String("output", "", "Output JSON file (default: stdout)")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	showStats := fs.Bool("stats", false, "Print counters to stderr")
	_ = fs.Parse(args)

	ctx := context.Background()
	e := c.setup(ctx)
	defer e.Close()

	var r io.Reader = os.Stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	rows, err := readRows(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Input read error: %v\n", err)
		os.Exit(1)
	}
	records := make([]schedule.SailingRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, schedule.FromMap(row))
	}

	d := dedup.New(e.resolver, dedup.WithLogger(e.logger))
	kept, stats := d.DedupeWithStats(records)

	var wout io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		wout = f
	}

	enc, err := marshalJSON(DedupeOut{Records: kept, Stats: stats}, *pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "JSON encode error: %v\n", err)
		os.Exit(1)
	}
	_, _ = wout.Write(enc)
	if wout == os.Stdout {
		_, _ = wout.Write([]byte("\n"))
	}

	if *showStats {
		fmt.Fprintf(os.Stderr, "stats: input=%d kept=%d exact_duplicates=%d near_duplicates=%d\n",
			stats.Input, stats.Kept, stats.ExactDups, stats.NearDups)
	}
}

func runCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	c := addCommon(fs)
	_ = fs.Parse(args)

	ctx := context.Background()
	e := c.setup(ctx)
	defer e.Close()

	cat := e.resolver.Catalog()
	fmt.Printf("source:     %s\n", cat.Source())
	fmt.Printf("identities: %d\n", cat.Len())
	fmt.Printf("aliases:    %d\n", cat.AliasCount())
	fmt.Printf("regions:    %d\n", cat.RegionCount())
	for _, w := range cat.Warnings() {
		fmt.Printf("warning:    %s\n", w)
	}

	// Every canonical display string must round-trip to its code.
	failures := 0
	for _, id := range cat.Identities() {
		if got := e.resolver.Resolve(id.Display()); got != id.Code {
			fmt.Printf("round-trip: %s resolves to %s\n", id.Display(), got)
			failures++
		}
	}

	if cat.Degraded() || failures > 0 {
		os.Exit(1)
	}
}

func runUnresolved(args []string) {
	fs := flag.NewFlagSet("unresolved", flag.ExitOnError)
	c := addCommon(fs)
	reportPath := fs.String("report", "", "SQLite report file (default: storage.sqlite_path)")
	limit := fs.Int("limit", 50, "Maximum rows to list (0 for all)")
	prune := fs.Bool("prune", false, "Delete spellings that now resolve")
	_ = fs.Parse(args)

	ctx := context.Background()
	e := c.setup(ctx)
	defer e.Close()

	if *reportPath == "" {
		*reportPath = e.cfg.Storage.SQLitePath
	}
	if *reportPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -report is required")
		os.Exit(2)
	}

	report, err := storage.OpenReport(*reportPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening report: %v\n", err)
		os.Exit(1)
	}
	defer report.Close()

	if *prune {
		removed, err := report.Prune(func(text string) bool {
			_, ok := e.resolver.Lookup(text)
			return ok
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error pruning report: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "pruned %d resolvable spellings\n", removed)
	}

	rows, err := report.ListUnresolved(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading report: %v\n", err)
		os.Exit(1)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HITS\tTEXT\tLAST SEEN\tSOURCE")
	for _, u := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.Hits, u.Text, u.LastSeen.Format(time.RFC3339), u.LastSource)
	}
	_ = tw.Flush()
}

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	c := addCommon(fs)
	_ = fs.Parse(args)

	ctx := context.Background()
	e := c.setup(ctx)
	defer e.Close()

	if e.cfg.Asset.Source == config.AssetPostgres {
		fmt.Fprintln(os.Stderr, "Error: import needs a file or embedded asset, not postgres")
		os.Exit(2)
	}

	var src catalog.Source = catalog.DefaultSource()
	if e.cfg.Asset.Source == config.AssetFile {
		src = catalog.FileSource{Path: e.cfg.Asset.Path}
	}
	records, warnings, err := src.Records(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading asset: %v\n", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		e.logger.Warn("asset line skipped", "warning", w.String())
	}

	pg, err := e.postgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	if err := pg.CreateSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating schema: %v\n", err)
		os.Exit(1)
	}
	if err := pg.ReplaceAliasRecords(ctx, records); err != nil {
		fmt.Fprintf(os.Stderr, "Error importing aliases: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "imported %d alias rows from %s\n", len(records), src.Name())
}
