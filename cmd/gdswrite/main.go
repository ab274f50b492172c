package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/gdsii"
	"github.com/wippyai/gdsii/design"
	"github.com/wippyai/gdsii/gds"
	"github.com/wippyai/gdsii/writer"
)

type options struct {
	design      string
	config      string
	output      string
	top         string
	foundry     string
	read        string
	upper       bool
	verbose     bool
	dump        bool
	metrics     bool
	interactive bool
}

func main() {
	var o options
	flag.StringVar(&o.design, "design", "", "Path to YAML design file")
	flag.StringVar(&o.config, "config", "", "Path to YAML writer config (default $"+writer.ConfigEnv+")")
	flag.StringVar(&o.output, "o", "", "Output file; .gz compresses (default <top>.gds)")
	flag.StringVar(&o.top, "top", "", "Top cell as [lib:]cell[;version] (default from design)")
	flag.StringVar(&o.foundry, "foundry", "", "Foundry layer map to use")
	flag.StringVar(&o.read, "read", "", "Inspect an existing GDSII file instead of writing")
	flag.BoolVar(&o.upper, "upper", false, "Write names in upper case")
	flag.BoolVar(&o.verbose, "v", false, "Verbose diagnostics")
	flag.BoolVar(&o.dump, "dump", false, "Print the written records")
	flag.BoolVar(&o.metrics, "metrics", false, "Print write counters")
	flag.BoolVar(&o.interactive, "i", false, "Browse the records in a TUI")
	flag.Parse()

	if o.design == "" && o.read == "" {
		fmt.Fprintln(os.Stderr, "Usage: gdswrite -design <file.yaml> [-o out.gds] [-top lib:cell] [-config cfg.yaml]")
		fmt.Fprintln(os.Stderr, "       gdswrite -read <file.gds> [-dump | -i]")
		os.Exit(1)
	}

	log, err := newLogger(o.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(o, log, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}

func run(o options, log *zap.Logger, out io.Writer) error {
	path := o.read
	if path == "" {
		written, err := write(o, log, out)
		if err != nil {
			return err
		}
		path = written
	}
	if !o.dump && !o.interactive {
		return nil
	}

	recs, err := gdsii.ReadFile(path)
	if err != nil {
		return err
	}
	if o.interactive {
		return browse(path, recs)
	}
	dump(out, recs, isTerminal(out))
	return nil
}

func write(o options, log *zap.Logger, out io.Writer) (string, error) {
	d, err := design.Load(o.design)
	if err != nil {
		return "", err
	}
	cfg, err := writer.LoadConfig(o.config)
	if err != nil {
		return "", err
	}
	cfg.Logger = log
	if o.foundry != "" {
		cfg.Foundry = o.foundry
	}
	if o.upper {
		cfg.UpperCase = true
	}

	reg := prometheus.NewRegistry()
	if o.metrics {
		cfg.Metrics = writer.NewMetrics(reg)
	}

	top := d.Top
	if o.top != "" {
		if top, err = d.Cell(o.top); err != nil {
			return "", err
		}
	}
	if top == nil {
		return "", fmt.Errorf("design %s has no cells", o.design)
	}

	output := o.output
	if output == "" {
		output = top.Name + ".gds"
	}
	res, err := gdsii.WriteFile(output, top, nil, cfg)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(out, "%s: %d structures, %d records, %d bytes", output, res.Structures, res.Records, res.Bytes)
	if res.Dropped > 0 {
		fmt.Fprintf(out, ", %d shapes dropped", res.Dropped)
	}
	if res.Renamed > 0 {
		fmt.Fprintf(out, ", %d cells renamed", res.Renamed)
	}
	fmt.Fprintf(out, " (xxh64 %016x)\n", res.Digest)

	if o.metrics {
		if err := printMetrics(out, reg); err != nil {
			return "", err
		}
	}
	return output, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var (
	recordStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	structureStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#98FB98"))
)

// dump prints one record per line, indented by nesting depth.
func dump(w io.Writer, recs []gds.Record, styled bool) {
	depth := 0
	for _, r := range recs {
		switch r.Type {
		case gds.EndStr, gds.EndEl, gds.EndLib:
			depth = max(0, depth-1)
		}

		line := r.String()
		if styled {
			name, rest, _ := strings.Cut(line, " ")
			style := recordStyle
			if r.Type == gds.StrName {
				style = structureStyle
			}
			line = style.Render(name)
			if rest != "" {
				line += " " + rest
			}
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), line)

		switch r.Type {
		case gds.BgnLib, gds.BgnStr, gds.Boundary, gds.Path, gds.SRef, gds.ARef, gds.Text:
			depth++
		}
	}
}

// printMetrics writes every counter in reg as "name{labels} value".
func printMetrics(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+strconv.Quote(lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}
