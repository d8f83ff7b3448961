// Command osm converts word alignments to operation sequences and back.
// It works on line-aligned corpus files; .xz and .gz files are read and
// written transparently and "-" stands for stdin or stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/osmcodec/internal/report"
)

const version = "0.4.0"

// Output seams, replaced by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Globals are the flags shared by every command. Flags left at their zero
// value fall back to the profile given with --config.
type Globals struct {
	Config    string `help:"YAML codec profile" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" help:"Log format (text, json)"`
	Workers   int    `help:"Parallel workers (0 = one per CPU, -1 = profile)" default:"-1"`
	Report    string `help:"SQLite file recording runs and failed lines" type:"path"`
	Symbolic  bool   `help:"Emit symbolic control tokens such as <EOP>"`
	Strict    bool   `help:"Exit with an error if any line failed"`
	Quiet     bool   `short:"q" help:"Do not print the run summary"`
}

// CLI defines the command-line interface for osm.
type CLI struct {
	Globals

	Normalize NormalizeCmd `cmd:"" help:"Normalize alignments to one source position per target word"`
	Encode    EncodeCmd    `cmd:"" help:"Encode sentence pairs and alignments as operation sequences"`
	Decode    DecodeCmd    `cmd:"" help:"Decode operation sequences"`
	Segment   SegmentCmd   `cmd:"" help:"Segment alignments into phrase blocks"`
	Flatten   FlattenCmd   `cmd:"" help:"Turn phrase-based sequences into basic sequences"`
	Fert      FertCmd      `cmd:"" help:"Derive per-EOP fertility labels"`
	Pop2src   Pop2srcCmd   `cmd:"" name:"pop2src" help:"Replace EOP operations with source words"`
	Pops      PopsCmd      `cmd:"" help:"Insert EOP operations into word lines by fertility"`
	Reorder   ReorderCmd   `cmd:"" help:"Reorder source sentences with non-lexical sequences"`
	Runs      RunsGroup    `cmd:"" help:"Inspect recorded runs"`
	Profile   ProfileCmd   `cmd:"" help:"Print the effective codec profile"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// RunsGroup contains run report operations.
type RunsGroup struct {
	List RunsListCmd `cmd:"" help:"List recorded runs"`
	Show RunsShowCmd `cmd:"" help:"Show the failed lines of a run"`
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "osm %s (%s, sqlite %s)\n", version, runtime.Version(), report.DriverType())
	return nil
}

func options(ctx context.Context) []kong.Option {
	return []kong.Option{
		kong.Name("osm"),
		kong.Description("Operation sequence codecs for word alignments"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
}

// execute parses args and runs the selected command.
func execute(ctx context.Context, args []string) error {
	var cli CLI
	parser, err := kong.New(&cli, options(ctx)...)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(&cli.Globals)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	parser := kong.Must(&cli, options(ctx)...)
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	err = kctx.Run(&cli.Globals)
	stop()
	parser.FatalIfErrorf(err)
}
