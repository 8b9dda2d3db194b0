package main

import (
	"LookFor/internal"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "lookfor",
		Usage:     "Search keywords and regex patterns in a file or directory tree",
		ArgsUsage: "[KEYWORD...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "find",
				Aliases: []string{"f"},
				Usage:   "Keywords to search for (comma separated)",
			},
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Directory or file to search in",
				Value:   ".",
			},
			&cli.StringSliceFlag{
				Name:    "regex",
				Aliases: []string{"r"},
				Usage:   "Regex patterns to match (comma separated)",
			},
			&cli.StringFlag{
				Name:  "pattern-file",
				Usage: "Text file with keywords: plain lines, 're:<regex>' for patterns, '#' comments",
			},
			&cli.BoolFlag{
				Name:  "show",
				Usage: "Show diagnostics: skipped files, binary fallback, files without matches",
			},
			&cli.IntFlag{
				Name:    "maxsize",
				Aliases: []string{"m"},
				Usage:   "Maximum file size to analyze in MB (0 - unlimited)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Also write results into this file",
			},
			&cli.StringSliceFlag{
				Name:    "omit",
				Aliases: []string{"e"},
				Usage:   "Skip these extensions (comma separated, without dot). log and tmp are always skipped",
			},
			&cli.IntFlag{
				Name:  "depth",
				Usage: "Max directory depth (0 - unlimited)",
			},
			&cli.BoolFlag{
				Name:  "archives",
				Usage: "Also scan files inside archives (.zip,.tar,.gz,.7z,...)",
			},
			&cli.BoolFlag{
				Name:  "follow-symlinks",
				Usage: "Scan symlinks pointing at regular files",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Stop the search after this long and print partial results (0 - no limit)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML file with defaults (default ~/.lookfor.yaml if present)",
				EnvVars: []string{"LOOKFOR_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "logfile",
				Usage: "Write logs into file instead of stderr",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
				Value: "info",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	cfgPath, optional := c.String("config"), false
	if cfgPath == "" {
		cfgPath, optional = defaultConfigPath(), true
	}
	cfg, err := internal.LoadConfig(cfgPath, optional)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	level := cfg.LogLevel
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	internal.InitLogger(c.String("logfile"), level)

	// only ever disable: fatih/color detects NO_COLOR and a non-TTY stdout itself
	if c.Bool("no-color") || (cfg.Color != nil && !*cfg.Color) {
		internal.SetColor(false)
	}
	style := internal.DefaultStyle()

	spec, err := buildSpec(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	sink := internal.NewMultiSink(os.Stdout)
	var of *internal.OutputFile
	if out := c.String("output"); out != "" {
		of, err = internal.OpenOutputFile(out)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer func() {
			if err := of.Close(); err != nil {
				logrus.WithError(err).Error("close output file")
			}
		}()
		sink.Add(of)
	}

	root := c.String("path")
	info, err := os.Stat(root)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Cannot access %s: %v", root, err), 1)
	}
	if info.IsDir() {
		fmt.Fprintf(sink, "Searching in directory: %s\n", root)
	} else {
		fmt.Fprintf(sink, "Searching in file: %s\n", root)
	}

	// Ctrl-C only flips the flag; the scan winds down at its next checkpoint.
	cancel := internal.NewCancellation()
	detach := cancel.StopOnSignal(func(sig os.Signal) {
		logrus.Warnf("Received %s, stopping search", sig)
	}, os.Interrupt, syscall.SIGTERM)
	defer detach()
	stopTimer := cancel.StopAfter(c.Duration("timeout"), func() {
		logrus.Warnf("Timeout %s reached, stopping search", c.Duration("timeout"))
	})
	defer stopTimer()

	var stats internal.AppStats
	stats.Start()

	scanner := internal.NewScanner(spec, sink, cancel, style)
	if of != nil {
		if fi, err := of.Stat(); err == nil {
			scanner.Exclude(fi)
		}
	}
	scanErr := scanner.ScanRoot(root)

	if err := internal.WriteSummary(sink, spec, scanner.Counts(), stats.Elapsed(), scanner.Interrupted(), style); err != nil {
		logrus.WithError(err).Error("write summary")
	}
	if err := sink.Flush(); err != nil {
		logrus.WithError(err).Error("flush output")
	}
	if scanErr != nil {
		return cli.Exit(fmt.Sprintf("Error with the file %s: %v", root, scanErr), 1)
	}
	return nil
}

// buildSpec merges config defaults with flags; flags win when set.
func buildSpec(c *cli.Context, cfg *internal.Config) (*internal.SearchSpec, error) {
	keywords := cfg.Keywords
	if c.IsSet("find") {
		keywords = internal.SplitList(c.String("find"))
	}
	keywords = append(keywords, c.Args().Slice()...)

	exprs := cfg.Regex
	if c.IsSet("regex") {
		exprs = c.StringSlice("regex")
	}

	if pf := c.String("pattern-file"); pf != "" {
		kw, ex, err := internal.LoadPatterns(pf)
		if err != nil {
			return nil, fmt.Errorf("pattern file: %w", err)
		}
		keywords = append(keywords, kw...)
		exprs = append(exprs, ex...)
	}

	patterns, err := internal.CompilePatterns(exprs)
	if err != nil {
		return nil, err
	}

	spec := &internal.SearchSpec{
		Keywords:       keywords,
		Patterns:       patterns,
		MaxSizeMB:      pick(c, "maxsize", cfg.MaxSizeMB),
		Omit:           cfg.Omit,
		Show:           cfg.Show || c.Bool("show"),
		Archives:       cfg.Archives || c.Bool("archives"),
		FollowSymlinks: cfg.FollowSymlinks || c.Bool("follow-symlinks"),
		MaxDepth:       pick(c, "depth", cfg.Depth),
	}
	if c.IsSet("omit") {
		spec.Omit = c.StringSlice("omit")
	}
	if err := spec.Validate(); err != nil {
		if errors.Is(err, internal.ErrNoSearchTerms) {
			_ = cli.ShowAppHelp(c)
		}
		return nil, err
	}
	spec.Prepare()
	return spec, nil
}

func pick(c *cli.Context, flag string, fallback int) int {
	if c.IsSet(flag) {
		return c.Int(flag)
	}
	return fallback
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lookfor.yaml")
}
