// Command swfscene builds the scene of one or more tag dumps and prints a
// summary line per file.
//
//	swfscene [-workers N] [-container-bounds] [-frames] file...
//	swfscene token -subject S [-ttl 24h]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/inamate/swfscene/internal/auth"
	"github.com/inamate/swfscene/internal/catalog"
	"github.com/inamate/swfscene/internal/config"
	"github.com/inamate/swfscene/internal/draw"
	"github.com/inamate/swfscene/internal/tag"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(2)
	}
	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(runToken(cfg, os.Args[2:], os.Stdout))
	}
	os.Exit(run(cfg, os.Args[1:], os.Stdout, os.Stderr))
}

func runToken(cfg *config.Config, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "", "Token subject (owner of uploaded documents)")
	ttl := fs.Duration("ttl", auth.DefaultTTL, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *subject == "" {
		slog.Error("token: -subject is required")
		return 2
	}

	token, err := auth.NewService(cfg.JWTSecret).Issue(*subject, *ttl)
	if err != nil {
		slog.Error("issue token", "error", err)
		return 1
	}
	fmt.Fprintln(stdout, token)
	return 0
}

type options struct {
	containerBounds bool
	frames          bool
	maxObjectExtent int
}

func run(cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("swfscene", flag.ContinueOnError)
	fs.SetOutput(stderr)
	workers := fs.Int("workers", cfg.Workers, "Files processed in parallel")
	containerBounds := fs.Bool("container-bounds", cfg.UseContainerBounds, "Use the declared display rectangle as stage bounds")
	frames := fs.Bool("frames", false, "Print one line per frame with its command count")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: swfscene [-workers N] [-container-bounds] [-frames] file...")
		return 2
	}

	opts := options{
		containerBounds: *containerBounds,
		frames:          *frames,
		maxObjectExtent: cfg.MaxObjectExtent,
	}
	files := fs.Args()
	results := make([]string, len(files))
	errs := make([]error, len(files))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(*workers, 1))
	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			start := time.Now()
			results[i], errs[i] = summarize(name, opts)
			slog.Debug("processed", "file", name, "duration", time.Since(start), "error", errs[i])
			return nil
		})
	}
	g.Wait()

	status := 0
	for i, name := range files {
		if errs[i] != nil {
			fmt.Fprintf(stderr, "%s: %v\n", name, errs[i])
			status = 1
			continue
		}
		fmt.Fprint(stdout, results[i])
	}
	return status
}

// summarize loads one dump into its own catalog and describes it.
func summarize(name string, opts options) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := tag.Decode(f, tag.FormatFromPath(name))
	if err != nil {
		return "", err
	}

	c := catalog.New(doc, catalog.WithMaxObjectExtent(opts.maxObjectExtent))
	defer c.Release()

	tl, err := c.Timeline(opts.containerBounds)
	if err != nil {
		return "", err
	}
	if _, err := c.Shapes(); err != nil {
		return "", err
	}
	if _, err := c.Images(); err != nil {
		return "", err
	}
	if _, err := c.Morphs(); err != nil {
		return "", err
	}

	st := c.Stats()
	b := tl.Bounds()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: v%d %gfps frames=%d bounds=[%d %d %d %d] shapes=%d images=%d sprites=%d morphs=%d exports=%d unknown=%d\n",
		name, st.Version, st.FrameRate, tl.Len(), b.XMin, b.XMax, b.YMin, b.YMax,
		st.Shapes, st.Images, st.Sprites, st.Morphs, st.Exports, st.Unknown)

	if opts.frames {
		for i, frame := range tl.Frames() {
			fmt.Fprintf(&sb, "  frame %d: objects=%d commands=%d", i, len(frame.Objects), len(draw.Record(tl, i)))
			if frame.Label != "" {
				fmt.Fprintf(&sb, " label=%q", frame.Label)
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}
