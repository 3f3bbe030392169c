// Command timeline builds chapter timelines from the command line.
//
// Usage:
//
//	timeline [flags] openbook <openbook.json|loan-page.html>
//	timeline [flags] parts <part01.mp3> [part02.mp3 ...]
//
// The report is written to stdout as JSON, or as an ffmetadata document with
// -format ffmetadata. Logs go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-timeline/internal/config"
	"github.com/listenupapp/listenup-timeline/internal/di"
	"github.com/listenupapp/listenup-timeline/internal/export"
	"github.com/listenupapp/listenup-timeline/internal/logger"
	"github.com/listenupapp/listenup-timeline/internal/openbook"
	"github.com/listenupapp/listenup-timeline/internal/service"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("timeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", export.FormatJSON, "Output format (json, ffmetadata)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  timeline [flags] openbook <openbook.json|loan-page.html>")
		fmt.Fprintln(stderr, "  timeline [flags] parts <part.mp3>...")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Flags:")
		fs.PrintDefaults()
	}

	cfg, err := config.Load(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "timeline: %v\n", err)
		return exitUsage
	}

	if *format != export.FormatJSON && *format != export.FormatFFMetadata {
		fmt.Fprintf(stderr, "timeline: unknown format %q\n", *format)
		return exitUsage
	}

	rest := fs.Args()
	if len(rest) < 2 {
		fs.Usage()
		return exitUsage
	}

	injector := di.NewContainerWithConfig(cfg)
	defer injector.Shutdown()

	log := do.MustInvoke[*logger.Logger](injector)
	svc := do.MustInvoke[*service.TimelineService](injector)

	var result *service.Result
	switch rest[0] {
	case "openbook":
		if len(rest) != 2 {
			fs.Usage()
			return exitUsage
		}
		result, err = fromOpenbookFile(ctx, svc, rest[1])
	case "parts":
		result, err = svc.FromParts(ctx, rest[1:])
	default:
		fmt.Fprintf(stderr, "timeline: unknown command %q\n", rest[0])
		fs.Usage()
		return exitUsage
	}
	if err != nil {
		log.Error("building timeline failed", "error", err)
		return exitError
	}

	if err := export.Write(stdout, *format, result, result.Merged); err != nil {
		log.Error("writing report failed", "error", err)
		return exitError
	}
	return exitOK
}

func fromOpenbookFile(ctx context.Context, svc *service.TimelineService, path string) (*service.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	book, err := openbook.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return svc.FromOpenbook(ctx, book)
}
