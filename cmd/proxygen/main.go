// Package main is the proxygen CLI: it resolves a decklist against a
// proxygen server and prints the cards a proxy sheet would contain.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/mtgproxy/proxygen/internal/cardcache"
	"github.com/mtgproxy/proxygen/internal/cards"
	"github.com/mtgproxy/proxygen/internal/client"
	"github.com/mtgproxy/proxygen/internal/config"
	"github.com/mtgproxy/proxygen/internal/storage"
)

func main() {
	var (
		file      = flag.String("file", "", "decklist file to resolve (reads stdin when omitted)")
		serverURL = flag.String("server", "", "proxygen server URL (overrides config)")
		watch     = flag.Bool("watch", false, "watch the decklist file and re-resolve on change")
		noCache   = flag.Bool("no-cache", false, "bypass the local card cache")
		debug     = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	if *watch && *file == "" {
		fmt.Fprintln(os.Stderr, "-watch requires -file")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *debug || cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	server := cfg.Client.ServerURL
	if *serverURL != "" {
		server = *serverURL
	}

	var cache *cardcache.Cache
	if cfg.Cache.Enabled && !*noCache {
		path, err := cfg.CachePath()
		if err != nil {
			logger.Warn("cache path unavailable, running uncached", "error", err)
		} else if store, err := storage.OpenBolt(path); err != nil {
			logger.Warn("failed to open card cache, running uncached", "path", path, "error", err)
		} else {
			defer func() { _ = store.Close() }()
			cache = cardcache.New(store, logger, cardcache.WithTTL(cfg.CacheTTL()))
		}
	}

	c := client.New(server, cache, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *watch {
		runWatch(ctx, c, *file, logger)
		return
	}

	text, err := readDecklist(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read decklist: %v\n", err)
		os.Exit(1)
	}

	result, err := c.Resolve(ctx, text)
	if err != nil {
		if errors.Is(err, client.ErrNoEntries) {
			fmt.Fprintln(os.Stderr, "no valid card entries found in decklist")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "failed to resolve decklist: %v\n", err)
		os.Exit(1)
	}

	printResult(os.Stdout, result)
}

// runWatch re-resolves the decklist on every file change, printing each
// surviving result. A save that arrives mid-resolve supersedes the run in
// flight.
func runWatch(ctx context.Context, c *client.Client, path string, logger *slog.Logger) {
	submitter := client.NewSubmitter(c.Resolve, func(result *client.Result, err error) {
		if err != nil {
			if errors.Is(err, client.ErrNoEntries) {
				fmt.Fprintln(os.Stderr, "no valid card entries found in decklist")
			} else {
				fmt.Fprintf(os.Stderr, "failed to resolve decklist: %v\n", err)
			}
			return
		}
		printResult(os.Stdout, result)
	})
	defer submitter.Close()

	if err := client.WatchFile(ctx, path, logger, submitter.Submit); err != nil {
		fmt.Fprintf(os.Stderr, "failed to watch %s: %v\n", path, err)
		os.Exit(1)
	}
}

// readDecklist reads the decklist from the given file, or stdin when path
// is empty.
func readDecklist(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// printResult writes the resolved cards as a table, followed by any names
// that could not be resolved and the total proxy count.
func printResult(w *os.File, result *client.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QTY\tNAME\tSET\tIMAGE")
	for _, card := range result.Cards {
		set := ""
		if card.SetCode != nil {
			set = *card.SetCode
		}
		image := ""
		if card.ImageURL != nil {
			image = *card.ImageURL
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", card.Quantity, card.Name, set, image)
	}
	_ = tw.Flush()

	if len(result.Unresolved) > 0 {
		fmt.Fprintln(w, "\nCards not found:")
		for _, name := range result.Unresolved {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}

	expanded := cards.Expand(result.Cards)
	fmt.Fprintf(w, "\n%d proxies across %d distinct entries\n", len(expanded), len(result.Cards))
}
