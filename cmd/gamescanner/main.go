package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"GameScanner/internal/app"
	"GameScanner/internal/config"
	"GameScanner/internal/domain"
	"GameScanner/internal/logging"
)

func main() {
	cfg := config.Load()

	cookie := flag.String("cookie", cfg.HTTP.Cookie, "Cookie header for gated pages")
	activeRoot := flag.String("active-root", cfg.Library.ActiveRoot, "Active library root")
	waitingRoot := flag.String("waiting-root", cfg.Library.WaitingRoot, "Waiting-update library root")
	csvPath := flag.String("csv", cfg.Cache.CSVPath, "CSV export path (empty disables)")
	dbPath := flag.String("db", cfg.Cache.SQLitePath, "sqlite cache path (empty disables)")
	watch := flag.Bool("watch", false, "keep running and rescan on the configured cron expression")
	printAll := flag.Bool("print-all", false, "print every row, not just new/updated/error entries")
	printCached := flag.Bool("print-cached", false, "print the last cached scan results without scraping")
	verbose := flag.Bool("v", false, "show per-entry progress")
	flag.Parse()

	cfg.HTTP.Cookie = *cookie
	cfg.Library.ActiveRoot = *activeRoot
	cfg.Library.WaitingRoot = *waitingRoot
	cfg.Cache.CSVPath = *csvPath
	cfg.Cache.SQLitePath = *dbPath

	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if *verbose {
		application.SetProgress(func(index, total int, message string) {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", index, total, message)
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *printCached {
		results, err := application.CachedResults(ctx)
		if err != nil {
			logger.Error("cached results unavailable", "error", err)
			os.Exit(1)
		}
		printResults(results, true)
		return
	}

	if *watch {
		if err := application.Watch(ctx); err != nil {
			logger.Error("watch stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	results, err := application.RunOnce(ctx)
	if err != nil {
		logger.Error("scan failed", "error", err)
		os.Exit(1)
	}

	printResults(results, *printAll)
}

func printResults(results []domain.GameInfo, printAll bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GAME\tTITLE\tVERSION\tUPDATED\tRECENCY\tCHANGE")

	shown := 0
	for _, info := range results {
		interesting := info.ChangeStatus == domain.ChangeNew ||
			info.ChangeStatus == domain.ChangeUpdated ||
			info.ChangeStatus == domain.ChangeError
		if !printAll && !interesting {
			continue
		}
		shown++
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			info.GameID, info.Title, info.Version, info.LastUpdate,
			info.IsRecent, info.ChangeStatus)
	}
	w.Flush()

	fmt.Printf("\n%d of %d entries shown\n", shown, len(results))
}
