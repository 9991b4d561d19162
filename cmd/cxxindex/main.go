// cmd/cxxindex/main.go - Program entry
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"cxxindex/pkg/frontend/tsfrontend"
	"cxxindex/pkg/graph"
	"cxxindex/pkg/indexer"
	"cxxindex/pkg/logger"
	"cxxindex/pkg/metrics"
	"cxxindex/pkg/pool"
	"cxxindex/pkg/store"
)

func main() {
	logsDir := flag.String("logs-dir", "logs", "directory rotated log files are written to")
	logLevel := flag.String("loglevel", "info", "log level (debug, info, warn, error)")
	logMaxSizeMB := flag.Int("log-max-size-mb", logger.DefaultRotation.MaxSizeMB, "rotate the log file once it reaches this size")
	logMaxBackups := flag.Int("log-max-backups", logger.DefaultRotation.MaxBackups, "number of rotated log files to keep (0 keeps all)")
	logMaxAgeDays := flag.Int("log-max-age-days", logger.DefaultRotation.MaxAgeDays, "delete rotated log files older than this many days")
	snapshotDBPath := flag.String("snapshot-db", "", "leveldb directory to persist IndexedFile snapshots into; empty disables snapshotting")
	concurrency := flag.Int("concurrency", 4, "number of files parsed concurrently")
	outDir := flag.String("out", "", "directory to write one <basename>.json per indexed file; empty prints to stdout")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: cxxindex [flags] file.cc [file2.cpp ...]")
		os.Exit(2)
	}

	sessionID := uuid.NewString()

	rot := logger.Rotation{MaxSizeMB: *logMaxSizeMB, MaxBackups: *logMaxBackups, MaxAgeDays: *logMaxAgeDays}
	appLogger, err := logger.NewLogger(*logsDir, *logLevel, sessionID, rot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	appLogger.Info("cxxindex starting, session=%s, files=%d", sessionID, len(files))

	rec := metrics.NewRecorder(prometheus.DefaultRegisterer)

	var snapshots store.Snapshots
	if *snapshotDBPath != "" {
		lvl, err := store.NewLevelDBSnapshots(*snapshotDBPath, appLogger)
		if err != nil {
			appLogger.Fatal("failed to open snapshot store at %s: %v", *snapshotDBPath, err)
		}
		defer lvl.Close()
		snapshots = lvl
	}

	ix := indexer.New(tsfrontend.New(), appLogger, rec)

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		appLogger.Info("received shutdown signal, cancelling in-flight parses...")
		cancel()
	}()

	taskPool := pool.NewTaskPool(*concurrency, appLogger, rec)
	defer taskPool.Close()

	results := make([]*graph.IndexedFile, len(files))
	errs := make([]error, len(files))
	for i, f := range files {
		i, f := i, f
		if err := taskPool.Submit(ctx, func(ctx context.Context, taskID uint64) {
			file, err := ix.Parse(ctx, f, nil)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = file
			if snapshots != nil {
				if data, jsonErr := json.Marshal(file); jsonErr == nil {
					if putErr := snapshots.Put(ctx, snapshotKey(sessionID, f), data); putErr != nil {
						appLogger.Warn("failed to snapshot %s: %v", f, putErr)
					}
				}
			}
		}); err != nil {
			appLogger.Error("failed to submit %s: %v", f, err)
			errs[i] = err
		}
	}
	taskPool.Wait()

	exitCode := 0
	for i, f := range files {
		if errs[i] != nil {
			appLogger.Error("failed to index %s: %v", f, errs[i])
			exitCode = 1
			continue
		}
		if err := writeResult(*outDir, f, results[i]); err != nil {
			appLogger.Error("failed to write result for %s: %v", f, err)
			exitCode = 1
		}
	}

	appLogger.Info("cxxindex finished, session=%s", sessionID)
	os.Exit(exitCode)
}

func snapshotKey(sessionID, filename string) string {
	return sessionID + ":" + filename
}

func writeResult(outDir, filename string, file *graph.IndexedFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	if outDir == "" {
		fmt.Printf("=== %s ===\n%s\n", filename, data)
		return nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return os.WriteFile(filepath.Join(outDir, base+".json"), data, 0o644)
}
