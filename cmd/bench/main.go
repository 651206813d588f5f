package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/aretw0/lanote"
	"github.com/aretw0/lanote/pkg/core"
)

// bench measures write throughput and how long the live query takes to
// reach extra subscribers.
func main() {
	count := flag.Int("count", 1000, "Number of notes to create")
	subscribers := flag.Int("subscribers", 4, "Extra live query subscribers")
	keep := flag.Bool("keep", false, "Keep the benchmark database after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "lanote_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	app, err := lanote.Open(ctx, filepath.Join(benchDir, "bench.db"), lanote.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	defer app.Close()

	var received atomic.Int64
	lastRev := make([]atomic.Uint64, *subscribers)
	for i := 0; i < *subscribers; i++ {
		_, err := app.Store.Subscribe(func(snap core.Snapshot) {
			received.Add(1)
			lastRev[i].Store(snap.Rev)
		})
		if err != nil {
			panic(err)
		}
	}

	fmt.Printf("Creating %d notes with %d extra subscribers...\n", *count, *subscribers)
	start := time.Now()
	for i := 0; i < *count; i++ {
		if _, err := app.Notes.AddNote(ctx, fmt.Sprintf("Note %d", i), "benchmark"); err != nil {
			panic(err)
		}
	}
	writes := time.Since(start)
	fmt.Printf("Writes (settled on synchronizer): %v (%.0f/s)\n", writes, float64(*count)/writes.Seconds())

	target := app.Store.Revision()
	for i := range lastRev {
		for lastRev[i].Load() < target {
			time.Sleep(time.Millisecond)
		}
	}
	fmt.Printf("All subscribers caught up after: %v (%d snapshots delivered)\n", time.Since(start), received.Load())
	fmt.Printf("Final collection: %d notes\n", len(app.Notes.CurrentNotes()))
}
