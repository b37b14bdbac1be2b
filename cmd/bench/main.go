package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"

	"github.com/aretw0/wtf"
	"github.com/aretw0/wtf/pkg/adapters/fs"
	"github.com/aretw0/wtf/pkg/core"
	"github.com/aretw0/wtf/pkg/remote"
)

func main() {
	count := flag.Int("count", 100000, "Number of definitions to generate")
	perTerm := flag.Int("per-term", 3, "Definitions per term")
	changes := flag.Int("changes", 1000, "Lines changed by the generated delta")
	keep := flag.Bool("keep", false, "Keep the benchmark home after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "wtf_bench_")
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

	// 1. Generate a snapshot directly on disk to simulate a synced home.
	fmt.Printf("Generating %d definitions in %s...\n", *count, benchDir)
	startGen := time.Now()
	entries := make([]core.Entry, 0, *count)
	for i := 0; i < *count; i++ {
		entries = append(entries, core.Entry{
			Term:       fmt.Sprintf("Term%d", i / *perTerm),
			Definition: fmt.Sprintf("benchmark definition number %d", i),
		})
	}
	data := fs.EncodeEntries(entries)
	snapshot := filepath.Join(benchDir, fs.DefaultResDir, fs.DefaultBaseFile)
	if err := os.MkdirAll(filepath.Dir(snapshot), 0755); err != nil {
		panic(err)
	}
	if err := os.WriteFile(snapshot, data, 0644); err != nil {
		panic(err)
	}
	fmt.Printf("Generation took: %v (%s)\n", time.Since(startGen), humanize.Bytes(uint64(len(data))))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.TODO()

	// 2. Cold load, as every CLI invocation does.
	service, err := wtf.New(benchDir, wtf.WithLogger(logger), wtf.WithSync(false))
	if err != nil {
		panic(err)
	}
	startLoad := time.Now()
	if err := service.Load(ctx); err != nil {
		panic(err)
	}
	loadDuration := time.Since(startLoad)

	// 3. Lookups over every term.
	terms := *count / *perTerm
	startLookup := time.Now()
	for i := 0; i < terms; i++ {
		if _, err := service.Lookup(ctx, fmt.Sprintf("term%d", i)); err != nil {
			panic(err)
		}
	}
	lookupDuration := time.Since(startLookup)

	// 4. Glob search.
	startSearch := time.Now()
	found, err := service.Search(ctx, "term1*")
	if err != nil {
		panic(err)
	}
	searchDuration := time.Since(startSearch)

	// 5. Inflate a gzip copy of the snapshot, as a compressed download would.
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	startInflate := time.Now()
	if _, err := remote.Inflate(buf.Bytes()); err != nil {
		panic(err)
	}
	inflateDuration := time.Since(startInflate)

	// 6. Parse and apply a delta.
	var patch strings.Builder
	patch.WriteString("@@ -1 +1 @@\n")
	for i := 0; i < *changes && i < len(entries); i++ {
		fmt.Fprintf(&patch, "-%s\n+%s:updated %d\n", entries[i], entries[i].Term, i)
	}
	dict := core.NewDictionary()
	for _, e := range entries {
		dict.Insert(e.Term, e.Definition)
	}
	startDelta := time.Now()
	delta, err := remote.ParseDiff(patch.String())
	if err != nil {
		panic(err)
	}
	stats := delta.Apply(dict, remote.DeleteExact, remote.AddUnique)
	deltaDuration := time.Since(startDelta)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d definitions, %d terms):\n", *count, terms)
	fmt.Printf("  Load:    %v\n", loadDuration)
	fmt.Printf("  Lookup:  %v (%v per term)\n", lookupDuration, lookupDuration/time.Duration(max(terms, 1)))
	fmt.Printf("  Search:  %v (%d matches)\n", searchDuration, len(found))
	fmt.Printf("  Inflate: %v (%s -> %s)\n", inflateDuration, humanize.Bytes(uint64(buf.Len())), humanize.Bytes(uint64(len(data))))
	fmt.Printf("  Delta:   %v (+%d -%d)\n", deltaDuration, stats.Added, stats.Deleted)
	fmt.Printf("--------------------------------------------------\n")
}
