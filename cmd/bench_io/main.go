// bench_io compares the two key file formats:
//
//  1. "text": whitespace-separated base-10 keys through buffered I/O
//  2. "binary": checksummed little-endian keys through a memory mapping
//
// Each mode writes N keys, syncs, then reads them back and checks the
// round trip with an order-independent fingerprint.
//
// Usage:
//
//	go run ./cmd/bench_io -keys 10000000
//	go run ./cmd/bench_io -keys 50000000 -mode binary -dir /mnt/scratch
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/tamirms/samplesort/internal/keygen"
	"github.com/tamirms/samplesort/internal/verify"
	"github.com/tamirms/samplesort/keyfile"
)

func main() {
	numKeys := flag.Int("keys", 10_000_000, "number of keys")
	distFlag := flag.String("dist", "uniform", "key distribution: uniform, hashed, sorted, reversed, fewunique")
	mode := flag.String("mode", "both", "mode: text, binary, or both")
	tmpDir := flag.String("dir", "", "temp directory (default: os.TempDir())")
	flag.Parse()

	if *tmpDir == "" {
		*tmpDir = os.TempDir()
	}
	dist, err := keygen.Parse(*distFlag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	fmt.Printf("Configuration:\n")
	fmt.Printf("  Keys:         %d (%s)\n", *numKeys, dist)
	fmt.Printf("  Temp dir:     %s\n", *tmpDir)
	fmt.Printf("  GOMAXPROCS:   %d\n", runtime.GOMAXPROCS(0))
	fmt.Println()

	keys, err := keygen.Generate(dist, *numKeys, 42)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	want := verify.Of(keys)

	dir, err := os.MkdirTemp(*tmpDir, "bench-io-*")
	if err != nil {
		fmt.Printf("  ERROR: create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	if *mode == "text" || *mode == "both" {
		fmt.Println("=== text ===")
		bench(filepath.Join(dir, "keys.txt"), keys, want)
		fmt.Println()
	}
	if *mode == "binary" || *mode == "both" {
		fmt.Println("=== binary (mmap) ===")
		bench(filepath.Join(dir, "keys"+keyfile.BinaryExt), keys, want)
		fmt.Println()
	}
}

// bench writes keys to path, syncs the file and reads it back.
func bench(path string, keys []int64, want verify.Fingerprint) {
	writeStart := time.Now()
	if err := keyfile.Write(path, keys); err != nil {
		fmt.Printf("  ERROR: write: %v\n", err)
		return
	}
	writeDur := time.Since(writeStart)

	syncStart := time.Now()
	if err := syncFile(path); err != nil {
		fmt.Printf("  ERROR: sync: %v\n", err)
		return
	}
	syncDur := time.Since(syncStart)

	stat, err := os.Stat(path)
	if err != nil {
		fmt.Printf("  ERROR: stat: %v\n", err)
		return
	}

	readStart := time.Now()
	got, err := keyfile.Read(path)
	if err != nil {
		fmt.Printf("  ERROR: read: %v\n", err)
		return
	}
	readDur := time.Since(readStart)

	n := float64(len(keys))
	fmt.Printf("  Size:   %8.1f MB (%.2f bytes/key)\n", float64(stat.Size())/1e6, float64(stat.Size())/max(n, 1))
	fmt.Printf("  Write:  %6.2fs (%6.2f M keys/sec)\n", writeDur.Seconds(), n/writeDur.Seconds()/1e6)
	fmt.Printf("  Sync:   %6.2fs\n", syncDur.Seconds())
	fmt.Printf("  Read:   %6.2fs (%6.2f M keys/sec)\n", readDur.Seconds(), n/readDur.Seconds()/1e6)
	fmt.Printf("  Total:  %6.2fs\n", (writeDur + syncDur + readDur).Seconds())
	if fp := verify.Of(got); fp != want {
		fmt.Printf("  ERROR: round trip mismatch: want %v, got %v\n", want, fp)
	}
}

func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
