package main

// allocpattern.go is a tiny helper utility that generates deterministic
// allocation-pattern traces for standalone benchmarking of pkg/bindless
// outside `go test`. Each output line is one event: "A" for an allocation,
// or "D <n>" to drop the n-th most recently allocated still-live handle
// (0 = most recent) — a cheap way to describe frame-to-frame churn without
// shipping real handle values.
//
// Usage:
//
//	go run ./tools/allocpattern -n 1000000 -live 4096 -seed 42 -out trace.txt
//
// Flags:
//
//	-n     number of events to generate (default 1e6)
//	-live  target steady-state number of live handles (default 4096)
//	-seed  RNG seed (default current time)
//	-out   output file (default stdout)
//
// A consumer replays the trace against a real bindless.Instance, allocating
// on "A" and dropping the matching handle on "D n", to reproduce the same
// churn pattern across runs for performance regression hunting.
//
// © 2025 arena-cache authors. MIT License.

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
)

func main() {
	var (
		n       = flag.Int("n", 1_000_000, "number of events to generate")
		live    = flag.Int("live", 4096, "target steady-state number of live handles")
		seedVal = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
		outPath = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	if *live <= 0 {
		fmt.Fprintln(os.Stderr, "live must be > 0")
		os.Exit(1)
	}

	rnd := rand.New(rand.NewSource(*seedVal))

	var out *os.File
	var err error
	if *outPath == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create file:", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	w := bufio.NewWriterSize(out, 1<<20)
	defer w.Flush()

	// liveCount tracks the number of outstanding allocations the trace has
	// implied so far; the drop probability rises as it exceeds the target,
	// producing a steady-state churn pattern around -live handles rather
	// than unbounded growth or an empty table.
	liveCount := 0
	for i := 0; i < *n; i++ {
		dropProb := 0.5
		if liveCount < *live {
			dropProb = 0.3
		} else if liveCount > *live*2 {
			dropProb = 0.8
		}

		if liveCount > 0 && rnd.Float64() < dropProb {
			age := rnd.Intn(liveCount)
			fmt.Fprintf(w, "D %d\n", age)
			liveCount--
			continue
		}
		fmt.Fprintln(w, "A")
		liveCount++
	}
}
