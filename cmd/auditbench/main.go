// Auditbench runs repeated audit experiments: it simulates a distributed
// reduce or sort across in-process ranks, optionally corrupts one internal
// bucket or block with a manipulator, and aggregates how often the auditor's
// verdict matched reality.
//
// Usage:
//
//	go run ./cmd/auditbench -mode reduce -items 1000000 -ranks 4 -runs 20 -manip incvalue
//
// Flags:
//
//	-mode     reduce or sort (default: reduce)
//	-items    Number of input records per run (default: 1,000,000)
//	-ranks    Number of in-process ranks (default: 4)
//	-runs     Number of repeated runs (default: 10)
//	-manip    Manipulator name, "none" for a clean run (default: none)
//	-seed     Base seed for data generation and manipulator RNGs (default: 0x1234)
//	-bits     Fingerprint bucket bits (default: 8)
//	-rounds   Fingerprint rounds (default: 4)
package main

import (
	"cmp"
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/lorenzhs/minicheck"
	"github.com/lorenzhs/minicheck/comm"
	"github.com/lorenzhs/minicheck/manip"
)

const numBuckets = 64 // internal reduce buckets per run

func main() {
	modeFlag := flag.String("mode", "reduce", "reduce or sort")
	itemsFlag := flag.Int("items", 1_000_000, "number of input records per run")
	ranksFlag := flag.Int("ranks", 4, "number of in-process ranks")
	runsFlag := flag.Int("runs", 10, "number of repeated runs")
	manipFlag := flag.String("manip", "none", "manipulator name (none for clean runs)")
	seedFlag := flag.Uint64("seed", 0x1234, "base seed")
	bitsFlag := flag.Uint("bits", 8, "fingerprint bucket bits")
	roundsFlag := flag.Uint("rounds", 4, "fingerprint rounds")
	flag.Parse()

	var successes, detections int
	var total time.Duration
	for run := 0; run < *runsFlag; run++ {
		seed := *seedFlag + uint64(run)*0x9E3779B9
		start := time.Now()
		var ok, detected bool
		var err error
		switch *modeFlag {
		case "reduce":
			ok, detected, err = reduceRun(*itemsFlag, *ranksFlag, *manipFlag, seed, *bitsFlag, *roundsFlag)
		case "sort":
			ok, detected, err = sortRun(*itemsFlag, *ranksFlag, *manipFlag, seed)
		default:
			fmt.Fprintf(os.Stderr, "unknown mode %q\n", *modeFlag)
			os.Exit(2)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "run %d: %v\n", run, err)
			os.Exit(1)
		}
		total += time.Since(start)
		if ok {
			successes++
		}
		if detected {
			detections++
		}
	}

	fmt.Printf("mode=%s items=%d ranks=%d runs=%d manip=%s\n",
		*modeFlag, *itemsFlag, *ranksFlag, *runsFlag, *manipFlag)
	fmt.Printf("driver successes: %d/%d\n", successes, *runsFlag)
	fmt.Printf("detections:       %d/%d\n", detections, *runsFlag)
	fmt.Printf("avg run time:     %v\n", total/time.Duration(*runsFlag))
	fmt.Printf("peak RSS:         %.1f MiB\n", float64(getMaxRSS())/(1<<20))
}

// genValue derives the run's i-th input value from the seed via murmur3, so
// every rank regenerates identical data without sharing memory.
func genValue(seed uint64, i int) uint32 {
	var b [8]byte
	for j := 0; j < 8; j++ {
		b[j] = byte(uint64(i) >> (8 * j))
	}
	h, _ := murmur3.Sum128WithSeed(b[:], uint32(seed))
	return uint32(h)
}

// reduceRun simulates one audited group-reduce-by-key over uint32 values
// summed by key = value & 0xFFFF. Returns the driver verdict and whether the
// auditor detected a problem.
func reduceRun(items, ranks int, manipName string, seed uint64, bucketBits, rounds uint) (ok, detected bool, err error) {
	cfg, err := minicheck.NewConfig(minicheck.CRC32Uint32,
		minicheck.WithHashBits(32),
		minicheck.WithBucketBits(bucketBits),
		minicheck.WithRounds(rounds))
	if err != nil {
		return false, false, err
	}

	// Shared per-run verdicts; rank 0 reports.
	var driverOK, auditorOK bool
	err = comm.RunLocal(ranks, func(ctx comm.Context) error {
		auditor := minicheck.NewReduceAuditor[uint32, uint64](cfg, minicheck.Sum[uint64]{}, ctx)
		m, err := reduceManipulator(manipName, seed)
		if err != nil {
			return err
		}
		driver := minicheck.NewDriver(auditor, m)
		driver.Silence()

		// Raw records are dealt to ranks round-robin; the reduction itself
		// is regenerated globally on every rank (the data is derived from
		// the seed), with each rank emitting the keys it owns.
		rank, n := ctx.Rank(), ctx.NumRanks()
		buckets := make([]manip.Bucket[uint32, uint64], numBuckets)
		for i := 0; i < items; i++ {
			v := genValue(seed, i)
			key := v & 0xFFFF
			if i%n == rank {
				auditor.AddPre(key, uint64(v))
			}
			b := key % numBuckets
			buckets[b] = append(buckets[b], minicheck.Pair[uint32, uint64]{Key: key, Value: uint64(v)})
		}

		// Natural corruption point: rank 0 runs the manipulator over one
		// internal bucket before the per-bucket reduction.
		if rank == 0 {
			buckets[0] = m.Manipulate(buckets[0])
		}

		for b, bucket := range buckets {
			// Skip buckets rank 0 manipulated on other ranks: every bucket
			// is reduced exactly once, on the rank owning it.
			if b%n != rank {
				continue
			}
			sums := make(map[uint32]uint64)
			for _, p := range bucket {
				sums[p.Key] += p.Value
			}
			for key, sum := range sums {
				auditor.AddPost(key, sum)
			}
		}

		ok, err := driver.Check()
		if err != nil {
			return err
		}
		if rank == 0 {
			driverOK = ok
			passed, err := auditor.Check() // memoized, no collective reissued
			if err != nil {
				return err
			}
			auditorOK = passed
		}
		return nil
	})
	if err != nil {
		return false, false, err
	}
	return driverOK, !auditorOK, nil
}

// sortRun simulates one audited distributed sort of uint64 values across
// contiguous rank ranges.
func sortRun(items, ranks int, manipName string, seed uint64) (ok, detected bool, err error) {
	var driverOK, auditorOK bool
	err = comm.RunLocal(ranks, func(ctx comm.Context) error {
		auditor, err := minicheck.NewSortAuditor[uint64](ctx, cmp.Compare, minicheck.HashUint64)
		if err != nil {
			return err
		}
		m, err := sortManipulator(manipName, seed)
		if err != nil {
			return err
		}
		driver := minicheck.NewDriver(auditor, m)
		driver.Silence()

		rank, n := ctx.Rank(), ctx.NumRanks()
		all := make([]uint64, items)
		for i := range all {
			all[i] = uint64(genValue(seed, i))<<32 | uint64(genValue(seed^0xF00D, i))
		}
		for i, v := range all {
			if i%n == rank {
				auditor.AddPre(v)
			}
		}
		slices.Sort(all)

		// Contiguous output range for this rank, manipulated on the last
		// rank before emission.
		lo, hi := rank*items/n, (rank+1)*items/n
		block := slices.Clone(all[lo:hi])
		if rank == n-1 {
			block = m.Manipulate(block)
		}
		for _, v := range block {
			auditor.AddPost(v)
		}

		ok, err := driver.Check()
		if err != nil {
			return err
		}
		// The last rank invoked the manipulator; its driver verdict is the
		// authoritative one.
		if rank == n-1 {
			driverOK = ok
		}
		passed, err := auditor.Check()
		if err != nil {
			return err
		}
		if rank == 0 {
			auditorOK = passed
		}
		return nil
	})
	if err != nil {
		return false, false, err
	}
	return driverOK, !auditorOK, nil
}

func reduceManipulator(name string, seed uint64) (manip.Manipulator[manip.Bucket[uint32, uint64]], error) {
	const emptyKey = ^uint32(0)
	switch name {
	case "none":
		return manip.Dummy[manip.Bucket[uint32, uint64]]{}, nil
	case "dropfirst":
		return manip.NewDropFirst[uint32, uint64](emptyKey), nil
	case "incvalue":
		return manip.NewIncrementFirstValue[uint32, uint64](emptyKey), nil
	case "inckey":
		return manip.NewIncrementFirstKey[uint32, uint64](emptyKey), nil
	case "randvalue":
		return manip.NewRandomizeFirstValue[uint32, uint64](emptyKey, seed), nil
	case "randkey":
		return manip.NewRandomizeFirstKey[uint32, uint64](emptyKey, seed), nil
	case "swap":
		return manip.NewSwapValues[uint32, uint64](emptyKey), nil
	default:
		return nil, fmt.Errorf("unknown reduce manipulator %q", name)
	}
}

func sortManipulator(name string, seed uint64) (manip.Manipulator[[]uint64], error) {
	switch name {
	case "none":
		return manip.Dummy[[]uint64]{}, nil
	case "droplast":
		return manip.NewDropLast[uint64](), nil
	case "setequal":
		return manip.NewSetEqual[uint64](seed), nil
	case "reset":
		return manip.NewResetToDefault[uint64](seed), nil
	case "duplicate":
		return manip.NewDuplicateRandom[uint64](seed), nil
	case "flipbit":
		return manip.NewFlipRandomBit[uint64](seed), nil
	case "randomize":
		return manip.NewRandomizeElement[uint64](seed), nil
	case "movelast":
		return manip.NewMoveLastToNextBlock[uint64](), nil
	default:
		return nil, fmt.Errorf("unknown sort manipulator %q", name)
	}
}
