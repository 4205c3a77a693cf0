// Package minicheck is a probabilistic auditing layer for distributed
// group-reduce-by-key and sort operations. It verifies, at runtime and
// without re-executing the computation, that the audited operation produced
// a correct result, with bounded one-sided error.
//
// # Basic Usage
//
// Auditing a reduce (one auditor per rank, fed by the reduce engine):
//
//	cfg, err := minicheck.NewConfig(minicheck.CRC32Uint32,
//	    minicheck.WithHashBits(32), minicheck.WithBucketBits(8), minicheck.WithRounds(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	auditor := minicheck.NewReduceAuditor[uint32, uint64](cfg, minicheck.Sum[uint64]{}, ctx)
//
//	for _, rec := range rawInput {
//	    auditor.AddPre(rec.Key, rec.Value)
//	}
//	// ... the engine groups and reduces ...
//	for _, rec := range reducedOutput {
//	    auditor.AddPost(rec.Key, rec.Value)
//	}
//	ok, err := auditor.Check() // collective: every rank calls in lock-step
//
// Auditing a sort:
//
//	auditor, err := minicheck.NewSortAuditor[uint64](ctx, cmp.Compare, minicheck.HashUint64)
//	for _, v := range input {
//	    auditor.AddPre(v)
//	}
//	for _, v := range sortedOutput { // in emission order
//	    auditor.AddPost(v)
//	}
//	ok, err := auditor.Check()
//
// # Error model
//
// Both auditors have one-sided error: a correct result always passes, and an
// incorrect result slips through only when its fingerprint collides with the
// correct one. For the reduce auditor a single altered output value escapes
// detection with probability at most (1/2^b)^r for bucket bits b and r
// rounds; the sort permutation check misses only when both element counts
// and masked checksums coincide.
//
// The reduce fingerprint reuses the audited reduction as its bucket
// combiner, which requires the operation to be commutative and associative.
// Operations carrying the Checkable marker get the active auditor; any other
// operation silently degrades to a no-op auditor whose Check always passes,
// keeping a uniform call surface at zero cost when auditing is inapplicable.
// Operations must be stateless: an Operation that mutates itself across
// Combine calls is unsupported.
//
// # Package Structure
//
//   - Auditors: reduce.go (ReduceAuditor), sort.go (SortAuditor)
//   - Fingerprints: fingerprint.go (Table), config.go (Config, options)
//   - Operations and hashes: ops.go, hash.go
//   - Experiment harness: driver.go (Driver), package manip (corruption strategies)
//   - Collectives: package comm (Context, in-process local implementation)
package minicheck
