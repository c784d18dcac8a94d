// Package tsinfer reconstructs a genealogical tree sequence from a panel of
// aligned biallelic haplotypes at known genomic sites.
//
// Given N sample haplotypes over L sites, [Run] (a) synthesizes a hierarchy
// of ancestral haplotypes ordered by inferred age, (b) for each ancestor and
// sample finds a best-matching copying path through older ancestors under a
// Li–Stephens recombination/mutation model, and (c) assembles those paths
// into a conflict-free forest of edgesets and mutations over genomic
// intervals.
//
// Basic usage:
//
//	cfg := tsinfer.DefaultConfig()
//	cfg.RecombinationRate = 1e-8
//	result, err := tsinfer.Run(positions, haplotypes, numSamples, cfg)
//	// result.Nodes, result.Edgesets, result.Mutations are parallel-array
//	// dumps ready for an external tree-sequence serializer.
//
// # Scope
//
// This package covers ancestor synthesis, ancestor storage, Li–Stephens
// copying, and tree-sequence assembly. It does not read or write genotype
// files, does not serialize to any on-disk tree-sequence format, and does
// not provide a command-line front end — those are external collaborators.
package tsinfer
