package tsinfer

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// matchResult is one completed query's outcome, produced by a worker
// goroutine and consumed serially by the single writer into the
// TreeSequenceBuilder, per spec.md §5's "Tree Sequence Builder is written
// to by one worker at a time."
type matchResult struct {
	childID    AncestorID
	haplotype  []Allele
	startSite  SiteID
	endSite    SiteID
	bestParent AncestorID
	traceback  *Traceback
	err        error
}

// runMatchesConcurrently fans jobs out across cfg.Workers goroutines (the
// teacher's parallel.go range-split pattern, generalized from row ranges to
// an arbitrary job list) and returns their results in job order. The Store
// is read-only and shared; each job gets its own Traceback.
func runMatchesConcurrently(matcher *AncestorMatcher, numSites int, queries []Query, ids []AncestorID, workers int) []matchResult {
	results := make([]matchResult, len(queries))
	jobs := make(chan int)
	var wg sync.WaitGroup

	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				tb := NewTraceback(numSites)
				best, err := matcher.BestPath(queries[i], tb)
				results[i] = matchResult{
					childID:    ids[i],
					haplotype:  queries[i].Haplotype,
					startSite:  queries[i].StartSite,
					endSite:    queries[i].EndSite,
					bestParent: best,
					traceback:  tb,
					err:        err,
				}
			}
		}()
	}
	for i := range queries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// Run is the top-level pipeline entry point: validate the panel, build
// ancestors, finalize the store, match every ancestor (epoch by epoch) and
// finally every sample against the resulting ancestor hierarchy, and dump
// the node/edgeset/mutation tables. Grounded on spec.md §2's pipeline table
// and §5's concurrency model.
func Run(positions []float64, haplotypes []Allele, numSamples int, cfg Config) (*Result, error) {
	runID := uuid.New().String()

	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	numSites := len(positions)
	if err := validatePositions(positions); err != nil {
		return nil, err
	}
	if numSamples == 0 || numSites == 0 {
		return nil, ErrEmptyPanel
	}
	if err := validateHaplotypes(haplotypes, numSamples, numSites); err != nil {
		return nil, err
	}

	log.Printf("tsinfer run %s: N=%d L=%d rho=%g mu=%g", runID, numSamples, numSites, cfg.RecombinationRate, cfg.ErrorRate)

	builder, err := NewAncestorBuilder(numSamples, numSites, haplotypes)
	if err != nil {
		return nil, err
	}
	built, err := builder.Build()
	if err != nil {
		return nil, err
	}
	log.Printf("tsinfer run %s: built %d ancestors across %d frequency classes", runID, len(built), len(builder.ClassStats))

	storeBuilder := NewAncestorStoreBuilder(numSites)
	universal := make([]Allele, numSites)
	if err := storeBuilder.Add(universal, builder.UniversalAncestorAge(), nil, 0, SiteID(numSites)); err != nil {
		return nil, err
	}
	for _, anc := range built {
		if err := storeBuilder.Add(anc.Haplotype, anc.Age, anc.FocalSites, anc.StartSite, anc.EndSite); err != nil {
			return nil, err
		}
	}
	store := storeBuilder.Dump()

	matcher := NewAncestorMatcher(store, cfg.RecombinationRate, cfg.ErrorRate)
	tsBuilder := NewTreeSequenceBuilder(numSites)

	parentAllele := func(site SiteID, parent AncestorID) Allele {
		v, err := store.GetState(site, parent)
		if err != nil {
			return 0
		}
		return v
	}

	for epoch := 1; epoch < store.NumEpochs(); epoch++ {
		ids := store.GetEpochAncestors(epoch)
		queries := make([]Query, len(ids))
		for i, id := range ids {
			anc, numOlder, err := store.GetAncestor(id)
			if err != nil {
				return nil, err
			}
			queries[i] = Query{
				Haplotype:         anc.Haplotype,
				StartSite:         anc.StartSite,
				EndSite:           anc.EndSite,
				FocalSites:        anc.FocalSites,
				NumOlderAncestors: numOlder,
			}
		}

		results := runMatchesConcurrently(matcher, numSites, queries, ids, cfg.Workers)
		for _, r := range results {
			if r.err != nil {
				return nil, fmt.Errorf("tsinfer run %s: matching ancestor %d: %w", runID, r.childID, r.err)
			}
			if err := tsBuilder.Update(r.childID, r.haplotype, r.startSite, r.endSite, r.bestParent, r.traceback, parentAllele); err != nil {
				return nil, fmt.Errorf("tsinfer run %s: resolving ancestor %d: %w", runID, r.childID, err)
			}
		}
		tsBuilder.Resolve()
	}

	totalAncestors := store.NumAncestors()
	sampleQueries := make([]Query, numSamples)
	sampleIDs := make([]AncestorID, numSamples)
	for s := 0; s < numSamples; s++ {
		hap := make([]Allele, numSites)
		copy(hap, haplotypes[s*numSites:(s+1)*numSites])
		sampleQueries[s] = Query{
			Haplotype:         hap,
			StartSite:         0,
			EndSite:           SiteID(numSites),
			NumOlderAncestors: totalAncestors,
		}
		sampleIDs[s] = AncestorID(totalAncestors + s)
	}
	sampleResults := runMatchesConcurrently(matcher, numSites, sampleQueries, sampleIDs, cfg.Workers)
	for _, r := range sampleResults {
		if r.err != nil {
			return nil, fmt.Errorf("tsinfer run %s: matching sample %d: %w", runID, r.childID, r.err)
		}
		if err := tsBuilder.Update(r.childID, r.haplotype, r.startSite, r.endSite, r.bestParent, r.traceback, parentAllele); err != nil {
			return nil, fmt.Errorf("tsinfer run %s: resolving sample %d: %w", runID, r.childID, err)
		}
	}
	tsBuilder.Resolve()

	sampleAges := make([]int, numSamples)
	result := &Result{
		RunID:     runID,
		Nodes:     dumpNodes(store, numSamples, sampleAges),
		Edgesets:  dumpEdgesets(tsBuilder.Edgesets(), positions),
		Mutations: dumpMutations(tsBuilder.Mutations()),
	}
	log.Printf("tsinfer run %s: emitted %d edgesets, %d mutations", runID, len(result.Edgesets.Parent), len(result.Mutations.Site))
	return result, nil
}
