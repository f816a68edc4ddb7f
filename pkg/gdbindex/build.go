package gdbindex

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/go-gdbindex/gdbindex/pkg/dwarf/cu"
	"github.com/go-gdbindex/gdbindex/pkg/dwarf/pubnames"
	"github.com/go-gdbindex/gdbindex/pkg/gdbindex/fatal"
	"github.com/go-gdbindex/gdbindex/pkg/target"
)

// Build runs the full pipeline over one already-relocated output
// image's debug sections and the pubnames/pubtypes contributed by its
// input objects, and returns the bit-exact gdb_index payload. An
// empty cus list (no compilation units in sections.DebugInfo) yields
// a nil buffer and no error: there is nothing to index.
//
// Build never calls os.Exit or logs; a *FatalError identifies which
// of the documented fatal conditions stopped the build.
func Build(sections OutputSections, objects []InputObject, t target.Target, filter *Filter) ([]byte, error) {
	headers, err := cu.Enumerate(sections.DebugInfo)
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return nil, nil
	}

	cus := make([]*Compunit, len(headers))
	for i, h := range headers {
		cus[i] = &Compunit{Offset: uint64(h.Offset), Size: uint64(h.Size)}
	}

	if err := extractRanges(cus, headers, sections, t); err != nil {
		return nil, err
	}

	cache := newPubnamesCache(defaultCacheSize)
	for i := range objects {
		if objects[i].cache == nil {
			objects[i].cache = cache
		}
	}

	if err := attachPubnames(cus, objects, filter); err != nil {
		return nil, err
	}

	sortAndDedupe(cus)

	entries := insertSymbols(cus)

	l := computeLayout(cus, entries)
	return emit(cus, entries, l), nil
}

// extractRanges runs the range extractor over every CU concurrently,
// the first of the three CU-parallel fork-join phases: wg.Add(n)
// followed by one goroutine per section-parsing task.
func extractRanges(cus []*Compunit, headers []cu.Header, sections OutputSections, t target.Target) error {
	extractor := &cu.Extractor{
		DebugInfo: sections.DebugInfo,
		Sections: cu.Sections{
			DebugAbbrev:   sections.DebugAbbrev,
			DebugRanges:   sections.DebugRanges,
			DebugAddr:     sections.DebugAddr,
			DebugRngLists: sections.DebugRngLists,
		},
		Target: t,
	}

	var wg sync.WaitGroup
	errs := make([]error, len(cus))
	wg.Add(len(cus))
	for i := range cus {
		i := i
		go func() {
			defer wg.Done()
			rs, err := extractor.Ranges(headers[i])
			if err != nil {
				errs[i] = err
				return
			}
			cus[i].Ranges = rs
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// attachPubnames fans out across input objects with an errgroup: one
// object's malformed pubnames section aborts the whole build, since
// there is no partial recovery from a fatal condition.
func attachPubnames(cus []*Compunit, objects []InputObject, filter *Filter) error {
	byOffset := make(map[uint64]*Compunit, len(cus))
	for _, c := range cus {
		byOffset[c.Offset] = c
	}

	var g errgroup.Group
	for i := range objects {
		obj := &objects[i]
		g.Go(func() error {
			if err := attachOne(byOffset, obj, obj.DecompressedPubnames, filter); err != nil {
				return err
			}
			return attachOne(byOffset, obj, obj.DecompressedPubtypes, filter)
		})
	}
	return g.Wait()
}

func attachOne(byOffset map[uint64]*Compunit, obj *InputObject, read func() ([]byte, error), filter *Filter) error {
	data, err := read()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	tables, err := pubnames.Parse(data)
	if err != nil {
		return err
	}

	for _, tbl := range tables {
		offset := obj.DebugInfoContributionOffset + tbl.DebugInfoOffset
		owner, ok := byOffset[offset]
		if !ok {
			return fatal.Err(fatal.UnresolvedDebugInfoOffset, nil)
		}
		for _, rec := range tbl.Records {
			if filter != nil && filter.Excluded(string(rec.Name)) {
				continue
			}
			owner.AddNameTuple(rec.Name, rec.Type)
		}
	}
	return nil
}

// sortAndDedupe is the second CU-parallel phase.
func sortAndDedupe(cus []*Compunit) {
	var wg sync.WaitGroup
	wg.Add(len(cus))
	for _, c := range cus {
		c := c
		go func() {
			defer wg.Done()
			c.SortAndDedupe()
		}()
	}
	wg.Wait()
}

// insertSymbols is the third CU-parallel phase: every CU's deduplicated
// tuples are inserted into one shared, lock-free SymbolTable sized
// ahead of time from a HyperLogLog cardinality estimate.
func insertSymbols(cus []*Compunit) []*SymbolEntry {
	st := NewSymbolTable(EstimateCardinality(cus))

	var wg sync.WaitGroup
	wg.Add(len(cus))
	for _, c := range cus {
		c := c
		go func() {
			defer wg.Done()
			c.Entries = make([]*SymbolEntry, len(c.NameTuples))
			for i, t := range c.NameTuples {
				entry := st.Insert(t.Name, t.Hash)
				atomicAddCount(entry)
				c.Entries[i] = entry
			}
		}()
	}
	wg.Wait()

	return st.Collect()
}
