package state

import (
	"slices"
	"time"
)

//Cycle applies every form to every primitive of the receiver and returns the next generation
//forms always see the receiver, never primitives produced earlier in the same cycle
//the primitives of the returned State are sorted by Compare
func (s State) Cycle() State {
	start := time.Now()
	pool := s.bufferPool()
	threshold := s.MergeThreshold()

	next := State{
		forms:      s.forms,
		generation: s.generation + 1,
		threshold:  s.threshold,
		pool:       s.pool,
	}
	st := CycleStats{PrimitivesIn: len(s.primitives)}

	//result buffer, private to this cycle until it is handed to next
	result := pool.Get(len(s.primitives))

	for _, fn := range s.forms {
		st.FormsApplied++
		for _, p := range s.primitives {
			out := fn(s, p)
			if len(out) < threshold {
				for _, x := range out {
					if x == nil {
						continue
					}
					insertSorted(result, x)
					st.Inserts++
				}
				continue
			}
			result = mergeBatch(pool, result, out, &st)
		}
	}

	next.primitives = slices.Clip(*result)
	st.PrimitivesOut = len(next.primitives)
	st.Duration = time.Since(start)
	next.stats = st

	Logger().Debug("cycle",
		"generation", next.generation,
		"forms", st.FormsApplied,
		"in", st.PrimitivesIn,
		"out", st.PrimitivesOut,
		"inserts", st.Inserts,
		"merges", st.Merges,
		"duration", st.Duration,
	)
	return next
}

//insertSorted places x after every element not greater than x, so equal elements keep
//their arrival order
func insertSorted(buf *[]Primitive, x Primitive) {
	i, _ := slices.BinarySearchFunc(*buf, x, func(e, t Primitive) int {
		if Compare(e, t) <= 0 {
			return -1
		}
		return 1
	})
	*buf = slices.Insert(*buf, i, x)
}

//mergeBatch merges the form output out into the sorted buffer r
//out is sorted in a scratch copy when needed, the form's slice is never modified
//r goes back to the pool, the merged buffer is returned
func mergeBatch(pool *Pool, r *[]Primitive, out []Primitive, st *CycleStats) *[]Primitive {
	batch := out
	var scratch *[]Primitive
	if slices.Contains(out, nil) || !slices.IsSortedFunc(out, Compare) {
		scratch = pool.Get(len(out))
		for _, x := range out {
			if x != nil {
				*scratch = append(*scratch, x)
			}
		}
		slices.SortStableFunc(*scratch, Compare)
		batch = *scratch
		st.SortedBatches++
	}

	merged := pool.Get(len(*r) + len(batch))
	a, b := *r, batch
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if Compare(b[j], a[i]) < 0 {
			*merged = append(*merged, b[j])
			j++
		} else {
			*merged = append(*merged, a[i])
			i++
		}
	}
	*merged = append(*merged, a[i:]...)
	*merged = append(*merged, b[j:]...)

	if scratch != nil {
		pool.Put(scratch)
	}
	pool.Put(r)
	st.Merges++
	return merged
}
