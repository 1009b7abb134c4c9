package services

import "slices"

// loadLedger tracks weighted outstanding load per reviewer together with an
// inverted index from load to the reviewers carrying it. loads holds the
// distinct load values present, ascending, so the minimum is loads[0].
type loadLedger struct {
	weight map[int64]int
	byLoad map[int][]int64
	loads  []int
}

func newLoadLedger() *loadLedger {
	return &loadLedger{
		weight: make(map[int64]int),
		byLoad: make(map[int][]int64),
	}
}

func (l *loadLedger) has(id int64) bool {
	_, ok := l.weight[id]
	return ok
}

func (l *loadLedger) set(id int64, load int) {
	if old, ok := l.weight[id]; ok {
		if old == load {
			return
		}
		l.unindex(id, old)
	}
	l.weight[id] = load
	l.index(id, load)
}

func (l *loadLedger) remove(id int64) {
	old, ok := l.weight[id]
	if !ok {
		return
	}
	l.unindex(id, old)
	delete(l.weight, id)
}

// least returns the lowest id among the reviewers at the minimum load.
func (l *loadLedger) least() (int64, int, bool) {
	if len(l.loads) == 0 {
		return 0, 0, false
	}
	load := l.loads[0]
	return l.byLoad[load][0], load, true
}

func (l *loadLedger) snapshot() map[int64]int {
	out := make(map[int64]int, len(l.weight))
	for id, load := range l.weight {
		out[id] = load
	}
	return out
}

func (l *loadLedger) index(id int64, load int) {
	ids := l.byLoad[load]
	if len(ids) == 0 {
		pos, _ := slices.BinarySearch(l.loads, load)
		l.loads = slices.Insert(l.loads, pos, load)
	}
	pos, _ := slices.BinarySearch(ids, id)
	l.byLoad[load] = slices.Insert(ids, pos, id)
}

func (l *loadLedger) unindex(id int64, load int) {
	ids := l.byLoad[load]
	pos, found := slices.BinarySearch(ids, id)
	if !found {
		return
	}
	ids = slices.Delete(ids, pos, pos+1)
	if len(ids) > 0 {
		l.byLoad[load] = ids
		return
	}
	delete(l.byLoad, load)
	if at, ok := slices.BinarySearch(l.loads, load); ok {
		l.loads = slices.Delete(l.loads, at, at+1)
	}
}
