package organizer

import "sort"

// shift renumbers every group with order >= start by delta (+1 or -1),
// keeping slot letters.
//
// Renames run highest order first for +1 and lowest first for -1, so no
// rename ever targets a folder that has not moved yet. The table is rekeyed
// after all renames are emitted, in the same direction.
func (p *plan) shift(start, delta int) {
	var orders []int
	for o := range p.tasks {
		if o >= start {
			orders = append(orders, o)
		}
	}
	if delta > 0 {
		sort.Sort(sort.Reverse(sort.IntSlice(orders)))
	} else {
		sort.Ints(orders)
	}

	for _, o := range orders {
		for _, pos := range positions(o, p.tasks[o]) {
			p.rename(pos, pos.WithOrder(o+delta))
		}
	}
	for _, o := range orders {
		p.tasks[o+delta] = p.tasks[o]
		delete(p.tasks, o)
	}
}
