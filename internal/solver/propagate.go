package solver

import "github.com/derekprior/fixturegen/internal/model"

const unset int8 = -1

// state is a partial assignment with per-constraint counts and an undo trail.
type state struct {
	sys   *model.System
	val   []int8
	ones  []int
	free  []int
	trail []int
}

func newState(sys *model.System) *state {
	st := &state{
		sys:  sys,
		val:  make([]int8, len(sys.Vars)),
		ones: make([]int, len(sys.Constraints)),
		free: make([]int, len(sys.Constraints)),
	}
	for i := range st.val {
		st.val[i] = unset
	}
	for c, con := range sys.Constraints {
		st.free[c] = len(con.Vars)
	}
	return st
}

func (st *state) assign(v int, x int8) {
	st.val[v] = x
	st.trail = append(st.trail, v)
	for _, c := range st.sys.Occurrences(v) {
		st.free[c]--
		if x == 1 {
			st.ones[c]++
		}
	}
}

// undo unassigns everything recorded after mark.
func (st *state) undo(mark int) {
	for i := len(st.trail) - 1; i >= mark; i-- {
		v := st.trail[i]
		for _, c := range st.sys.Occurrences(v) {
			st.free[c]++
			if st.val[v] == 1 {
				st.ones[c]--
			}
		}
		st.val[v] = unset
	}
	st.trail = st.trail[:mark]
}

// propagate enforces the cardinality bounds of the queued constraints until
// nothing more is forced. It returns false on a conflict.
func (st *state) propagate(queue []int) bool {
	queue = append([]int(nil), queue...)
	for len(queue) > 0 {
		c := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		con := st.sys.Constraints[c]
		if st.ones[c] > con.Hi || st.ones[c]+st.free[c] < con.Lo {
			return false
		}
		if st.free[c] == 0 {
			continue
		}
		force := unset
		switch {
		case st.ones[c] == con.Hi:
			force = 0
		case st.ones[c]+st.free[c] == con.Lo:
			force = 1
		}
		if force == unset {
			continue
		}
		for _, v := range con.Vars {
			if st.val[v] != unset {
				continue
			}
			st.assign(v, force)
			queue = append(queue, st.sys.Occurrences(v)...)
		}
	}
	return true
}

// open returns the unsatisfied coverage constraint with the fewest free
// variables, or -1 when every pairing is placed.
func (st *state) open() int {
	best, bestFree := -1, 0
	for c, con := range st.sys.Constraints {
		if con.Kind != model.Coverage || st.ones[c] >= con.Lo {
			continue
		}
		if best < 0 || st.free[c] < bestFree {
			best, bestFree = c, st.free[c]
		}
	}
	return best
}

// assignment fixes every unset variable to false.
func (st *state) assignment() []bool {
	out := make([]bool, len(st.val))
	for i, x := range st.val {
		out[i] = x == 1
	}
	return out
}
