package model

import "sort"

//ChangeSet reports the flat indices changed by one generation
//cells that were dead and stay dead are not reported
type ChangeSet struct {
	Born     []int
	Died     []int
	Survived []int
}

func (cs *ChangeSet) add(i int, prev uint8, next uint8) {
	switch {
	case prev == Dead && next == Alive:
		cs.Born = append(cs.Born, i)
	case prev == Alive && next == Dead:
		cs.Died = append(cs.Died, i)
	case prev == Alive:
		cs.Survived = append(cs.Survived, i)
	}
}

//Empty reports whether the generation changed nothing
func (cs ChangeSet) Empty() bool {
	return len(cs.Born) == 0 && len(cs.Died) == 0
}

//Sort sorts every set in ascending order
func (cs ChangeSet) Sort() {
	sort.Ints(cs.Born)
	sort.Ints(cs.Died)
	sort.Ints(cs.Survived)
}

//Equal compares the sets ignoring the order of the indices
func (cs ChangeSet) Equal(other ChangeSet) bool {
	return sameSet(cs.Born, other.Born) &&
		sameSet(cs.Died, other.Died) &&
		sameSet(cs.Survived, other.Survived)
}

func sameSet(a []int, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[int]int, len(a))
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		if counts[v] == 0 {
			return false
		}
		counts[v]--
	}
	return true
}
