package ident

// Allocator hands out NetworkIDs with generational indices and a free list.
// An index returns to the free list only on explicit Release; until then it
// cannot be handed out again. Index 0 is reserved so the zero NetworkID
// stays invalid.
type Allocator struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func NewAllocator() *Allocator {
	return &Allocator{
		generations: make([]uint32, 1, 1024), // slot 0 reserved
		freeList:    make([]uint32, 0, 256),
		nextIndex:   1,
	}
}

func (a *Allocator) Allocate() NetworkID {
	if len(a.freeList) > 0 {
		idx := a.freeList[len(a.freeList)-1]
		a.freeList = a.freeList[:len(a.freeList)-1]
		return MakeID(idx, a.generations[idx])
	}
	idx := a.nextIndex
	a.nextIndex++
	if int(idx) >= len(a.generations) {
		a.generations = append(a.generations, 0)
	}
	return MakeID(idx, a.generations[idx])
}

// Alive reports whether id is the current holder of its index.
func (a *Allocator) Alive(id NetworkID) bool {
	idx := id.Index()
	if idx == 0 || idx >= a.nextIndex {
		return false
	}
	return a.generations[idx] == id.Generation()
}

// Release invalidates id and returns its index to the free list. Releasing
// a stale or unknown id is a no-op.
func (a *Allocator) Release(id NetworkID) {
	idx := id.Index()
	if idx == 0 || idx >= a.nextIndex {
		return
	}
	if a.generations[idx] != id.Generation() {
		return // already released (stale reference)
	}
	a.generations[idx]++
	a.freeList = append(a.freeList, idx)
}

// Live returns the number of identities currently held.
func (a *Allocator) Live() int {
	return int(a.nextIndex) - 1 - len(a.freeList)
}
