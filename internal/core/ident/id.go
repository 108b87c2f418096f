package ident

// NetworkID is the stable handle identifying an entity across the network
// boundary. It encodes a 32-bit pool index in the lower bits and a 32-bit
// generation in the upper bits. The generation increments when the index is
// released, so a stale handle never resolves to the entity that recycled
// its slot. Zero is never a valid identity.
type NetworkID uint64

func MakeID(index uint32, generation uint32) NetworkID {
	return NetworkID(uint64(generation)<<32 | uint64(index))
}

func (id NetworkID) Index() uint32      { return uint32(id) }
func (id NetworkID) Generation() uint32 { return uint32(id >> 32) }
func (id NetworkID) IsZero() bool       { return id == 0 }
