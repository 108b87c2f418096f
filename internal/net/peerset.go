package net

// PeerSet is the game loop's working set of adopted peers. The endpoint's
// peer table tracks addresses for demultiplexing; this set tracks which
// peers the simulation is actually servicing. Game loop only.
type PeerSet struct {
	peers map[uint64]*Peer
}

func NewPeerSet() *PeerSet {
	return &PeerSet{peers: make(map[uint64]*Peer, 32)}
}

func (s *PeerSet) Add(p *Peer) {
	s.peers[p.ID] = p
}

func (s *PeerSet) Remove(p *Peer) {
	delete(s.peers, p.ID)
}

func (s *PeerSet) Len() int { return len(s.peers) }

// Each visits every adopted peer.
func (s *PeerSet) Each(fn func(*Peer)) {
	for _, p := range s.peers {
		fn(p)
	}
}
