package handler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gridfire/arena/internal/config"
	"github.com/gridfire/arena/internal/data"
	gonet "github.com/gridfire/arena/internal/net"
	"github.com/gridfire/arena/internal/net/msg"
	"github.com/gridfire/arena/internal/persist"
	"github.com/gridfire/arena/internal/world"
)

const testDefs = `
entities:
  - name: avatar
    kind: avatar
    max_health: 100
    movement: { max_speed: 240 }
    collision: { radius: 14 }
    weapon: { projectile_speed: 600, cooldown_ticks: 6, damage: 25, lifetime_ticks: 45 }
  - name: bolt
    kind: projectile
    collision: { radius: 3 }
  - name: medkit
    kind: collectible
    points: 5
    collision: { radius: 10 }
`

func testDeps(t *testing.T) *Deps {
	t.Helper()
	defs, err := data.ParseEntityTable([]byte(testDefs))
	if err != nil {
		t.Fatalf("parse defs: %v", err)
	}
	cfg := config.Defaults()
	cfg.Game.MaxPlayers = 2
	sess := world.NewSession(cfg.Game, defs, nil, zap.NewNop())
	return &Deps{
		Session: sess,
		Peers:   gonet.NewPeerSet(),
		Config:  cfg,
		Log:     zap.NewNop(),
	}
}

func TestHelloAdmitsPlayer(t *testing.T) {
	deps := testDeps(t)
	peer := &gonet.Peer{}

	HandleHello(peer, &msg.Hello{Version: msg.ProtocolVersion, Name: "alice"}, deps)

	if peer.PlayerID == 0 || peer.State() != msg.StateInGame {
		t.Fatalf("peer not admitted: id=%d state=%v", peer.PlayerID, peer.State())
	}
	p := deps.Session.PlayerByID(peer.PlayerID)
	if p == nil || p.Avatar == nil {
		t.Fatalf("player has no avatar")
	}
	if peer.PendingOutput() != 1 {
		t.Fatalf("want 1 buffered Welcome, got %d", peer.PendingOutput())
	}
}

func TestHelloIsIdempotent(t *testing.T) {
	deps := testDeps(t)
	peer := &gonet.Peer{}
	hello := &msg.Hello{Version: msg.ProtocolVersion, Name: "alice"}

	HandleHello(peer, hello, deps)
	id := peer.PlayerID
	HandleHello(peer, hello, deps)

	if peer.PlayerID != id {
		t.Fatalf("repeated Hello changed identity: %d -> %d", id, peer.PlayerID)
	}
	if len(deps.Session.Players) != 1 {
		t.Fatalf("repeated Hello duplicated the player")
	}
}

func TestHelloRejections(t *testing.T) {
	deps := testDeps(t)

	bad := &gonet.Peer{}
	HandleHello(bad, &msg.Hello{Version: 99, Name: "x"}, deps)
	if bad.PlayerID != 0 || bad.State() != msg.StateHandshake {
		t.Fatalf("version mismatch admitted")
	}

	anon := &gonet.Peer{}
	HandleHello(anon, &msg.Hello{Version: msg.ProtocolVersion}, deps)
	if anon.PlayerID != 0 {
		t.Fatalf("empty name admitted")
	}

	HandleHello(&gonet.Peer{}, &msg.Hello{Version: msg.ProtocolVersion, Name: "a"}, deps)
	HandleHello(&gonet.Peer{}, &msg.Hello{Version: msg.ProtocolVersion, Name: "b"}, deps)
	late := &gonet.Peer{}
	HandleHello(late, &msg.Hello{Version: msg.ProtocolVersion, Name: "c"}, deps)
	if late.PlayerID != 0 {
		t.Fatalf("admitted past max_players")
	}
}

// fakeAccounts stalls lookups until released, standing in for the real
// bcrypt-plus-database path.
type fakeAccounts struct {
	release chan struct{}
	loads   int
}

func (f *fakeAccounts) Load(ctx context.Context, name string) (*persist.AccountRow, error) {
	f.loads++
	<-f.release
	return &persist.AccountRow{Name: name, PasswordHash: "sesame"}, nil
}

func (f *fakeAccounts) Create(ctx context.Context, name, raw string) (*persist.AccountRow, error) {
	return &persist.AccountRow{Name: name}, nil
}

func (f *fakeAccounts) ValidatePassword(hash, raw string) bool { return raw == hash }

func (f *fakeAccounts) TouchLastSeen(ctx context.Context, name string) error { return nil }

func settleJoin(t *testing.T, deps *Deps, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !done() {
		if time.Now().After(deadline) {
			t.Fatalf("credential check never settled")
		}
		deps.CompleteJoins()
		time.Sleep(time.Millisecond)
	}
}

// The credential check must not run on the calling goroutine: HandleHello
// returns before the account store answers, and the join completes through
// CompleteJoins on a later tick.
func TestHelloCredentialCheckIsAsynchronous(t *testing.T) {
	deps := testDeps(t)
	fa := &fakeAccounts{release: make(chan struct{})}
	deps.Accounts = fa

	peer := &gonet.Peer{}
	hello := &msg.Hello{Version: msg.ProtocolVersion, Name: "alice", Password: "sesame"}
	HandleHello(peer, hello, deps)

	if peer.PlayerID != 0 {
		t.Fatalf("joined before the account store answered")
	}
	if !peer.AuthPending {
		t.Fatalf("peer not marked pending")
	}

	// A retried Hello while the check is in flight must not start another.
	HandleHello(peer, hello, deps)

	close(fa.release)
	settleJoin(t, deps, func() bool { return peer.PlayerID != 0 })

	if peer.State() != msg.StateInGame || peer.AuthPending {
		t.Fatalf("join not completed: state=%v pending=%v", peer.State(), peer.AuthPending)
	}
	if len(deps.Session.Players) != 1 {
		t.Fatalf("players = %d, want 1", len(deps.Session.Players))
	}
	if fa.loads != 1 {
		t.Fatalf("loads = %d, want 1", fa.loads)
	}
}

func TestHelloRejectsBadCredentials(t *testing.T) {
	deps := testDeps(t)
	fa := &fakeAccounts{release: make(chan struct{})}
	close(fa.release)
	deps.Accounts = fa

	peer := &gonet.Peer{}
	HandleHello(peer, &msg.Hello{Version: msg.ProtocolVersion, Name: "mallory", Password: "guess"}, deps)
	settleJoin(t, deps, func() bool { return !peer.AuthPending })

	if peer.PlayerID != 0 || peer.State() != msg.StateHandshake {
		t.Fatalf("bad password admitted")
	}
	if peer.PendingOutput() != 1 {
		t.Fatalf("want 1 buffered Reject, got %d", peer.PendingOutput())
	}
}

func TestPlayerInputKeepsNewestOnly(t *testing.T) {
	deps := testDeps(t)
	peer := &gonet.Peer{}
	HandleHello(peer, &msg.Hello{Version: msg.ProtocolVersion, Name: "alice"}, deps)

	HandlePlayerInput(peer, &msg.PlayerInput{Seq: 5, MoveX: 1}, deps)
	HandlePlayerInput(peer, &msg.PlayerInput{Seq: 3, MoveX: -1}, deps)
	HandlePlayerInput(peer, &msg.PlayerInput{Seq: 5, MoveX: -1}, deps)

	if peer.Input.MoveX != 1 || peer.LastInputSeq != 5 {
		t.Fatalf("stale input applied: %+v seq=%d", peer.Input, peer.LastInputSeq)
	}

	HandlePlayerInput(peer, &msg.PlayerInput{Seq: 7, MoveX: 3}, deps)
	if peer.Input.MoveX != 1 {
		t.Fatalf("move axis not clamped: %v", peer.Input.MoveX)
	}
	if peer.LastInputSeq != 7 {
		t.Fatalf("newer input not applied")
	}
}
