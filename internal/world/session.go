package world

import (
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/gridfire/arena/internal/config"
	"github.com/gridfire/arena/internal/core/event"
	"github.com/gridfire/arena/internal/data"
	gonet "github.com/gridfire/arena/internal/net"
	"github.com/gridfire/arena/internal/scene"
)

// Session is the authoritative GameSession: it owns the player collection,
// the entity pool, and the scene graph. Exactly one Session exists per
// running server, and only the game loop goroutine mutates it.
type Session struct {
	Scene    *scene.Scene
	Players  map[uint32]*Player
	Bus      *event.Bus
	Defs     *data.EntityTable
	Collider Collider

	Cfg config.GameConfig
	Log *zap.Logger

	nextPlayerID uint32
	rng          *rand.Rand
}

func NewSession(cfg config.GameConfig, defs *data.EntityTable, behaviors scene.BehaviorTable, log *zap.Logger) *Session {
	return &Session{
		Scene:    scene.NewScene(defs, behaviors),
		Players:  make(map[uint32]*Player, cfg.MaxPlayers),
		Bus:      event.NewBus(),
		Defs:     defs,
		Collider: ArenaBounds{Width: cfg.ArenaWidth, Height: cfg.ArenaHeight},
		Cfg:      cfg,
		Log:      log,
		rng:      rand.New(rand.NewSource(rand.Int63())),
	}
}

// AddPlayer admits a peer into the match and spawns its avatar.
func (s *Session) AddPlayer(peer *gonet.Peer, name string) *Player {
	s.nextPlayerID++
	p := &Player{
		ID:   s.nextPlayerID,
		Name: name,
		Peer: peer,
	}
	s.Players[p.ID] = p
	peer.PlayerID = p.ID
	peer.Name = name

	s.SpawnAvatar(p)
	event.Emit(s.Bus, event.PlayerJoined{PlayerID: p.ID, Name: name})
	s.Log.Info("player joined",
		zap.Uint32("player", p.ID),
		zap.String("name", name),
	)
	return p
}

// RemovePlayer drops a player and destroys its avatar. The avatar destroy
// is queued so in-flight systems finish the tick against a stable graph.
func (s *Session) RemovePlayer(p *Player) {
	if _, ok := s.Players[p.ID]; !ok {
		return
	}
	delete(s.Players, p.ID)
	if p.Avatar != nil {
		s.Scene.MarkDestroy(p.Avatar)
		p.Avatar = nil
	}
	event.Emit(s.Bus, event.PlayerLeft{PlayerID: p.ID})
	s.Log.Info("player left", zap.Uint32("player", p.ID))
}

// PlayerByID returns a player or nil.
func (s *Session) PlayerByID(id uint32) *Player {
	return s.Players[id]
}

// AllPlayers visits every player in the match.
func (s *Session) AllPlayers(fn func(*Player)) {
	for _, p := range s.Players {
		fn(p)
	}
}

// SpawnAvatar creates and places a fresh avatar for p at a random point.
func (s *Session) SpawnAvatar(p *Player) *scene.Entity {
	e := s.Scene.Spawn(data.KindAvatar)
	e.OwnerID = p.ID
	e.Pos = s.RandomPoint(e.Def.Collision.Radius)
	e.Orient = s.rng.Float64() * 2 * math.Pi
	s.Scene.Add(e)
	p.Avatar = e
	p.RespawnTicks = 0
	return e
}

// SpawnProjectile creates a bolt owned by the shooter, placed at the
// muzzle and moving along aim.
func (s *Session) SpawnProjectile(shooter *scene.Entity, aim float64) *scene.Entity {
	w := shooter.Def.Weapon
	e := s.Scene.Spawn(data.KindProjectile)
	e.OwnerID = shooter.OwnerID
	dir := scene.Vec2{X: math.Cos(aim), Y: math.Sin(aim)}
	muzzle := shooter.Def.Collision.Radius + e.Def.Collision.Radius + 1
	e.Pos = shooter.Pos.Add(dir.Scale(muzzle))
	e.Vel = dir.Scale(w.ProjectileSpeed)
	e.Orient = aim
	e.Health = w.Damage // projectile carries its damage as payload
	e.TicksLeft = w.LifetimeTicks
	s.Scene.Add(e)
	return e
}

// SpawnCollectible places a pickup at a random free point.
func (s *Session) SpawnCollectible() *scene.Entity {
	e := s.Scene.Spawn(data.KindCollectible)
	e.Pos = s.RandomPoint(e.Def.Collision.Radius)
	s.Scene.Add(e)
	return e
}

// RandomPoint picks a position keeping a circle of the given radius fully
// inside the arena.
func (s *Session) RandomPoint(radius float64) scene.Vec2 {
	return scene.Vec2{
		X: radius + s.rng.Float64()*(s.Cfg.ArenaWidth-2*radius),
		Y: radius + s.rng.Float64()*(s.Cfg.ArenaHeight-2*radius),
	}
}

// CountKind returns the number of live entities of one kind.
func (s *Session) CountKind(k data.Kind) int {
	n := 0
	s.Scene.Each(func(e *scene.Entity) {
		if e.Kind == k {
			n++
		}
	})
	return n
}

// Teardown drops the whole session without per-entity notification.
func (s *Session) Teardown() {
	s.Scene.Teardown()
	s.Players = make(map[uint32]*Player)
}
