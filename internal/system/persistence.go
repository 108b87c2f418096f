package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gridfire/arena/internal/core/event"
	"github.com/gridfire/arena/internal/core/system"
	"github.com/gridfire/arena/internal/persist"
	"github.com/gridfire/arena/internal/world"
)

// PersistenceSystem writes match standings and the combat event journal
// to the database on an interval. A nil repo (database disabled) makes it
// a no-op.
type PersistenceSystem struct {
	sess     *world.Session
	matches  *persist.MatchRepo
	serverID int
	log      *zap.Logger

	interval  int // ticks between saves
	countdown int
	journal   []persist.MatchEvent
}

func NewPersistenceSystem(sess *world.Session, matches *persist.MatchRepo, serverID int, saveInterval, tickRate time.Duration) *PersistenceSystem {
	interval := int(saveInterval / tickRate)
	if interval < 1 {
		interval = 1
	}
	s := &PersistenceSystem{
		sess:      sess,
		matches:   matches,
		serverID:  serverID,
		log:       sess.Log,
		interval:  interval,
		countdown: interval,
	}
	if matches != nil {
		event.Subscribe(sess.Bus, s.onKill)
		event.Subscribe(sess.Bus, s.onPickup)
	}
	return s
}

func (s *PersistenceSystem) onKill(e event.Kill) {
	s.journal = append(s.journal, persist.MatchEvent{
		Type:       "kill",
		ActorName:  s.playerName(e.KillerPlayerID),
		TargetName: s.playerName(e.VictimPlayerID),
		At:         time.Now(),
	})
}

func (s *PersistenceSystem) onPickup(e event.Pickup) {
	s.journal = append(s.journal, persist.MatchEvent{
		Type:      "pickup",
		ActorName: s.playerName(e.PlayerID),
		Points:    uint32(e.Points),
		At:        time.Now(),
	})
}

func (s *PersistenceSystem) playerName(id uint32) string {
	if p := s.sess.PlayerByID(id); p != nil {
		return p.Name
	}
	return ""
}

func (s *PersistenceSystem) Phase() system.Phase { return system.PhasePersist }

func (s *PersistenceSystem) Update(dt time.Duration) {
	if s.matches == nil {
		return
	}
	s.countdown--
	if s.countdown > 0 {
		return
	}
	s.countdown = s.interval
	s.SaveNow()
}

// SaveNow flushes standings and the buffered journal immediately. Also
// called once at shutdown.
func (s *PersistenceSystem) SaveNow() {
	if s.matches == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(s.journal) > 0 {
		if err := s.matches.AppendEvents(ctx, s.serverID, s.journal); err != nil {
			s.log.Error("journal save failed", zap.Error(err))
		} else {
			s.journal = s.journal[:0]
		}
	}

	if len(s.sess.Players) == 0 {
		return
	}
	rows := make([]persist.MatchRow, 0, len(s.sess.Players))
	s.sess.AllPlayers(func(p *world.Player) {
		rows = append(rows, persist.MatchRow{
			PlayerName: p.Name,
			Kills:      p.Kills,
			Deaths:     p.Deaths,
			Points:     p.Points,
		})
	})
	if err := s.matches.RecordStandings(ctx, s.serverID, rows); err != nil {
		s.log.Error("standings save failed", zap.Error(err))
		return
	}
	s.log.Debug("standings saved", zap.Int("players", len(rows)))
}
