package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind is the entity variant tag. The wire protocol carries it as one byte.
type Kind byte

const (
	KindNone        Kind = 0
	KindAvatar      Kind = 1
	KindProjectile  Kind = 2
	KindCollectible Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindAvatar:
		return "avatar"
	case KindProjectile:
		return "projectile"
	case KindCollectible:
		return "collectible"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "avatar":
		return KindAvatar, nil
	case "projectile":
		return KindProjectile, nil
	case "collectible":
		return KindCollectible, nil
	default:
		return KindNone, fmt.Errorf("unknown entity kind %q", s)
	}
}

// MovementCap parameterizes velocity-driven motion.
type MovementCap struct {
	MaxSpeed float64 `yaml:"max_speed"` // units/second
}

// CollisionCap parameterizes circle collision.
type CollisionCap struct {
	Radius float64 `yaml:"radius"`
}

// WeaponCap parameterizes the avatar's projectile weapon.
type WeaponCap struct {
	ProjectileSpeed float64 `yaml:"projectile_speed"`
	CooldownTicks   int     `yaml:"cooldown_ticks"`
	Damage          int     `yaml:"damage"`
	LifetimeTicks   int     `yaml:"lifetime_ticks"`
}

// EntityDef is the capability table for one entity kind: behavior composed
// via data instead of a class hierarchy. A nil capability means the entity
// does not participate in that system.
type EntityDef struct {
	Name      string        `yaml:"name"`
	KindName  string        `yaml:"kind"`
	Kind      Kind          `yaml:"-"`
	MaxHealth int           `yaml:"max_health"`
	Points    int           `yaml:"points"` // score value when collected/killed
	Movement  *MovementCap  `yaml:"movement"`
	Collision *CollisionCap `yaml:"collision"`
	Weapon    *WeaponCap    `yaml:"weapon"`
}

type entityListFile struct {
	Entities []EntityDef `yaml:"entities"`
}

// EntityTable holds the loaded capability tables indexed by kind.
type EntityTable struct {
	defs map[Kind]*EntityDef
}

// LoadEntityTable loads entity definitions from a YAML file and validates
// that every definition is usable by the simulation.
func LoadEntityTable(path string) (*EntityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entity defs: %w", err)
	}
	return ParseEntityTable(raw)
}

// ParseEntityTable parses and validates entity definitions from YAML bytes.
func ParseEntityTable(raw []byte) (*EntityTable, error) {
	var f entityListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse entity defs: %w", err)
	}
	t := &EntityTable{defs: make(map[Kind]*EntityDef, len(f.Entities))}
	for i := range f.Entities {
		def := &f.Entities[i]
		k, err := parseKind(def.KindName)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", def.Name, err)
		}
		def.Kind = k
		if _, dup := t.defs[k]; dup {
			return nil, fmt.Errorf("entity %q: duplicate definition for kind %s", def.Name, k)
		}
		if def.Movement != nil && def.Movement.MaxSpeed <= 0 {
			return nil, fmt.Errorf("entity %q: max_speed must be positive", def.Name)
		}
		if def.Collision != nil && def.Collision.Radius <= 0 {
			return nil, fmt.Errorf("entity %q: collision radius must be positive", def.Name)
		}
		if def.Weapon != nil && def.Weapon.CooldownTicks <= 0 {
			return nil, fmt.Errorf("entity %q: weapon cooldown_ticks must be positive", def.Name)
		}
		t.defs[k] = def
	}
	for _, required := range []Kind{KindAvatar, KindProjectile, KindCollectible} {
		if t.defs[required] == nil {
			return nil, fmt.Errorf("entity defs missing kind %s", required)
		}
	}
	return t, nil
}

// Get returns the definition for a kind, or nil if not defined.
func (t *EntityTable) Get(k Kind) *EntityDef {
	return t.defs[k]
}

// Count returns the number of loaded definitions.
func (t *EntityTable) Count() int {
	return len(t.defs)
}
