package data

import "testing"

const sampleDefs = `
entities:
  - name: avatar
    kind: avatar
    max_health: 100
    movement: { max_speed: 240 }
    collision: { radius: 14 }
    weapon:
      projectile_speed: 600
      cooldown_ticks: 6
      damage: 25
      lifetime_ticks: 45
  - name: bolt
    kind: projectile
    movement: { max_speed: 600 }
    collision: { radius: 3 }
  - name: medkit
    kind: collectible
    points: 5
    collision: { radius: 10 }
`

func TestParseEntityTable(t *testing.T) {
	tbl, err := ParseEntityTable([]byte(sampleDefs))
	if err != nil {
		t.Fatalf("ParseEntityTable: %v", err)
	}
	if tbl.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", tbl.Count())
	}

	av := tbl.Get(KindAvatar)
	if av == nil {
		t.Fatalf("no avatar definition")
	}
	if av.MaxHealth != 100 || av.Movement.MaxSpeed != 240 || av.Weapon.Damage != 25 {
		t.Fatalf("avatar caps wrong: %+v", av)
	}

	med := tbl.Get(KindCollectible)
	if med.Movement != nil {
		t.Fatalf("collectible has movement capability it should not have")
	}
	if med.Points != 5 {
		t.Fatalf("collectible points = %d", med.Points)
	}
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := ParseEntityTable([]byte("entities:\n  - name: x\n    kind: turret\n"))
	if err == nil {
		t.Fatalf("unknown kind accepted")
	}
}

func TestParseRejectsMissingKind(t *testing.T) {
	_, err := ParseEntityTable([]byte(`
entities:
  - name: avatar
    kind: avatar
    movement: { max_speed: 1 }
`))
	if err == nil {
		t.Fatalf("table without projectile/collectible accepted")
	}
}

func TestParseRejectsBadCaps(t *testing.T) {
	_, err := ParseEntityTable([]byte(`
entities:
  - name: avatar
    kind: avatar
    movement: { max_speed: 0 }
  - name: bolt
    kind: projectile
  - name: medkit
    kind: collectible
`))
	if err == nil {
		t.Fatalf("zero max_speed accepted")
	}
}
