// Package types defines the shared data structures for the RuneSim engine.
// This package contains only type definitions — no logic, no methods.
package types

// Coord is a tile position within an area.
type Coord struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Plane int `json:"plane"`
}

// TileType classifies a single tile.
type TileType int

const (
	TileWalkable TileType = iota
	TileBlocked
	TileWater
	TileDoor
	TileGate
	TileLadder
	TileStairs
	TileObstacle // agility obstacle anchor
)

// Tile is one cell of an area grid. Immutable once the area is loaded.
type Tile struct {
	Coord        Coord
	Type         TileType
	AgilityLevel int    // required level when Type == TileObstacle
	Interaction  string // optional interaction label ("Climb ledge", "Open door")
}

// ReqKind discriminates requirement gates on connections and obstacles.
type ReqKind int

const (
	ReqSkill ReqKind = iota
	ReqQuest
	ReqItem
)

// Requirement is a single gate: a skill level, a completed quest, or a
// carried item.
type Requirement struct {
	Kind  ReqKind
	Skill Stat   // for ReqSkill
	Level int    // for ReqSkill
	Quest string // for ReqQuest
	Item  string // for ReqItem
}

// ConnectionDef is a named link from one area to another.
type ConnectionDef struct {
	To           string // target area ID
	Requirements []Requirement
}

// AreaDef is an immutable loaded area: a grid of tiles plus connections.
type AreaDef struct {
	ID          string
	Name        string
	Width       int
	Height      int
	Planes      int
	Tiles       []Tile // row-major, plane-major: (plane*Height+y)*Width + x
	Wilderness  bool
	PvP         bool
	Connections map[string]ConnectionDef // connection name → target
}

// ObstacleDef is an immutable agility obstacle or shortcut template.
type ObstacleDef struct {
	ID            string
	Name          string
	Level         int     // required agility level
	XP            float64 // experience on success
	BaseFailRate  float64
	FailDamageMin int
	FailDamageMax int
	Area          string
	From          Coord
	To            Coord
	Delay         float64 // completion delay in seconds
	Bidirectional bool    // shortcut usable from either endpoint
	Requirements  []Requirement
}

// CourseDef is an immutable agility course: an ordered obstacle sequence.
type CourseDef struct {
	ID           string
	Name         string
	Obstacles    []string // obstacle IDs in lap order
	MinLevel     int
	BonusXP      float64 // awarded on lap completion
	MarkChance   float64 // base mark-of-grace chance per lap
	Requirements []Requirement
}

// Stat identifies a player skill or combat stat.
type Stat int

const (
	StatAttack Stat = iota
	StatStrength
	StatDefence
	StatRanged
	StatMagic
	StatHitpoints
	StatPrayer
	StatAgility
)

// PrayerBook selects which prayer set is available.
type PrayerBook int

const (
	BookNormal PrayerBook = iota
	BookCurses
)

// PrayerBonus carries the stat factors a prayer grants. Multiplicative
// fields default to 1; additive fields to 0.
type PrayerBonus struct {
	Attack     float64
	Strength   float64
	Defence    float64
	Ranged     float64
	Magic      float64
	Protection float64 // damage reduction percentage, max-aggregated
	Leech      float64
	Smite      float64
}

// PrayerDef is an immutable prayer template.
type PrayerDef struct {
	ID        string
	Name      string
	Level     int
	DrainRate float64 // points per minute while active
	Bonus     PrayerBonus
	Book      PrayerBook
	Overhead  bool
}

// ConsumableKind separates food from potions.
type ConsumableKind int

const (
	KindFood ConsumableKind = iota
	KindPotion
)

// EffectTag marks special consumable behavior.
type EffectTag int

const (
	TagDivine EffectTag = iota
	TagAntifire
	TagAntipoison
	TagStamina
	TagOverload
)

// ConsumableEffect is the payload a consumable applies when used.
type ConsumableEffect struct {
	Heal          int
	Boosts        map[Stat]int // per-stat boost, strongest source wins
	PrayerRestore float64
	Duration      float64 // minutes; 0 = instantaneous
	Tags          []EffectTag
	Cooldown      float64 // per-item cooldown in seconds
	Combo         bool    // exempt from the global food gate
}

// ConsumableDef is an immutable consumable template. Per-player consumption
// timestamps live in ConsumableState, never here.
type ConsumableDef struct {
	ID     string
	Name   string
	Kind   ConsumableKind
	Level  int
	Effect ConsumableEffect
}

// MovementState is a player's mutable position and run-energy state.
type MovementState struct {
	Area         string  `json:"area"`
	Pos          Coord   `json:"pos"`
	RunEnergy    float64 `json:"run_energy"` // 0–100
	Weight       float64 `json:"weight"`
	Running      bool    `json:"running"`
	Path         []Coord `json:"path,omitempty"` // remaining tiles, nil when idle
	StepProgress float64 `json:"step_progress"`  // seconds accumulated toward the next tile
}

// AgilityState is a player's mutable agility progress.
type AgilityState struct {
	XP            float64        `json:"xp"`
	Level         int            `json:"level"` // always recomputed from XP
	Marks         int            `json:"marks"`
	Course        string         `json:"course,omitempty"` // active course ID, "" = idle
	ObstacleIndex int            `json:"obstacle_index"`
	LapCounts     map[string]int `json:"lap_counts"`
	BusySeconds   float64        `json:"busy_seconds"` // remaining obstacle completion delay
}

// ActivePrayer is the per-player activation record for one prayer.
type ActivePrayer struct {
	Flick     bool    `json:"flick"`
	FlickedAt float64 `json:"flicked_at"` // sim-time seconds of flick activation
}

// PrayerState is a player's mutable prayer state.
type PrayerState struct {
	Points   float64                  `json:"points"` // 0–99
	Active   map[string]*ActivePrayer `json:"active"` // keyed by prayer ID
	QuickSet []string                 `json:"quick_set,omitempty"`
	Book     PrayerBook               `json:"book"`
}

// ActiveEffect is a timed consumable effect on a player.
type ActiveEffect struct {
	Item      string       `json:"item"`
	Remaining float64      `json:"remaining"` // minutes
	Boosts    map[Stat]int `json:"boosts,omitempty"`
	Tags      []EffectTag  `json:"tags,omitempty"`
}

// ConsumableState is a player's mutable consumable state.
type ConsumableState struct {
	Effects      map[string]*ActiveEffect `json:"effects"`       // keyed by item ID
	LastConsumed map[string]float64       `json:"last_consumed"` // item ID → sim-time seconds
	LastFoodAt   float64                  `json:"last_food_at"`  // global non-combo food gate
	AteFood      bool                     `json:"ate_food"`      // false until first food
}

// WorldDef holds world metadata from the catalog.
type WorldDef struct {
	Title     string
	Version   string
	StartArea string
	Start     Coord
	Seed      int64
}

// Defs is the complete immutable catalog supplied by the loader. The
// engine treats it as an injected, read-only dependency; it must never
// carry per-player mutable fields.
type Defs struct {
	World       WorldDef
	Areas       map[string]*AreaDef
	Obstacles   map[string]*ObstacleDef
	Courses     map[string]*CourseDef
	Prayers     map[string]*PrayerDef
	Consumables map[string]*ConsumableDef
}

// CombatStats is the stat block consumed by the combat formulas.
type CombatStats struct {
	Attack    int
	Strength  int
	Defence   int
	Ranged    int
	Magic     int
	Hitpoints int
	Prayer    int
}

// Shortcut describes a usable agility shortcut adjacent to a position.
type Shortcut struct {
	Obstacle    string // obstacle ID
	Label       string // interaction text
	Destination Coord
}

// Intent is a parsed player command: a verb plus up to two arguments.
type Intent struct {
	Verb   string
	Object string
	Target string
}
