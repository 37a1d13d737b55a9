// Package types defines the shared data structures for the Refit engine:
// quality tiers, material stacks, actions, notices, and scenario definitions.
package types

import "strings"

// QualityTier is the ordered craftsmanship category of an entity,
// worst to best. Legendary is never produced by the normal roll path;
// it can only be assigned by external host effects.
type QualityTier int

const (
	QualityAwful QualityTier = iota
	QualityPoor
	QualityNormal
	QualityGood
	QualityExcellent
	QualityMasterwork
	QualityLegendary
)

// QualityCount is the number of quality tiers.
const QualityCount = 7

var qualityNames = [QualityCount]string{
	"awful", "poor", "normal", "good", "excellent", "masterwork", "legendary",
}

func (q QualityTier) String() string {
	if q < 0 || int(q) >= QualityCount {
		return "unknown"
	}
	return qualityNames[q]
}

// ParseQuality resolves a tier name (case-insensitive) to its QualityTier.
func ParseQuality(name string) (QualityTier, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i, n := range qualityNames {
		if n == lower {
			return QualityTier(i), true
		}
	}
	return 0, false
}

// MaterialStack is a quantity of a single material type.
type MaterialStack struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// ActionKind classifies what a worker should do next for a target.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionHaul
	ActionBuild
)

// Reason explains why NextAction returned None, for host UI display.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNotMarked        Reason = "not marked for improvement"
	ReasonFlaggedRemoval   Reason = "flagged for removal"
	ReasonMissingMaterials Reason = "missing materials"
	ReasonNotAssigned      Reason = "not assigned to improvement work"
	ReasonSkillTooLow      Reason = "skill too low even with bonuses"
	ReasonNeedsBonus       Reason = "needs a bonus to qualify"
	ReasonAlreadySatisfied Reason = "already satisfied"
	ReasonReserved         Reason = "reserved by another worker"
)

// Action is the result of a work-resolution poll. Material and Count are
// set for hauls; Stack is the reserved source stack ID. Reason is set
// when Kind is ActionNone.
type Action struct {
	Kind     ActionKind
	Material string
	Count    int
	Stack    string
	Reason   Reason
}

// NoticeLevel classifies a user-visible notification.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeWarning
	NoticeFailure
)

// Notice is a fire-and-forget user-visible event. The core never reads
// notices back; sinks may print, log, or broadcast them.
type Notice struct {
	Level    NoticeLevel `json:"level"`
	EntityID string      `json:"entity_id"`
	Text     string      `json:"text"`
}

// Point is a grid position in the host world.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ImprovementState is the per-target improvement record.
// Marked == false implies Stored is empty (drained on unmark).
type ImprovementState struct {
	Marked        bool            `json:"marked"`
	WorkDone      float64         `json:"work_done"`
	WorkRequired  float64         `json:"work_required"`
	TargetQuality *QualityTier    `json:"target_quality,omitempty"`
	Stored        []MaterialStack `json:"stored,omitempty"`
}

// SetMarkedDirect flips the marked flag without any side effects.
// Engine.Mark/Unmark run the full transition (designation, drain,
// interrupt); this is the raw-state half of that contract.
func (s *ImprovementState) SetMarkedDirect(v bool) {
	s.Marked = v
}

// Work categories used to match workers to improvement jobs.
const (
	WorkCategoryImprove   = "improve"
	WorkCategoryConstruct = "construct"
)

// Settings is the engine configuration surface, loaded from YAML.
type Settings struct {
	RequireMaterials       bool           `yaml:"require_materials"`
	MaterialCostMultiplier float64        `yaml:"material_cost_multiplier"`
	SkillPreset            string         `yaml:"skill_preset"`
	CustomSkillTable       map[string]int `yaml:"custom_skill_table"`
	MergeWorkCategory      bool           `yaml:"merge_work_category"`
}

// ScenarioDef holds scenario metadata from Lua.
type ScenarioDef struct {
	Title   string
	Author  string
	Version string
	Intro   string
	Seed    int64
}

// MaterialDef is the definition of a haulable material type.
type MaterialDef struct {
	ID   string
	Name string
}

// EntityTypeDef is the definition of a constructable entity type.
// BuildCost is the base material cost per improvement attempt; WorkCost
// is the labor required per attempt.
type EntityTypeDef struct {
	ID         string
	Name       string
	WorkCost   float64
	BuildCost  []MaterialStack
	HasQuality bool
}

// ObjectDef is a placed instance of an entity type in the scenario.
type ObjectDef struct {
	ID      string
	Type    string
	Quality QualityTier
	Pos     Point
}

// WorkerDef is a scenario worker: skill, enabled work categories,
// boolean props consumed by quality modifiers, and work per tick.
type WorkerDef struct {
	ID          string
	Name        string
	Skill       int
	WorkPerTick float64
	Categories  []string
	Props       map[string]bool
	Pos         Point
}

// StockpileDef is a ground stack of material available for hauling.
type StockpileDef struct {
	Material string
	Count    int
	Pos      Point
}

// ModifierDef is a prop-gated quality modifier: when the worker has the
// named prop set, the bonus lowers the effective skill requirement.
type ModifierDef struct {
	Name  string
	Prop  string
	Bonus int
}
