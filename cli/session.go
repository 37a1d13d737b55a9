// Package cli provides terminal I/O and command dispatch for driving the
// improvement engine. Session holds the shared command executor used by
// both the plain CLI loop and the TUI.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kestran/refit/engine"
	"github.com/kestran/refit/engine/save"
	"github.com/kestran/refit/engine/state"
	"github.com/kestran/refit/sim"
	"github.com/kestran/refit/types"
)

// Session executes commands against an engine and its sim world.
type Session struct {
	Engine  *engine.Engine
	World   *sim.World
	Defs    *state.Defs
	Store   *save.Store // optional SQLite persistence hook
	SaveDir string

	notices []types.Notice
}

// NewSession wires a session. The returned session's Notify method must
// be registered (directly or fanned out) as the engine's notifier so
// notices appear in command output.
func NewSession(eng *engine.Engine, world *sim.World, defs *state.Defs) *Session {
	home, _ := os.UserHomeDir()
	return &Session{
		Engine:  eng,
		World:   world,
		Defs:    defs,
		SaveDir: filepath.Join(home, ".refit", "saves"),
	}
}

// Notify buffers a notice for the next command's output.
func (s *Session) Notify(n types.Notice) {
	s.notices = append(s.notices, n)
}

// Exec runs one command line and returns its output. quit is true for
// /quit.
func (s *Session) Exec(input string) (lines []string, quit bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, false
	}
	if strings.HasPrefix(input, "/") {
		return s.execMeta(input)
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "mark":
		lines = s.cmdMark(args)
	case "unmark":
		lines = s.cmdUnmark(args)
	case "tick", "t":
		lines = s.cmdTick(args)
	case "status", "st":
		lines = s.cmdStatus(args)
	case "targets":
		lines = s.cmdTargets()
	case "workers":
		lines = s.cmdWorkers()
	case "stacks":
		lines = s.cmdStacks()
	case "flag":
		lines = s.cmdFlag(args, true)
	case "unflag":
		lines = s.cmdFlag(args, false)
	case "deconstruct":
		lines = s.cmdDestroy(args, true)
	case "destroy":
		lines = s.cmdDestroy(args, false)
	case "config":
		lines = s.cmdConfig()
	case "help", "h":
		lines = s.cmdHelp()
	default:
		lines = []string{s.unknownCommand(cmd)}
	}

	return append(lines, s.drainNotices()...), false
}

func (s *Session) drainNotices() []string {
	var out []string
	for _, n := range s.notices {
		out = append(out, formatNotice(n))
	}
	s.notices = nil
	return out
}

func formatNotice(n types.Notice) string {
	switch n.Level {
	case types.NoticeSuccess:
		return "[+] " + n.Text
	case types.NoticeWarning, types.NoticeFailure:
		return "[!] " + n.Text
	default:
		return "[i] " + n.Text
	}
}

func (s *Session) cmdMark(args []string) []string {
	if len(args) == 0 {
		return []string{"Mark what? Usage: mark <entity> [quality]"}
	}
	entityID := args[0]
	var target *types.QualityTier
	if len(args) > 1 {
		q, ok := types.ParseQuality(args[1])
		if !ok {
			return []string{fmt.Sprintf("Unknown quality %q.", args[1])}
		}
		target = &q
	}
	if err := s.Engine.Mark(entityID, target); err != nil {
		return []string{"Cannot mark: " + err.Error()}
	}
	if target != nil {
		return []string{fmt.Sprintf("%s marked for improvement to %s.", entityID, *target)}
	}
	return []string{fmt.Sprintf("%s marked for improvement.", entityID)}
}

func (s *Session) cmdUnmark(args []string) []string {
	if len(args) == 0 {
		return []string{"Unmark what? Usage: unmark <entity>"}
	}
	s.Engine.Unmark(args[0])
	return []string{fmt.Sprintf("%s unmarked.", args[0])}
}

func (s *Session) cmdTick(args []string) []string {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return []string{"Usage: tick [count]"}
		}
		n = v
	}
	var out []string
	for i := 0; i < n; i++ {
		out = append(out, s.World.Step(s.Engine)...)
	}
	out = append(out, fmt.Sprintf("Tick %d.", s.World.Tick()))
	return out
}

func (s *Session) cmdStatus(args []string) []string {
	if len(args) == 0 {
		return s.cmdTargets()
	}
	entityID := args[0]
	insp, ok := s.Engine.Inspect(entityID)
	if !ok {
		return []string{s.unknownEntity(entityID)}
	}

	out := []string{fmt.Sprintf("%s — quality %s", entityID, insp.CurrentQuality)}
	if !insp.Marked {
		out = append(out, "Not marked for improvement.")
		return out
	}
	if insp.TargetQuality != nil {
		out = append(out, fmt.Sprintf("Target: %s (skill requirement %d)", *insp.TargetQuality, insp.SkillRequirement))
	} else {
		out = append(out, "Target: any improvement")
	}
	out = append(out, fmt.Sprintf("Work: %.0f / %.0f", insp.WorkDone, insp.WorkRequired))
	if len(insp.Remaining) > 0 {
		out = append(out, "Needs: "+formatStacks(insp.Remaining))
	}
	if len(insp.Stored) > 0 {
		out = append(out, "Stored: "+formatStacks(insp.Stored))
	}
	return out
}

func (s *Session) cmdTargets() []string {
	marked := s.Engine.States.Marked()
	if len(marked) == 0 {
		return []string{"Nothing is marked for improvement."}
	}
	out := []string{"Marked for improvement:"}
	for _, id := range marked {
		insp, _ := s.Engine.Inspect(id)
		target := "any"
		if insp.TargetQuality != nil {
			target = insp.TargetQuality.String()
		}
		out = append(out, fmt.Sprintf("  %s (%s → %s, work %.0f/%.0f)",
			id, insp.CurrentQuality, target, insp.WorkDone, insp.WorkRequired))
	}
	return out
}

func (s *Session) cmdWorkers() []string {
	out := []string{"Workers:"}
	for _, wk := range s.World.WorkerList() {
		job := "idle"
		if wk.Building() != "" {
			job = "building " + wk.Building()
		}
		out = append(out, fmt.Sprintf("  %s (skill %d, %s) — %s",
			wk.Name(), wk.Skill(), strings.Join(workerCategories(wk), ","), job))
	}
	return out
}

func workerCategories(wk *sim.Worker) []string {
	var cats []string
	for _, c := range []string{types.WorkCategoryImprove, types.WorkCategoryConstruct, "haul"} {
		if wk.CategoryEnabled(c) {
			cats = append(cats, c)
		}
	}
	return cats
}

func (s *Session) cmdStacks() []string {
	stacks := s.World.Stacks()
	if len(stacks) == 0 {
		return []string{"No ground stacks."}
	}
	out := []string{"Ground stacks:"}
	for _, st := range stacks {
		out = append(out, fmt.Sprintf("  %s: %d %s at (%d,%d)", st.ID, st.Count, st.Material, st.Pos.X, st.Pos.Y))
	}
	return out
}

func (s *Session) cmdFlag(args []string, v bool) []string {
	if len(args) == 0 {
		return []string{"Usage: flag/unflag <entity>"}
	}
	if !s.World.Exists(args[0]) {
		return []string{s.unknownEntity(args[0])}
	}
	s.World.FlagRemoval(args[0], v)
	if v {
		return []string{fmt.Sprintf("%s flagged for removal.", args[0])}
	}
	return []string{fmt.Sprintf("%s unflagged.", args[0])}
}

func (s *Session) cmdDestroy(args []string, deconstructed bool) []string {
	if len(args) == 0 {
		return []string{"Usage: destroy/deconstruct <entity>"}
	}
	if !s.World.Exists(args[0]) {
		return []string{s.unknownEntity(args[0])}
	}
	s.World.Destroy(s.Engine, args[0], deconstructed)
	if deconstructed {
		return []string{fmt.Sprintf("%s deconstructed; stored materials returned.", args[0])}
	}
	return []string{fmt.Sprintf("%s destroyed.", args[0])}
}

func (s *Session) cmdConfig() []string {
	cfg := s.Engine.Settings
	return []string{
		fmt.Sprintf("require_materials: %v", cfg.RequireMaterials),
		fmt.Sprintf("material_cost_multiplier: %.2f", cfg.MaterialCostMultiplier),
		fmt.Sprintf("skill_preset: %s", cfg.SkillPreset),
		fmt.Sprintf("merge_work_category: %v", cfg.MergeWorkCategory),
	}
}

func (s *Session) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]  — Save state (default: quicksave)",
		"  /load [name]  — Load state (default: quicksave)",
		"  /state        — Debug: dump current state",
		"  /quit         — Exit",
		"",
		"Commands:",
		"  mark <entity> [quality] — Queue an entity for improvement",
		"  unmark <entity>         — Cancel, draining materials",
		"  tick [n] (t)            — Advance the scheduler",
		"  status [entity] (st)    — Show improvement progress",
		"  targets                 — List marked entities",
		"  workers                 — List workers and jobs",
		"  stacks                  — List ground material stacks",
		"  flag/unflag <entity>    — Toggle removal intent",
		"  destroy <entity>        — Remove an entity (discard materials)",
		"  deconstruct <entity>    — Remove an entity (return materials)",
		"  config                  — Show engine settings",
	}
}

func (s *Session) execMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"[Goodbye.]"}, true
	case "/save":
		return s.cmdSave(arg), false
	case "/load":
		return s.cmdLoad(arg), false
	case "/state":
		return s.cmdState(), false
	case "/help":
		return s.cmdHelp(), false
	default:
		return []string{fmt.Sprintf("[Unknown command: %s. Type /help for available commands.]", cmd)}, false
	}
}

func (s *Session) cmdSave(name string) []string {
	if name == "" {
		name = "quicksave"
	}
	cp := s.Engine.RNG.Checkpoint()
	data, err := save.Save(s.Defs, s.Engine.States, s.World.Qualities(),
		s.World.Tick(), cp.Seed, cp.Position)
	if err != nil {
		return []string{fmt.Sprintf("[Save failed: %v]", err)}
	}
	if err := os.MkdirAll(s.SaveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("[Save failed: %v]", err)}
	}
	path := filepath.Join(s.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("[Save failed: %v]", err)}
	}

	out := []string{fmt.Sprintf("[Saved to %s.]", name)}
	if s.Store != nil {
		if err := s.Store.PutAll(context.Background(), s.Engine.States.Snapshot()); err != nil {
			out = append(out, fmt.Sprintf("[Store write failed: %v]", err))
		}
	}
	return out
}

func (s *Session) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}
	path := filepath.Join(s.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("[Load failed: %v]", err)}
	}
	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("[Load failed: %v]", err)}
	}

	pruned := save.Apply(s.Engine.States, sd, s.World.Exists)
	s.World.Restore(sd.Tick, sd.Qualities)
	s.Engine.RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	// Re-sync designations with loaded marks.
	for _, id := range s.Engine.States.IDs() {
		if st, ok := s.Engine.States.Get(id); ok {
			if st.Marked {
				s.World.AddDesignation(id)
			} else {
				s.World.RemoveDesignation(id)
			}
		}
	}

	out := []string{fmt.Sprintf("[Loaded %s (tick %d).]", name, sd.Tick)}
	if len(pruned) > 0 {
		out = append(out, fmt.Sprintf("[Pruned %d stale record(s): %s]", len(pruned), strings.Join(pruned, ", ")))
	}
	return out
}

func (s *Session) cmdState() []string {
	out := []string{fmt.Sprintf("[Tick: %d]", s.World.Tick())}
	for _, id := range s.Engine.States.IDs() {
		st, _ := s.Engine.States.Get(id)
		target := "-"
		if st.TargetQuality != nil {
			target = st.TargetQuality.String()
		}
		out = append(out, fmt.Sprintf("[%s marked=%v work=%.0f/%.0f target=%s stored=%s]",
			id, st.Marked, st.WorkDone, st.WorkRequired, target, formatStacks(st.Stored)))
	}
	return out
}

func (s *Session) entityIDs() []string {
	ids := make([]string, 0, len(s.Defs.Objects))
	for id := range s.Defs.Objects {
		if s.World.Exists(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func formatStacks(stacks []types.MaterialStack) string {
	if len(stacks) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(stacks))
	for _, st := range stacks {
		parts = append(parts, fmt.Sprintf("%d %s", st.Count, st.Type))
	}
	return strings.Join(parts, ", ")
}
