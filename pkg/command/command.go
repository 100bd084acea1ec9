// Package command maps editor keystrokes to outline intents via a static
// descriptor table (spec.md §4.12, C12): navigation, editing, structure, and
// destructive operations.
package command

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModMeta
	ModCtrl
	ModAlt
)

// modifierPriority is the tiebreak score spec.md §4.12 assigns to each
// modifier when more than one descriptor matches a stroke.
var modifierPriority = map[Modifier]int{
	ModShift: 4,
	ModMeta:  3,
	ModCtrl:  2,
	ModAlt:   1,
}

// priorityOf scores a modifier combination by its highest-priority bit; a
// chord with no modifiers scores 0.
func priorityOf(m Modifier) int {
	best := 0
	for bit, score := range modifierPriority {
		if m&bit != 0 && score > best {
			best = score
		}
	}
	return best
}

// Intent names the outline action a descriptor triggers.
type Intent string

const (
	IntentMoveFocusUp       Intent = "moveFocusUp"
	IntentMoveFocusDown     Intent = "moveFocusDown"
	IntentIndent            Intent = "indent"
	IntentOutdent           Intent = "outdent"
	IntentToggleCollapsed   Intent = "toggleCollapsed"
	IntentInsertSiblingNode Intent = "insertSiblingNode"
	IntentDeleteNode        Intent = "deleteNode"
	IntentToggleBold        Intent = "toggleBold"
	IntentToggleItalic      Intent = "toggleItalic"
	IntentUndo              Intent = "undo"
	IntentRedo              Intent = "redo"
)

// Stroke is one observed keystroke event.
type Stroke struct {
	Key          string
	Modifiers    Modifier
	IsAutoRepeat bool
}

// Descriptor binds a key + modifier combination to an intent. AllowRepeat
// controls whether the binding fires for an auto-repeated key-down.
type Descriptor struct {
	Key         string
	Modifiers   Modifier
	Intent      Intent
	AllowRepeat bool
}

// Match is the outcome of MatchOutlineCommand.
type Match struct {
	Intent     Intent
	Descriptor Descriptor
}

// Table is the ordered descriptor list MatchOutlineCommand scans; order is
// the tiebreak of last resort (spec.md §4.12: "tiebreak by descriptor
// order").
var Table = []Descriptor{
	{Key: "ArrowUp", Intent: IntentMoveFocusUp, AllowRepeat: true},
	{Key: "ArrowDown", Intent: IntentMoveFocusDown, AllowRepeat: true},
	{Key: "Tab", Intent: IntentIndent, AllowRepeat: false},
	{Key: "Tab", Modifiers: ModShift, Intent: IntentOutdent, AllowRepeat: false},
	{Key: "Enter", Intent: IntentInsertSiblingNode, AllowRepeat: false},
	{Key: " ", Modifiers: ModCtrl, Intent: IntentToggleCollapsed, AllowRepeat: false},
	{Key: "Backspace", Modifiers: ModMeta, Intent: IntentDeleteNode, AllowRepeat: false},
	{Key: "b", Modifiers: ModCtrl, Intent: IntentToggleBold, AllowRepeat: false},
	{Key: "b", Modifiers: ModMeta, Intent: IntentToggleBold, AllowRepeat: false},
	{Key: "i", Modifiers: ModCtrl, Intent: IntentToggleItalic, AllowRepeat: false},
	{Key: "i", Modifiers: ModMeta, Intent: IntentToggleItalic, AllowRepeat: false},
	{Key: "z", Modifiers: ModCtrl, Intent: IntentUndo, AllowRepeat: false},
	{Key: "z", Modifiers: ModMeta, Intent: IntentUndo, AllowRepeat: false},
	{Key: "z", Modifiers: ModCtrl | ModShift, Intent: IntentRedo, AllowRepeat: false},
	{Key: "z", Modifiers: ModMeta | ModShift, Intent: IntentRedo, AllowRepeat: false},
}

// MatchOutlineCommand finds the descriptor bound to stroke in Table
// (spec.md §4.12, C12).
func MatchOutlineCommand(stroke Stroke) *Match {
	return MatchCommand(Table, stroke)
}

// MatchCommand finds the descriptor in table bound to stroke, preferring the
// highest modifier-priority score and, among equal scores, the earliest
// entry in table (spec.md §4.12, P10 determinism). Exposed separately from
// MatchOutlineCommand so callers can test against a custom table.
func MatchCommand(table []Descriptor, stroke Stroke) *Match {
	var best *Descriptor
	bestScore := -1

	for i := range table {
		d := &table[i]
		if d.Key != stroke.Key || d.Modifiers != stroke.Modifiers {
			continue
		}
		if stroke.IsAutoRepeat && !d.AllowRepeat {
			continue
		}
		score := priorityOf(d.Modifiers)
		if score > bestScore {
			best = d
			bestScore = score
		}
	}

	if best == nil {
		return nil
	}
	return &Match{Intent: best.Intent, Descriptor: *best}
}
