package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchOutlineCommandPlainKey(t *testing.T) {
	match := MatchOutlineCommand(Stroke{Key: "ArrowDown"})

	require.NotNil(t, match)
	assert.Equal(t, IntentMoveFocusDown, match.Intent)
}

func TestMatchOutlineCommandModifierCombination(t *testing.T) {
	match := MatchOutlineCommand(Stroke{Key: "z", Modifiers: ModCtrl | ModShift})

	require.NotNil(t, match)
	assert.Equal(t, IntentRedo, match.Intent)
}

func TestMatchOutlineCommandReturnsNilWhenUnbound(t *testing.T) {
	match := MatchOutlineCommand(Stroke{Key: "F13"})
	assert.Nil(t, match)
}

func TestMatchOutlineCommandRejectsAutoRepeatWhenDisallowed(t *testing.T) {
	match := MatchOutlineCommand(Stroke{Key: "Tab", IsAutoRepeat: true})
	assert.Nil(t, match, "Tab/indent has allowRepeat=false")
}

func TestMatchOutlineCommandAllowsAutoRepeatWhenPermitted(t *testing.T) {
	match := MatchOutlineCommand(Stroke{Key: "ArrowUp", IsAutoRepeat: true})

	require.NotNil(t, match)
	assert.Equal(t, IntentMoveFocusUp, match.Intent)
}

// TestMatchCommandTableOrderBreaksEqualPriorityTies exercises P10: when two
// descriptors bind the exact same chord with conflicting intents (e.g. a
// config merge producing a duplicate), their modifier-priority scores tie,
// so the earlier entry in the table wins.
func TestMatchCommandTableOrderBreaksEqualPriorityTies(t *testing.T) {
	table := []Descriptor{
		{Key: "k", Modifiers: ModCtrl | ModShift, Intent: "firstEntryWins", AllowRepeat: false},
		{Key: "k", Modifiers: ModCtrl | ModShift, Intent: "secondEntryLoses", AllowRepeat: false},
	}
	match := MatchCommand(table, Stroke{Key: "k", Modifiers: ModCtrl | ModShift})

	require.NotNil(t, match)
	assert.Equal(t, Intent("firstEntryWins"), match.Intent)
}

func TestMatchCommandDeterministicAcrossRepeatedCalls(t *testing.T) {
	stroke := Stroke{Key: "b", Modifiers: ModMeta}
	first := MatchOutlineCommand(stroke)
	second := MatchOutlineCommand(stroke)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Intent, second.Intent)
}
