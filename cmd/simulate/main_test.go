package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/dnd-combat-sim/internal/catalog"
)

func TestParseSlots(t *testing.T) {
	slots, err := parseSlots([]string{"Goblin:3", " Orc "})
	require.NoError(t, err)
	assert.Equal(t, []catalog.Slot{{Name: "Goblin", Count: 3}, {Name: "Orc", Count: 1}}, slots)

	_, err = parseSlots([]string{"Goblin:zero"})
	assert.Error(t, err)
	_, err = parseSlots([]string{"Goblin:0"})
	assert.Error(t, err)
}
