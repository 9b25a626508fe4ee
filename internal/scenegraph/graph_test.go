package scenegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `1. ("object"{tuple_delimiter}WATER AREA{tuple_delimiter}big)
{record_delimiter}
2. ("object"{tuple_delimiter}WATER{tuple_delimiter}blue)
{record_delimiter}
3. ("relationship"{tuple_delimiter}WAVES{tuple_delimiter}WATER{tuple_delimiter}The waves are part of the water area{tuple_delimiter}9)
{completion_delimiter}`

func TestParse_ObjectsAndRelationships(t *testing.T) {
	g := Parse(sampleResponse)
	require.Equal(t, 3, g.ConceptCount())

	assert.Equal(t, 1, g.Entries[0].Serial)
	assert.Equal(t, KindObject, g.Entries[0].Kind)
	assert.Equal(t, "WATER AREA", g.Entries[0].Name)
	assert.Equal(t, "big", g.Entries[0].Attribute)

	rel := g.Entries[2]
	assert.Equal(t, 3, rel.Serial)
	assert.Equal(t, KindRelationship, rel.Kind)
	assert.Equal(t, "WAVES", rel.Source)
	assert.Equal(t, "WATER", rel.Target)
	assert.Equal(t, "The waves are part of the water area", rel.Description)
	assert.Equal(t, 9, rel.Strength)

	assert.Equal(t, sampleResponse, g.Raw)
}

func TestParse_TrailingRecordDelimiterOnSameLine(t *testing.T) {
	g := Parse(`1. ("object"{tuple_delimiter}BOAT{tuple_delimiter}red) {record_delimiter}`)
	require.Equal(t, 1, g.ConceptCount())
	assert.Equal(t, "BOAT", g.Entries[0].Name)
}

func TestParse_LenientOnMalformedTuples(t *testing.T) {
	raw := `1. something the model said without a tuple
2. ("object"{tuple_delimiter}TREE{tuple_delimiter}tall)
3. ("relationship"{tuple_delimiter}missing{tuple_delimiter}fields)`

	g := Parse(raw)
	// All three numbered lines count as concepts even when undecomposable.
	require.Equal(t, 3, g.ConceptCount())
	assert.Empty(t, g.Entries[0].Kind)
	assert.Equal(t, KindObject, g.Entries[1].Kind)
	assert.Empty(t, g.Entries[2].Kind, "wrong field count leaves tuple fields unset")
	assert.NotEmpty(t, g.Entries[2].Raw)
}

func TestParse_EmptyAndNonNumbered(t *testing.T) {
	assert.Equal(t, 0, Parse("").ConceptCount())
	assert.Equal(t, 0, Parse("The caption describes nothing structured.").ConceptCount())
}

func TestParse_IndentedMarkers(t *testing.T) {
	g := Parse("   12. (\"object\"{tuple_delimiter}SKY{tuple_delimiter}clear)")
	require.Equal(t, 1, g.ConceptCount())
	assert.Equal(t, 12, g.Entries[0].Serial)
}

func TestGraph_Lookup(t *testing.T) {
	g := Parse(sampleResponse)

	e, ok := g.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "WATER", e.Name)

	_, ok = g.Lookup(99)
	assert.False(t, ok)
}
