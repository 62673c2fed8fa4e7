package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogRejectsBadPattern(t *testing.T) {
	_, err := NewCatalog(map[Concept]ConceptDefinition{
		ConceptGasLeak: {Patterns: []string{`(`}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gas_leak")
}

func TestPresentMatchesDescriptionCaseInsensitively(t *testing.T) {
	catalog := DefaultCatalog()

	assert.True(t, catalog.Present(ConceptGasLeak, "GAS LEAK near the stove", nil))
	assert.True(t, catalog.Present(ConceptFireSmoke, "Smoke in the hallway", nil))
	assert.False(t, catalog.Present(ConceptGasLeak, "window is stuck", nil))
}

func TestPresentMatchesTriggersInKeyFactors(t *testing.T) {
	catalog := DefaultCatalog()

	assert.True(t, catalog.Present(ConceptElectricalShock, "outlet broken", []string{"visible sparks from outlet"}))
	assert.False(t, catalog.Present(ConceptElectricalShock, "outlet broken", []string{"loose faceplate"}))
}

func TestMatchesTextIgnoresKeyFactorTriggers(t *testing.T) {
	catalog := DefaultCatalog()

	assert.False(t, catalog.MatchesText(ConceptGasLeak, "bad smell in kitchen"))
	assert.True(t, catalog.MatchesText(ConceptGasLeak, "smells like natural gas"))
}

func TestUnknownConceptNeverMatches(t *testing.T) {
	catalog, err := NewCatalog(map[Concept]ConceptDefinition{})
	require.NoError(t, err)

	assert.False(t, catalog.Present(ConceptGasLeak, "gas leak", []string{"gas"}))
}

func TestCustomCatalogDrivesEngine(t *testing.T) {
	catalog, err := NewCatalog(map[Concept]ConceptDefinition{
		ConceptGasLeak: {Patterns: []string{`\bfuga\s*de\s*gas\b`}},
	})
	require.NoError(t, err)

	assert.True(t, catalog.Present(ConceptGasLeak, "hay una fuga de gas", nil))
	assert.False(t, catalog.Present(ConceptGasLeak, "gas leak", nil))
}
