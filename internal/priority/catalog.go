package priority

import (
	"fmt"
	"regexp"
	"strings"
)

// Concept identifies a detectable condition in request text.
type Concept string

const (
	ConceptGasLeak         Concept = "gas_leak"
	ConceptFireSmoke       Concept = "fire_smoke"
	ConceptCarbonMonoxide  Concept = "carbon_monoxide"
	ConceptElectricalShock Concept = "electrical_shock"
	ConceptSewage          Concept = "sewage"
	ConceptWaterSpreading  Concept = "water_spreading"
	ConceptCeilingDrip     Concept = "ceiling_drip"
	ConceptGettingWorse    Concept = "getting_worse"
	ConceptEvacuated       Concept = "evacuated"
	ConceptNoHeat          Concept = "no_heat"
	ConceptNoAC            Concept = "no_ac"
	ConceptNoWater         Concept = "no_water"
	ConceptNoPower         Concept = "no_power"
	ConceptNoToilet        Concept = "no_toilet"
	ConceptLockedOut       Concept = "locked_out"
	ConceptStructural      Concept = "structural"
	ConceptThirdTime       Concept = "third_time"
	ConceptRepairFailed    Concept = "repair_failed"
)

// ConceptDefinition declares how a concept is detected: regular expressions
// matched against the free-text description, and trigger words matched as
// substrings of classifier key-factor phrases.
type ConceptDefinition struct {
	Patterns []string
	Triggers []string
}

type compiledConcept struct {
	expressions []*regexp.Regexp
	triggers    []string
}

// Catalog is an immutable, pre-compiled keyword-pattern catalogue. It is
// injected into the engine so tests and localized deployments can substitute
// their own definitions.
type Catalog struct {
	concepts map[Concept]compiledConcept
}

// NewCatalog compiles the given definitions. Patterns are matched
// case-insensitively.
func NewCatalog(definitions map[Concept]ConceptDefinition) (*Catalog, error) {
	concepts := make(map[Concept]compiledConcept, len(definitions))
	for concept, def := range definitions {
		compiled := compiledConcept{triggers: make([]string, 0, len(def.Triggers))}
		for _, pattern := range def.Patterns {
			expr, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, fmt.Errorf("compile pattern %q for concept %s: %w", pattern, concept, err)
			}
			compiled.expressions = append(compiled.expressions, expr)
		}
		for _, trigger := range def.Triggers {
			compiled.triggers = append(compiled.triggers, strings.ToLower(trigger))
		}
		concepts[concept] = compiled
	}
	return &Catalog{concepts: concepts}, nil
}

// Present reports whether the concept is detected in the description or in
// any of the key-factor phrases.
func (c *Catalog) Present(concept Concept, description string, keyFactors []string) bool {
	compiled, ok := c.concepts[concept]
	if !ok {
		return false
	}
	for _, expr := range compiled.expressions {
		if expr.MatchString(description) {
			return true
		}
	}
	for _, trigger := range compiled.triggers {
		for _, factor := range keyFactors {
			if strings.Contains(strings.ToLower(factor), trigger) {
				return true
			}
		}
	}
	return false
}

// MatchesText reports whether the concept's patterns match the description
// alone, ignoring key factors.
func (c *Catalog) MatchesText(concept Concept, description string) bool {
	compiled, ok := c.concepts[concept]
	if !ok {
		return false
	}
	for _, expr := range compiled.expressions {
		if expr.MatchString(description) {
			return true
		}
	}
	return false
}

// DefaultCatalog returns the built-in catalogue.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog(defaultDefinitions)
	if err != nil {
		// defaults are constants; a compile failure is a programming error
		panic(err)
	}
	return catalog
}

var defaultDefinitions = map[Concept]ConceptDefinition{
	ConceptGasLeak: {
		Patterns: []string{`\bgas\b`, `gas\s*leak`, `gas\s*smell`, `natural\s*gas`},
		Triggers: []string{"gas"},
	},
	ConceptFireSmoke: {
		Patterns: []string{`\bfire\b`, `\bflames?\b`, `\bsmoke\b`, `\bburning\b`},
		Triggers: []string{"fire", "smoke", "flames"},
	},
	ConceptCarbonMonoxide: {
		Patterns: []string{`\bco\s*alarm\b`, `carbon\s*monoxide`, `\bco\s*detector\b`},
		Triggers: []string{"carbon monoxide", "co alarm"},
	},
	ConceptElectricalShock: {
		Patterns: []string{`\bshock(ed)?\b`, `electrocuted`, `\bsparking\b`, `\barcing\b`, `exposed\s*wires?`},
		Triggers: []string{"spark", "shock", "arcing", "exposed wire"},
	},
	ConceptSewage: {
		Patterns: []string{`\bsewage\b`, `raw\s*sewage`, `sewage\s*backup`},
		Triggers: []string{"sewage"},
	},
	ConceptWaterSpreading: {
		Patterns: []string{`\bspreading\b`, `water\s*everywhere`, `\bflooding\b`, `flood(ed)?`},
		Triggers: []string{"spreading", "flooding", "water everywhere"},
	},
	ConceptCeilingDrip: {
		Patterns: []string{`ceiling\s*drip`, `dripping\s*from\s*ceiling`, `water.*through\s*ceiling`},
		Triggers: []string{"ceiling", "dripping"},
	},
	ConceptGettingWorse: {
		Patterns: []string{`getting\s*worse`, `can'?t\s*stop`, `out\s*of\s*control`, `won'?t\s*stop`},
		Triggers: []string{"worse", "spreading", "can't stop"},
	},
	ConceptEvacuated: {
		Patterns: []string{`\bevacuated?\b`, `left\s*the\s*(house|home|building|unit)`, `staying\s*(elsewhere|somewhere)`},
		Triggers: []string{"evacuated", "evacuation"},
	},
	ConceptNoHeat: {
		Patterns: []string{`no\s*heat`, `heat(er|ing)?\s*(not|isn'?t|won'?t)\s*work`, `furnace\s*(broken|not|dead)`},
	},
	ConceptNoAC: {
		Patterns: []string{`no\s*(ac|air\s*condition)`, `ac\s*(not|isn'?t|won'?t)\s*work`, `no\s*cool`},
	},
	ConceptNoWater: {
		Patterns: []string{`no\s*(running\s*)?water`, `water\s*(shut|turned)\s*off`},
	},
	ConceptNoPower: {
		Patterns: []string{`no\s*(power|electricity)`, `power\s*(out|off|gone)`, `lost\s*power`},
	},
	ConceptNoToilet: {
		Patterns: []string{`toilet\s*(won'?t|not|can'?t)\s*flush`, `no\s*working\s*toilet`},
	},
	ConceptLockedOut: {
		Patterns: []string{`locked?\s*out`, `can'?t\s*get\s*in`, `door\s*(broken|won'?t)`},
	},
	ConceptStructural: {
		Patterns: []string{`\bfoundation\b`, `\bstructural\b`, `load[\s-]*bearing`, `ceiling\s*sag`},
	},
	ConceptThirdTime: {
		Patterns: []string{`third\s*time`, `3rd\s*time`, `keeps\s*happening`, `happened\s*(again|before)`},
	},
	ConceptRepairFailed: {
		Patterns: []string{`still\s*not\s*fixed`, `didn'?t\s*work`, `repair.*failed`, `came\s*back`},
	},
}
