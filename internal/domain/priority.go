package domain

// FactorCategory groups hazard factors by the kind of risk they signal.
type FactorCategory string

const (
	CategoryLifeSafety       FactorCategory = "LIFE_SAFETY"
	CategoryActiveDamage     FactorCategory = "ACTIVE_DAMAGE"
	CategoryVulnerability    FactorCategory = "VULNERABILITY"
	CategoryEnvironmental    FactorCategory = "ENVIRONMENTAL"
	CategoryTiming           FactorCategory = "TIMING"
	CategoryRecurrence       FactorCategory = "RECURRENCE"
	CategoryPropertyRisk     FactorCategory = "PROPERTY_RISK"
	CategoryEssentialService FactorCategory = "ESSENTIAL_SERVICE"
)

// PriorityFactor is a single condition that multiplied into the hazard.
type PriorityFactor struct {
	Name        string         `json:"name"`
	HazardRatio float64        `json:"hazard_ratio"`
	Reason      string         `json:"reason"`
	Category    FactorCategory `json:"category"`
}

// InteractionEffect is a compound-risk multiplier applied after all main
// factors are resolved.
type InteractionEffect struct {
	Name             string  `json:"name"`
	InteractionRatio float64 `json:"interaction_ratio"`
	Trigger          string  `json:"trigger"`
}

// PriorityResult is the engine output. Created once per request, immutable.
// Invariant: CombinedHazard = BaseHazard x product of all ratios, and
// PriorityScore = 100*h/(h+1), strictly inside (0,100).
type PriorityResult struct {
	PriorityScore       float64             `json:"priority_score"`
	Severity            Severity            `json:"severity"`
	BaseHazard          float64             `json:"base_hazard"`
	CombinedHazard      float64             `json:"combined_hazard"`
	AppliedFactors      []PriorityFactor    `json:"applied_factors"`
	AppliedInteractions []InteractionEffect `json:"applied_interactions"`
	CalculationTrace    string              `json:"calculation_trace"`
	Confidence          float64             `json:"confidence"`
}
