package priority

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestBaseHazardTable(t *testing.T) {
	engine := NewEngine(nil)
	cases := []struct {
		severity domain.Severity
		base     float64
	}{
		{domain.SeverityLow, 0.111},
		{domain.SeverityMedium, 0.429},
		{domain.SeverityHigh, 1.500},
		{domain.SeverityEmergency, 5.667},
	}
	for _, tc := range cases {
		t.Run(string(tc.severity), func(t *testing.T) {
			result := engine.Score(domain.ClassificationResult{
				Severity: tc.severity,
				Trade:    "GENERAL",
			}, domain.ContextBundle{})
			assert.Equal(t, tc.base, result.BaseHazard)
			assert.GreaterOrEqual(t, result.CombinedHazard, result.BaseHazard)
		})
	}
}

func TestUnknownSeverityFallsBackToMedium(t *testing.T) {
	engine := NewEngine(nil)
	result := engine.Score(domain.ClassificationResult{
		Severity: "CRITICAL",
		Trade:    "GENERAL",
	}, domain.ContextBundle{})
	assert.Equal(t, 0.429, result.BaseHazard)
	assert.Equal(t, domain.Severity("CRITICAL"), result.Severity)
}

func TestGasLeakLateNightElderlyEmergency(t *testing.T) {
	engine := NewEngine(nil)
	result := engine.Score(domain.ClassificationResult{
		Severity:    domain.SeverityEmergency,
		Trade:       "PLUMBING",
		Description: "Strong gas smell in the kitchen",
	}, domain.ContextBundle{
		Tenant: domain.TenantContext{IsElderly: true},
		Timing: domain.TimingContext{IsLateNight: true},
	})

	// 5.667 x 4.0 (gas) x 1.5 (elderly) x 1.35 (late night) x 1.25 (night x emergency)
	assert.InDelta(t, 57.378, result.CombinedHazard, 0.001)
	assert.Equal(t, 98.3, result.PriorityScore)

	names := factorNames(result.AppliedFactors)
	assert.Contains(t, names, "Gas leak/smell")
	assert.Contains(t, names, "Elderly tenant")
	assert.Contains(t, names, "Late night")
	require.Len(t, result.AppliedInteractions, 1)
	assert.Equal(t, "Late Night x Emergency", result.AppliedInteractions[0].Name)
}

func TestThirdTimeMedium(t *testing.T) {
	engine := NewEngine(nil)
	result := engine.Score(domain.ClassificationResult{
		Severity:    domain.SeverityMedium,
		Trade:       "GENERAL",
		Description: "third time this has happened",
	}, domain.ContextBundle{})

	assert.InDelta(t, 0.858, result.CombinedHazard, 0.001)
	assert.Equal(t, 46.2, result.PriorityScore)
	require.Len(t, result.AppliedFactors, 1)
	assert.Equal(t, "Third+ occurrence", result.AppliedFactors[0].Name)
	// MEDIUM severity: no recurrence x severity interaction
	assert.Empty(t, result.AppliedInteractions)
}

func TestTimingFactorsAreExclusive(t *testing.T) {
	engine := NewEngine(nil)
	result := engine.Score(domain.ClassificationResult{
		Severity: domain.SeverityMedium,
		Trade:    "GENERAL",
	}, domain.ContextBundle{
		Timing: domain.TimingContext{
			IsLateNight:  true,
			IsHoliday:    true,
			IsAfterHours: true,
			IsWeekend:    true,
		},
	})
	timing := factorsInCategory(result.AppliedFactors, domain.CategoryTiming)
	require.Len(t, timing, 1)
	assert.Equal(t, "Late night", timing[0].Name)
	assert.Equal(t, 1.35, timing[0].HazardRatio)
}

func TestTimingPrecedenceOrder(t *testing.T) {
	engine := NewEngine(nil)
	cases := []struct {
		name   string
		timing domain.TimingContext
		want   string
	}{
		{"holiday beats after hours", domain.TimingContext{IsHoliday: true, IsAfterHours: true, IsWeekend: true}, "Holiday"},
		{"after hours beats weekend", domain.TimingContext{IsAfterHours: true, IsWeekend: true}, "After hours"},
		{"weekend alone", domain.TimingContext{IsWeekend: true}, "Weekend"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := engine.Score(domain.ClassificationResult{
				Severity: domain.SeverityMedium,
				Trade:    "GENERAL",
			}, domain.ContextBundle{Timing: tc.timing})
			timing := factorsInCategory(result.AppliedFactors, domain.CategoryTiming)
			require.Len(t, timing, 1)
			assert.Equal(t, tc.want, timing[0].Name)
		})
	}
}

func TestEnvironmentalAtMostOne(t *testing.T) {
	engine := NewEngine(nil)
	// Heating text on a plumbing trade in deep cold would qualify both the
	// extreme-cold and freeze-risk conditions; only the most severe applies.
	result := engine.Score(domain.ClassificationResult{
		Severity:    domain.SeverityHigh,
		Trade:       "PLUMBING",
		Description: "no heat in the unit and pipes exposed",
	}, domain.ContextBundle{
		Weather: domain.WeatherContext{Temperature: floatPtr(25)},
	})
	env := factorsInCategory(result.AppliedFactors, domain.CategoryEnvironmental)
	require.Len(t, env, 1)
	assert.Equal(t, "No heat + extreme cold", env[0].Name)
	assert.Equal(t, 2.2, env[0].HazardRatio)
}

func TestFreezeRiskRequiresPlumbingTrade(t *testing.T) {
	engine := NewEngine(nil)
	result := engine.Score(domain.ClassificationResult{
		Severity:    domain.SeverityMedium,
		Trade:       "PLUMBING",
		Description: "leaking pipe under the sink",
	}, domain.ContextBundle{
		Weather: domain.WeatherContext{Temperature: floatPtr(28)},
	})
	env := factorsInCategory(result.AppliedFactors, domain.CategoryEnvironmental)
	require.Len(t, env, 1)
	assert.Equal(t, "Freeze risk", env[0].Name)
}

func TestMissingTemperatureDefaultsNeutral(t *testing.T) {
	engine := NewEngine(nil)
	result := engine.Score(domain.ClassificationResult{
		Severity:    domain.SeverityMedium,
		Trade:       "HVAC",
		Description: "no heat",
	}, domain.ContextBundle{})
	// default 70F is neither cold nor hot
	assert.Empty(t, factorsInCategory(result.AppliedFactors, domain.CategoryEnvironmental))
}

func TestRecurrenceAtMostOne(t *testing.T) {
	engine := NewEngine(nil)
	result := engine.Score(domain.ClassificationResult{
		Severity: domain.SeverityMedium,
		Trade:    "GENERAL",
	}, domain.ContextBundle{
		History: domain.HistoryContext{RecentIssuesCount: 4, PreviousRepairFailed: true},
	})
	recurrence := factorsInCategory(result.AppliedFactors, domain.CategoryRecurrence)
	require.Len(t, recurrence, 1)
	assert.Equal(t, "Third+ occurrence", recurrence[0].Name)
	assert.Equal(t, 2.0, recurrence[0].HazardRatio)
}

func TestVulnerabilityFactorsStack(t *testing.T) {
	engine := NewEngine(nil)
	result := engine.Score(domain.ClassificationResult{
		Severity: domain.SeverityMedium,
		Trade:    "GENERAL",
	}, domain.ContextBundle{
		Tenant: domain.TenantContext{HasMedicalCondition: true, HasInfant: true, Age: 80},
	})
	vuln := factorsInCategory(result.AppliedFactors, domain.CategoryVulnerability)
	assert.Len(t, vuln, 3)

	var multiVuln bool
	for _, effect := range result.AppliedInteractions {
		if effect.Name == "Multiple Vulnerabilities" {
			multiVuln = true
			assert.Equal(t, 1.3, effect.InteractionRatio)
		}
	}
	assert.True(t, multiVuln, "expected multiple-vulnerabilities interaction")
}

func TestWaterElectricalInteraction(t *testing.T) {
	engine := NewEngine(nil)
	result := engine.Score(domain.ClassificationResult{
		Severity:    domain.SeverityHigh,
		Trade:       "ELECTRICAL",
		Description: "water flooding near the breaker panel",
	}, domain.ContextBundle{})

	var found bool
	for _, effect := range result.AppliedInteractions {
		if effect.Name == "Water x Electrical" {
			found = true
			assert.Equal(t, 1.6, effect.InteractionRatio)
		}
	}
	assert.True(t, found, "expected water x electrical interaction")
}

func TestKeyFactorTriggersDetectConcepts(t *testing.T) {
	engine := NewEngine(nil)
	result := engine.Score(domain.ClassificationResult{
		Severity:    domain.SeverityHigh,
		Trade:       "GENERAL",
		Description: "tenant reports a problem in the hallway",
		KeyFactors:  []string{"visible smoke near outlet"},
	}, domain.ContextBundle{})
	assert.Contains(t, factorNames(result.AppliedFactors), "Fire/flames/smoke")
}

func TestAddingFactorNeverDecreasesScore(t *testing.T) {
	engine := NewEngine(nil)
	classification := domain.ClassificationResult{
		Severity:    domain.SeverityMedium,
		Trade:       "GENERAL",
		Description: "dishwasher door latch is loose",
	}
	baseline := engine.Score(classification, domain.ContextBundle{})
	withInfant := engine.Score(classification, domain.ContextBundle{
		Tenant: domain.TenantContext{HasInfant: true},
	})
	assert.GreaterOrEqual(t, withInfant.PriorityScore, baseline.PriorityScore)
}

func TestScoreStaysInsideOpenInterval(t *testing.T) {
	engine := NewEngine(nil)
	// stack everything that can stack
	result := engine.Score(domain.ClassificationResult{
		Severity:    domain.SeverityEmergency,
		Trade:       "ELECTRICAL",
		Description: strings.Repeat("gas smell, fire and smoke, sparking wires, sewage backup, water everywhere, getting worse, evacuated, no power, no water, foundation cracked. ", 2),
	}, domain.ContextBundle{
		Weather:  domain.WeatherContext{Temperature: floatPtr(20)},
		Tenant:   domain.TenantContext{IsElderly: true, HasInfant: true, HasMedicalCondition: true, IsPregnant: true},
		Property: domain.PropertyContext{Floor: 3, TotalUnits: 12},
		Timing:   domain.TimingContext{IsLateNight: true},
		History:  domain.HistoryContext{RecentIssuesCount: 5},
	})
	assert.Greater(t, result.PriorityScore, 0.0)
	assert.Less(t, result.PriorityScore, 100.0)

	minimal := engine.Score(domain.ClassificationResult{Severity: domain.SeverityLow, Trade: "GENERAL"}, domain.ContextBundle{})
	assert.Greater(t, minimal.PriorityScore, 0.0)
	assert.Less(t, minimal.PriorityScore, 100.0)
}

func TestConfidenceBounds(t *testing.T) {
	engine := NewEngine(nil)

	sparse := engine.Score(domain.ClassificationResult{
		Severity:    domain.SeverityMedium,
		Trade:       "GENERAL",
		Description: "broken",
	}, domain.ContextBundle{})
	// 0.85 - 0.10 (no factors) - 0.10 (short description)
	assert.Equal(t, 0.65, sparse.Confidence)

	rich := engine.Score(domain.ClassificationResult{
		Severity:    domain.SeverityEmergency,
		Trade:       "PLUMBING",
		Description: "water is flooding the kitchen and spreading into the hallway, it keeps getting worse and we cannot stop it",
	}, domain.ContextBundle{
		Tenant: domain.TenantContext{IsElderly: true},
	})
	assert.LessOrEqual(t, rich.Confidence, 1.0)
	assert.GreaterOrEqual(t, rich.Confidence, 0.5)
	// 0.85 + 0.05 (>=3 factors) + 0.05 (clear extreme) + 0.05 (long description)
	assert.Equal(t, 1.0, rich.Confidence)
}

func TestScoreIsDeterministic(t *testing.T) {
	engine := NewEngine(nil)
	classification := domain.ClassificationResult{
		Severity:    domain.SeverityHigh,
		Trade:       "HVAC",
		Description: "no heat, second complaint this month",
		KeyFactors:  []string{"no heat", "recurring"},
	}
	bundle := domain.ContextBundle{
		Weather: domain.WeatherContext{Temperature: floatPtr(38)},
		Tenant:  domain.TenantContext{Age: 77},
		History: domain.HistoryContext{RecentIssuesCount: 1},
	}
	first := engine.Score(classification, bundle)
	second := engine.Score(classification, bundle)
	assert.Equal(t, first, second)
}

func TestTraceRecordsEveryStep(t *testing.T) {
	engine := NewEngine(nil)
	result := engine.Score(domain.ClassificationResult{
		Severity:    domain.SeverityEmergency,
		Trade:       "GENERAL",
		Description: "gas smell in basement",
	}, domain.ContextBundle{})
	assert.Contains(t, result.CalculationTrace, "Base hazard (EMERGENCY)")
	assert.Contains(t, result.CalculationTrace, "x Gas (4)")
	assert.Contains(t, result.CalculationTrace, "Final: score")
}

func factorNames(factors []domain.PriorityFactor) []string {
	names := make([]string, 0, len(factors))
	for _, factor := range factors {
		names = append(names, factor.Name)
	}
	return names
}

func factorsInCategory(factors []domain.PriorityFactor, category domain.FactorCategory) []domain.PriorityFactor {
	var matched []domain.PriorityFactor
	for _, factor := range factors {
		if factor.Category == category {
			matched = append(matched, factor)
		}
	}
	return matched
}
