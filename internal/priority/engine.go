package priority

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spec-kit/triage-service/internal/domain"
)

// Base hazard per severity label. Unknown labels fall back to MEDIUM.
var baseHazards = map[domain.Severity]float64{
	domain.SeverityLow:       0.111,
	domain.SeverityMedium:    0.429,
	domain.SeverityHigh:      1.500,
	domain.SeverityEmergency: 5.667,
}

const (
	defaultTemperature = 70.0
	elderlyAgeFloor    = 75
)

// Engine computes a bounded urgency score from a classification result and a
// context bundle using a multiplicative hazard model:
//
//	h = base_hazard x product(HR) x product(IR)
//	score = 100*h / (h+1)
//
// The engine is pure and immutable after construction; a single instance may
// be shared by any number of concurrent callers.
type Engine struct {
	catalog *Catalog
}

// NewEngine builds an engine around the given pattern catalogue. A nil
// catalogue selects the built-in defaults.
func NewEngine(catalog *Catalog) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{catalog: catalog}
}

// Score never fails: unrecognized or missing inputs fall back to documented
// safe defaults.
func (e *Engine) Score(classification domain.ClassificationResult, bundle domain.ContextBundle) domain.PriorityResult {
	severity := domain.Severity(strings.ToUpper(strings.TrimSpace(string(classification.Severity))))
	trade := strings.ToUpper(strings.TrimSpace(classification.Trade))
	description := strings.ToLower(classification.Description)
	keyFactors := classification.KeyFactors

	base, ok := baseHazards[severity]
	if !ok {
		base = baseHazards[domain.SeverityMedium]
	}

	s := &scoring{hazard: base}
	s.tracef("Base hazard (%s): h = %.3f", severity, base)

	e.applyLifeSafety(s, description, keyFactors)
	e.applyActiveDamage(s, description, keyFactors)
	e.applyVulnerability(s, bundle.Tenant)
	e.applyEnvironmental(s, bundle.Weather, trade, description)
	e.applyTiming(s, bundle.Timing)
	e.applyRecurrence(s, bundle.History, description)
	e.applyPropertyRisk(s, bundle.Property, trade, description)
	e.applyEssentialService(s, description)
	e.applyInteractions(s, severity, trade, bundle)

	score := 100 * s.hazard / (s.hazard + 1)
	s.tracef("Final: score = (100 x %.3f) / (%.3f + 1) = %.1f", s.hazard, s.hazard, score)

	return domain.PriorityResult{
		PriorityScore:       round(score, 1),
		Severity:            severity,
		BaseHazard:          round(base, 3),
		CombinedHazard:      round(s.hazard, 3),
		AppliedFactors:      s.factors,
		AppliedInteractions: s.interactions,
		CalculationTrace:    strings.Join(s.trace, " -> "),
		Confidence:          confidenceFor(len(s.factors), severity, classification.Description),
	}
}

// scoring accumulates the running hazard, applied factors and the audit trace
// for a single request.
type scoring struct {
	hazard       float64
	factors      []domain.PriorityFactor
	interactions []domain.InteractionEffect
	trace        []string
}

func (s *scoring) tracef(format string, args ...any) {
	s.trace = append(s.trace, fmt.Sprintf(format, args...))
}

func (s *scoring) apply(label string, factor domain.PriorityFactor) {
	s.hazard *= factor.HazardRatio
	s.factors = append(s.factors, factor)
	s.tracef("x %s (%s) = %.3f", label, formatRatio(factor.HazardRatio), s.hazard)
}

func (s *scoring) applyInteraction(label string, effect domain.InteractionEffect) {
	s.hazard *= effect.InteractionRatio
	s.interactions = append(s.interactions, effect)
	s.tracef("x %s (%s) = %.3f", label, formatRatio(effect.InteractionRatio), s.hazard)
}

// exclusiveRule is one candidate in an ordered mutually-exclusive group.
type exclusiveRule struct {
	when   bool
	label  string
	factor domain.PriorityFactor
}

// applyFirst applies the first rule whose condition holds; later rules are
// ignored even if also true.
func (s *scoring) applyFirst(rules []exclusiveRule) {
	for _, rule := range rules {
		if rule.when {
			s.apply(rule.label, rule.factor)
			return
		}
	}
}

func (e *Engine) applyLifeSafety(s *scoring, description string, keyFactors []string) {
	if e.catalog.Present(ConceptGasLeak, description, keyFactors) {
		s.apply("Gas", domain.PriorityFactor{
			Name:        "Gas leak/smell",
			HazardRatio: 4.0,
			Reason:      "Gas mentioned - immediate life safety risk",
			Category:    domain.CategoryLifeSafety,
		})
	}
	if e.catalog.Present(ConceptFireSmoke, description, keyFactors) {
		s.apply("Fire", domain.PriorityFactor{
			Name:        "Fire/flames/smoke",
			HazardRatio: 4.0,
			Reason:      "Fire hazard - immediate danger",
			Category:    domain.CategoryLifeSafety,
		})
	}
	if e.catalog.Present(ConceptCarbonMonoxide, description, keyFactors) {
		s.apply("CO", domain.PriorityFactor{
			Name:        "Carbon monoxide alarm",
			HazardRatio: 4.0,
			Reason:      "CO detected - life threatening",
			Category:    domain.CategoryLifeSafety,
		})
	}
	if e.catalog.Present(ConceptElectricalShock, description, keyFactors) {
		s.apply("Electrical", domain.PriorityFactor{
			Name:        "Electrical shock hazard",
			HazardRatio: 3.0,
			Reason:      "Active electrical danger present",
			Category:    domain.CategoryLifeSafety,
		})
	}
	if e.catalog.Present(ConceptSewage, description, keyFactors) {
		s.apply("Sewage", domain.PriorityFactor{
			Name:        "Sewage in living area",
			HazardRatio: 2.5,
			Reason:      "Health hazard from sewage exposure",
			Category:    domain.CategoryLifeSafety,
		})
	}
}

func (e *Engine) applyActiveDamage(s *scoring, description string, keyFactors []string) {
	if e.catalog.Present(ConceptWaterSpreading, description, keyFactors) {
		s.apply("Water spreading", domain.PriorityFactor{
			Name:        "Water actively spreading",
			HazardRatio: 2.2,
			Reason:      "Active water damage occurring",
			Category:    domain.CategoryActiveDamage,
		})
	}
	if e.catalog.Present(ConceptCeilingDrip, description, keyFactors) {
		s.apply("Ceiling drip", domain.PriorityFactor{
			Name:        "Ceiling dripping",
			HazardRatio: 1.8,
			Reason:      "Water penetrating from above",
			Category:    domain.CategoryActiveDamage,
		})
	}
	if e.catalog.Present(ConceptGettingWorse, description, keyFactors) {
		s.apply("Getting worse", domain.PriorityFactor{
			Name:        "Situation escalating",
			HazardRatio: 1.6,
			Reason:      "Problem actively getting worse",
			Category:    domain.CategoryActiveDamage,
		})
	}
	if e.catalog.Present(ConceptEvacuated, description, keyFactors) {
		s.apply("Evacuated", domain.PriorityFactor{
			Name:        "Tenant evacuated",
			HazardRatio: 2.0,
			Reason:      "Tenant forced to leave unit",
			Category:    domain.CategoryActiveDamage,
		})
	}
}

// applyVulnerability multiplies every vulnerability that applies; the group
// is not exclusive.
func (e *Engine) applyVulnerability(s *scoring, tenant domain.TenantContext) {
	if tenant.HasMedicalCondition {
		s.apply("Medical", domain.PriorityFactor{
			Name:        "Medical condition",
			HazardRatio: 1.8,
			Reason:      "Tenant has medical condition requiring consideration",
			Category:    domain.CategoryVulnerability,
		})
	}
	if tenant.HasInfant {
		s.apply("Infant", domain.PriorityFactor{
			Name:        "Infant present",
			HazardRatio: 1.6,
			Reason:      "Infant in household requires priority",
			Category:    domain.CategoryVulnerability,
		})
	}
	if tenant.IsElderly || tenant.Age >= elderlyAgeFloor {
		s.apply("Elderly", domain.PriorityFactor{
			Name:        "Elderly tenant",
			HazardRatio: 1.5,
			Reason:      "Elderly occupant (75+) requires consideration",
			Category:    domain.CategoryVulnerability,
		})
	}
	if tenant.IsPregnant {
		s.apply("Pregnant", domain.PriorityFactor{
			Name:        "Pregnant occupant",
			HazardRatio: 1.4,
			Reason:      "Pregnant occupant requires consideration",
			Category:    domain.CategoryVulnerability,
		})
	}
}

// applyEnvironmental applies at most one factor, ordered by condition
// severity: extreme cold, cold, extreme heat, freeze risk.
func (e *Engine) applyEnvironmental(s *scoring, weather domain.WeatherContext, trade, description string) {
	temp := defaultTemperature
	if weather.Temperature != nil {
		temp = *weather.Temperature
	}

	heatingIssue := trade == "HVAC" || e.catalog.MatchesText(ConceptNoHeat, description)
	coolingIssue := trade == "HVAC" || e.catalog.MatchesText(ConceptNoAC, description)
	waterIssue := trade == "PLUMBING"

	s.applyFirst([]exclusiveRule{
		{
			when:  temp < 40 && heatingIssue,
			label: "Extreme cold",
			factor: domain.PriorityFactor{
				Name:        "No heat + extreme cold",
				HazardRatio: 2.2,
				Reason:      fmt.Sprintf("Heating issue with outdoor temp %.0f F (extreme cold)", temp),
				Category:    domain.CategoryEnvironmental,
			},
		},
		{
			when:  temp < 50 && heatingIssue,
			label: "Cold weather",
			factor: domain.PriorityFactor{
				Name:        "No heat + cold",
				HazardRatio: 1.6,
				Reason:      fmt.Sprintf("Heating issue with outdoor temp %.0f F (cold)", temp),
				Category:    domain.CategoryEnvironmental,
			},
		},
		{
			when:  temp > 95 && coolingIssue,
			label: "Extreme heat",
			factor: domain.PriorityFactor{
				Name:        "No AC + extreme heat",
				HazardRatio: 1.8,
				Reason:      fmt.Sprintf("Cooling issue with outdoor temp %.0f F (extreme heat)", temp),
				Category:    domain.CategoryEnvironmental,
			},
		},
		{
			when:  temp < 32 && waterIssue,
			label: "Freeze risk",
			factor: domain.PriorityFactor{
				Name:        "Freeze risk",
				HazardRatio: 1.7,
				Reason:      fmt.Sprintf("Water/pipe issue with temp %.0f F (freeze risk)", temp),
				Category:    domain.CategoryEnvironmental,
			},
		},
	})
}

// applyTiming applies exactly one timing factor when any flag is set; the
// first true flag in precedence order wins.
func (e *Engine) applyTiming(s *scoring, timing domain.TimingContext) {
	s.applyFirst([]exclusiveRule{
		{
			when:  timing.IsLateNight,
			label: "Late night",
			factor: domain.PriorityFactor{
				Name:        "Late night",
				HazardRatio: 1.35,
				Reason:      "Request submitted during late night hours (10pm-6am)",
				Category:    domain.CategoryTiming,
			},
		},
		{
			when:  timing.IsHoliday,
			label: "Holiday",
			factor: domain.PriorityFactor{
				Name:        "Holiday",
				HazardRatio: 1.30,
				Reason:      "Request submitted on holiday",
				Category:    domain.CategoryTiming,
			},
		},
		{
			when:  timing.IsAfterHours,
			label: "After hours",
			factor: domain.PriorityFactor{
				Name:        "After hours",
				HazardRatio: 1.25,
				Reason:      "Request submitted outside business hours",
				Category:    domain.CategoryTiming,
			},
		},
		{
			when:  timing.IsWeekend,
			label: "Weekend",
			factor: domain.PriorityFactor{
				Name:        "Weekend",
				HazardRatio: 1.15,
				Reason:      "Request submitted on weekend",
				Category:    domain.CategoryTiming,
			},
		},
	})
}

// applyRecurrence applies at most one recurrence factor in precedence order.
func (e *Engine) applyRecurrence(s *scoring, history domain.HistoryContext, description string) {
	s.applyFirst([]exclusiveRule{
		{
			when:  history.RecentIssuesCount >= 3 || e.catalog.MatchesText(ConceptThirdTime, description),
			label: "Third+ time",
			factor: domain.PriorityFactor{
				Name:        "Third+ occurrence",
				HazardRatio: 2.0,
				Reason:      fmt.Sprintf("Issue reported %d+ times - recurring problem", history.RecentIssuesCount),
				Category:    domain.CategoryRecurrence,
			},
		},
		{
			when:  history.PreviousRepairFailed || e.catalog.MatchesText(ConceptRepairFailed, description),
			label: "Repair failed",
			factor: domain.PriorityFactor{
				Name:        "Previous repair failed",
				HazardRatio: 1.7,
				Reason:      "Prior repair attempt did not resolve issue",
				Category:    domain.CategoryRecurrence,
			},
		},
		{
			when:  history.RecentIssuesCount >= 1,
			label: "Recent issue",
			factor: domain.PriorityFactor{
				Name:        "Recent similar issue",
				HazardRatio: 1.5,
				Reason:      "Similar issue reported recently",
				Category:    domain.CategoryRecurrence,
			},
		},
	})
}

func (e *Engine) applyPropertyRisk(s *scoring, property domain.PropertyContext, trade, description string) {
	if e.catalog.MatchesText(ConceptStructural, description) {
		s.apply("Structural", domain.PriorityFactor{
			Name:        "Structural concern",
			HazardRatio: 1.6,
			Reason:      "Potential structural integrity issue",
			Category:    domain.CategoryPropertyRisk,
		})
	}
	if property.Floor > 1 && trade == "PLUMBING" {
		s.apply("Upper floor", domain.PriorityFactor{
			Name:        "Upper floor water leak",
			HazardRatio: 1.5,
			Reason:      fmt.Sprintf("Water issue on floor %d - affects units below", property.Floor),
			Category:    domain.CategoryPropertyRisk,
		})
	}
	if property.TotalUnits > 1 {
		s.apply("Multi-unit", domain.PriorityFactor{
			Name:        "Multi-unit building",
			HazardRatio: 1.4,
			Reason:      fmt.Sprintf("Issue in %d-unit building - cascade risk", property.TotalUnits),
			Category:    domain.CategoryPropertyRisk,
		})
	}
}

func (e *Engine) applyEssentialService(s *scoring, description string) {
	if e.catalog.MatchesText(ConceptLockedOut, description) {
		s.apply("Locked out", domain.PriorityFactor{
			Name:        "Cannot access unit",
			HazardRatio: 2.0,
			Reason:      "Tenant unable to safely access unit",
			Category:    domain.CategoryEssentialService,
		})
	}
	if e.catalog.MatchesText(ConceptNoPower, description) {
		s.apply("No power", domain.PriorityFactor{
			Name:        "No electricity",
			HazardRatio: 1.9,
			Reason:      "Complete power loss to unit",
			Category:    domain.CategoryEssentialService,
		})
	}
	if e.catalog.MatchesText(ConceptNoWater, description) {
		s.apply("No water", domain.PriorityFactor{
			Name:        "No running water",
			HazardRatio: 1.8,
			Reason:      "Complete water loss",
			Category:    domain.CategoryEssentialService,
		})
	}
	if e.catalog.MatchesText(ConceptNoToilet, description) {
		s.apply("No toilet", domain.PriorityFactor{
			Name:        "No toilet function",
			HazardRatio: 1.7,
			Reason:      "No working toilet in unit",
			Category:    domain.CategoryEssentialService,
		})
	}
}

// applyInteractions evaluates compound effects after all main factors are
// resolved, keyed off the categories and names that ended up applied.
func (e *Engine) applyInteractions(s *scoring, severity domain.Severity, trade string, bundle domain.ContextBundle) {
	categories := make(map[domain.FactorCategory]int, len(s.factors))
	names := make([]string, 0, len(s.factors))
	for _, factor := range s.factors {
		categories[factor.Category]++
		names = append(names, strings.ToLower(factor.Name))
	}
	anyName := func(substr string) bool {
		for _, name := range names {
			if strings.Contains(name, substr) {
				return true
			}
		}
		return false
	}
	highSeverity := severity == domain.SeverityHigh || severity == domain.SeverityEmergency

	if categories[domain.CategoryVulnerability] > 0 && categories[domain.CategoryEnvironmental] > 0 {
		s.applyInteraction("Vuln x Env", domain.InteractionEffect{
			Name:             "Vulnerability x Environmental",
			InteractionRatio: 1.5,
			Trigger:          "Vulnerable tenant + extreme weather condition",
		})
	}
	if anyName("water") && (trade == "ELECTRICAL" || anyName("electrical")) {
		s.applyInteraction("Water x Elec", domain.InteractionEffect{
			Name:             "Water x Electrical",
			InteractionRatio: 1.6,
			Trigger:          "Water issue near electrical systems",
		})
	}
	if categories[domain.CategoryRecurrence] > 0 && highSeverity {
		s.applyInteraction("Recur x Sev", domain.InteractionEffect{
			Name:             "Recurrence x High Severity",
			InteractionRatio: 1.4,
			Trigger:          fmt.Sprintf("Recurring issue with %s severity", severity),
		})
	}
	if bundle.Property.TotalUnits > 1 && (anyName("spreading") || anyName("worse")) {
		s.applyInteraction("Multi x Spread", domain.InteractionEffect{
			Name:             "Multi-unit x Spreading",
			InteractionRatio: 1.5,
			Trigger:          "Spreading issue in multi-unit building",
		})
	}
	if bundle.Timing.IsLateNight && severity == domain.SeverityEmergency {
		s.applyInteraction("Night x Emer", domain.InteractionEffect{
			Name:             "Late Night x Emergency",
			InteractionRatio: 1.25,
			Trigger:          "Emergency during late night hours",
		})
	}
	if categories[domain.CategoryVulnerability] >= 2 {
		s.applyInteraction("Multi-vuln", domain.InteractionEffect{
			Name:             "Multiple Vulnerabilities",
			InteractionRatio: 1.3,
			Trigger:          fmt.Sprintf("%d vulnerability factors present", categories[domain.CategoryVulnerability]),
		})
	}
}

// confidenceFor estimates how clear the scoring signals were, clamped to
// [0.5, 1.0].
func confidenceFor(factorCount int, severity domain.Severity, description string) float64 {
	confidence := 0.85
	switch {
	case factorCount >= 3:
		confidence += 0.05
	case factorCount == 0:
		confidence -= 0.10
	}
	if severity == domain.SeverityEmergency || severity == domain.SeverityLow {
		confidence += 0.05
	}
	if len(description) > 100 {
		confidence += 0.05
	} else if len(description) < 20 {
		confidence -= 0.10
	}
	return round(math.Max(0.5, math.Min(1.0, confidence)), 2)
}

func formatRatio(ratio float64) string {
	return strconv.FormatFloat(ratio, 'f', -1, 64)
}

func round(value float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(value*scale) / scale
}
