package domain

// Severity enumerates classifier severity labels.
type Severity string

const (
	SeverityLow       Severity = "LOW"
	SeverityMedium    Severity = "MEDIUM"
	SeverityHigh      Severity = "HIGH"
	SeverityEmergency Severity = "EMERGENCY"
)

// ClassificationResult is the upstream classifier output consumed by the
// priority engine. Treated as read-only input.
type ClassificationResult struct {
	Severity    Severity `json:"severity"`
	Trade       string   `json:"trade"`
	Description string   `json:"description"`
	KeyFactors  []string `json:"key_factors"`
}

// WeatherContext carries outdoor conditions at submission time.
type WeatherContext struct {
	// Temperature in °F. Nil means unknown; the engine assumes 70.
	Temperature *float64 `json:"temperature,omitempty"`
	Condition   string   `json:"condition,omitempty"`
}

// TenantContext flags occupant vulnerabilities.
type TenantContext struct {
	IsElderly           bool `json:"is_elderly"`
	HasInfant           bool `json:"has_infant"`
	HasMedicalCondition bool `json:"has_medical_condition"`
	IsPregnant          bool `json:"is_pregnant"`
	Age                 int  `json:"age,omitempty"`
}

// PropertyContext describes the affected unit and building.
type PropertyContext struct {
	Floor      int `json:"floor,omitempty"`
	TotalUnits int `json:"total_units,omitempty"`
}

// TimingContext flags when the request arrived. Flags are informative, not
// mutually exclusive; the engine applies exactly one.
type TimingContext struct {
	IsLateNight  bool `json:"is_late_night"`
	IsHoliday    bool `json:"is_holiday"`
	IsAfterHours bool `json:"is_after_hours"`
	IsWeekend    bool `json:"is_weekend"`
}

// HistoryContext summarizes prior issues at the unit.
type HistoryContext struct {
	RecentIssuesCount    int  `json:"recent_issues_count"`
	PreviousRepairFailed bool `json:"previous_repair_failed"`
}

// ContextBundle is the structured context supplied whole per request.
// All fields are optional; zero values are the documented safe defaults.
type ContextBundle struct {
	Weather  WeatherContext  `json:"weather"`
	Tenant   TenantContext   `json:"tenant"`
	Property PropertyContext `json:"property"`
	Timing   TimingContext   `json:"timing"`
	History  HistoryContext  `json:"history"`
}
