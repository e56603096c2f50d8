package models

// KPIStatus is the traffic-light rating of a KPI value.
type KPIStatus string

const (
	KPIGood    KPIStatus = "good"
	KPIWarning KPIStatus = "warning"
	KPIBad     KPIStatus = "bad"
)

// KPI is a named summary metric shown on the dashboard.
type KPI struct {
	// Key is the stable identifier used for preference selection and
	// cache lookups.
	Key string `json:"key"`

	// Name is the user-facing display name.
	Name string `json:"name"`

	// Value is the formatted current value, e.g. "93%".
	Value string `json:"value"`

	// Description explains what the metric measures.
	Description string `json:"description"`

	Status KPIStatus `json:"status"`
}

// ChartPoint is one labelled value of a chart series.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
