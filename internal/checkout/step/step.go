package step

// Step is one named unit of a fixed, ordered checkout sequence. Commit
// validates and applies the caller-supplied data: (false, nil) means the data
// was rejected and the session must not change state; the caller may retry
// with different data.
type Step interface {
	Name() string
	Commit(data interface{}) (bool, error)
}

// StepConfig declares one step in a checkout configuration. StepType selects
// the implementation via the step factory; per-type tuning rides in the
// custom property maps.
type StepConfig struct {
	StepType               string             `json:"step_type"`
	Name                   string             `json:"name"`
	CustomStringProperties map[string]string  `json:"custom_string_properties"`
	CustomIntProperties    map[string]int     `json:"custom_int_properties"`
	CustomFloatProperties  map[string]float64 `json:"custom_float_properties"`
	CustomBoolProperties   map[string]bool    `json:"custom_bool_properties"`
}
