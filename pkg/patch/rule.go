package patch

// Rule describes one localized edit. All fields are raw bytes; callers
// convert text before building a Rule.
type Rule struct {
	// Name labels the rule in logs and reports. Optional.
	Name string
	// Pattern matches the original, unpatched form.
	Pattern []byte
	// Replacement is substituted for every match of Pattern and Probe.
	Replacement []byte
	// Probe matches the shape Replacement produces, so an earlier run is
	// recognized even when the replacement embedded fresh values.
	Probe []byte
}

// Label returns the rule name, falling back to its pattern.
func (r Rule) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return string(r.Pattern)
}

// Status classifies the result of applying one rule.
type Status string

const (
	// StatusSkipped means neither the pattern nor the probe matched.
	StatusSkipped Status = "skipped"
	// StatusReapplied means only already-patched occurrences were found
	// and they were rewritten anyway.
	StatusReapplied Status = "already-patched-reapplied"
	// StatusApplied means original occurrences were found and rewritten.
	StatusApplied Status = "applied"
	// StatusPartial means fewer or more occurrences were rewritten than
	// were counted.
	StatusPartial Status = "partial"
)

// Outcome reports what applying a rule did.
type Outcome struct {
	Rule          string `json:"rule"`
	Status        Status `json:"status"`
	PreCount      int    `json:"pre_count"`
	ProbeCount    int    `json:"probe_count"`
	ReplacedCount int    `json:"replaced_count"`
}

// Expected is the number of occurrences the rule should have rewritten.
func (o Outcome) Expected() int {
	return o.PreCount + o.ProbeCount
}

// Failed is the number of expected occurrences that were not rewritten.
func (o Outcome) Failed() int {
	if f := o.Expected() - o.ReplacedCount; f > 0 {
		return f
	}
	return 0
}
