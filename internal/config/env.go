package config

import (
	"encoding/json"
	"strings"
)

// Environment variables set by the orchestrator.
const (
	EnvStartDate = "BRUIN_START_DATE"
	EnvEndDate   = "BRUIN_END_DATE"
	EnvVars      = "BRUIN_VARS"
)

// runVars is the subset of BRUIN_VARS the job understands.
type runVars struct {
	TaxiTypes []string `json:"taxi_types"`
}

// ApplyEnv overlays orchestrator variables onto p. Set variables win over
// the file. A malformed BRUIN_VARS document is ignored.
func ApplyEnv(p Pipeline, getenv func(string) string) Pipeline {
	if getenv == nil {
		return p
	}
	if v := strings.TrimSpace(getenv(EnvStartDate)); v != "" {
		p.Window.StartDate = v
	}
	if v := strings.TrimSpace(getenv(EnvEndDate)); v != "" {
		p.Window.EndDate = v
	}
	if raw := strings.TrimSpace(getenv(EnvVars)); raw != "" {
		var rv runVars
		if err := json.Unmarshal([]byte(raw), &rv); err == nil && rv.TaxiTypes != nil {
			p.Variants = rv.TaxiTypes
		}
	}
	return p
}
