package enums

import (
	"fmt"
	"strings"
)

// ReportMode selects how verbose an AI drafted report should be.
type ReportMode string

const (
	ReportModeResumo    ReportMode = "resumo"
	ReportModeDetalhado ReportMode = "detalhado"
)

// String implements fmt.Stringer.
func (m ReportMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known ReportMode.
func (m ReportMode) IsValid() bool {
	return m == ReportModeResumo || m == ReportModeDetalhado
}

// ParseReportMode converts raw input into a ReportMode. Empty input yields
// the summary mode.
func ParseReportMode(value string) (ReportMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(ReportModeResumo):
		return ReportModeResumo, nil
	case string(ReportModeDetalhado):
		return ReportModeDetalhado, nil
	default:
		return "", fmt.Errorf("invalid report mode %q", value)
	}
}
