package container

import (
	"fmt"
	"strings"
)

// Stage selects how eagerly the container builds singletons.
type Stage int

const (
	// Production builds every bound singleton at creation time.
	Production Stage = iota
	// Development builds singletons lazily on first request.
	Development
	// Tool builds nothing; the container is only used for reporting.
	Tool
)

func (s Stage) String() string {
	switch s {
	case Production:
		return "production"
	case Development:
		return "development"
	case Tool:
		return "tool"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ParseStage parses a stage name, case insensitive.
func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod", "":
		return Production, nil
	case "development", "dev":
		return Development, nil
	case "tool":
		return Tool, nil
	default:
		return Production, fmt.Errorf("unknown stage %q", s)
	}
}
