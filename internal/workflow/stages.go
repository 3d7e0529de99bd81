// Package workflow defines the ordered project lifecycle and the navigation
// the dashboard shell renders for it.
package workflow

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Stage is one of the ordered lifecycle phases a project moves through.
type Stage string

const (
	StageDiscovery    Stage = "DISCOVERY"
	StageStrategy     Stage = "STRATEGY"
	StageSubstructure Stage = "SUBSTRUCTURE"
	StageDesign       Stage = "DESIGN"
	StageConstruction Stage = "CONSTRUCTION"
	StageAudit        Stage = "AUDIT"
	StageHandover     Stage = "HANDOVER"
	StageMaintenance  Stage = "MAINTENANCE"
)

var ordered = []Stage{
	StageDiscovery,
	StageStrategy,
	StageSubstructure,
	StageDesign,
	StageConstruction,
	StageAudit,
	StageHandover,
	StageMaintenance,
}

// Stages returns the lifecycle in order. The slice is a copy.
func Stages() []Stage {
	out := make([]Stage, len(ordered))
	copy(out, ordered)
	return out
}

// First is the stage every new project starts in.
func First() Stage { return ordered[0] }

// Index returns the position of s in the lifecycle, or -1.
func (s Stage) Index() int {
	for i, st := range ordered {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool { return s.Index() >= 0 }

// IsLast reports whether s is the final stage.
func (s Stage) IsLast() bool { return s == ordered[len(ordered)-1] }

// Next returns the stage after s. ok is false for the last or an unknown stage.
func (s Stage) Next() (next Stage, ok bool) {
	i := s.Index()
	if i < 0 || i == len(ordered)-1 {
		return "", false
	}
	return ordered[i+1], true
}

// Before reports whether s comes earlier in the lifecycle than other.
func (s Stage) Before(other Stage) bool {
	return s.Index() < other.Index()
}

// ParseStage accepts a stage name in any case.
func ParseStage(v string) (Stage, error) {
	s := Stage(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown stage %q", v)
	}
	return s, nil
}

// Value stores the stage as its name.
func (s Stage) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown stage %q", string(s))
	}
	return string(s), nil
}

// Scan reads a stage name from the database.
func (s *Stage) Scan(src any) error {
	var v string
	switch t := src.(type) {
	case string:
		v = t
	case []byte:
		v = string(t)
	default:
		return fmt.Errorf("cannot scan %T into Stage", src)
	}
	st, err := ParseStage(v)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
