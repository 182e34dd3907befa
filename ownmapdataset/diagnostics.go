package ownmapdataset

import (
	"fmt"

	"github.com/jamesrr39/ownmap-editor/ownmap"
)

type Severity int

const (
	SeverityWarning Severity = iota + 1
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "Warning"
	case SeverityError:
		return "Error"
	default:
		return "Unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic is a problem found with a primitive while rendering it
type Diagnostic struct {
	Primitive ownmap.PrimitiveID `json:"primitive"`
	Severity  Severity           `json:"severity"`
	Message   string             `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Diagnostics collects the diagnostics of a render pass, in the order they were reported
type Diagnostics struct {
	entries []Diagnostic
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

func (d *Diagnostics) Report(id ownmap.PrimitiveID, severity Severity, message string) {
	d.entries = append(d.entries, Diagnostic{id, severity, message})
}

func (d *Diagnostics) Errorf(p ownmap.Primitive, message string, args ...interface{}) {
	d.Report(p.PrimitiveID(), SeverityError, fmt.Sprintf(message, args...))
}

func (d *Diagnostics) Warnf(p ownmap.Primitive, message string, args ...interface{}) {
	d.Report(p.PrimitiveID(), SeverityWarning, fmt.Sprintf(message, args...))
}

func (d *Diagnostics) All() []Diagnostic {
	entries := make([]Diagnostic, len(d.entries))
	copy(entries, d.entries)
	return entries
}

func (d *Diagnostics) ForPrimitive(id ownmap.PrimitiveID) []Diagnostic {
	var entries []Diagnostic
	for _, entry := range d.entries {
		if entry.Primitive == id {
			entries = append(entries, entry)
		}
	}
	return entries
}

func (d *Diagnostics) Len() int {
	return len(d.entries)
}

func (d *Diagnostics) Clear() {
	d.entries = nil
}
