package regelum

import "github.com/OdinManiac/regelum/expr"

// PortID is an arena index into the frozen IR's port table.
type PortID int

// Port is the frozen record for one port (§3 Data Model).
type Port struct {
	ID        PortID
	Name      string
	Owner     NodeID
	Direction PortDirection
	Type      expr.ElementType
	Default   *expr.Value
	// Rate is the declared tokens-per-firing for the SDF pass, or -1 if
	// unset (event-driven).
	Rate int
}

// HasDefault reports whether the port declares a default value, the
// second of the two ways an Input satisfies STRUCT001 (connected or
// defaulted).
func (p *Port) HasDefault() bool { return p.Default != nil }
