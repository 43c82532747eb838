// Package models contains domain types for joinplanner.
package models

// SemanticRole classifies a table's business purpose. Roles are attached at
// graph load time and never inferred at query time.
type SemanticRole string

const (
	RoleInstance      SemanticRole = "instance"      // Execution instance (e.g., a work order run)
	RoleTemplate      SemanticRole = "template"      // Structural template the instances are stamped from
	RoleBridge        SemanticRole = "bridge"        // Junction table connecting two others (N:M)
	RoleContentChild  SemanticRole = "content_child" // Content row carrying both template and instance keys
	RoleSatellite     SemanticRole = "satellite"     // Auxiliary data hanging off a main table
	RoleAssignment    SemanticRole = "assignment"    // Membership/assignment data
	RoleConfiguration SemanticRole = "configuration" // Permission/configuration data
)

// IsValid returns true if the role is one of the known semantic roles.
func (r SemanticRole) IsValid() bool {
	switch r {
	case RoleInstance, RoleTemplate, RoleBridge, RoleContentChild,
		RoleSatellite, RoleAssignment, RoleConfiguration:
		return true
	default:
		return false
	}
}

// IsConnective returns true if tables with this role may serve as a
// connective hop in a join plan. Satellite, assignment, and configuration
// tables change result cardinality without relevance to the asked question,
// so they are never eligible.
func (r SemanticRole) IsConnective() bool {
	switch r {
	case RoleSatellite, RoleAssignment, RoleConfiguration:
		return false
	default:
		return true
	}
}

// String returns the string representation of a SemanticRole.
func (r SemanticRole) String() string {
	return string(r)
}

// Table represents a relational table in the schema graph.
type Table struct {
	Name        string       `json:"name"`
	Columns     []string     `json:"columns"`
	Role        SemanticRole `json:"role"`
	Description string       `json:"description,omitempty"`
}
