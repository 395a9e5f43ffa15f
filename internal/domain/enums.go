package domain

// OrgRole classifies an organization found in a label document by the
// business activity declared next to its identifier.
type OrgRole string

const (
	RoleManufacturer    OrgRole = "manufacturer"
	RoleRepacker        OrgRole = "repacker"
	RoleLabeler         OrgRole = "labeler"
	RoleAPIManufacturer OrgRole = "api-manufacturer"
	RoleUnknown         OrgRole = "unknown"
)

// Eligible reports whether organizations with this role may populate
// the cross-reference mapping. Repackers, labelers and API manufacturers
// are excluded on purpose: the mapping answers "who makes the finished
// product", not "who touched it".
func (r OrgRole) Eligible() bool {
	return r == RoleManufacturer
}

// RunStatus represents the lifecycle of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)
