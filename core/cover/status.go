package cover

import "errors"

var (
	// errors
	ErrTransitionNotAllowed = errors.New("workflow status transition not allowed")
	ErrAlreadyApproved      = errors.New("cover pages already approved")
	ErrReadOnly             = errors.New("selections are locked at the current workflow status")
)

// Machine is the per-school workflow status machine.
//
// Transitions never mutate the machine directly: they return the next
// status, the caller persists it, and only a successful persist is applied
// back via Apply. A failed write therefore leaves the observable status at
// its pre-call value.
//
// The machine also remembers whether a status document exists remotely so
// that the first write creates (POST) and every later write updates (PATCH),
// never a second create.
type Machine struct {
	status Status
	hasDoc bool
}

func NewMachine(status Status, hasDoc bool) *Machine {
	if !status.Valid() {
		status = StatusExplore
	}
	return &Machine{status: status, hasDoc: hasDoc}
}

func (m *Machine) Status() Status { return m.status }

// HasDocument reports whether a remote status document is known to exist.
func (m *Machine) HasDocument() bool { return m.hasDoc }

// SeedDocument records that a status document exists remotely. Called after
// the first successful status read or write.
func (m *Machine) SeedDocument() { m.hasDoc = true }

// Apply commits a previously planned transition. Only call once the
// corresponding write has been confirmed durable.
func (m *Machine) Apply(next Status) {
	if next.Valid() {
		m.status = next
	}
}

// EditableBy reports whether the given role may mutate selections at the
// current status. Checked locally before any network call is attempted.
func (m *Machine) EditableBy(role Role) bool {
	if role == RoleAdmin {
		return true
	}
	return m.status.ClientEditable()
}

// Client exposes the transitions legal for a school user.
func (m *Machine) Client() ClientOps { return ClientOps{m: m} }

// Admin exposes the transitions legal for a console admin.
func (m *Machine) Admin() AdminOps { return AdminOps{m: m} }

type ClientOps struct {
	m *Machine
}

// Finish plans the explore -> preparing transition taken when the school
// finalizes its selections. Legal only from explore.
func (ops ClientOps) Finish() (Status, error) {
	if ops.m.status != StatusExplore {
		return ops.m.status, ErrTransitionNotAllowed
	}
	return StatusPreparing, nil
}

// Approve plans the view -> frozen transition. Approving an already frozen
// workflow is a no-op signaled with ErrAlreadyApproved.
func (ops ClientOps) Approve() (Status, error) {
	switch ops.m.status {
	case StatusView:
		return StatusFrozen, nil
	case StatusFrozen:
		return StatusFrozen, ErrAlreadyApproved
	}
	return ops.m.status, ErrTransitionNotAllowed
}

type AdminOps struct {
	m *Machine
}

// Override plans an unconditional admin status set. Admins may move the
// workflow between explore, preparing and view at will; a frozen workflow
// may only be reverted to explore, and frozen itself is only ever reached
// through a client approval.
func (ops AdminOps) Override(target Status) (Status, error) {
	if !target.Valid() || target == StatusFrozen {
		return ops.m.status, ErrTransitionNotAllowed
	}
	if ops.m.status == StatusFrozen && target != StatusExplore {
		return ops.m.status, ErrTransitionNotAllowed
	}
	return target, nil
}
