package cover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMachine_clientTransitions(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		plan     func(m *Machine) (Status, error)
		wantNext Status
		wantErr  error
	}{
		{name: "finish from explore", from: StatusExplore, plan: func(m *Machine) (Status, error) { return m.Client().Finish() }, wantNext: StatusPreparing},
		{name: "finish from preparing", from: StatusPreparing, plan: func(m *Machine) (Status, error) { return m.Client().Finish() }, wantNext: StatusPreparing, wantErr: ErrTransitionNotAllowed},
		{name: "finish from view", from: StatusView, plan: func(m *Machine) (Status, error) { return m.Client().Finish() }, wantNext: StatusView, wantErr: ErrTransitionNotAllowed},
		{name: "finish from frozen", from: StatusFrozen, plan: func(m *Machine) (Status, error) { return m.Client().Finish() }, wantNext: StatusFrozen, wantErr: ErrTransitionNotAllowed},
		{name: "approve from explore", from: StatusExplore, plan: func(m *Machine) (Status, error) { return m.Client().Approve() }, wantNext: StatusExplore, wantErr: ErrTransitionNotAllowed},
		{name: "approve from preparing", from: StatusPreparing, plan: func(m *Machine) (Status, error) { return m.Client().Approve() }, wantNext: StatusPreparing, wantErr: ErrTransitionNotAllowed},
		{name: "approve from view", from: StatusView, plan: func(m *Machine) (Status, error) { return m.Client().Approve() }, wantNext: StatusFrozen},
		{name: "approve from frozen is idempotent", from: StatusFrozen, plan: func(m *Machine) (Status, error) { return m.Client().Approve() }, wantNext: StatusFrozen, wantErr: ErrAlreadyApproved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(tt.from, true)
			next, err := tt.plan(m)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.wantNext, next)
			// planning never mutates: only Apply does
			assert.Equal(t, tt.from, m.Status())
		})
	}
}

func TestMachine_adminOverride(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		target  Status
		wantErr error
	}{
		{name: "unlock preparing", from: StatusPreparing, target: StatusExplore},
		{name: "publish for review", from: StatusPreparing, target: StatusView},
		{name: "relock explore", from: StatusExplore, target: StatusPreparing},
		{name: "view back to preparing", from: StatusView, target: StatusPreparing},
		{name: "frozen reverts to explore only", from: StatusFrozen, target: StatusExplore},
		{name: "frozen to preparing rejected", from: StatusFrozen, target: StatusPreparing, wantErr: ErrTransitionNotAllowed},
		{name: "frozen to view rejected", from: StatusFrozen, target: StatusView, wantErr: ErrTransitionNotAllowed},
		{name: "freezing is a client action", from: StatusView, target: StatusFrozen, wantErr: ErrTransitionNotAllowed},
		{name: "invalid target", from: StatusExplore, target: Status(9), wantErr: ErrTransitionNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(tt.from, true)
			next, err := m.Admin().Override(tt.target)
			assert.Equal(t, tt.wantErr, err)
			if tt.wantErr == nil {
				assert.Equal(t, tt.target, next)
			} else {
				assert.Equal(t, tt.from, next)
			}
			assert.Equal(t, tt.from, m.Status())
		})
	}
}

func TestMachine_planPersistApply(t *testing.T) {
	m := NewMachine(StatusExplore, false)

	next, err := m.Client().Finish()
	assert.NoError(t, err)
	assert.Equal(t, StatusExplore, m.Status()) // write not confirmed yet

	m.Apply(next)
	assert.Equal(t, StatusPreparing, m.Status())

	m.Apply(Status(0)) // invalid applications are dropped
	assert.Equal(t, StatusPreparing, m.Status())
}

func TestMachine_documentFlag(t *testing.T) {
	m := NewMachine(Status(0), false) // invalid initial status falls back to explore
	assert.Equal(t, StatusExplore, m.Status())
	assert.False(t, m.HasDocument())

	m.SeedDocument()
	assert.True(t, m.HasDocument())
}

func TestMachine_EditableBy(t *testing.T) {
	tests := []struct {
		status     Status
		wantClient bool
	}{
		{status: StatusExplore, wantClient: true},
		{status: StatusPreparing, wantClient: false},
		{status: StatusView, wantClient: false},
		{status: StatusFrozen, wantClient: false},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			m := NewMachine(tt.status, true)
			assert.Equal(t, tt.wantClient, m.EditableBy(RoleClient))
			assert.True(t, m.EditableBy(RoleAdmin)) // admins always edit
		})
	}
}
