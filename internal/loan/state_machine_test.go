package loan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusApplied, StatusApproved))
	assert.True(t, CanTransition(StatusApplied, StatusRejected))
	assert.True(t, CanTransition(StatusApproved, StatusDisbursed))

	assert.False(t, CanTransition(StatusApplied, StatusDisbursed))
	assert.False(t, CanTransition(StatusApproved, StatusApproved))
	assert.False(t, CanTransition(StatusApproved, StatusRejected))
	assert.False(t, CanTransition(StatusRejected, StatusApproved))
	assert.False(t, CanTransition(StatusDisbursed, StatusApproved))
	assert.False(t, CanTransition(StatusDisbursed, StatusDisbursed))
}

func TestTerminalStatesHaveNoSuccessors(t *testing.T) {
	assert.Empty(t, AllowedTransitions[StatusRejected])
	assert.Empty(t, AllowedTransitions[StatusDisbursed])
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := &InvalidTransitionError{LoanID: "l1", From: StatusApproved, To: StatusApproved}
	assert.Contains(t, err.Error(), "l1")
	assert.Contains(t, err.Error(), "approved")
}

func TestValidType(t *testing.T) {
	for _, typ := range []Type{TypePersonal, TypeHome, TypeCar, TypeEducation, TypeBusiness} {
		assert.True(t, ValidType(typ))
	}
	assert.False(t, ValidType("payday"))
	assert.False(t, ValidType(""))
}
