package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmatrack/backend/internal/models"
)

// Approved and rejected must never both hold, no matter the order of actions.
func TestCreditMutualExclusion(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)

	steps := []func() (*models.RMA, error){
		func() (*models.RMA, error) { return f.credits.Approve(rma.ID, 100, "", f.actor.ID) },
		func() (*models.RMA, error) { return f.credits.Reject(rma.ID, "duplicate claim", f.actor.ID) },
		func() (*models.RMA, error) { return f.credits.Approve(rma.ID, 50, "", f.actor.ID) },
		func() (*models.RMA, error) { return f.credits.Reopen(rma.ID, f.actor.ID) },
		func() (*models.RMA, error) { return f.credits.Reject(rma.ID, "still duplicate", f.actor.ID) },
		func() (*models.RMA, error) { return f.credits.Reopen(rma.ID, f.actor.ID) },
	}
	for i, step := range steps {
		updated, err := step()
		require.NoError(t, err, "step %d", i)
		assert.False(t, updated.CreditApproved && updated.CreditRejected, "step %d left both flags set", i)
	}
}

func TestCreditApproveThenReject(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)

	approved, err := f.credits.Approve(rma.ID, 150.00, "CM-100", f.actor.ID)
	require.NoError(t, err)
	assert.True(t, approved.CreditApproved)
	require.NotNil(t, approved.CreditAmount)
	assert.Equal(t, 150.00, *approved.CreditAmount)
	require.NotNil(t, approved.CreditMemoNumber)
	assert.Equal(t, "CM-100", *approved.CreditMemoNumber)

	rejected, err := f.credits.Reject(rma.ID, "pricing error", f.actor.ID)
	require.NoError(t, err)
	assert.False(t, rejected.CreditApproved)
	assert.True(t, rejected.CreditRejected)
	assert.Nil(t, rejected.CreditAmount, "rejection must clear the amount")
	assert.Nil(t, rejected.CreditMemoNumber, "rejection must clear the memo")
	assert.Nil(t, rejected.CreditApprovedOn)
	assert.Nil(t, rejected.CreditApprovedBy)
	require.NotNil(t, rejected.CreditRejectionReason)
	assert.Equal(t, "pricing error", *rejected.CreditRejectionReason)
}

func TestCreditReapproveWithoutMemoClearsIt(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)

	approved, err := f.credits.Approve(rma.ID, 100, "CM-1", f.actor.ID)
	require.NoError(t, err)
	require.NotNil(t, approved.CreditMemoNumber)
	assert.Equal(t, "CM-1", *approved.CreditMemoNumber)

	// Re-approving without a memo must not carry the old one forward.
	reapproved, err := f.credits.Approve(rma.ID, 50, "", f.actor.ID)
	require.NoError(t, err)
	assert.Nil(t, reapproved.CreditMemoNumber)
	require.NotNil(t, reapproved.CreditAmount)
	assert.Equal(t, 50.0, *reapproved.CreditAmount)

	// And supplying one records it again.
	third, err := f.credits.Approve(rma.ID, 60, "CM-2", f.actor.ID)
	require.NoError(t, err)
	require.NotNil(t, third.CreditMemoNumber)
	assert.Equal(t, "CM-2", *third.CreditMemoNumber)
}

func TestCreditApproveValidation(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)

	var validation *ValidationError
	_, err := f.credits.Approve(rma.ID, 0, "", f.actor.ID)
	require.ErrorAs(t, err, &validation)
	_, err = f.credits.Approve(rma.ID, -5, "", f.actor.ID)
	require.ErrorAs(t, err, &validation)
	_, err = f.credits.Reject(rma.ID, "  ", f.actor.ID)
	require.ErrorAs(t, err, &validation)
}

func TestCreditReopenClearsRejectionOnly(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)

	_, err := f.credits.Reject(rma.ID, "no receipt", f.actor.ID)
	require.NoError(t, err)

	reopened, err := f.credits.Reopen(rma.ID, f.actor.ID)
	require.NoError(t, err)
	assert.False(t, reopened.CreditRejected)
	assert.Nil(t, reopened.CreditRejectedOn)
	assert.Nil(t, reopened.CreditRejectionReason)
	assert.False(t, reopened.CreditApproved)

	// Reopen with nothing rejected is harmless.
	_, err = f.credits.Reopen(rma.ID, f.actor.ID)
	require.NoError(t, err)
}

func TestCreditIssueRequiresApproval(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)

	_, err := f.credits.Issue(rma.ID, "CM-200", f.actor.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	// The failed attempt must not land in the ledger.
	ledger, err := f.credits.HistoryFor(rma.ID)
	require.NoError(t, err)
	assert.Empty(t, ledger)

	_, err = f.credits.Approve(rma.ID, 75, "", f.actor.ID)
	require.NoError(t, err)

	issued, err := f.credits.Issue(rma.ID, "CM-200", f.actor.ID)
	require.NoError(t, err)
	require.NotNil(t, issued.CreditMemoNumber)
	assert.Equal(t, "CM-200", *issued.CreditMemoNumber)
	assert.NotNil(t, issued.CreditIssuedOn)

	// Issuing again overwrites the memo number.
	reissued, err := f.credits.Issue(rma.ID, "CM-201", f.actor.ID)
	require.NoError(t, err)
	assert.Equal(t, "CM-201", *reissued.CreditMemoNumber)
}

func TestCreditIssueValidation(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)

	_, err := f.credits.Approve(rma.ID, 75, "", f.actor.ID)
	require.NoError(t, err)

	var validation *ValidationError
	_, err = f.credits.Issue(rma.ID, "", f.actor.ID)
	require.ErrorAs(t, err, &validation)
}

func TestCreditToggleApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)

	_, err := f.credits.Approve(rma.ID, 200, "", f.actor.ID)
	require.NoError(t, err)

	toggled, err := f.credits.ToggleApproval(ctx, "s", rma.ID, f.actor.ID)
	require.NoError(t, err)
	assert.False(t, toggled.CreditApproved)
	assert.Nil(t, toggled.CreditApprovedOn)
	assert.Nil(t, toggled.CreditApprovedBy)
	// Toggle leaves the amount alone.
	require.NotNil(t, toggled.CreditAmount)
	assert.Equal(t, 200.0, *toggled.CreditAmount)

	back, err := f.credits.ToggleApproval(ctx, "s", rma.ID, f.actor.ID)
	require.NoError(t, err)
	assert.True(t, back.CreditApproved)
	assert.NotNil(t, back.CreditApprovedOn)
}

func TestCreditLedger(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)

	_, err := f.credits.Approve(rma.ID, 100, "", f.actor.ID)
	require.NoError(t, err)
	_, err = f.credits.Reject(rma.ID, "changed our mind", f.actor.ID)
	require.NoError(t, err)
	_, err = f.credits.Reopen(rma.ID, f.actor.ID)
	require.NoError(t, err)

	ledger, err := f.credits.HistoryFor(rma.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.Equal(t, models.CreditActionReopened, ledger[0].Action)
	assert.Equal(t, models.CreditActionRejected, ledger[1].Action)
	assert.Equal(t, models.CreditActionApproved, ledger[2].Action)
	require.NotNil(t, ledger[2].Amount)
	assert.Equal(t, 100.0, *ledger[2].Amount)
}
