package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingRequest(qty int) StockRequest {
	return StockRequest{
		ID:                 1,
		Status:             RequestPending,
		RequestedQuantity:  qty,
		RequestingBranchID: 2,
		TargetBranchID:     1,
		RequestedByUserID:  7,
	}
}

func TestAssessApprovalFull(t *testing.T) {
	a, err := AssessApproval(pendingRequest(100), 100, "")
	require.NoError(t, err)
	assert.Equal(t, 100, a.ApprovedQuantity)
	assert.False(t, a.IsPartialApproval)
	assert.Equal(t, 100, a.ApprovalPercentage)
}

func TestAssessApprovalPartial(t *testing.T) {
	a, err := AssessApproval(pendingRequest(100), 60, "only 60 on hand")
	require.NoError(t, err)
	assert.Equal(t, 60, a.ApprovedQuantity)
	assert.True(t, a.IsPartialApproval)
	assert.Equal(t, 60, a.ApprovalPercentage)
}

func TestAssessApprovalPartialRequiresNotes(t *testing.T) {
	_, err := AssessApproval(pendingRequest(100), 60, "  ")
	assert.ErrorIs(t, err, ErrPartialNeedsNotes)
}

func TestAssessApprovalQuantityBounds(t *testing.T) {
	_, err := AssessApproval(pendingRequest(100), 0, "x")
	assert.ErrorIs(t, err, ErrApprovalOutOfRange)

	_, err = AssessApproval(pendingRequest(100), -5, "x")
	assert.ErrorIs(t, err, ErrApprovalOutOfRange)

	_, err = AssessApproval(pendingRequest(100), 101, "x")
	assert.ErrorIs(t, err, ErrApprovalOutOfRange)
}

func TestAssessApprovalOnlyPending(t *testing.T) {
	for _, status := range []StockRequestStatus{RequestApproved, RequestRejected, RequestFulfilled, RequestCancelled} {
		req := pendingRequest(10)
		req.Status = status
		_, err := AssessApproval(req, 10, "")
		assert.ErrorIs(t, err, ErrRequestNotPending, "status %s", status)
	}
}

func TestAssessRejection(t *testing.T) {
	assert.NoError(t, AssessRejection(pendingRequest(10), "no stock to spare"))
	assert.ErrorIs(t, AssessRejection(pendingRequest(10), ""), ErrRejectNeedsReason)

	req := pendingRequest(10)
	req.Status = RequestApproved
	assert.ErrorIs(t, AssessRejection(req, "late"), ErrRequestNotPending)
}

func TestAssessCancellation(t *testing.T) {
	req := pendingRequest(10)
	assert.NoError(t, AssessCancellation(req, 7))
	assert.ErrorIs(t, AssessCancellation(req, 8), ErrNotRequester)

	req.Status = RequestApproved
	assert.ErrorIs(t, AssessCancellation(req, 7), ErrRequestNotPending)
}

func TestAssessFulfillment(t *testing.T) {
	req := pendingRequest(100)
	req.Status = RequestApproved
	qty := 60
	req.ApprovedQuantity = &qty

	got, err := AssessFulfillment(req)
	require.NoError(t, err)
	assert.Equal(t, 60, got)
}

func TestAssessFulfillmentRequiresApproved(t *testing.T) {
	_, err := AssessFulfillment(pendingRequest(100))
	assert.ErrorIs(t, err, ErrRequestNotApproved)

	req := pendingRequest(100)
	req.Status = RequestApproved
	_, err = AssessFulfillment(req)
	assert.Error(t, err)
}

func TestValidateNewRequest(t *testing.T) {
	req := pendingRequest(10)
	req.Urgency = UrgencyNormal
	assert.NoError(t, ValidateNewRequest(req))

	bad := req
	bad.RequestedQuantity = 0
	assert.Error(t, ValidateNewRequest(bad))

	bad = req
	bad.TargetBranchID = bad.RequestingBranchID
	assert.Error(t, ValidateNewRequest(bad))

	bad = req
	bad.Urgency = "soon"
	assert.Error(t, ValidateNewRequest(bad))
}
