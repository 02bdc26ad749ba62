package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRequestNotPending  = errors.New("request is not pending")
	ErrRequestNotApproved = errors.New("request is not approved")
	ErrNotRequester       = errors.New("only the requester may cancel")
	ErrApprovalOutOfRange = errors.New("approved quantity must be greater than zero and at most the requested quantity")
	ErrPartialNeedsNotes  = errors.New("partial approval requires an explanatory note")
	ErrRejectNeedsReason  = errors.New("rejection requires a reason")
)

// ApprovalAssessment describes a validated approval decision.
type ApprovalAssessment struct {
	ApprovedQuantity   int
	IsPartialApproval  bool
	ApprovalPercentage int
}

// AssessApproval validates an approval against the pending request and
// classifies it. Quantity must be in (0, requested]; partial approvals carry
// a mandatory note. No state is touched here.
func AssessApproval(req StockRequest, approvedQuantity int, notes string) (ApprovalAssessment, error) {
	if req.Status != RequestPending {
		return ApprovalAssessment{}, ErrRequestNotPending
	}
	if approvedQuantity <= 0 || approvedQuantity > req.RequestedQuantity {
		return ApprovalAssessment{}, ErrApprovalOutOfRange
	}
	partial := approvedQuantity < req.RequestedQuantity
	if partial && strings.TrimSpace(notes) == "" {
		return ApprovalAssessment{}, ErrPartialNeedsNotes
	}
	return ApprovalAssessment{
		ApprovedQuantity:   approvedQuantity,
		IsPartialApproval:  partial,
		ApprovalPercentage: approvedQuantity * 100 / req.RequestedQuantity,
	}, nil
}

// AssessRejection validates a rejection of the pending request.
func AssessRejection(req StockRequest, reason string) error {
	if req.Status != RequestPending {
		return ErrRequestNotPending
	}
	if strings.TrimSpace(reason) == "" {
		return ErrRejectNeedsReason
	}
	return nil
}

// AssessCancellation validates a cancellation; only the original requester
// may cancel, and only while pending.
func AssessCancellation(req StockRequest, byUserID int64) error {
	if req.Status != RequestPending {
		return ErrRequestNotPending
	}
	if req.RequestedByUserID != byUserID {
		return ErrNotRequester
	}
	return nil
}

// AssessFulfillment validates that the request can move stock. It returns
// the quantity to transfer from the target branch to the requesting branch.
func AssessFulfillment(req StockRequest) (int, error) {
	if req.Status != RequestApproved {
		return 0, ErrRequestNotApproved
	}
	if req.ApprovedQuantity == nil || *req.ApprovedQuantity <= 0 {
		return 0, fmt.Errorf("approved request %d has no approved quantity", req.ID)
	}
	return *req.ApprovedQuantity, nil
}

// ValidateNewRequest checks a request draft before it is persisted.
func ValidateNewRequest(req StockRequest) error {
	if req.RequestedQuantity <= 0 {
		return fmt.Errorf("requested quantity must be positive")
	}
	if req.RequestingBranchID == req.TargetBranchID {
		return fmt.Errorf("requesting and target branch must differ")
	}
	switch req.Urgency {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyCritical:
	default:
		return fmt.Errorf("unknown urgency %q", req.Urgency)
	}
	return nil
}
