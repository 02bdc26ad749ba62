package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
)

// StockRequestStore is the request-lifecycle slice of the repository. Status
// guards live in the store as well so concurrent decisions cannot clobber a
// terminal state.
type StockRequestStore interface {
	Create(ctx context.Context, in repository.CreateStockRequestInput) (*domain.StockRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.StockRequest, error)
	MarkApproved(ctx context.Context, id int64, approvedQuantity int, notes string, decidedBy int64) (*domain.StockRequest, error)
	MarkRejected(ctx context.Context, id int64, reason string, decidedBy int64) (*domain.StockRequest, error)
	MarkCancelled(ctx context.Context, id int64) (*domain.StockRequest, error)
}

// TransferStore is the inventory slice needed for fulfillment.
type TransferStore interface {
	GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error)
	EnsureBranchItem(ctx context.Context, branchID int64, template domain.InventoryItem) (*domain.InventoryItem, error)
	TransferStock(ctx context.Context, fromItemID, toItemID int64, quantity int, reason string, operatorID int64, requestID int64) error
}

// BranchStaffDirectory resolves the recipients of branch-addressed
// notifications.
type BranchStaffDirectory interface {
	ListUserIDsByBranch(ctx context.Context, branchID int64) ([]int64, error)
}

type StockRequestService struct {
	Requests StockRequestStore
	Items    TransferStore
	Staff    BranchStaffDirectory
	Audit    *AuditService
}

type CreateRequestInput struct {
	RequestingBranchID int64
	TargetBranchID     int64
	ItemID             int64
	Quantity           int
	Urgency            domain.RequestUrgency
	Notes              string
	RequestedBy        int64
	RequestedByName    string
}

func (s StockRequestService) Create(ctx context.Context, in CreateRequestInput) (*domain.StockRequest, error) {
	draft := domain.StockRequest{
		RequestingBranchID: in.RequestingBranchID,
		TargetBranchID:     in.TargetBranchID,
		RequestedQuantity:  in.Quantity,
		Urgency:            in.Urgency,
	}
	if err := domain.ValidateNewRequest(draft); err != nil {
		return nil, err
	}

	item, err := s.Items.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item.BranchID != in.TargetBranchID {
		return nil, fmt.Errorf("item %d does not belong to the target branch", in.ItemID)
	}

	code := "SR-" + strings.ToUpper(uuid.NewString()[:8])
	req, err := s.Requests.Create(ctx, repository.CreateStockRequestInput{
		Code:               code,
		RequestingBranchID: in.RequestingBranchID,
		TargetBranchID:     in.TargetBranchID,
		ItemID:             in.ItemID,
		RequestedQuantity:  in.Quantity,
		Urgency:            in.Urgency,
		Notes:              in.Notes,
		RequestedByUserID:  in.RequestedBy,
	})
	if err != nil {
		return nil, err
	}

	s.notifyBranch(ctx, req.TargetBranchID, NotificationEntry{
		Title:    "New stock request " + req.Code,
		Message:  fmt.Sprintf("%s requested %d x %s", in.RequestedByName, req.RequestedQuantity, req.ItemName),
		Type:     domain.NotificationInfo,
		Priority: urgencyPriority(req.Urgency),
	})
	s.record(in.RequestedBy, in.RequestedByName, domain.ActionCreate, req, "stock request created")
	return req, nil
}

// ApprovalResult carries the lifecycle outcome plus the assessment the UI
// shows (partial flag and percentage).
type ApprovalResult struct {
	Request    *domain.StockRequest
	Assessment domain.ApprovalAssessment
}

func (s StockRequestService) Approve(ctx context.Context, id int64, approvedQuantity int, notes string, decidedBy int64, decidedByName string) (*ApprovalResult, error) {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	assessment, err := domain.AssessApproval(*req, approvedQuantity, notes)
	if err != nil {
		return nil, err
	}
	updated, err := s.Requests.MarkApproved(ctx, id, assessment.ApprovedQuantity, notes, decidedBy)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Request %s approved for %d of %d units", updated.Code, assessment.ApprovedQuantity, updated.RequestedQuantity)
	s.notifyUser(updated.RequestedByUserID, NotificationEntry{
		Title:    "Stock request approved",
		Message:  msg,
		Type:     domain.NotificationSuccess,
		Priority: domain.PriorityNormal,
	})
	s.record(decidedBy, decidedByName, domain.ActionUpdate, updated, msg)
	return &ApprovalResult{Request: updated, Assessment: assessment}, nil
}

func (s StockRequestService) Reject(ctx context.Context, id int64, reason string, decidedBy int64, decidedByName string) (*domain.StockRequest, error) {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AssessRejection(*req, reason); err != nil {
		return nil, err
	}
	updated, err := s.Requests.MarkRejected(ctx, id, reason, decidedBy)
	if err != nil {
		return nil, err
	}

	s.notifyUser(updated.RequestedByUserID, NotificationEntry{
		Title:    "Stock request rejected",
		Message:  fmt.Sprintf("Request %s was rejected: %s", updated.Code, reason),
		Type:     domain.NotificationWarning,
		Priority: domain.PriorityNormal,
	})
	s.record(decidedBy, decidedByName, domain.ActionUpdate, updated, "stock request rejected: "+reason)
	return updated, nil
}

func (s StockRequestService) Cancel(ctx context.Context, id int64, byUserID int64, byName string) (*domain.StockRequest, error) {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AssessCancellation(*req, byUserID); err != nil {
		return nil, err
	}
	updated, err := s.Requests.MarkCancelled(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyBranch(ctx, updated.TargetBranchID, NotificationEntry{
		Title:    "Stock request cancelled",
		Message:  fmt.Sprintf("Request %s was cancelled by the requester", updated.Code),
		Type:     domain.NotificationInfo,
		Priority: domain.PriorityLow,
	})
	s.record(byUserID, byName, domain.ActionUpdate, updated, "stock request cancelled")
	return updated, nil
}

// Fulfill moves the approved quantity from the target branch's row to the
// requesting branch's row. The decrement, increment, ledger legs, and the
// status flip commit in one transaction; the target branch must hold enough
// stock or nothing happens.
func (s StockRequestService) Fulfill(ctx context.Context, id int64, operatorID int64, operatorName string) (*domain.StockRequest, error) {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	quantity, err := domain.AssessFulfillment(*req)
	if err != nil {
		return nil, err
	}

	source, err := s.Items.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if source.BranchID != req.TargetBranchID {
		return nil, fmt.Errorf("request %s item is not held by the fulfilling branch", req.Code)
	}
	dest, err := s.Items.EnsureBranchItem(ctx, req.RequestingBranchID, *source)
	if err != nil {
		return nil, err
	}

	reason := "stock request " + req.Code
	if err := s.Items.TransferStock(ctx, source.ID, dest.ID, quantity, reason, operatorID, req.ID); err != nil {
		return nil, err
	}

	updated, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyUser(updated.RequestedByUserID, NotificationEntry{
		Title:    "Stock request fulfilled",
		Message:  fmt.Sprintf("%d x %s transferred to your branch", quantity, updated.ItemName),
		Type:     domain.NotificationSuccess,
		Priority: domain.PriorityNormal,
	})
	s.record(operatorID, operatorName, domain.ActionUpdate, updated, fmt.Sprintf("stock request fulfilled, %d units transferred", quantity))
	return updated, nil
}

func (s StockRequestService) notifyUser(userID int64, entry NotificationEntry) {
	if s.Audit == nil {
		return
	}
	entry.UserID = userID
	s.Audit.Notify(entry)
}

func (s StockRequestService) notifyBranch(ctx context.Context, branchID int64, entry NotificationEntry) {
	if s.Audit == nil || s.Staff == nil {
		return
	}
	userIDs, err := s.Staff.ListUserIDsByBranch(ctx, branchID)
	if err != nil {
		return
	}
	for _, id := range userIDs {
		e := entry
		e.UserID = id
		s.Audit.Notify(e)
	}
}

func (s StockRequestService) record(actorID int64, actorName string, action domain.AuditAction, req *domain.StockRequest, summary string) {
	if s.Audit == nil {
		return
	}
	s.Audit.Record(AuditEntry{
		ActorID:    &actorID,
		ActorName:  actorName,
		Action:     action,
		EntityType: "stock_request",
		EntityID:   req.ID,
		EntityName: req.Code,
		After:      req,
		Summary:    summary,
		Severity:   domain.SeverityInfo,
	})
}

func urgencyPriority(u domain.RequestUrgency) domain.NotificationPriority {
	switch u {
	case domain.UrgencyHigh, domain.UrgencyCritical:
		return domain.PriorityHigh
	case domain.UrgencyLow:
		return domain.PriorityLow
	default:
		return domain.PriorityNormal
	}
}
