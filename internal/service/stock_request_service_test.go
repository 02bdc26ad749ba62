package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRequestStore struct {
	nextID int64
	reqs   map[int64]*domain.StockRequest
}

func newMemRequestStore() *memRequestStore {
	return &memRequestStore{reqs: map[int64]*domain.StockRequest{}}
}

func (s *memRequestStore) Create(_ context.Context, in repository.CreateStockRequestInput) (*domain.StockRequest, error) {
	s.nextID++
	req := &domain.StockRequest{
		ID:                 s.nextID,
		Code:               in.Code,
		RequestingBranchID: in.RequestingBranchID,
		TargetBranchID:     in.TargetBranchID,
		ItemID:             in.ItemID,
		RequestedQuantity:  in.RequestedQuantity,
		Status:             domain.RequestPending,
		Urgency:            in.Urgency,
		Notes:              in.Notes,
		RequestedByUserID:  in.RequestedByUserID,
	}
	s.reqs[req.ID] = req
	out := *req
	return &out, nil
}

func (s *memRequestStore) GetByID(_ context.Context, id int64) (*domain.StockRequest, error) {
	req, ok := s.reqs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *req
	return &out, nil
}

func (s *memRequestStore) MarkApproved(_ context.Context, id int64, approvedQuantity int, notes string, decidedBy int64) (*domain.StockRequest, error) {
	req, ok := s.reqs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if req.Status != domain.RequestPending {
		return nil, domain.ErrRequestNotPending
	}
	req.Status = domain.RequestApproved
	req.ApprovedQuantity = &approvedQuantity
	if notes != "" {
		req.Notes = notes
	}
	req.DecidedByUserID = &decidedBy
	out := *req
	return &out, nil
}

func (s *memRequestStore) MarkRejected(_ context.Context, id int64, reason string, decidedBy int64) (*domain.StockRequest, error) {
	req, ok := s.reqs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if req.Status != domain.RequestPending {
		return nil, domain.ErrRequestNotPending
	}
	req.Status = domain.RequestRejected
	req.RejectionReason = reason
	req.DecidedByUserID = &decidedBy
	out := *req
	return &out, nil
}

func (s *memRequestStore) MarkCancelled(_ context.Context, id int64) (*domain.StockRequest, error) {
	req, ok := s.reqs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if req.Status != domain.RequestPending {
		return nil, domain.ErrRequestNotPending
	}
	req.Status = domain.RequestCancelled
	out := *req
	return &out, nil
}

type memItemStore struct {
	nextID   int64
	items    map[int64]*domain.InventoryItem
	requests *memRequestStore
}

func newMemItemStore(requests *memRequestStore) *memItemStore {
	return &memItemStore{items: map[int64]*domain.InventoryItem{}, requests: requests}
}

func (s *memItemStore) add(item domain.InventoryItem) *domain.InventoryItem {
	s.nextID++
	item.ID = s.nextID
	s.items[item.ID] = &item
	return &item
}

func (s *memItemStore) GetByID(_ context.Context, id int64) (*domain.InventoryItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *item
	return &out, nil
}

func (s *memItemStore) EnsureBranchItem(_ context.Context, branchID int64, template domain.InventoryItem) (*domain.InventoryItem, error) {
	for _, item := range s.items {
		if item.BranchID == branchID && item.Code == template.Code {
			out := *item
			return &out, nil
		}
	}
	created := template
	created.BranchID = branchID
	created.CurrentStock = 0
	return s.add(created), nil
}

func (s *memItemStore) TransferStock(_ context.Context, fromItemID, toItemID int64, quantity int, _ string, _ int64, requestID int64) error {
	from, ok := s.items[fromItemID]
	if !ok {
		return repository.ErrNotFound
	}
	to, ok := s.items[toItemID]
	if !ok {
		return repository.ErrNotFound
	}
	if from.CurrentStock < quantity {
		return domain.ErrNegativeStock
	}
	from.CurrentStock -= quantity
	to.CurrentStock += quantity
	if req, ok := s.requests.reqs[requestID]; ok {
		req.Status = domain.RequestFulfilled
	}
	return nil
}

type memAuditSink struct {
	mu      sync.Mutex
	entries []repository.CreateAuditLogInput
}

func (s *memAuditSink) Create(_ context.Context, in repository.CreateAuditLogInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, in)
	return int64(len(s.entries)), nil
}

type memNotificationSink struct {
	mu      sync.Mutex
	entries []repository.CreateNotificationInput
}

func (s *memNotificationSink) Create(_ context.Context, in repository.CreateNotificationInput) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, in)
	return &domain.Notification{ID: int64(len(s.entries)), Title: in.Title}, nil
}

type staticStaffDirectory struct {
	byBranch map[int64][]int64
}

func (d staticStaffDirectory) ListUserIDsByBranch(_ context.Context, branchID int64) ([]int64, error) {
	return d.byBranch[branchID], nil
}

type requestFixture struct {
	svc      StockRequestService
	requests *memRequestStore
	items    *memItemStore
	audits   *memAuditSink
	notifs   *memNotificationSink
	audit    *AuditService
}

func newRequestFixture() *requestFixture {
	requests := newMemRequestStore()
	items := newMemItemStore(requests)
	audits := &memAuditSink{}
	notifs := &memNotificationSink{}
	audit := &AuditService{
		Logs:          audits,
		Notifications: notifs,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	svc := StockRequestService{
		Requests: requests,
		Items:    items,
		Staff:    staticStaffDirectory{byBranch: map[int64][]int64{1: {31, 32}}},
		Audit:    audit,
	}
	return &requestFixture{svc: svc, requests: requests, items: items, audits: audits, notifs: notifs, audit: audit}
}

func (f *requestFixture) seedRequest(status domain.StockRequestStatus, qty int, approved *int) *domain.StockRequest {
	f.requests.nextID++
	req := &domain.StockRequest{
		ID:                 f.requests.nextID,
		Code:               "SR-TEST0001",
		RequestingBranchID: 2,
		TargetBranchID:     1,
		ItemID:             1,
		ItemName:           "Amoxicillin 500mg",
		RequestedQuantity:  qty,
		ApprovedQuantity:   approved,
		Status:             status,
		Urgency:            domain.UrgencyNormal,
		RequestedByUserID:  7,
	}
	f.requests.reqs[req.ID] = req
	return req
}

func TestStockRequestCreate(t *testing.T) {
	f := newRequestFixture()
	item := f.items.add(domain.InventoryItem{BranchID: 1, Name: "Amoxicillin 500mg", Code: "MED-AMOX-500", CurrentStock: 475, MinThreshold: 50})

	req, err := f.svc.Create(context.Background(), CreateRequestInput{
		RequestingBranchID: 2,
		TargetBranchID:     1,
		ItemID:             item.ID,
		Quantity:           100,
		Urgency:            domain.UrgencyHigh,
		RequestedBy:        7,
		RequestedByName:    "Pili Staff",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(req.Code, "SR-"))
	assert.Len(t, req.Code, 11)
	assert.Equal(t, domain.RequestPending, req.Status)

	f.audit.Close()
	assert.Len(t, f.audits.entries, 1)
	// Both staff members of the target branch are notified.
	assert.Len(t, f.notifs.entries, 2)
	assert.Equal(t, domain.PriorityHigh, f.notifs.entries[0].Priority)
}

func TestStockRequestCreateRejectsForeignItem(t *testing.T) {
	f := newRequestFixture()
	item := f.items.add(domain.InventoryItem{BranchID: 3, Code: "MED-AMOX-500", CurrentStock: 100})

	_, err := f.svc.Create(context.Background(), CreateRequestInput{
		RequestingBranchID: 2,
		TargetBranchID:     1,
		ItemID:             item.ID,
		Quantity:           10,
		Urgency:            domain.UrgencyNormal,
		RequestedBy:        7,
	})
	assert.Error(t, err)
}

func TestStockRequestApprovePartial(t *testing.T) {
	f := newRequestFixture()
	req := f.seedRequest(domain.RequestPending, 100, nil)

	result, err := f.svc.Approve(context.Background(), req.ID, 60, "only 60 on hand", 5, "Main Vet")
	require.NoError(t, err)
	assert.True(t, result.Assessment.IsPartialApproval)
	assert.Equal(t, 60, result.Assessment.ApprovalPercentage)
	assert.Equal(t, domain.RequestApproved, result.Request.Status)
	require.NotNil(t, result.Request.ApprovedQuantity)
	assert.Equal(t, 60, *result.Request.ApprovedQuantity)

	f.audit.Close()
	require.Len(t, f.notifs.entries, 1)
	assert.Equal(t, int64(7), f.notifs.entries[0].UserID)
}

func TestStockRequestApprovePartialNeedsNotes(t *testing.T) {
	f := newRequestFixture()
	req := f.seedRequest(domain.RequestPending, 100, nil)

	_, err := f.svc.Approve(context.Background(), req.ID, 60, "", 5, "Main Vet")
	assert.ErrorIs(t, err, domain.ErrPartialNeedsNotes)
	assert.Equal(t, domain.RequestPending, f.requests.reqs[req.ID].Status)
}

func TestStockRequestRejectNeedsReason(t *testing.T) {
	f := newRequestFixture()
	req := f.seedRequest(domain.RequestPending, 100, nil)

	_, err := f.svc.Reject(context.Background(), req.ID, "", 5, "Main Vet")
	assert.ErrorIs(t, err, domain.ErrRejectNeedsReason)

	updated, err := f.svc.Reject(context.Background(), req.ID, "not enough stock", 5, "Main Vet")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestRejected, updated.Status)
	assert.Equal(t, "not enough stock", updated.RejectionReason)
}

func TestStockRequestCancelOnlyByRequesterWhilePending(t *testing.T) {
	f := newRequestFixture()
	req := f.seedRequest(domain.RequestPending, 100, nil)

	_, err := f.svc.Cancel(context.Background(), req.ID, 99, "Someone Else")
	assert.ErrorIs(t, err, domain.ErrNotRequester)

	updated, err := f.svc.Cancel(context.Background(), req.ID, 7, "Pili Staff")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestCancelled, updated.Status)

	_, err = f.svc.Cancel(context.Background(), req.ID, 7, "Pili Staff")
	assert.ErrorIs(t, err, domain.ErrRequestNotPending)
}

func TestStockRequestFulfillTransfersApprovedQuantity(t *testing.T) {
	f := newRequestFixture()
	source := f.items.add(domain.InventoryItem{BranchID: 1, Name: "Amoxicillin 500mg", Code: "MED-AMOX-500", CurrentStock: 475, MinThreshold: 50})
	approved := 60
	req := f.seedRequest(domain.RequestApproved, 100, &approved)
	req.ItemID = source.ID
	f.requests.reqs[req.ID].ItemID = source.ID

	updated, err := f.svc.Fulfill(context.Background(), req.ID, 5, "Main Vet")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestFulfilled, updated.Status)

	assert.Equal(t, 415, f.items.items[source.ID].CurrentStock)
	var dest *domain.InventoryItem
	for _, item := range f.items.items {
		if item.BranchID == 2 && item.Code == "MED-AMOX-500" {
			dest = item
		}
	}
	require.NotNil(t, dest)
	assert.Equal(t, 60, dest.CurrentStock)
}

func TestStockRequestFulfillRequiresApproval(t *testing.T) {
	f := newRequestFixture()
	source := f.items.add(domain.InventoryItem{BranchID: 1, Code: "MED-AMOX-500", CurrentStock: 475})
	req := f.seedRequest(domain.RequestPending, 100, nil)
	f.requests.reqs[req.ID].ItemID = source.ID

	_, err := f.svc.Fulfill(context.Background(), req.ID, 5, "Main Vet")
	assert.ErrorIs(t, err, domain.ErrRequestNotApproved)
	assert.Equal(t, 475, f.items.items[source.ID].CurrentStock)
}

func TestStockRequestFulfillInsufficientStock(t *testing.T) {
	f := newRequestFixture()
	source := f.items.add(domain.InventoryItem{BranchID: 1, Code: "MED-AMOX-500", CurrentStock: 10})
	approved := 60
	req := f.seedRequest(domain.RequestApproved, 100, &approved)
	f.requests.reqs[req.ID].ItemID = source.ID

	_, err := f.svc.Fulfill(context.Background(), req.ID, 5, "Main Vet")
	assert.Error(t, err)
	assert.Equal(t, 10, f.items.items[source.ID].CurrentStock)
	assert.Equal(t, domain.RequestApproved, f.requests.reqs[req.ID].Status)
}
