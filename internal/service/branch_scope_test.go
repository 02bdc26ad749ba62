package service

import (
	"testing"

	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
)

func branchFixture() []domain.Branch {
	return []domain.Branch{
		{ID: 1, Name: "Naga Main", Type: domain.BranchMain},
		{ID: 2, Name: "Pili", Type: domain.BranchSub},
		{ID: 3, Name: "Legazpi", Type: domain.BranchSub},
	}
}

func assignment(userID, branchID int64) domain.StaffAssignment {
	return domain.StaffAssignment{UserID: userID, BranchID: &branchID}
}

func TestResolveBranchScopeVetOwnerSeesAll(t *testing.T) {
	scope := ResolveBranchScope(domain.RoleVetOwner, 1, nil, branchFixture())
	assert.True(t, scope.All)
	assert.True(t, scope.Resolved)
}

func TestResolveBranchScopeAssignedStaff(t *testing.T) {
	scope := ResolveBranchScope(domain.RoleSubBranch, 7, []domain.StaffAssignment{assignment(7, 2)}, branchFixture())
	assert.False(t, scope.All)
	assert.True(t, scope.Resolved)
	assert.Equal(t, int64(2), scope.BranchID)
}

func TestResolveBranchScopeSubBranchFallback(t *testing.T) {
	// No assignment row at all.
	scope := ResolveBranchScope(domain.RoleSubBranch, 7, nil, branchFixture())
	assert.True(t, scope.Resolved)
	assert.Equal(t, int64(2), scope.BranchID)

	// Assignment exists but carries no branch.
	scope = ResolveBranchScope(domain.RoleSubBranch, 7, []domain.StaffAssignment{{UserID: 7}}, branchFixture())
	assert.True(t, scope.Resolved)
	assert.Equal(t, int64(2), scope.BranchID)
}

func TestResolveBranchScopeSubBranchNoSubBranches(t *testing.T) {
	branches := []domain.Branch{{ID: 1, Name: "Naga Main", Type: domain.BranchMain}}
	scope := ResolveBranchScope(domain.RoleSubBranch, 7, nil, branches)
	assert.False(t, scope.Resolved)
}

func TestResolveBranchScopeMainBranchNeverFallsBack(t *testing.T) {
	scope := ResolveBranchScope(domain.RoleMainBranch, 7, nil, branchFixture())
	assert.False(t, scope.Resolved)
	assert.False(t, scope.All)
}

func TestResolveBranchScopePetOwnerGetsNothing(t *testing.T) {
	scope := ResolveBranchScope(domain.RolePetOwner, 7, []domain.StaffAssignment{assignment(7, 2)}, branchFixture())
	assert.False(t, scope.Resolved)
}

func TestFilterItemsByBranch(t *testing.T) {
	items := []domain.InventoryItem{
		{ID: 1, BranchID: 1},
		{ID: 2, BranchID: 2},
		{ID: 3, BranchID: 2},
	}

	all := FilterItemsByBranch(items, ScopeAll())
	assert.Len(t, all, 3)

	scoped := FilterItemsByBranch(items, ScopeBranch(2))
	assert.Len(t, scoped, 2)
	for _, item := range scoped {
		assert.Equal(t, int64(2), item.BranchID)
	}

	none := FilterItemsByBranch(items, ScopeNone())
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFilterRequestsByBranchMatchesEitherSide(t *testing.T) {
	requests := []domain.StockRequest{
		{ID: 1, RequestingBranchID: 2, TargetBranchID: 1},
		{ID: 2, RequestingBranchID: 3, TargetBranchID: 1},
		{ID: 3, RequestingBranchID: 3, TargetBranchID: 2},
	}

	scoped := FilterRequestsByBranch(requests, ScopeBranch(2))
	assert.Len(t, scoped, 2)
	assert.Equal(t, int64(1), scoped[0].ID)
	assert.Equal(t, int64(3), scoped[1].ID)

	assert.Empty(t, FilterRequestsByBranch(requests, ScopeNone()))
	assert.Len(t, FilterRequestsByBranch(requests, ScopeAll()), 3)
}

func TestBuildLowStockAlerts(t *testing.T) {
	items := []domain.InventoryItem{
		{ID: 1, BranchID: 1, Name: "Amoxicillin 500mg", CurrentStock: 475, MinThreshold: 50},
		{ID: 2, BranchID: 2, Name: "Rabies Vaccine", CurrentStock: 20, MinThreshold: 30},
		{ID: 3, BranchID: 2, Name: "Syringe 5ml", CurrentStock: 0, MinThreshold: 100},
	}

	alerts := BuildLowStockAlerts(items)
	assert.Len(t, alerts, 2)
	assert.Equal(t, int64(2), alerts[0].ItemID)
	assert.False(t, alerts[0].OutOfStock)
	assert.Equal(t, int64(3), alerts[1].ItemID)
	assert.True(t, alerts[1].OutOfStock)

	scoped := FilterAlertsByBranch(alerts, ScopeBranch(2))
	assert.Len(t, scoped, 2)
	assert.Empty(t, FilterAlertsByBranch(alerts, ScopeNone()))
}
