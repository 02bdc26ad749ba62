package service

import (
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
)

// BranchScope is the resolved visibility of a caller over branch-partitioned
// data. Exactly one of three shapes: all branches (vet owner), a single
// branch, or nothing (fail-closed).
type BranchScope struct {
	All      bool
	BranchID int64
	Resolved bool
}

// ScopeAll is the unrestricted vet-owner scope.
func ScopeAll() BranchScope { return BranchScope{All: true, Resolved: true} }

// ScopeBranch restricts visibility to one branch.
func ScopeBranch(id int64) BranchScope { return BranchScope{BranchID: id, Resolved: true} }

// ScopeNone is the fail-closed empty scope.
func ScopeNone() BranchScope { return BranchScope{} }

// ResolveBranchScope determines what the caller may see. Vet owners see
// everything. Branch staff resolve their branch through the staff-assignment
// lookup; a staff member with no resolvable branch gets the empty scope
// rather than cross-branch data. Sub-branch staff with a missing or invalid
// assignment fall back to the first sub-type branch; main-branch staff never
// fall back.
func ResolveBranchScope(role domain.UserRole, userID int64, assignments []domain.StaffAssignment, branches []domain.Branch) BranchScope {
	if role == domain.RoleVetOwner {
		return ScopeAll()
	}
	if !role.StaffRole() {
		return ScopeNone()
	}

	var assigned *domain.StaffAssignment
	for i := range assignments {
		if assignments[i].UserID == userID {
			assigned = &assignments[i]
			break
		}
	}

	if assigned != nil && assigned.BranchID != nil && *assigned.BranchID > 0 {
		return ScopeBranch(*assigned.BranchID)
	}

	if role == domain.RoleSubBranch {
		for _, b := range branches {
			if b.Type == domain.BranchSub {
				return ScopeBranch(b.ID)
			}
		}
	}
	return ScopeNone()
}

// FilterItemsByBranch returns exactly the rows whose branch id equals the
// scope's branch. The empty scope yields an empty (non-nil) slice.
func FilterItemsByBranch(items []domain.InventoryItem, scope BranchScope) []domain.InventoryItem {
	if scope.All {
		return items
	}
	out := make([]domain.InventoryItem, 0, len(items))
	if !scope.Resolved {
		return out
	}
	for _, item := range items {
		if item.BranchID == scope.BranchID {
			out = append(out, item)
		}
	}
	return out
}

// FilterRequestsByBranch keeps requests where the scope's branch is either
// the requesting or the fulfilling side.
func FilterRequestsByBranch(requests []domain.StockRequest, scope BranchScope) []domain.StockRequest {
	if scope.All {
		return requests
	}
	out := make([]domain.StockRequest, 0, len(requests))
	if !scope.Resolved {
		return out
	}
	for _, req := range requests {
		if req.RequestingBranchID == scope.BranchID || req.TargetBranchID == scope.BranchID {
			out = append(out, req)
		}
	}
	return out
}

// FilterAlertsByBranch narrows low-stock alerts to the scope's branch.
func FilterAlertsByBranch(alerts []domain.LowStockAlert, scope BranchScope) []domain.LowStockAlert {
	if scope.All {
		return alerts
	}
	out := make([]domain.LowStockAlert, 0, len(alerts))
	if !scope.Resolved {
		return out
	}
	for _, a := range alerts {
		if a.BranchID == scope.BranchID {
			out = append(out, a)
		}
	}
	return out
}

// BuildLowStockAlerts derives alerts from inventory rows at or under their
// minimum threshold.
func BuildLowStockAlerts(items []domain.InventoryItem) []domain.LowStockAlert {
	var alerts []domain.LowStockAlert
	for _, item := range items {
		if !item.LowOnStock() {
			continue
		}
		alerts = append(alerts, domain.LowStockAlert{
			ItemID:       item.ID,
			BranchID:     item.BranchID,
			ItemName:     item.Name,
			CurrentStock: item.CurrentStock,
			MinThreshold: item.MinThreshold,
			OutOfStock:   item.CurrentStock == 0,
		})
	}
	return alerts
}
