package handler

import (
	"context"
	"errors"

	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
	"github.com/rangerisrael/pet-portal-sub000/internal/server/authctx"
	"github.com/rangerisrael/pet-portal-sub000/internal/service"
)

// resolveScope loads the caller's assignment and the branch list and hands
// both to the scope rules. Handlers treat the empty scope as "no rows", not
// as an error.
func resolveScope(ctx context.Context, user authctx.CurrentUser, staff repository.StaffAssignmentRepository, branches repository.BranchRepository) (service.BranchScope, error) {
	if user.Role == domain.RoleVetOwner {
		return service.ScopeAll(), nil
	}
	if !user.Role.StaffRole() {
		return service.ScopeNone(), nil
	}

	var assignments []domain.StaffAssignment
	assignment, err := staff.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return service.ScopeNone(), err
	}
	if assignment != nil {
		assignments = append(assignments, *assignment)
	}

	all, err := branches.List(ctx)
	if err != nil {
		return service.ScopeNone(), err
	}
	return service.ResolveBranchScope(user.Role, user.ID, assignments, all), nil
}
