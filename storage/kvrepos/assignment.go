package kvrepos

import (
	"context"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/assignment"
)

type assignmentRepository struct {
	assignments collection[assignment.Assignment]
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(store core.KVStore) assignment.Repository {
	return &assignmentRepository{assignments: collection[assignment.Assignment]{store: store, key: KeyAssignments}}
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	return repo.assignments.load(ctx)
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	a.ID = core.NewID()
	err := repo.assignments.update(ctx, func(items []assignment.Assignment) ([]assignment.Assignment, error) {
		return append(items, a), nil
	})
	return a, err
}

func (repo *assignmentRepository) UpdateAssignment(
	ctx context.Context, id string, fn func(*assignment.Assignment) error,
) (assignment.Assignment, error) {
	return repo.assignments.updateOne(
		ctx, func(a assignment.Assignment) bool { return a.ID == id }, fn, assignment.ErrNotFound,
	)
}
