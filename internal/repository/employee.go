package repository

import (
	"context"

	"staffdir/internal/domain"
)

// EmployeeRepository defines persistence operations for Employee records and
// their departments.
type EmployeeRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, employee *domain.Employee) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}
