package service

import (
	"context"
	"errors"
	"strings"

	"staffdir/internal/domain"
	"staffdir/internal/repository"
)

// ErrEmployeeNotFound is returned when no employee exists for the given id.
var ErrEmployeeNotFound = errors.New("employee not found")

// EmployeeService exposes the directory lookup surface.
type EmployeeService interface {
	Create(ctx context.Context, employee *domain.Employee) (*domain.Employee, error)
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}

type employeeService struct {
	employees repository.EmployeeRepository
}

func NewEmployeeService(employees repository.EmployeeRepository) EmployeeService {
	return &employeeService{employees: employees}
}

func (s *employeeService) Create(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	employee.FirstName = strings.TrimSpace(employee.FirstName)
	employee.LastName = strings.TrimSpace(employee.LastName)
	employee.Department.Name = strings.TrimSpace(employee.Department.Name)

	if employee.FirstName == "" || employee.LastName == "" {
		return nil, errors.New("employee name is required")
	}
	if employee.Department.Name == "" {
		return nil, errors.New("department name is required")
	}

	if _, err := s.employees.Create(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}
