package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"staffdir/internal/domain"
	"staffdir/internal/repository"
)

const createDepartmentsTable = `
CREATE TABLE IF NOT EXISTS departments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
`

const createEmployeesTable = `
CREATE TABLE IF NOT EXISTS employees (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL,
	department_id INTEGER NOT NULL,
	FOREIGN KEY (department_id) REFERENCES departments(id)
);
`

type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) repository.EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createDepartmentsTable); err != nil {
		return fmt.Errorf("create departments table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createEmployeesTable); err != nil {
		return fmt.Errorf("create employees table: %w", err)
	}
	return nil
}

// Create inserts the employee, creating its department on first use. The
// department is matched by name so repeated inserts share one row.
func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) (int64, error) {
	deptID, err := r.ensureDepartment(ctx, employee.Department.Name)
	if err != nil {
		return 0, err
	}
	employee.Department.ID = deptID

	res, err := r.db.ExecContext(ctx, `
INSERT INTO employees (first_name, last_name, email, department_id)
VALUES (?, ?, ?, ?)`,
		employee.FirstName,
		employee.LastName,
		employee.Email,
		deptID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert employee: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("employee last insert id: %w", err)
	}
	employee.ID = id
	return id, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT e.id, e.first_name, e.last_name, e.email, d.id, d.name
FROM employees e
JOIN departments d ON d.id = e.department_id
WHERE e.id = ?`,
		id,
	)

	var emp domain.Employee
	if err := row.Scan(
		&emp.ID,
		&emp.FirstName,
		&emp.LastName,
		&emp.Email,
		&emp.Department.ID,
		&emp.Department.Name,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan employee: %w", err)
	}
	return &emp, nil
}

func (r *EmployeeRepository) ensureDepartment(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM departments WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup department: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO departments (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert department: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("department last insert id: %w", err)
	}
	return id, nil
}
