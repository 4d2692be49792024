package domain

// Department groups employees under an organizational unit.
type Department struct {
	ID   int64
	Name string
}

// Employee is a directory record, always attached to a department.
type Employee struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Department Department
}
