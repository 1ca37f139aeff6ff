package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "password"

type demoUser struct {
	name, email, role, studentNumber, grade string
}

var (
	demoStudents = []demoUser{
		{"Alice Johnson", "student@demo.com", RoleStudent, "STU001", "Grade 10"},
		{"Bob Smith", "bob.smith@demo.com", RoleStudent, "STU002", "Grade 10"},
		{"Carol Davis", "carol.davis@demo.com", RoleStudent, "STU003", "Grade 10"},
		{"David Wilson", "david.wilson@demo.com", RoleStudent, "STU004", "Grade 10"},
		{"Eve Brown", "eve.brown@demo.com", RoleStudent, "STU005", "Grade 10"},
	}
	demoStaff = []demoUser{
		{name: "Mr. Smith", email: "teacher@demo.com", role: RoleTeacher},
		{name: "Mrs. Johnson", email: "parent@demo.com", role: RoleParent},
		{name: "Dr. Brown", email: "tutor@demo.com", role: RoleTutor},
		{name: "Admin User", email: "admin@demo.com", role: RoleAdmin},
	}
)

// SeedDemoData creates the demo accounts if no user exists yet. It returns the number of users created.
func SeedDemoData(ctx context.Context, repo Repository) (int, error) {
	existing, err := repo.QueryUsers(ctx, nil, nil)
	if err != nil {
		return 0, errors.Wrap(err, "querying users")
	}
	if len(existing) > 0 {
		return 0, nil
	}

	now := core.Now()
	newUser := func(du demoUser) (User, error) {
		usr := User{
			Name:          du.name,
			Email:         du.email,
			Role:          du.role,
			IsActive:      true,
			StudentNumber: du.studentNumber,
			Grade:         du.grade,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return usr, usr.SetPassword(DemoPassword)
	}

	var (
		created int
		aliceID string
	)
	for _, du := range demoStudents {
		usr, err := newUser(du)
		if err != nil {
			return created, errors.Wrap(err, "setting password")
		}
		if usr, err = repo.CreateUser(ctx, usr); err != nil {
			return created, errors.Wrapf(err, "creating %s", du.email)
		}
		if aliceID == "" {
			aliceID = usr.ID
		}
		created++
	}

	for _, du := range demoStaff {
		usr, err := newUser(du)
		if err != nil {
			return created, errors.Wrap(err, "setting password")
		}
		switch usr.Role {
		case RoleTeacher:
			usr.GradesTaught = []string{"Grade 10"}
			usr.SubjectsTaught = []string{"Mathematics", "Science", "English"}
		case RoleParent:
			usr.Children = []string{aliceID}
		}
		if _, err = repo.CreateUser(ctx, usr); err != nil {
			return created, errors.Wrapf(err, "creating %s", du.email)
		}
		created++
	}
	return created, nil
}
