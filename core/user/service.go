package user

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
)

var (
	// errors
	ErrNotFound           = errors.WithMessage(core.ErrNotFound, "user")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.WithMessage(core.ErrForbidden, "account deactivated")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	return emailError(svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...))
}

// emailError turns ErrEmailExists into a validation error on the email field.
func emailError(err error) error {
	if err == ErrEmailExists {
		return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
	}
	return err
}

// Register creates a User from the public sign up form: only SelfServiceRoles are allowed.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	nu.Clean()
	if nu.Role != "" && !IsValidRole(nu.Role, SelfServiceRoles...) {
		return User{}, core.NewFieldError("role", roleText)
	}
	return svc.Create(ctx, nu)
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	nu.Clean()
	if err := svc.validate.Struct(nu); err != nil {
		return User{}, err
	}
	if err := svc.checkUniqueness(ctx, nu.Email); err != nil {
		return User{}, err
	}

	now := core.Now()
	usr := User{
		Name:          nu.Name,
		Email:         nu.Email,
		Role:          nu.Role,
		IsActive:      true,
		StudentNumber: nu.StudentNumber,
		Grade:         nu.Grade,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, emailError(err) // taken since checkUniqueness
	}
	return usr, nil
}

// Authenticate checks the credentials of the user with the given email and records the login.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, core.NewValidationError(ErrInvalidCredentials)
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, core.NewValidationError(ErrInvalidCredentials)
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}

	usr.LastLogin = core.Now()
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "setting last login")
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

// Students returns the active students of grade (all grades if empty), ordered by name.
func (svc *Service) Students(ctx context.Context, grade string) ([]User, error) {
	active := true
	return svc.repo.QueryUsers(
		ctx,
		&QueryFilter{Roles: []string{RoleStudent}, IsActive: &active, Grade: grade},
		[]core.Ordering{{Field: "name", Ascending: true}},
	)
}

// Children returns the student users linked to parent.
func (svc *Service) Children(ctx context.Context, parent User) ([]User, error) {
	children := make([]User, 0, len(parent.Children))
	for _, id := range parent.Children {
		child, err := svc.GetByID(ctx, id)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// Recipients returns every other active user, ordered by name.
func (svc *Service) Recipients(ctx context.Context, usr User) ([]User, error) {
	active := true
	users, err := svc.repo.QueryUsers(ctx, &QueryFilter{IsActive: &active}, []core.Ordering{{Field: "name", Ascending: true}})
	if err != nil {
		return nil, err
	}
	recipients := make([]User, 0, len(users))
	for _, u := range users {
		if u.ID != usr.ID {
			recipients = append(recipients, u)
		}
	}
	return recipients, nil
}

// Update applies uu to usr. Callers must check UpdateUser.IsAdminOnly permissions.
func (svc *Service) Update(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	uu.Clean()
	if err := svc.validate.Struct(uu); err != nil {
		return User{}, err
	}

	if uu.Name != "" {
		usr.Name = uu.Name
	}
	if uu.Email != "" && uu.Email != usr.Email {
		if err := svc.checkUniqueness(ctx, uu.Email, usr); err != nil {
			return User{}, err
		}
		usr.Email = uu.Email
	}
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	if uu.Role != "" {
		usr.Role = uu.Role
	}
	if uu.StudentNumber != nil {
		usr.StudentNumber = core.CleanString(*uu.StudentNumber)
	}
	if uu.Grade != nil {
		usr.Grade = *uu.Grade
	}
	if uu.GradesTaught != nil {
		usr.GradesTaught = uu.GradesTaught
	}
	if uu.SubjectsTaught != nil {
		usr.SubjectsTaught = uu.SubjectsTaught
	}
	if uu.Children != nil {
		for _, id := range uu.Children {
			child, err := svc.GetByID(ctx, id)
			if err != nil || !child.IsStudent() {
				return User{}, core.NewFieldError("children", "children must be existing students")
			}
		}
		usr.Children = uu.Children
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	usr.UpdatedAt = core.Now()
	usr, err := svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, emailError(err)
	}
	return usr, nil
}

// SetPassword sets the password of usr without applying the password policy.
func (svc *Service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = core.Now()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}
