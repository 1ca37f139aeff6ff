package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/scola/core/user"
)

// roleMiddleware restricts a route to active users having one of roles.
func (a *authenticator) roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := a.contextUser(ctx)
			if err != nil {
				return err
			}
			if len(roles) == 0 || user.IsValidRole(usr.Role, roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func (a *authenticator) adminMiddleware() echo.MiddlewareFunc {
	return a.roleMiddleware(user.RoleAdmin)
}
