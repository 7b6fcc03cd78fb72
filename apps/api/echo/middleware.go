package echoapi

import (
	"github.com/labstack/echo/v4"
)

// userMiddleware loads the authenticated user into the context.
func userMiddleware(auth authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := auth.contextUser(ctx); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

// adminMiddleware only lets active administrators through.
func adminMiddleware(auth authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := auth.contextUser(ctx)
			if err != nil {
				return err
			}
			if !usr.IsAdministrator() {
				return errHTTPForbidden
			}
			return next(ctx)
		}
	}
}
