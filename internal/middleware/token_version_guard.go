package middleware

import (
	"net/http"

	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// TokenVersionGuard はJWTのtvとDBのtoken_versionを突き合わせる。
// 強制ログアウトやロール変更でtvが上がると古いトークンは401になる。
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return unauthorized(c)
			}

			user, err := userRepo.FindByID(c.Request().Context(), p.UserID)
			if err != nil || user == nil || user.TokenVersion != p.TokenVersion {
				return unauthorized(c)
			}
			if !user.IsActive {
				return c.JSON(http.StatusForbidden, errorResponse{Error: "user disabled"})
			}

			//DB上のロールを正とする
			c.Set(CtxUserRoleKey, string(user.Role))
			return next(c)
		}
	}
}
