package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
)

var errInvalidClaims = errors.New("invalid claims")

// Principal はアクセストークンから取り出したログイン中ユーザー
type Principal struct {
	UserID       int64
	Role         string
	TokenVersion int
}

// AuthJWT は Bearer のHS256トークンを検証し、Principalをcontextに載せる。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c)
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(raw, claims, keyFunc)
			if err != nil || !token.Valid {
				return unauthorized(c)
			}

			p, err := principalFrom(claims)
			if err != nil {
				return unauthorized(c)
			}

			c.Set(CtxUserIDKey, p.UserID)
			c.Set(CtxUserRoleKey, p.Role)
			c.Set(CtxTokenVersionKey, p.TokenVersion)
			return next(c)
		}
	}
}

// PrincipalFrom はAuthJWTが載せた値を読む
func PrincipalFrom(c echo.Context) (Principal, bool) {
	id, ok1 := c.Get(CtxUserIDKey).(int64)
	role, ok2 := c.Get(CtxUserRoleKey).(string)
	tv, ok3 := c.Get(CtxTokenVersionKey).(int)
	if !ok1 || !ok2 || !ok3 || id <= 0 || role == "" || tv < 0 {
		return Principal{}, false
	}
	return Principal{UserID: id, Role: role, TokenVersion: tv}, true
}

// "Bearer xxx" からxxxを取り出す
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// sub / role / tv は必須
func principalFrom(claims jwt.MapClaims) (Principal, error) {
	id, err := claimInt64(claims["sub"])
	if err != nil || id <= 0 {
		return Principal{}, errInvalidClaims
	}
	role, _ := claims["role"].(string)
	if role == "" {
		return Principal{}, errInvalidClaims
	}
	tv, err := claimInt64(claims["tv"])
	if err != nil || tv < 0 {
		return Principal{}, errInvalidClaims
	}
	return Principal{UserID: id, Role: role, TokenVersion: int(tv)}, nil
}

// JSONの数値はfloat64で来る。文字列のsubも受ける。
func claimInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errInvalidClaims
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
}
