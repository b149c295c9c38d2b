package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"storefront/internal/config"
	"storefront/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
)

// AccessClaims はアクセストークンのclaims。
// subは数値でも文字列でも受ける。exp/iat/nbfはRegisteredClaimsで検証。
type AccessClaims struct {
	jwt.RegisteredClaims
	Sub          json.Number `json:"sub"`
	Role         model.Role  `json:"role"`
	TokenVersion *int        `json:"tv"`
}

// identity はclaimsから利用者を取り出す。不正ならok=false。
func (c AccessClaims) identity() (userID int64, role model.Role, tv int, ok bool) {
	userID, err := c.Sub.Int64()
	if err != nil || userID <= 0 {
		return 0, "", 0, false
	}
	if c.Role != model.RoleUser && c.Role != model.RoleAdmin {
		return 0, "", 0, false
	}
	if c.TokenVersion == nil || *c.TokenVersion < 0 {
		return 0, "", 0, false
	}
	return userID, c.Role, *c.TokenVersion, true
}

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			var claims AccessClaims
			token, err := parser.ParseWithClaims(rawToken, &claims, keyFunc)
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			userID, role, tv, ok := claims.identity()
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, userID)
			c.Set(CtxUserRoleKey, string(role))
			c.Set(CtxTokenVersionKey, tv)

			return next(c)
		}
	}
}

// "Bearer <token>" からtokenを抜く
func bearerToken(authz string) (string, bool) {
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Identity はAuthJWTが入れた値をまとめて取り出す。
func Identity(c echo.Context) (userID int64, role model.Role, ok bool) {
	userID, ok = c.Get(CtxUserIDKey).(int64)
	if !ok || userID <= 0 {
		return 0, "", false
	}
	r, _ := c.Get(CtxUserRoleKey).(string)
	return userID, model.Role(r), true
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
