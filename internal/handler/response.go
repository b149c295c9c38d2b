package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, _, ok := middleware.Identity(c)
	return id, ok
}

// AuthJWT/TokenVersionGuardが入れた値から操作者を作る
func getRequester(c echo.Context) (usecase.Requester, bool) {
	id, role, ok := middleware.Identity(c)
	if !ok {
		return usecase.Requester{}, false
	}
	return usecase.Requester{UserID: id, Role: role}, true
}
