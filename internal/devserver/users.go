package devserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appart/appart-client/internal/core/domain"
)

func (s *Server) me(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) updateMe(c echo.Context) error {
	var patch domain.UserPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid role")
	}

	updated, err := s.store.updateUser(currentUser(c).ID, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}
