package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/middlewares"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

// respondServiceError maps the service error taxonomy onto HTTP. Storage
// failures are already logged by the service and surface without detail.
func respondServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, utils.JSONResponse{
			Status:  false,
			Message: verr.Error(),
			Data:    gin.H{"field": verr.Field},
		})
	case errors.Is(err, services.ErrValidation):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrForbidden):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrConflict):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrInvalidTransition):
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	default:
		utils.RespondMessage(c, http.StatusInternalServerError, "internal error")
	}
}

// currentActor -> identitas dari AuthMiddleware
func currentActor(c *gin.Context) services.Actor {
	actor := services.Actor{
		UserID: c.GetUint(middlewares.ContextUserID),
		Role:   c.GetString(middlewares.ContextRole),
	}
	if v, ok := c.Get(middlewares.ContextRestaurantID); ok {
		if rid, ok := v.(uint); ok {
			actor.RestaurantID = &rid
		}
	}
	return actor
}

// paramID reads a positive numeric path parameter; it responds 400 itself
// when the value is malformed.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// queryUint reads an optional numeric query parameter, 0 when absent.
func queryUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(v), true
}
