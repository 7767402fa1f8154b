package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/samara-beach/internal/samara"
	"github.com/Leganyst/samara-beach/internal/service"
)

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

func (h *handler) apiList(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context(), queryInt(c, "take", h.pageSize), queryInt(c, "skip", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) apiGet(c *gin.Context) {
	b, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Booking not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *handler) apiCreate(c *gin.Context) {
	var fields samara.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
		return
	}
	res := h.svc.Create(c.Request.Context(), fields)
	if !writeFailure(c, res) {
		c.JSON(http.StatusCreated, res.Booking)
	}
}

func (h *handler) apiUpdate(c *gin.Context) {
	id := c.Param("id")
	var fields samara.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
		return
	}
	res := h.svc.Update(c.Request.Context(), id, fields)
	if !writeFailure(c, res) {
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

func (h *handler) apiDelete(c *gin.Context) {
	res := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if !writeFailure(c, res) {
		c.Status(http.StatusNoContent)
	}
}

// writeFailure пишет ответ для неуспешного Result и сообщает, был ли он записан.
func writeFailure(c *gin.Context, res service.Result) bool {
	switch res.Outcome {
	case service.OutcomeOK:
		return false
	case service.OutcomeInvalid:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"Error": res.Errors})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": res.Message})
	}
	return true
}
