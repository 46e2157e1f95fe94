package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medicore-api/internal/apperr"
	"github.com/harentsoaR/medicore-api/internal/middleware"
	"github.com/harentsoaR/medicore-api/internal/services"
)

// ListDoctors serves ?page=&limit=. Unparseable values fall back to defaults.
func (h *Handler) ListDoctors(c *gin.Context) {
	page, _ := strconv.ParseInt(c.Query("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)

	result, err := h.Accounts.ListDoctors(c.Request.Context(), page, limit)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"doctors":    result.Doctors,
		"page":       result.Page,
		"totalPages": result.TotalPages,
		"total":      result.Total,
	})
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	var in services.DoctorUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.FromBinding(err))
		return
	}

	doctor, err := h.Accounts.UpdateDoctor(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Doctor Updated!",
		"doctor":  doctor,
	})
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	if err := h.Accounts.DeleteDoctor(c.Request.Context(), c.Param("id")); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Doctor Deleted!"})
}
