package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medicore-api/internal/apperr"
	"github.com/harentsoaR/medicore-api/internal/middleware"
	"github.com/harentsoaR/medicore-api/internal/services"
)

func (h *Handler) CreateAppointment(c *gin.Context) {
	var in services.AppointmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.FromBinding(err))
		return
	}

	apt, err := h.Appointments.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "Appointment Sent!",
		"appointment": apt,
	})
}

// ListAppointments accepts ?status=&startDate=&endDate=.
func (h *Handler) ListAppointments(c *gin.Context) {
	var q services.AppointmentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.Fail(c, apperr.FromBinding(err))
		return
	}

	views, err := h.Appointments.ListAll(c.Request.Context(), q)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointments": views})
}

func (h *Handler) ListPatientAppointments(c *gin.Context) {
	views, err := h.Appointments.ListForPatient(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointments": views})
}

func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.FromBinding(err))
		return
	}

	apt, err := h.Appointments.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Appointment Status Updated!",
		"appointment": apt,
	})
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	if err := h.Appointments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment Deleted!"})
}

func (h *Handler) DeleteOwnAppointment(c *gin.Context) {
	if err := h.Appointments.DeleteOwn(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment Deleted!"})
}
