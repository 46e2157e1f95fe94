package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/medicore-api/internal/metrics"
	"github.com/harentsoaR/medicore-api/internal/middleware"
	"github.com/harentsoaR/medicore-api/internal/models"
	"github.com/harentsoaR/medicore-api/internal/services"
	"github.com/harentsoaR/medicore-api/internal/store"
	"github.com/harentsoaR/medicore-api/internal/utils"
)

// CookieConfig holds the attributes every session cookie is written with.
type CookieConfig struct {
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

type Handler struct {
	Accounts     *services.AccountService
	Appointments *services.AppointmentService
	Messages     *services.MessageService
	Tokens       *utils.TokenIssuer
	Cookies      CookieConfig
	Health       store.Pinger
	Log          logrus.FieldLogger
}

// RouterConfig is what NewRouter needs besides the handlers.
type RouterConfig struct {
	CORSOrigins []string
	Metrics     *metrics.Metrics
	Users       store.UserStore
}

// NewRouter builds the engine with the global middleware chain and every route.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(h.Log),
		middleware.RequestLogger(h.Log),
		middleware.Instrument(cfg.Metrics),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.ErrorReporter(h.Log),
	)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	gate := middleware.NewGate(h.Tokens, cfg.Users)
	admin := gate.Authenticate(models.RoleAdmin)
	patient := gate.Authenticate(models.RolePatient)

	api := r.Group("/api/v1")

	user := api.Group("/user")
	{
		user.POST("/patient/register", h.RegisterPatient)
		user.POST("/login", h.Login)
		user.GET("/admin/logout", h.Logout(models.RoleAdmin))
		user.GET("/patient/logout", h.Logout(models.RolePatient))
		user.GET("/admin/me", admin, h.Me)
		user.GET("/patient/me", patient, h.Me)
		user.POST("/admin/addnew", admin, h.AddNewAdmin)
		user.POST("/doctor/addnew", admin, h.AddNewDoctor)
		user.PUT("/doctor/:id", admin, h.UpdateDoctor)
		user.DELETE("/doctor/:id", admin, h.DeleteDoctor)
		user.GET("/doctors",
			gate.AuthenticateAny(models.RoleAdmin, models.RolePatient),
			middleware.Authorize(models.RoleAdmin, models.RolePatient),
			h.ListDoctors)
	}

	appointment := api.Group("/appointment")
	{
		// Served with and without the trailing slash.
		for _, root := range []string{"", "/"} {
			appointment.POST(root, patient, h.CreateAppointment)
			appointment.GET(root, admin, h.ListAppointments)
		}
		appointment.PUT("/:id", admin, h.UpdateAppointmentStatus)
		appointment.DELETE("/:id", admin, h.DeleteAppointment)
		appointment.GET("/user/:id", patient, h.ListPatientAppointments)
		appointment.DELETE("/user/:id", patient, h.DeleteOwnAppointment)
	}

	message := api.Group("/message")
	{
		for _, root := range []string{"", "/"} {
			message.POST(root, patient, h.SendMessage)
			message.GET(root, admin, h.ListMessages)
		}
	}

	return r
}

// currentUser is only called behind the gate, which always attaches a user.
func currentUser(c *gin.Context) *models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}
