package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medicore-api/internal/apperr"
	"github.com/harentsoaR/medicore-api/internal/middleware"
	"github.com/harentsoaR/medicore-api/internal/models"
	"github.com/harentsoaR/medicore-api/internal/services"
)

func (h *Handler) RegisterPatient(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.FromBinding(err))
		return
	}

	user, err := h.Accounts.RegisterPatient(c.Request.Context(), in)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	h.startSession(c, http.StatusCreated, user, "User Registered!")
}

func (h *Handler) Login(c *gin.Context) {
	var in services.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.FromBinding(err))
		return
	}

	user, err := h.Accounts.Login(c.Request.Context(), in)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	h.startSession(c, http.StatusOK, user, "Login Successfully!")
}

// startSession issues a token for user and sets it in the user's role cookie.
func (h *Handler) startSession(c *gin.Context, status int, user *models.User, message string) {
	token, expires, err := h.Tokens.Issue(user.ID.Hex())
	if err != nil {
		middleware.Fail(c, apperr.Internal(err))
		return
	}

	http.SetCookie(c.Writer, h.cookie(user.Role, token, expires))
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"user":    user,
	})
}

// Logout overwrites role's cookie with an expired empty one. It needs no
// session, so repeating it always succeeds.
func (h *Handler) Logout(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		http.SetCookie(c.Writer, h.cookie(role, "", time.Unix(0, 0)))
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": string(role) + " Logged Out Successfully.",
		})
	}
}

func (h *Handler) cookie(role models.Role, value string, expires time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     role.CookieName(),
		Value:    value,
		Path:     "/",
		Domain:   h.Cookies.Domain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.Cookies.Secure,
		SameSite: h.Cookies.SameSite,
	}
	if value == "" {
		ck.MaxAge = -1
	} else {
		ck.MaxAge = int(h.Tokens.TTL().Seconds())
	}
	return ck
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "user": currentUser(c)})
}

func (h *Handler) AddNewAdmin(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.FromBinding(err))
		return
	}

	admin, err := h.Accounts.CreateAdmin(c.Request.Context(), in)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "New Admin Registered!",
		"admin":   admin,
	})
}

func (h *Handler) AddNewDoctor(c *gin.Context) {
	var in services.DoctorInput
	if err := c.ShouldBind(&in); err != nil {
		middleware.Fail(c, apperr.FromBinding(err))
		return
	}

	var upload *services.Upload
	fh, err := c.FormFile("docAvatar")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		middleware.Fail(c, apperr.Validation("Doctor avatar is required!"))
		return
	default:
		f, err := fh.Open()
		if err != nil {
			middleware.Fail(c, apperr.Internal(err))
			return
		}
		defer f.Close()
		upload = &services.Upload{File: f, Size: fh.Size}
	}

	doctor, err := h.Accounts.CreateDoctor(c.Request.Context(), in, upload)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "New Doctor Registered!",
		"doctor":  doctor,
	})
}
