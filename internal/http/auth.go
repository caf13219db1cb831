package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"birdfinder/internal/service"
)

func (h *Handler) home(c *gin.Context) {
	h.render(c, http.StatusOK, "home.html", gin.H{"Title": "Welcome"})
}

func (h *Handler) homeAction(c *gin.Context) {
	switch c.PostForm("action") {
	case "login":
		c.Redirect(http.StatusSeeOther, "/login")
	case "register":
		c.Redirect(http.StatusSeeOther, "/register")
	default:
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func (h *Handler) loginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in"})
}

func (h *Handler) login(c *gin.Context) {
	session, err := h.sessions.Login(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		if errors.Is(err, service.ErrAuthFailure) {
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}
		h.internalError(c, "failed to log in", err)
		return
	}

	if err := h.setSessionToken(c, session.Token); err != nil {
		h.internalError(c, "failed to write session cookie", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), h.sessionToken(c)); err != nil {
		h.internalError(c, "failed to log out", err)
		return
	}
	h.clearSessionToken(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) registerForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Error": "", "Username": ""})
}

func (h *Handler) register(c *gin.Context) {
	username := c.PostForm("username")
	_, err := h.users.CreateUser(c.Request.Context(), username, c.PostForm("password"))
	if err == nil {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	data := gin.H{"Title": "Register", "Username": username}
	switch {
	case errors.Is(err, service.ErrDuplicateUsername):
		data["Error"] = "That username is already taken."
		h.render(c, http.StatusConflict, "register.html", data)
	case errors.Is(err, service.ErrUsernameRequired), errors.Is(err, service.ErrPasswordRequired):
		data["Error"] = "Username and password are required."
		h.render(c, http.StatusBadRequest, "register.html", data)
	case errors.Is(err, service.ErrPasswordTooLong):
		data["Error"] = "Password must be at most 72 bytes."
		h.render(c, http.StatusBadRequest, "register.html", data)
	default:
		h.internalError(c, "failed to register user", err)
	}
}

func (h *Handler) listUsers(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.users.AuthorizeAdmin(ctx, currentUserID(c)); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.String(http.StatusForbidden, "Forbidden")
			return
		}
		h.internalError(c, "failed to check user role", err)
		return
	}

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.internalError(c, "failed to list users", err)
		return
	}
	h.render(c, http.StatusOK, "users.html", gin.H{"Title": "Users", "Users": users})
}
