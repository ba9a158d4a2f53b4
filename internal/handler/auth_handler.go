package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dailyroutine/internal/db"
	"github.com/dailyroutine/internal/service"
)

const principalContextKey = "__principal"

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
	Role     string `json:"role" binding:"required"`
}

// Login exchanges credentials for a bearer token.
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "username and password are required") {
		return
	}

	token, user, err := a.auth.Login(payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userToPayload(*user),
	})
}

// Register creates a new admin or parent account.
func (a *API) Register(c *gin.Context) {
	var payload registerPayload
	if !bindJSON(c, &payload, "username, password and role are required") {
		return
	}

	user, err := a.auth.Register(service.RegisterInput{
		Username: payload.Username,
		Password: payload.Password,
		Email:    payload.Email,
		Role:     strings.ToLower(strings.TrimSpace(payload.Role)),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists), errors.Is(err, service.ErrInvalidRegistration):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "user registered successfully",
		"userId":  user.ID,
	})
}

// AuthRequired validates the bearer token and stores the resolved
// Principal on the request context for downstream handlers.
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			respondError(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		principal, err := a.auth.ParseToken(strings.TrimSpace(token))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// principalFrom returns the Principal set by AuthRequired. The zero
// Principal with ok=false means the route was wired without the
// middleware, which is a routing bug.
func principalFrom(c *gin.Context) (service.Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return service.Principal{}, false
	}
	principal, ok := value.(service.Principal)
	return principal, ok
}

func userToPayload(user db.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	}
}
