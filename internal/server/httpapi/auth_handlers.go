package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fcastro-dev/taskroom/internal/apperr"
)

func (s *Server) signup(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		LastName string `json:"lastname" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("name, lastname, email and password are required"))
		return
	}

	user, token, err := s.users.Signup(c.Request.Context(),
		input.Name, input.LastName, input.Email, input.Password, requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	setSessionCookies(c, user, token, s.cookieMaxAge)
	c.JSON(http.StatusOK, user)
}

func (s *Server) signin(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("email and password are required"))
		return
	}

	user, token, err := s.users.Signin(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	setSessionCookies(c, user, token, s.cookieMaxAge)
	c.JSON(http.StatusOK, user)
}

func (s *Server) signout(c *gin.Context) {
	clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) session(c *gin.Context) {
	user, token, err := s.users.Session(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}

	setSessionCookies(c, user, token, s.cookieMaxAge)
	c.JSON(http.StatusOK, user)
}

func (s *Server) sendValidationCode(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("email is required"))
		return
	}

	userID, err := s.users.SendValidationCode(c.Request.Context(),
		input.Email, c.Param("purpose"), requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": userID})
}

func (s *Server) validateCode(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("email and code are required"))
		return
	}

	user, err := s.users.ValidateCode(c.Request.Context(), input.Email, input.Code, requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	// The restore cookie carries the validated identity to restorePassword.
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(cookieRestore, user.ID, s.cookieMaxAge, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) restorePassword(c *gin.Context) {
	var input struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("password is required"))
		return
	}

	restoreID, err := c.Cookie(cookieRestore)
	if err != nil || restoreID == "" {
		respondError(c, apperr.InvalidCode("we could not authenticate you, request a new validation code"))
		return
	}

	if _, err := s.users.RestorePassword(c.Request.Context(), restoreID, input.Password, requestContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(cookieRestore, "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{})
}

// changePassword authenticates through the user snapshot cookie rather than
// the signed token, so a signed-out browser that still holds the snapshot
// can rotate its password.
func (s *Server) changePassword(c *gin.Context) {
	var input struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("currentPassword and newPassword are required"))
		return
	}

	snapshot, err := userSnapshot(c)
	if err != nil || snapshot.ID == "" {
		respondError(c, apperr.InvalidCredentials("we could not validate your user"))
		return
	}

	rc := requestContext(c)
	rc.ActorID = snapshot.ID

	user, err := s.users.ChangePassword(c.Request.Context(),
		snapshot.ID, input.CurrentPassword, input.NewPassword, rc)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
