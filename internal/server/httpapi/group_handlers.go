package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fcastro-dev/taskroom/internal/apperr"
)

func (s *Server) listGroups(c *gin.Context) {
	groups, err := s.groups.ListForUser(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (s *Server) getGroup(c *gin.Context) {
	group, err := s.groups.GetByID(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (s *Server) createGroup(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("name is required"))
		return
	}

	group, err := s.groups.Create(c.Request.Context(), input.Name, input.Password, requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

func (s *Server) joinGroup(c *gin.Context) {
	var input struct {
		GroupCode string `json:"groupCode" binding:"required"`
		Password  string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("groupCode is required"))
		return
	}

	group, err := s.groups.Join(c.Request.Context(), input.GroupCode, input.Password, requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

func (s *Server) removeGroup(c *gin.Context) {
	groupID := c.Query("groupId")
	if groupID == "" {
		respondError(c, apperr.Validation("groupId is required"))
		return
	}

	if err := s.groups.Remove(c.Request.Context(), groupID, requestContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
