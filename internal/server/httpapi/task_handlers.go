package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fcastro-dev/taskroom/internal/apperr"
	"github.com/fcastro-dev/taskroom/internal/server/models"
)

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.tasks.ListForGroup(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) getTask(c *gin.Context) {
	task, err := s.tasks.GetByID(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) createTask(c *gin.Context) {
	var input struct {
		GroupID     string `json:"groupId" binding:"required"`
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("groupId and title are required"))
		return
	}

	task, err := s.tasks.Create(c.Request.Context(),
		input.GroupID, input.Title, input.Description, requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (s *Server) changeTaskStatus(c *gin.Context) {
	var input struct {
		TaskID     string `json:"taskId" binding:"required"`
		StatusCode string `json:"statusCode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("taskId and statusCode are required"))
		return
	}

	task, err := s.tasks.ChangeStatus(c.Request.Context(),
		input.TaskID, input.StatusCode, requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (s *Server) updateTask(c *gin.Context) {
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}

	patch := models.TaskPatch{Title: input.Title, Description: input.Description}
	if _, err := s.tasks.Update(c.Request.Context(), c.Param("taskId"), patch, requestContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) removeTask(c *gin.Context) {
	var input struct {
		TaskID string `json:"taskId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation("taskId is required"))
		return
	}

	if _, err := s.tasks.Remove(c.Request.Context(), input.TaskID, requestContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) listStatuses(c *gin.Context) {
	statuses, err := s.statuses.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}
