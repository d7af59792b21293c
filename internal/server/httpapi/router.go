// Package httpapi exposes the application services over a cookie-session
// JSON API and hosts the WebSocket upgrade endpoint.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fcastro-dev/taskroom/internal/logging"
	"github.com/fcastro-dev/taskroom/internal/server/config"
	"github.com/fcastro-dev/taskroom/internal/server/models"
	"github.com/fcastro-dev/taskroom/internal/server/services"
)

// Service interfaces consumed by the handlers. Tests substitute fakes.
type UserAPI interface {
	Signup(ctx context.Context, name, lastName, email, password string, rc services.RequestContext) (*models.User, string, error)
	Signin(ctx context.Context, email, password string) (*models.User, string, error)
	Session(ctx context.Context, userID string) (*models.User, string, error)
	SendValidationCode(ctx context.Context, email, purpose string, rc services.RequestContext) (string, error)
	ValidateCode(ctx context.Context, email, code string, rc services.RequestContext) (*models.User, error)
	RestorePassword(ctx context.Context, userID, password string, rc services.RequestContext) (*models.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string, rc services.RequestContext) (*models.User, error)
}

type GroupAPI interface {
	Create(ctx context.Context, name, password string, rc services.RequestContext) (*models.Group, error)
	Join(ctx context.Context, code, password string, rc services.RequestContext) (*models.Group, error)
	GetByID(ctx context.Context, groupID string) (*models.Group, error)
	ListForUser(ctx context.Context, userID string) ([]*models.GroupSummary, error)
	Remove(ctx context.Context, groupID string, rc services.RequestContext) error
}

type TaskAPI interface {
	ListForGroup(ctx context.Context, groupID string) ([]*models.TaskView, error)
	GetByID(ctx context.Context, taskID string) (*models.TaskView, error)
	Create(ctx context.Context, groupID, title, description string, rc services.RequestContext) (*models.TaskView, error)
	ChangeStatus(ctx context.Context, taskID, statusCode string, rc services.RequestContext) (*models.TaskView, error)
	Update(ctx context.Context, taskID string, patch models.TaskPatch, rc services.RequestContext) (*models.Task, error)
	Remove(ctx context.Context, taskID string, rc services.RequestContext) (*models.Task, error)
}

type StatusAPI interface {
	List(ctx context.Context) ([]*models.Status, error)
}

// Socket upgrades a request into a long-lived notification connection.
type Socket interface {
	Serve(w http.ResponseWriter, r *http.Request) error
}

type Server struct {
	users        UserAPI
	groups       GroupAPI
	tasks        TaskAPI
	statuses     StatusAPI
	socket       Socket
	logger       logging.Logger
	secretKey    []byte
	cookieMaxAge int
	corsOrigins  []string
	maxBodyBytes int64
}

func NewServer(users UserAPI, groups GroupAPI, tasks TaskAPI, statuses StatusAPI,
	socket Socket, logger logging.Logger, cfg *config.Config) *Server {
	return &Server{
		users:        users,
		groups:       groups,
		tasks:        tasks,
		statuses:     statuses,
		socket:       socket,
		logger:       logger.With("module", "httpapi"),
		secretKey:    []byte(cfg.SecretKey),
		cookieMaxAge: int(cfg.TokenValidity.Seconds()),
		corsOrigins:  cfg.CORSOrigins,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// Router assembles the gin engine with CORS, the body size limit and the
// full route table.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "User-Agent"},
		AllowCredentials: true,
	}))

	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)
		c.Next()
	})

	session := sessionAuth(s.secretKey)
	admin := adminAuth(s.secretKey)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", s.signup)
		authGroup.POST("/signin", s.signin)
		authGroup.POST("/signout", s.signout)
		authGroup.GET("/session", session, s.session)
		authGroup.POST("/sendValidationCode/:purpose", s.sendValidationCode)
		authGroup.POST("/validateCode", session, s.validateCode)
		authGroup.POST("/restorePassword", session, s.restorePassword)
		authGroup.POST("/changePassword", s.changePassword)
	}

	groupGroup := r.Group("/group")
	{
		groupGroup.GET("", session, s.listGroups)
		groupGroup.GET("/:groupId", session, s.getGroup)
		groupGroup.POST("", admin, s.createGroup)
		groupGroup.POST("/join", admin, s.joinGroup)
		groupGroup.DELETE("", admin, s.removeGroup)
	}

	taskGroup := r.Group("/task")
	{
		taskGroup.GET("/:groupId", session, s.listTasks)
		taskGroup.POST("", admin, s.createTask)
		taskGroup.PUT("/status", admin, s.changeTaskStatus)
		taskGroup.PUT("/update/:taskId", admin, s.updateTask)
		taskGroup.DELETE("", admin, s.removeTask)
	}

	// Registered outside /task: a byId segment under it would collide with
	// the :groupId wildcard in the routing tree.
	r.GET("/taskById/:taskId", session, s.getTask)

	r.GET("/status", session, s.listStatuses)

	r.GET("/ws", session, func(c *gin.Context) {
		if err := s.socket.Serve(c.Writer, c.Request); err != nil {
			s.logger.Warn(c.Request.Context(), "websocket upgrade failed", "error", err.Error())
		}
	})

	return r
}
