package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"

	"birdfinder/internal/ebird"
	"birdfinder/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	sessions service.SessionService
	lists    service.BirdListService
	archives service.ArchiveService
	birds    ebird.Client
	cookies  sessions.Store
	log      *logrus.Logger

	archiveEnabled bool
}

// NewHandler builds the web handler. archives may be nil when no object
// storage is configured.
func NewHandler(
	users service.UserService,
	sessionSvc service.SessionService,
	lists service.BirdListService,
	archives service.ArchiveService,
	birds ebird.Client,
	cookies sessions.Store,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		users:          users,
		sessions:       sessionSvc,
		lists:          lists,
		archives:       archives,
		birds:          birds,
		cookies:        cookies,
		log:            logger,
		archiveEnabled: archives != nil,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(pages)
	router.Use(requestLogger(h.log))

	router.GET("/", h.home)
	router.POST("/", h.homeAction)
	router.GET("/login", h.loginForm)
	router.POST("/login", h.login)
	router.GET("/register", h.registerForm)
	router.POST("/register", h.register)
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	authed := router.Group("/", h.requireLogin)
	{
		authed.POST("/logout", h.logout)
		authed.GET("/dashboard", h.dashboard)
		authed.POST("/dashboard", h.dashboardSearch)
		authed.GET("/searchBird", h.searchBird)
		authed.POST("/searchBird", h.searchBirdForm)
		authed.GET("/birdDetails", h.birdDetails)
		authed.POST("/birdDetails", h.addToList)
		authed.GET("/birdList", h.birdList)
		authed.POST("/birdList", h.removeFromList)
		authed.GET("/birdList/export", h.exportList)
		authed.POST("/birdList/archive", h.archiveList)
		authed.POST("/users", h.listUsers)
	}
}

// render executes a page template, adding the CSRF field and login state
// every page needs.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["csrfField"] = csrf.TemplateField(c.Request)
	if _, ok := data["Authenticated"]; !ok {
		_, authed := c.Get(userIDKey)
		data["Authenticated"] = authed
	}
	c.HTML(status, name, data)
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error(msg)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}
