package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"geomark/internal/backup"
	"geomark/internal/domain"
	"geomark/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	markers   service.MarkerService
	backups   backup.Manager
	logger    logrus.FieldLogger
	staticDir string
}

// NewHandler builds the API handler. backups may be nil when no object
// storage is configured; staticDir may be empty to serve the API only.
func NewHandler(users service.UserService, markers service.MarkerService, backups backup.Manager, logger logrus.FieldLogger, staticDir string) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:     users,
		markers:   markers,
		backups:   backups,
		logger:    logger,
		staticDir: staticDir,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestIDMiddleware(), accessLogMiddleware(h.logger), metricsMiddleware(), corsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
		api.POST("/register", h.register)
		api.POST("/login", h.login)

		markers := api.Group("/markers", h.requireAuth())
		markers.GET("", h.listMarkers)
		markers.POST("", h.createMarker)
		markers.PUT("/:id", h.updateMarker)
		markers.DELETE("/:id", h.deleteMarker)
		markers.POST("/backups", h.createBackup)
		markers.GET("/backups", h.listBackups)
	}

	router.NoRoute(h.noRoute())
}

func (h *Handler) noRoute() gin.HandlerFunc {
	var files http.Handler
	if h.staticDir != "" {
		files = http.FileServer(http.Dir(h.staticDir))
	}
	return func(c *gin.Context) {
		if files == nil || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type markerRequest struct {
	Lat  *float64 `json:"lat" binding:"required"`
	Lng  *float64 `json:"lng" binding:"required"`
	Name *string  `json:"name"`
	Date *string  `json:"date"`
}

func (r markerRequest) input() domain.MarkerInput {
	return domain.MarkerInput{Lat: r.Lat, Lng: r.Lng, Name: r.Name, Date: r.Date}
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, bindError(err))
		return
	}

	if err := h.users.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, domain.ErrInvalidCredentials)
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) listMarkers(c *gin.Context) {
	markers, err := h.markers.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, markers)
}

func (h *Handler) createMarker(c *gin.Context) {
	var req markerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, bindError(err))
		return
	}

	marker, err := h.markers.Create(c.Request.Context(), identityFrom(c), req.input())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, marker)
}

func (h *Handler) updateMarker(c *gin.Context) {
	id, ok := markerID(c)
	if !ok {
		h.writeError(c, domain.ErrNotFound)
		return
	}

	var req markerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, bindError(err))
		return
	}

	if err := h.markers.Update(c.Request.Context(), identityFrom(c), id, req.input()); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) deleteMarker(c *gin.Context) {
	id, ok := markerID(c)
	if !ok {
		h.writeError(c, domain.ErrNotFound)
		return
	}

	if err := h.markers.Delete(c.Request.Context(), identityFrom(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) createBackup(c *gin.Context) {
	if h.backups == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backups not configured"})
		return
	}

	key, err := h.backups.Enqueue(c.Request.Context(), identityFrom(c))
	switch {
	case errors.Is(err, backup.ErrQueueFull):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many pending backups"})
		return
	case err != nil:
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"key": key})
}

type BackupResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
	URL          string  `json:"url"`
}

func (h *Handler) listBackups(c *gin.Context) {
	if h.backups == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backups not configured"})
		return
	}

	snapshots, err := h.backups.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]BackupResponse, len(snapshots))
	for i, snap := range snapshots {
		resp[i] = BackupResponse{Key: snap.Key, Size: snap.Size, URL: snap.URL}
		if snap.LastModified != nil && !snap.LastModified.IsZero() {
			v := snap.LastModified.Format(time.RFC3339)
			resp[i].LastModified = &v
		}
	}
	c.JSON(http.StatusOK, resp)
}

// markerID rejects ids that cannot name any row; callers answer 404 so a
// malformed id looks the same as a foreign one.
func markerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
