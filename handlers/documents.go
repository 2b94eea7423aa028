package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/coedit/coedit/internal/document"
	"github.com/coedit/coedit/internal/document/service"
	"github.com/coedit/coedit/internal/storage"
	"github.com/coedit/coedit/pkg/logger"
	"github.com/coedit/coedit/pkg/metrics"
	"github.com/coedit/coedit/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// CreateDocumentRequest is the body of POST /api/documents.
type CreateDocumentRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

// AddCollaboratorRequest is the body of POST /api/documents/:id/collaborators.
type AddCollaboratorRequest struct {
	CollaboratorID string `json:"collaboratorId" binding:"required"`
}

// DocumentHandler exposes the document CRUD and sharing routes. All routes
// require an authenticated principal; access decisions beyond that live in
// the service/repository layers.
type DocumentHandler struct {
	svc       *service.Service
	snapshots *storage.SnapshotStore
}

func NewDocumentHandler(svc *service.Service, snapshots *storage.SnapshotStore) *DocumentHandler {
	return &DocumentHandler{svc: svc, snapshots: snapshots}
}

// Register mounts the routes under /api/documents behind the auth middleware.
func (h *DocumentHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	g := rg.Group("/documents")
	g.Use(auth)
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/collaborators", h.AddCollaborator)
	if h.snapshots != nil {
		g.POST("/:id/export", h.Export)
	}
}

// Create stores a new document owned by the caller.
func (h *DocumentHandler) Create(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.svc.Create(c.Request.Context(), middleware.PrincipalID(c), req.Title, req.Content)
	if err != nil {
		h.renderError(c, err)
		return
	}
	metrics.DocumentsCreated.Inc()
	c.JSON(http.StatusCreated, d)
}

// List returns every document the caller owns or collaborates on.
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.svc.List(c.Request.Context(), middleware.PrincipalID(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	if docs == nil {
		docs = []*document.Document{}
	}
	c.JSON(http.StatusOK, docs)
}

// Get returns a single accessible document.
func (h *DocumentHandler) Get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Update merges the supplied fields and bumps the version.
func (h *DocumentHandler) Update(c *gin.Context) {
	var patch document.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.svc.Update(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"), patch)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Delete removes an owned document and returns the deleted record.
func (h *DocumentHandler) Delete(c *gin.Context) {
	d, err := h.svc.Delete(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// AddCollaborator grants another user access to an owned document.
func (h *DocumentHandler) AddCollaborator(c *gin.Context) {
	var req AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.svc.AddCollaborator(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"), req.CollaboratorID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Export archives the current content to object storage and returns a
// presigned download URL.
func (h *DocumentHandler) Export(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	key, err := h.snapshots.PutSnapshot(c.Request.Context(), d)
	if err != nil {
		logger.Errorf("snapshot upload failed for %s: %v", d.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	url, err := h.snapshots.PresignedURL(c.Request.Context(), key, 15*time.Minute)
	if err != nil {
		logger.Errorf("presign failed for %s: %v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "url": url, "version": d.Version})
}

func (h *DocumentHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
	default:
		logger.Errorf("document request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
