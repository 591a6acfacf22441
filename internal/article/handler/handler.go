package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/internal/article/repository"
	"github.com/collegenews/collegenews/backend/go-services/internal/article/service"
	"github.com/collegenews/collegenews/backend/go-services/internal/models"
	"github.com/collegenews/collegenews/backend/go-services/internal/storage"
	"github.com/collegenews/collegenews/backend/go-services/pkg/logger"
	"github.com/gin-gonic/gin"
)

// maxRequestBody leaves room for the text fields around a maximum-size file.
const maxRequestBody = storage.MaxAttachmentSize + 1<<20

// articleJSON is the wire shape of an article.
type articleJSON struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Author         string    `json:"author"`
	Category       string    `json:"category"`
	AttachmentURL  *string   `json:"attachment_url"`
	AttachmentType *string   `json:"attachment_type"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toJSON(a *models.Article) articleJSON {
	out := articleJSON{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		Author:    a.Author,
		Category:  string(a.Category),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Attachment != nil {
		path, typ := a.Attachment.Path, a.Attachment.MIMEType
		out.AttachmentURL, out.AttachmentType = &path, &typ
	}
	return out
}

func toJSONList(list []*models.Article) []articleJSON {
	out := make([]articleJSON, 0, len(list))
	for _, a := range list {
		out = append(out, toJSON(a))
	}
	return out
}

// RegisterArticleRoutes mounts the public reads and the auth-gated writes on
// /api/blogs, and the attachment download route on /uploads/:name.
func RegisterArticleRoutes(r gin.IRouter, svc service.Service, store storage.Store, auth gin.HandlerFunc) {
	h := &articleHandler{svc: svc, store: store}

	blogs := r.Group("/api/blogs")
	blogs.GET("", h.list)
	blogs.GET("/category/:category", h.listByCategory)
	blogs.GET("/:id", h.get)
	blogs.POST("", auth, h.create)
	blogs.PUT("/:id", auth, h.update)
	blogs.DELETE("/:id", auth, h.delete)

	r.GET("/uploads/:name", h.download)
}

type articleHandler struct {
	svc   service.Service
	store storage.Store
}

func (h *articleHandler) list(c *gin.Context) {
	f := repository.Filter{Search: c.Query("search"), Category: c.Query("category")}
	h.respondList(c, f, repository.ParseSort(c.Query("sort"), c.Query("order")))
}

func (h *articleHandler) listByCategory(c *gin.Context) {
	h.respondList(c, repository.Filter{Category: c.Param("category")}, repository.DefaultSort)
}

func (h *articleHandler) respondList(c *gin.Context, f repository.Filter, s repository.Sort) {
	list, err := h.svc.List(c.Request.Context(), f, s)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toJSONList(list))
}

func (h *articleHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toJSON(a))
}

func (h *articleHandler) create(c *gin.Context) {
	in, err := readInput(c)
	if err != nil {
		writeError(c, err)
		return
	}
	a, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.Infof("article %d created by %s", a.ID, actor(c))
	c.JSON(http.StatusCreated, gin.H{"id": a.ID, "message": "Blog created successfully.", "blog": toJSON(a)})
}

func (h *articleHandler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	in, err := readInput(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if in.KeepAttachment, err = service.ParseKeepFlag(c.PostForm("keepAttachment")); err != nil {
		writeError(c, err)
		return
	}
	a, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.Infof("article %d updated by %s", a.ID, actor(c))
	c.JSON(http.StatusOK, gin.H{"message": "Blog updated successfully.", "blog": toJSON(a)})
}

func (h *articleHandler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	logger.Infof("article %d deleted by %s", id, actor(c))
	c.JSON(http.StatusOK, gin.H{"message": "Blog deleted successfully."})
}

func (h *articleHandler) download(c *gin.Context) {
	rc, info, err := h.store.Open(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "File not found."})
			return
		}
		writeError(c, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, rc, nil)
}

// readInput parses the multipart (or urlencoded) form of a write request.
func readInput(c *gin.Context) (service.Input, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBody)
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return service.Input{}, storage.ErrTooLarge
		}
		return service.Input{}, models.NewValidationError("Malformed form data.")
	}
	in := service.Input{
		Title:    c.PostForm("title"),
		Content:  c.PostForm("content"),
		Author:   c.PostForm("author"),
		Category: c.PostForm("category"),
	}
	if c.Request.MultipartForm != nil {
		if files := c.Request.MultipartForm.File["attachment"]; len(files) > 0 {
			in.File = files[0]
		}
	}
	return in, nil
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Blog not found."})
		return 0, false
	}
	return id, true
}

func actor(c *gin.Context) string {
	if v, ok := c.Get("claims"); ok {
		if m, ok := v.(map[string]interface{}); ok {
			if u, ok := m["username"].(string); ok {
				return u
			}
		}
	}
	return "unknown"
}

// writeError maps service errors onto status codes. Details of unexpected
// errors are logged, never returned.
func writeError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Message})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Blog not found."})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
	}
}
