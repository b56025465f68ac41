package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dfryer1193/inkfront/blog/application"
	"github.com/dfryer1193/inkfront/blog/domain"
	"github.com/dfryer1193/inkfront/shared/contentapi"
)

// ListPosts degrades to an empty list carrying an error message when the content API fails.
func (h *Handlers) ListPosts(c *gin.Context) {
	sel := domain.NewSelection()
	if err := c.ShouldBindQuery(&sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	view, err := h.content.ListPosts(c.Request.Context(), sel, limit)
	if err != nil {
		if status, _ := classify(err); status == statusClientClosedRequest {
			c.Abort()
			return
		}
		log.Warn().Err(err).Msg("Serving empty post list")
		c.JSON(http.StatusOK, gin.H{
			"posts":      []domain.Post{},
			"total":      0,
			"categories": []string{domain.All},
			"tags":       []string{domain.All},
			"selection":  sel,
			"error":      contentapi.Message(err),
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handlers) GetPost(c *gin.Context) {
	view, err := h.content.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handlers) CreatePost(c *gin.Context) {
	var draft domain.PostDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.content.CreatePost(c.Request.Context(), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handlers) UpdatePost(c *gin.Context) {
	var draft domain.PostDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.content.UpdatePost(c.Request.Context(), c.Param("id"), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handlers) DeletePost(c *gin.Context) {
	if err := h.content.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) ListTrash(c *gin.Context) {
	posts, err := h.content.ListTrash(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *Handlers) RestorePost(c *gin.Context) {
	if err := h.content.RestorePost(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) PurgePost(c *gin.Context) {
	if err := h.content.PurgePost(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPhotos degrades like ListPosts.
func (h *Handlers) ListPhotos(c *gin.Context) {
	category := c.Query("category")

	view, err := h.content.ListPhotos(c.Request.Context(), category)
	if err != nil {
		status, msg := classify(err)
		switch status {
		case statusClientClosedRequest:
			c.Abort()
		case http.StatusBadRequest:
			c.JSON(status, gin.H{"error": msg})
		default:
			log.Warn().Err(err).Msg("Serving empty photo list")
			c.JSON(http.StatusOK, gin.H{
				"photos":     []domain.PhotoGroup{},
				"category":   category,
				"categories": application.PhotoCategories(),
				"error":      contentapi.Message(err),
			})
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handlers) GetPhoto(c *gin.Context) {
	photo, err := h.content.GetPhoto(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photo)
}

func (h *Handlers) CreatePhoto(c *gin.Context) {
	var draft domain.PhotoDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	photo, err := h.content.CreatePhoto(c.Request.Context(), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, photo)
}

func (h *Handlers) UpdatePhoto(c *gin.Context) {
	var draft domain.PhotoDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	photo, err := h.content.UpdatePhoto(c.Request.Context(), c.Param("id"), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photo)
}

func (h *Handlers) DeletePhoto(c *gin.Context) {
	if err := h.content.DeletePhoto(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
