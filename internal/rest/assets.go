package rest

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed assets/copy.js
var copyScript []byte

// CopyScript serves the click handler behind the copy buttons of rendered code blocks.
func (h *Handlers) CopyScript(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", copyScript)
}
