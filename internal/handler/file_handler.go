package handler

import (
	"fmt"
	"io"
	"net/http"

	"worsebox/internal/service"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	blobs service.BlobStore
}

func NewFileHandler(blobs service.BlobStore) *FileHandler {
	return &FileHandler{blobs: blobs}
}

// Serve 回源上传文件 (头像/帖子配图)
// GET /uploads/:filename
func (h *FileHandler) Serve(c *gin.Context) {
	filename := c.Param("filename")

	obj, size, ctype, err := h.blobs.Open(c.Request.Context(), filename)
	if err != nil {
		c.String(http.StatusNotFound, "文件不存在")
		return
	}
	defer obj.Close()

	if ctype == "" {
		ctype = "application/octet-stream"
	}
	c.Header("Content-Disposition", "inline; filename="+filename)
	c.Header("Content-Type", ctype)
	c.Header("Content-Length", fmt.Sprintf("%d", size))

	if _, err := io.Copy(c.Writer, obj); err != nil {
		fmt.Printf("Stream file error: %v\n", err)
	}
}
