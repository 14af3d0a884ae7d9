package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"worsebox/internal/middleware"
	"worsebox/internal/service"

	"github.com/gin-gonic/gin"
)

type ForumHandler struct {
	svc   *service.ForumService
	blobs service.BlobStore
}

func NewForumHandler(svc *service.ForumService, blobs service.BlobStore) *ForumHandler {
	return &ForumHandler{svc: svc, blobs: blobs}
}

// parseID 路径参数转 uint，0 表示不合法
func parseID(c *gin.Context) uint {
	n, err := strconv.Atoi(c.Param("id"))
	if err != nil || n <= 0 {
		return 0
	}
	return uint(n)
}

// Home 首页板块列表
// GET /
func (h *ForumHandler) Home(c *gin.Context) {
	forums, err := h.svc.ListForums(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "服务器开小差了")
		return
	}
	c.HTML(http.StatusOK, "home.tmpl", gin.H{
		"Identity": middleware.CurrentIdentity(c),
		"Forums":   forums,
	})
}

// ShowForum 板块页：板块信息 + 帖子 (带作者和评论)
// GET /forum/:id
func (h *ForumHandler) ShowForum(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		c.String(http.StatusNotFound, "板块不存在")
		return
	}

	forum, err := h.svc.GetForum(c.Request.Context(), id)
	if err != nil {
		c.String(http.StatusNotFound, "板块不存在")
		return
	}

	posts, err := h.svc.ListPostsByForum(c.Request.Context(), id)
	if err != nil {
		c.String(http.StatusInternalServerError, "服务器开小差了")
		return
	}

	c.HTML(http.StatusOK, "forum.tmpl", gin.H{
		"Identity": middleware.CurrentIdentity(c),
		"Forum":    forum,
		"Posts":    posts,
	})
}

// CreatePost 发帖 (挂在 RequireLogin 后面，进来一定有登录用户)
// POST /forum/:id (multipart: content, 可选 image 文件)
func (h *ForumHandler) CreatePost(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		c.String(http.StatusNotFound, "板块不存在")
		return
	}

	content := c.PostForm("content")
	if content == "" {
		c.String(http.StatusBadRequest, "内容不能为空")
		return
	}

	// 可选配图
	image := ""
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		path, err := h.blobs.Save(c.Request.Context(), fh)
		if err != nil {
			if errors.Is(err, service.ErrFileType) {
				c.String(http.StatusBadRequest, "配图只支持图片文件")
				return
			}
			c.String(http.StatusInternalServerError, "图片上传失败")
			return
		}
		image = path
	}

	identity := middleware.CurrentIdentity(c)
	if _, err := h.svc.CreatePost(c.Request.Context(), id, identity.User.ID, content, image); err != nil {
		if errors.Is(err, service.ErrForumNotFound) {
			c.String(http.StatusNotFound, "板块不存在")
			return
		}
		c.String(http.StatusInternalServerError, "发帖失败")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/forum/%d", id))
}

// CreateComment 发评论，不要求登录，匿名也能发
// POST /post/:id/comment (form: comment)
func (h *ForumHandler) CreateComment(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		c.String(http.StatusNotFound, "帖子不存在")
		return
	}

	content := c.PostForm("comment")
	if content == "" {
		c.String(http.StatusBadRequest, "评论不能为空")
		return
	}

	// 登录了就记作者，没登录 authorID 留 nil
	var authorID *uint
	if identity := middleware.CurrentIdentity(c); identity.User != nil {
		authorID = &identity.User.ID
	}

	_, forumID, err := h.svc.CreateComment(c.Request.Context(), id, authorID, content)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.String(http.StatusNotFound, "帖子不存在")
			return
		}
		c.String(http.StatusInternalServerError, "评论失败")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/forum/%d", forumID))
}
