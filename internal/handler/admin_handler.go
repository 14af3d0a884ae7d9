package handler

import (
	"net/http"

	"worsebox/internal/middleware"
	"worsebox/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler 后台接口，全部挂在 RequireAdmin 后面
// 失败 (目标不存在等) 一律静默 302 回 /admin，成功也是 302 回 /admin
type AdminHandler struct {
	svc    *service.ForumService
	modlog *service.ModLogService
}

func NewAdminHandler(svc *service.ForumService, modlog *service.ModLogService) *AdminHandler {
	return &AdminHandler{svc: svc, modlog: modlog}
}

// Panel 后台首页：板块 + 帖子/评论总表 + 最近审计流水
// GET /admin
func (h *AdminHandler) Panel(c *gin.Context) {
	ctx := c.Request.Context()

	forums, err := h.svc.ListForums(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, "服务器开小差了")
		return
	}
	posts, _ := h.svc.ListAllPosts(ctx)
	comments, _ := h.svc.ListAllComments(ctx)
	logs, _ := h.modlog.ListRecent(ctx, 50)

	c.HTML(http.StatusOK, "admin.tmpl", gin.H{
		"Identity": middleware.CurrentIdentity(c),
		"Forums":   forums,
		"Posts":    posts,
		"Comments": comments,
		"Logs":     logs,
	})
}

// CreateForum 建板块
// POST /admin/forum (form: title)
func (h *AdminHandler) CreateForum(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	forum, err := h.svc.CreateForum(c.Request.Context(), title)
	if err != nil {
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	h.modlog.Record(c.Request.Context(), middleware.CurrentIdentity(c).User.ID,
		"create_forum", "forum", forum.ID, forum)
	c.Redirect(http.StatusFound, "/admin")
}

// DeleteForum 删板块，级联删它下面的帖子 (评论不动)
// POST /admin/forum/:id/delete
func (h *AdminHandler) DeleteForum(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	forum, err := h.svc.DeleteForum(c.Request.Context(), id)
	if err != nil {
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	h.modlog.Record(c.Request.Context(), middleware.CurrentIdentity(c).User.ID,
		"delete_forum", "forum", id, forum)
	c.Redirect(http.StatusFound, "/admin")
}

// DeletePost 删帖
// POST /admin/post/:id/delete
func (h *AdminHandler) DeletePost(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	post, err := h.svc.DeletePost(c.Request.Context(), id)
	if err != nil {
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	h.modlog.Record(c.Request.Context(), middleware.CurrentIdentity(c).User.ID,
		"delete_post", "post", id, post)
	c.Redirect(http.StatusFound, "/admin")
}

// DeleteComment 删评论
// POST /admin/comment/:id/delete
func (h *AdminHandler) DeleteComment(c *gin.Context) {
	id := parseID(c)
	if id == 0 {
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	comment, err := h.svc.DeleteComment(c.Request.Context(), id)
	if err != nil {
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	h.modlog.Record(c.Request.Context(), middleware.CurrentIdentity(c).User.ID,
		"delete_comment", "comment", id, comment)
	c.Redirect(http.StatusFound, "/admin")
}
