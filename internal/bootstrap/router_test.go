package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"worsebox/internal/data"
	"worsebox/internal/handler"
	"worsebox/internal/middleware"
	"worsebox/internal/model"
	"worsebox/internal/repository"
	"worsebox/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@worsebox.io"
	adminPassword = "adminpw"
)

// ---- 测试用内存替身：Session 存 map，Blob 存 map ----

type memSessions struct {
	mu   sync.Mutex
	next int
	m    map[string]uint
}

func newMemSessions() *memSessions { return &memSessions{m: make(map[string]uint)} }

func (s *memSessions) Start(_ context.Context, userID uint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	token := "tok-" + strconv.Itoa(s.next)
	s.m[token] = userID
	return token, nil
}

func (s *memSessions) Resolve(_ context.Context, token string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.m[token]
	if !ok {
		return 0, service.ErrSessionNotFound
	}
	return id, nil
}

func (s *memSessions) End(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, token)
	return nil
}

var errBlobMissing = errors.New("blob not found")

type memBlobs struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemBlobs() *memBlobs { return &memBlobs{m: make(map[string][]byte)} }

func (b *memBlobs) Save(_ context.Context, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[fh.Filename] = content
	return "/uploads/" + fh.Filename, nil
}

func (b *memBlobs) Open(_ context.Context, name string) (io.ReadCloser, int64, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, ok := b.m[name]
	if !ok {
		return nil, 0, "", errBlobMissing
	}
	return io.NopCloser(bytes.NewReader(content)), int64(len(content)), "image/png", nil
}

type testApp struct {
	r        *gin.Engine
	d        *data.Data
	access   *service.AccessService
	sessions *memSessions
	blobs    *memBlobs
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := data.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	d := &data.Data{DB: db}

	userRepo := repository.NewUserRepository(db)
	sessions := newMemSessions()
	blobs := newMemBlobs()
	authSvc := service.NewAuthService(userRepo)
	forumSvc := service.NewForumService(d)
	modlogSvc := service.NewModLogService(d)
	access := service.NewAccessService(sessions, userRepo)

	if err := authSvc.SeedAdmin(adminEmail, adminPassword); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	h := Handlers{
		Auth:  handler.NewAuthHandler(authSvc, sessions, blobs, 3600),
		Forum: handler.NewForumHandler(forumSvc, blobs),
		Admin: handler.NewAdminHandler(forumSvc, modlogSvc),
		File:  handler.NewFileHandler(blobs),
	}
	r := NewRouter(h, access, "../../web/templates/*.tmpl")

	return &testApp{r: r, d: d, access: access, sessions: sessions, blobs: blobs}
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func (a *testApp) register(t *testing.T, username, email, password string) {
	t.Helper()
	form := url.Values{"username": {username}, "email": {email}, "password": {password}}
	w := a.postForm(t, "/register", form, nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("register: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}
}

func (a *testApp) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	form := url.Values{"email": {email}, "password": {password}}
	w := a.postForm(t, "/login", form, nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("login: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestRegisterThenLogin(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "alice@test.io", "secret")

	cookie := app.login(t, "alice@test.io", "secret")

	// 会话能解析出注册时的那个用户
	id := app.access.Identify(context.Background(), cookie.Value)
	if id.User == nil || id.User.Email != "alice@test.io" {
		t.Fatalf("identity = %+v", id)
	}
	if id.IsAdmin {
		t.Fatal("fresh user must not be admin")
	}
}

func TestLoginFailureAlwaysRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "alice@test.io", "secret")

	cases := []url.Values{
		{"email": {"alice@test.io"}, "password": {"wrong"}},
		{"email": {"nobody@test.io"}, "password": {"secret"}},
	}
	for _, form := range cases {
		w := app.postForm(t, "/login", form, nil)
		if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
			t.Fatalf("code=%d location=%q", w.Code, w.Header().Get("Location"))
		}
		for _, c := range w.Result().Cookies() {
			if c.Name == middleware.SessionCookie && c.Value != "" {
				t.Fatal("session cookie set on failed login")
			}
		}
	}
}

func TestRegistrationDoesNotAutoLogin(t *testing.T) {
	app := newTestApp(t)
	form := url.Values{"username": {"bob"}, "email": {"bob@test.io"}, "password": {"pw"}}
	w := app.postForm(t, "/register", form, nil)
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			t.Fatal("register set a session cookie")
		}
	}
}

func TestRegisterMissingFieldsReported(t *testing.T) {
	app := newTestApp(t)
	w := app.postForm(t, "/register", url.Values{"username": {"x"}}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "必填") {
		t.Fatalf("error message missing from body")
	}
}

func TestDuplicateEmailRefused(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "dup@test.io", "one")

	form := url.Values{"username": {"eve"}, "email": {"dup@test.io"}, "password": {"two"}}
	w := app.postForm(t, "/register", form, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}

	var count int64
	app.d.DB.Model(&model.User{}).Where("email = ?", "dup@test.io").Count(&count)
	if count != 1 {
		t.Fatalf("user count = %d, want 1", count)
	}
}

func TestPostRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	w := app.postForm(t, "/forum/1", url.Values{"content": {"hi"}}, nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("code=%d location=%q", w.Code, w.Header().Get("Location"))
	}
}

func TestNonAdminMutationsAreSilentNoOps(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "alice@test.io", "secret")
	cookie := app.login(t, "alice@test.io", "secret")

	paths := []struct {
		path string
		form url.Values
	}{
		{"/admin/forum", url.Values{"title": {"Sneaky"}}},
		{"/admin/forum/1/delete", nil},
		{"/admin/post/1/delete", nil},
		{"/admin/comment/1/delete", nil},
	}
	for _, p := range paths {
		w := app.postForm(t, p.path, p.form, cookie)
		if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
			t.Fatalf("%s: code=%d location=%q", p.path, w.Code, w.Header().Get("Location"))
		}
	}

	// 内容库一行没动
	var forums, logs int64
	app.d.DB.Model(&model.Forum{}).Count(&forums)
	app.d.DB.Model(&model.ModerationLog{}).Count(&logs)
	if forums != 0 || logs != 0 {
		t.Fatalf("forums=%d logs=%d, want 0/0", forums, logs)
	}

	// 后台页面同样进不去
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	app.r.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("GET /admin: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}
}

// 全流程：种子管理员建板块 → alice 注册登录发帖 → 匿名评论 → 管理员删帖
func TestFullScenario(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, adminEmail, adminPassword)

	// 管理员建板块 General
	w := app.postForm(t, "/admin/forum", url.Values{"title": {"General"}}, admin)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin" {
		t.Fatalf("create forum: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}
	var forum model.Forum
	if err := app.d.DB.Where("title = ?", "General").First(&forum).Error; err != nil {
		t.Fatalf("forum not created: %v", err)
	}

	// alice 注册登录发帖
	app.register(t, "alice", "alice@test.io", "secret")
	alice := app.login(t, "alice@test.io", "secret")
	forumPath := "/forum/" + strconv.Itoa(int(forum.ID))
	w = app.postForm(t, forumPath, url.Values{"content": {"hi"}}, alice)
	if w.Code != http.StatusFound || w.Header().Get("Location") != forumPath {
		t.Fatalf("create post: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}
	var post model.Post
	if err := app.d.DB.Where("forum_id = ?", forum.ID).First(&post).Error; err != nil {
		t.Fatalf("post not created: %v", err)
	}

	// 匿名评论，成功后 302 回板块页
	w = app.postForm(t, "/post/"+strconv.Itoa(int(post.ID))+"/comment", url.Values{"comment": {"nice"}}, nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != forumPath {
		t.Fatalf("comment: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}

	// 板块页能看到评论
	req := httptest.NewRequest(http.MethodGet, forumPath, nil)
	rec := httptest.NewRecorder()
	app.r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "nice") {
		t.Fatalf("forum page: code=%d body missing comment", rec.Code)
	}

	// 管理员删帖
	w = app.postForm(t, "/admin/post/"+strconv.Itoa(int(post.ID))+"/delete", nil, admin)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin" {
		t.Fatalf("delete post: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}

	// 评论还在库里，但板块页上看不到了
	var commentCount int64
	app.d.DB.Model(&model.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)
	if commentCount != 1 {
		t.Fatalf("comment count = %d, want 1", commentCount)
	}
	rec = httptest.NewRecorder()
	app.r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, forumPath, nil))
	if strings.Contains(rec.Body.String(), "nice") {
		t.Fatal("deleted post's comment still reachable from forum page")
	}

	// 审计流水：建板块一条 + 删帖一条
	var logs []model.ModerationLog
	app.d.DB.Order("id").Find(&logs)
	if len(logs) != 2 || logs[0].Action != "create_forum" || logs[1].Action != "delete_post" {
		t.Fatalf("modlog = %+v", logs)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "alice@test.io", "secret")
	cookie := app.login(t, "alice@test.io", "secret")

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	app.r.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("logout: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}

	if id := app.access.Identify(context.Background(), cookie.Value); id.User != nil {
		t.Fatal("session still resolvable after logout")
	}
}

func TestRegisterWithAvatarUpload(t *testing.T) {
	app := newTestApp(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("username", "carol")
	mw.WriteField("email", "carol@test.io")
	mw.WriteField("password", "pw")
	fw, _ := mw.CreateFormFile("pfp", "carol.png")
	fw.Write([]byte("not-really-a-png"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/register", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	app.r.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("register: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}

	var u model.User
	if err := app.d.DB.Where("email = ?", "carol@test.io").First(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	if u.Avatar != "/uploads/carol.png" {
		t.Fatalf("avatar = %q", u.Avatar)
	}

	// 上传的文件能从 /uploads 拿回来
	rec := httptest.NewRecorder()
	app.r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/carol.png", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "not-really-a-png" {
		t.Fatalf("serve upload: code=%d", rec.Code)
	}
}

func TestDeleteForumCascade(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, adminEmail, adminPassword)

	app.postForm(t, "/admin/forum", url.Values{"title": {"Doomed"}}, admin)
	var forum model.Forum
	app.d.DB.Where("title = ?", "Doomed").First(&forum)

	app.register(t, "alice", "alice@test.io", "secret")
	alice := app.login(t, "alice@test.io", "secret")
	forumPath := "/forum/" + strconv.Itoa(int(forum.ID))
	app.postForm(t, forumPath, url.Values{"content": {"bye"}}, alice)

	var post model.Post
	app.d.DB.Where("forum_id = ?", forum.ID).First(&post)
	app.postForm(t, "/post/"+strconv.Itoa(int(post.ID))+"/comment", url.Values{"comment": {"left behind"}}, nil)

	w := app.postForm(t, "/admin/forum/"+strconv.Itoa(int(forum.ID))+"/delete", nil, admin)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin" {
		t.Fatalf("delete forum: code=%d location=%q", w.Code, w.Header().Get("Location"))
	}

	var posts, comments int64
	app.d.DB.Model(&model.Post{}).Where("forum_id = ?", forum.ID).Count(&posts)
	app.d.DB.Model(&model.Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	if posts != 0 {
		t.Fatalf("posts = %d, want 0", posts)
	}
	if comments != 1 {
		t.Fatalf("comments = %d, want 1 (intentionally not cascaded)", comments)
	}
}

func TestCreatePostInMissingForum(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "alice@test.io", "secret")
	alice := app.login(t, "alice@test.io", "secret")

	w := app.postForm(t, "/forum/999", url.Values{"content": {"hi"}}, alice)
	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", w.Code)
	}
	var count int64
	app.d.DB.Model(&model.Post{}).Count(&count)
	if count != 0 {
		t.Fatalf("post count = %d, want 0", count)
	}
}
