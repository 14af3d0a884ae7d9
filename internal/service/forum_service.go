package service

import (
	"context"
	"errors"

	"worsebox/internal/data"
	"worsebox/internal/dto"
	"worsebox/internal/model"

	"gorm.io/gorm"
)

// ForumService 板块/帖子/评论的内容存储
// 所有写入都先校验父级存在，父级没了直接报 NotFound，不落一行脏数据
type ForumService struct {
	Data *data.Data
}

func NewForumService(d *data.Data) *ForumService {
	return &ForumService{Data: d}
}

// CreateForum 创建板块 (路由层保证只有管理员能调)
func (s *ForumService) CreateForum(ctx context.Context, title string) (*model.Forum, error) {
	forum := &model.Forum{Title: title}
	if err := s.Data.DB.WithContext(ctx).Create(forum).Error; err != nil {
		return nil, err
	}
	return forum, nil
}

// GetForum 按 ID 查板块
func (s *ForumService) GetForum(ctx context.Context, id uint) (*model.Forum, error) {
	var forum model.Forum
	if err := s.Data.DB.WithContext(ctx).First(&forum, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForumNotFound
		}
		return nil, err
	}
	return &forum, nil
}

// ListForums 首页板块列表，按插入顺序
func (s *ForumService) ListForums(ctx context.Context) ([]model.Forum, error) {
	var forums []model.Forum
	if err := s.Data.DB.WithContext(ctx).Order("id").Find(&forums).Error; err != nil {
		return nil, err
	}
	return forums, nil
}

// DeleteForum 删除板块并级联删掉它下面的所有帖子
// 两步放进同一个事务：要么全删掉，要么全留着，不会出现"板块没了帖子还挂着"的中间态
// ⚠️ 帖子下面的评论有意不动 (沿用线上行为，后台看不到但库里还在)
func (s *ForumService) DeleteForum(ctx context.Context, id uint) (*model.Forum, error) {
	forum, err := s.GetForum(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.Data.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A. 删板块
		if err := tx.Delete(&model.Forum{}, id).Error; err != nil {
			return err
		}
		// B. 删它下面的帖子 (返回错误会触发回滚)
		if err := tx.Where("forum_id = ?", id).Delete(&model.Post{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return forum, nil
}

// CreatePost 在板块里发帖
// image 是上传服务给的公共路径，没配图时为 ""
func (s *ForumService) CreatePost(ctx context.Context, forumID, authorID uint, content, image string) (*model.Post, error) {
	// 1. 校验板块存在，不存在就不写
	if _, err := s.GetForum(ctx, forumID); err != nil {
		return nil, err
	}

	// 2. 落库
	post := &model.Post{
		ForumID:  forumID,
		AuthorID: authorID,
		Content:  content,
		Image:    image,
	}
	if err := s.Data.DB.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost 按 ID 查帖子
func (s *ForumService) GetPost(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	if err := s.Data.DB.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ListPostsByForum 板块页的帖子列表，带作者的 username/avatar 和各自的评论
func (s *ForumService) ListPostsByForum(ctx context.Context, forumID uint) ([]dto.PostView, error) {
	var posts []model.Post
	if err := s.Data.DB.WithContext(ctx).Where("forum_id = ?", forumID).Order("id").Find(&posts).Error; err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}

	// 收集本页涉及的帖子 ID，一次把评论都捞出来
	postIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}

	var comments []model.Comment
	if err := s.Data.DB.WithContext(ctx).Where("post_id IN ?", postIDs).Order("id").Find(&comments).Error; err != nil {
		return nil, err
	}

	users, err := s.loadAuthors(ctx, posts, comments)
	if err != nil {
		return nil, err
	}

	// 评论按帖子分组
	byPost := make(map[uint][]dto.CommentView)
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], commentView(c, users))
	}

	var result []dto.PostView
	for _, p := range posts {
		view := dto.PostView{
			ID:        p.ID,
			Content:   p.Content,
			Image:     p.Image,
			CreatedAt: p.CreatedAt,
			Comments:  byPost[p.ID],
		}
		if u, ok := users[p.AuthorID]; ok {
			view.AuthorName = u.Username
			view.AuthorAvatar = u.Avatar
		}
		result = append(result, view)
	}
	return result, nil
}

// DeletePost 删帖 (路由层保证只有管理员能调)
// 返回被删的帖子，给审计流水记快照用
func (s *ForumService) DeletePost(ctx context.Context, id uint) (*model.Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Data.DB.WithContext(ctx).Delete(&model.Post{}, id).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment 发评论，不要求登录
// authorID 为 nil 表示匿名评论。返回帖子所属板块 ID，Handler 重定向用
func (s *ForumService) CreateComment(ctx context.Context, postID uint, authorID *uint, content string) (*model.Comment, uint, error) {
	// 1. 校验帖子存在
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, 0, err
	}

	// 2. 落库
	comment := &model.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.Data.DB.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, 0, err
	}
	return comment, post.ForumID, nil
}

// DeleteComment 删评论 (路由层保证只有管理员能调)
func (s *ForumService) DeleteComment(ctx context.Context, id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := s.Data.DB.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	if err := s.Data.DB.WithContext(ctx).Delete(&model.Comment{}, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListAllPosts 后台的帖子总表
func (s *ForumService) ListAllPosts(ctx context.Context) ([]dto.PostView, error) {
	var posts []model.Post
	if err := s.Data.DB.WithContext(ctx).Order("id desc").Find(&posts).Error; err != nil {
		return nil, err
	}

	users, err := s.loadAuthors(ctx, posts, nil)
	if err != nil {
		return nil, err
	}

	var result []dto.PostView
	for _, p := range posts {
		view := dto.PostView{
			ID:        p.ID,
			Content:   p.Content,
			Image:     p.Image,
			CreatedAt: p.CreatedAt,
		}
		if u, ok := users[p.AuthorID]; ok {
			view.AuthorName = u.Username
			view.AuthorAvatar = u.Avatar
		}
		result = append(result, view)
	}
	return result, nil
}

// ListAllComments 后台的评论总表
func (s *ForumService) ListAllComments(ctx context.Context) ([]dto.CommentView, error) {
	var comments []model.Comment
	if err := s.Data.DB.WithContext(ctx).Order("id desc").Find(&comments).Error; err != nil {
		return nil, err
	}

	users, err := s.loadAuthors(ctx, nil, comments)
	if err != nil {
		return nil, err
	}

	var result []dto.CommentView
	for _, c := range comments {
		result = append(result, commentView(c, users))
	}
	return result, nil
}

// loadAuthors 把帖子和评论涉及的作者一次性查出来，避免 N+1
func (s *ForumService) loadAuthors(ctx context.Context, posts []model.Post, comments []model.Comment) (map[uint]model.User, error) {
	idSet := make(map[uint]bool)
	for _, p := range posts {
		idSet[p.AuthorID] = true
	}
	for _, c := range comments {
		if c.AuthorID != nil {
			idSet[*c.AuthorID] = true
		}
	}

	users := make(map[uint]model.User)
	if len(idSet) == 0 {
		return users, nil
	}

	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var rows []model.User
	if err := s.Data.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, u := range rows {
		users[u.ID] = u
	}
	return users, nil
}

func commentView(c model.Comment, users map[uint]model.User) dto.CommentView {
	view := dto.CommentView{
		ID:         c.ID,
		Content:    c.Content,
		AuthorName: "匿名",
		CreatedAt:  c.CreatedAt,
	}
	if c.AuthorID != nil {
		if u, ok := users[*c.AuthorID]; ok {
			view.AuthorName = u.Username
		}
	}
	return view
}
