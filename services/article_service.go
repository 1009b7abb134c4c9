package services

import (
	"context"
	"errors"
	"fmt"

	"content-review-cms/models"
	"content-review-cms/repositories"

	"gorm.io/gorm"
)

type ArticleService interface {
	CreateArticle(ctx context.Context, req models.CreateArticleRequest, userID uint) (*models.Article, error)
	PublishArticle(ctx context.Context, id uint, req models.PublishRequest, userID uint) (*models.PublishResult, error)
	// GetArticle returns the article with its workflow state to the author
	// or staff.
	GetArticle(ctx context.Context, id uint, user models.ResolvedUserCredential) (*models.ArticleView, error)
	// ReadArticle serves an article to a reader after the access check.
	ReadArticle(ctx context.Context, id uint, creds models.ContentAccessCredentials) (*models.ArticleView, models.PermitResult, error)
	GetArticles(ctx context.Context, params models.ArticleListParams) ([]models.Article, int64, error)
	DeleteArticle(ctx context.Context, id uint, user models.ResolvedUserCredential) error
	// ContentBody feeds the automatic reviewer.
	ContentBody(ctx context.Context, contentID int64) (string, error)
}

type articleService struct {
	articleRepo    repositories.ArticleRepository
	metadataRepo   repositories.ContentMetadataRepository
	contentService ContentService
}

func NewArticleService(articleRepo repositories.ArticleRepository, metadataRepo repositories.ContentMetadataRepository, contentService ContentService) ArticleService {
	return &articleService{
		articleRepo:    articleRepo,
		metadataRepo:   metadataRepo,
		contentService: contentService,
	}
}

func (s *articleService) CreateArticle(ctx context.Context, req models.CreateArticleRequest, userID uint) (*models.Article, error) {
	article := &models.Article{
		AuthorID: userID,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}
	return s.articleRepo.GetByID(ctx, article.ID)
}

func (s *articleService) PublishArticle(ctx context.Context, id uint, req models.PublishRequest, userID uint) (*models.PublishResult, error) {
	article, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != userID {
		return nil, &models.ErrorForbidden{Message: "only the author may publish this article"}
	}
	return s.contentService.Publish(ctx, PublishContentInput{
		Content:        article.Identity(),
		OwnerID:        int64(article.AuthorID),
		AccessAuthType: req.AccessAuthType,
		Password:       req.Password,
	})
}

func (s *articleService) GetArticle(ctx context.Context, id uint, user models.ResolvedUserCredential) (*models.ArticleView, error) {
	article, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != uint(user.ID) && !user.Role.IsStaff() {
		return nil, models.NotFound("article not found")
	}

	view := &models.ArticleView{Article: *article}
	metadata, err := s.metadataRepo.FindByContent(ctx, article.Identity())
	switch {
	case err == nil:
		view.Metadata = metadata
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return view, nil
}

func (s *articleService) ReadArticle(ctx context.Context, id uint, creds models.ContentAccessCredentials) (*models.ArticleView, models.PermitResult, error) {
	article, err := s.find(ctx, id)
	if err != nil {
		return nil, models.PermitResult{}, err
	}
	permit, metadata, err := s.contentService.CheckAccess(ctx, article.Identity(), creds)
	if err != nil {
		var notFound *models.ErrorNotFound
		if errors.As(err, &notFound) {
			// Never published: indistinguishable from missing for readers.
			return nil, models.PermitResult{}, models.NotFound("article not found")
		}
		return nil, models.PermitResult{}, err
	}
	if !permit.Permitted {
		return nil, permit, nil
	}
	return &models.ArticleView{Article: *article, Metadata: metadata}, permit, nil
}

func (s *articleService) GetArticles(ctx context.Context, params models.ArticleListParams) ([]models.Article, int64, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = 10
	}
	return s.articleRepo.GetList(ctx, params)
}

// DeleteArticle soft deletes the workflow state of a published article, or
// removes a never published draft outright.
func (s *articleService) DeleteArticle(ctx context.Context, id uint, user models.ResolvedUserCredential) error {
	article, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.contentService.Delete(ctx, article.Identity(), user)
	var notFound *models.ErrorNotFound
	if !errors.As(err, &notFound) {
		return err
	}

	if article.AuthorID != uint(user.ID) && !user.Role.IsStaff() {
		return &models.ErrorForbidden{Message: "only the author or staff may delete this article"}
	}
	return s.articleRepo.Delete(ctx, id)
}

func (s *articleService) ContentBody(ctx context.Context, contentID int64) (string, error) {
	article, err := s.find(ctx, uint(contentID))
	if err != nil {
		return "", err
	}
	return article.Title + "\n" + article.Content, nil
}

func (s *articleService) find(ctx context.Context, id uint) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound(fmt.Sprintf("article %d not found", id))
		}
		return nil, err
	}
	return article, nil
}
