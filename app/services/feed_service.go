package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"socialfeed/app/apperror"
	"socialfeed/app/logger"
	"socialfeed/app/models"
	"socialfeed/app/repositories"
	"socialfeed/app/storage"
	"socialfeed/app/validation"
)

const (
	postNotFoundMessage  = "Post Not Found"
	notAuthorizedMessage = "Not Authorized"
	noImageMessage       = "No image provided"
)

// FeedService handles business logic for feed posts
type FeedService struct {
	postRepo  repositories.PostRepository
	userRepo  repositories.UserRepository
	images    storage.Store
	validator *validation.Validator
	pageSize  int
	now       func() time.Time
	logger    *logger.Logger

	mu          sync.Mutex
	lastImageMs int64
}

// NewFeedService creates a new FeedService
func NewFeedService(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	images storage.Store,
	validator *validation.Validator,
	pageSize int,
	logger *logger.Logger,
) *FeedService {
	if pageSize < 1 {
		pageSize = 2
	}
	return &FeedService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		images:    images,
		validator: validator,
		pageSize:  pageSize,
		now:       time.Now,
		logger:    logger,
	}
}

// ListPosts returns one page of posts, oldest first, with creators resolved,
// and the total number of posts.
func (s *FeedService) ListPosts(ctx context.Context, page int) ([]*models.Post, int, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.postRepo.Count()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	posts, err := s.postRepo.List(s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}

	creators := make(map[string]*models.User)
	for _, post := range posts {
		creator, ok := creators[post.CreatorID]
		if !ok {
			creator, err = s.lookupCreator(post)
			if err != nil {
				return nil, 0, err
			}
			creators[post.CreatorID] = creator
		}
		if err := s.attachCreator(post, creator); err != nil {
			return nil, 0, err
		}
	}

	return posts, total, nil
}

// GetPost retrieves a post by ID with its creator resolved
func (s *FeedService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.getPost(id)
	if err != nil {
		return nil, err
	}

	creator, err := s.lookupCreator(post)
	if err != nil {
		return nil, err
	}
	if err := s.attachCreator(post, creator); err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePost validates the input, stores the image and creates the post owned
// by userID. The image is removed again if the post cannot be stored.
func (s *FeedService) CreatePost(ctx context.Context, userID string, in models.PostInput, image *models.ImageUpload) (*models.Post, models.CreatorSummary, error) {
	in.Normalize()
	if err := s.validate(in); err != nil {
		return nil, models.CreatorSummary{}, err
	}

	name, ok, err := s.saveImage(ctx, image)
	if err != nil {
		return nil, models.CreatorSummary{}, err
	}
	if !ok {
		return nil, models.CreatorSummary{}, apperror.NewValidation(noImageMessage, nil)
	}

	post := &models.Post{
		Title:     in.Title,
		Content:   in.Content,
		ImageURL:  storage.ImageURL(name),
		CreatorID: userID,
	}
	if err := s.postRepo.Create(post); err != nil {
		s.removeImage(ctx, name)
		if errors.Is(err, repositories.ErrCreatorNotFound) {
			return nil, models.CreatorSummary{}, apperror.NewNotFound(userNotFoundMessage, err)
		}
		s.logger.Error("Feed service: failed to create post",
			"user_id", userID,
			"error", err.Error())
		return nil, models.CreatorSummary{}, fmt.Errorf("failed to create post: %w", err)
	}

	creator, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, models.CreatorSummary{}, fmt.Errorf("failed to get creator: %w", err)
	}
	if err := s.attachCreator(post, creator); err != nil {
		return nil, models.CreatorSummary{}, err
	}

	s.logger.Info("Feed service: post created",
		"post_id", post.ID,
		"user_id", userID)
	return post, creator.Summary(), nil
}

// UpdatePost replaces title and content and, when a new image is attached,
// the image. Only the creator may update a post.
func (s *FeedService) UpdatePost(ctx context.Context, id, userID string, in models.PostInput, image *models.ImageUpload) (*models.Post, error) {
	in.Normalize()
	if err := s.validate(in); err != nil {
		return nil, err
	}

	post, err := s.getOwnedPost(id, userID)
	if err != nil {
		return nil, err
	}

	name, replaced, err := s.saveImage(ctx, image)
	if err != nil {
		return nil, err
	}

	oldImageURL := post.ImageURL
	post.Title = in.Title
	post.Content = in.Content
	if replaced {
		post.ImageURL = storage.ImageURL(name)
	}

	if err := s.postRepo.Update(post); err != nil {
		if replaced {
			s.removeImage(ctx, name)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NewNotFound(postNotFoundMessage, err)
		}
		s.logger.Error("Feed service: failed to update post",
			"post_id", id,
			"error", err.Error())
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	if replaced && oldImageURL != post.ImageURL {
		s.removeImageURL(ctx, oldImageURL)
	}

	creator, err := s.lookupCreator(post)
	if err != nil {
		return nil, err
	}
	if err := s.attachCreator(post, creator); err != nil {
		return nil, err
	}

	s.logger.Info("Feed service: post updated",
		"post_id", id,
		"image_replaced", replaced)
	return post, nil
}

// DeletePost removes a post, its creator backlink and its image. Only the
// creator may delete a post.
func (s *FeedService) DeletePost(ctx context.Context, id, userID string) error {
	post, err := s.getOwnedPost(id, userID)
	if err != nil {
		return err
	}

	if err := s.postRepo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NewNotFound(postNotFoundMessage, err)
		}
		s.logger.Error("Feed service: failed to delete post",
			"post_id", id,
			"error", err.Error())
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.removeImageURL(ctx, post.ImageURL)

	s.logger.Info("Feed service: post deleted",
		"post_id", id,
		"user_id", userID)
	return nil
}

func (s *FeedService) validate(in models.PostInput) error {
	fields, err := s.validator.Check(in)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return validation.Failed(fields)
	}
	return nil
}

func (s *FeedService) getPost(id string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NewNotFound(postNotFoundMessage, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func (s *FeedService) getOwnedPost(id, userID string) (*models.Post, error) {
	post, err := s.getPost(id)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(userID) {
		s.logger.Info("Feed service: rejected change by non-creator",
			"post_id", id,
			"user_id", userID)
		return nil, apperror.NewForbidden(notAuthorizedMessage)
	}
	return post, nil
}

// lookupCreator returns nil without error when the creator no longer exists.
func (s *FeedService) lookupCreator(post *models.Post) (*models.User, error) {
	user, err := s.userRepo.GetByID(post.CreatorID)
	if errors.Is(err, repositories.ErrNotFound) {
		s.logger.Warn("Feed service: post creator missing",
			"post_id", post.ID,
			"creator_id", post.CreatorID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	return user, nil
}

// attachCreator sets post.Creator; a nil creator leaves it unset.
func (s *FeedService) attachCreator(post *models.Post, creator *models.User) error {
	if creator == nil {
		return nil
	}
	if err := post.SetCreator(creator); err != nil {
		return fmt.Errorf("failed to attach creator to post %s: %w", post.ID, err)
	}
	return nil
}

// saveImage stores an accepted upload and reports whether one was stored.
// Uploads that are not PNG or JPEG count as no upload.
func (s *FeedService) saveImage(ctx context.Context, image *models.ImageUpload) (string, bool, error) {
	if image == nil || image.Reader == nil {
		return "", false, nil
	}

	contentType, r, err := storage.DetectImage(image.Reader)
	if errors.Is(err, storage.ErrNotAnImage) {
		s.logger.Debug("Feed service: ignoring non-image upload",
			"filename", image.Filename,
			"declared_type", image.ContentType,
			"error", err.Error())
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	name := storage.GenerateName(image.Filename, s.imageTime())
	if err := s.images.Save(ctx, name, contentType, r); err != nil {
		s.logger.Error("Feed service: failed to save image",
			"image", name,
			"error", err.Error())
		return "", false, fmt.Errorf("failed to save image: %w", err)
	}
	return name, true, nil
}

// imageTime returns the upload time used in image names. It never repeats a
// millisecond, so two uploads of the same file get different names.
func (s *FeedService) imageTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.now().UnixMilli()
	if ms <= s.lastImageMs {
		ms = s.lastImageMs + 1
	}
	s.lastImageMs = ms
	return time.UnixMilli(ms)
}

func (s *FeedService) removeImageURL(ctx context.Context, url string) {
	name := storage.NameFromURL(url)
	if name == "" {
		s.logger.Warn("Feed service: cannot delete image with unexpected url", "image_url", url)
		return
	}
	s.removeImage(ctx, name)
}

// removeImage deletes a stored image; failures are only logged.
func (s *FeedService) removeImage(ctx context.Context, name string) {
	if err := s.images.Delete(ctx, name); err != nil {
		s.logger.Warn("Feed service: failed to delete image",
			"image", name,
			"error", err.Error())
	}
}
