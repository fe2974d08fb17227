package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"socialfeed/app/apperror"
	"socialfeed/app/logger"
	"socialfeed/app/middleware"
	"socialfeed/app/models"
	"socialfeed/app/services"
)

// imageField is the multipart field carrying a post's image.
const imageField = "image"

// FeedController handles HTTP requests for feed posts
type FeedController struct {
	feedService    *services.FeedService
	maxUploadBytes int64
	logger         *logger.Logger
}

// NewFeedController creates a new FeedController. Request bodies larger than
// maxUploadBytes are rejected.
func NewFeedController(feedService *services.FeedService, maxUploadBytes int64, logger *logger.Logger) *FeedController {
	return &FeedController{
		feedService:    feedService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Index handles GET /feed/posts?page=N
func (fc *FeedController) Index(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	posts, total, err := fc.feedService.ListPosts(r.Context(), page)
	if err != nil {
		sendError(w, r, fc.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Posts Fetched",
		"posts":      posts,
		"totalItems": total,
	})
}

// Show handles GET /feed/post/{postId}
func (fc *FeedController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := fc.feedService.GetPost(r.Context(), mux.Vars(r)["postId"])
	if err != nil {
		sendError(w, r, fc.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Post Fetched",
		"post":    post,
	})
}

// Create handles POST /feed/post
func (fc *FeedController) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	in, image, cleanup, err := fc.parsePostForm(w, r)
	if err != nil {
		sendError(w, r, fc.logger, err)
		return
	}
	defer cleanup()

	post, creator, err := fc.feedService.CreatePost(r.Context(), userID, in, image)
	if err != nil {
		sendError(w, r, fc.logger, err)
		return
	}

	sendJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Post Created!",
		"post":    post,
		"creator": creator,
	})
}

// Update handles PATCH /feed/post/{postId}
func (fc *FeedController) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	in, image, cleanup, err := fc.parsePostForm(w, r)
	if err != nil {
		sendError(w, r, fc.logger, err)
		return
	}
	defer cleanup()

	post, err := fc.feedService.UpdatePost(r.Context(), mux.Vars(r)["postId"], userID, in, image)
	if err != nil {
		sendError(w, r, fc.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Post Updated",
		"post":    post,
	})
}

// Delete handles DELETE /feed/post/{postId}
func (fc *FeedController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	if err := fc.feedService.DeletePost(r.Context(), mux.Vars(r)["postId"], userID); err != nil {
		sendError(w, r, fc.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Post Deleted",
	})
}

// parsePostForm reads title, content and the optional image from a multipart,
// urlencoded or JSON body. cleanup releases the uploaded file and must be
// called once the request is done.
func (fc *FeedController) parsePostForm(w http.ResponseWriter, r *http.Request) (models.PostInput, *models.ImageUpload, func(), error) {
	var in models.PostInput
	noop := func() {}

	if fc.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, fc.maxUploadBytes)
	}

	if isJSON(r) {
		if err := decodeJSON(r, &in); err != nil {
			return in, nil, noop, err
		}
		return in, nil, noop, nil
	}

	if isMultipart(r) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return in, nil, noop, formError(err)
		}
	} else if err := r.ParseForm(); err != nil {
		return in, nil, noop, formError(err)
	}

	in.Title = r.FormValue("title")
	in.Content = r.FormValue("content")

	cleanup := func() {
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}

	if r.MultipartForm == nil {
		return in, nil, cleanup, nil
	}

	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, cleanup, nil
	}
	if err != nil {
		cleanup()
		return in, nil, noop, formError(err)
	}

	image := &models.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}
	return in, image, func() {
		file.Close()
		cleanup()
	}, nil
}

func formError(err error) error {
	if requestTooLarge(err) {
		return apperror.NewBadRequest("Request body too large", err)
	}
	return apperror.NewBadRequest("Invalid form body", err)
}
