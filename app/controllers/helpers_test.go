package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"socialfeed/app/middleware"
	"socialfeed/app/models"
	"socialfeed/app/repositories/mock"
	"socialfeed/app/services"
	"socialfeed/app/storage"
	"socialfeed/app/testutil"
	"socialfeed/app/token"
	"socialfeed/app/validation"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type testEnv struct {
	users  *mock.UserRepository
	posts  *mock.PostRepository
	images *storage.LocalStore
	auth   *AuthController
	feed   *FeedController
	image  *ImageController
	svc    *services.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := testutil.MakeNoopLogger()
	users := mock.NewUserRepository()
	posts := mock.NewPostRepository(users)

	images, err := storage.NewLocalStore(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)

	v := validation.New()
	authSvc := services.NewAuthService(users, token.NewManager("test-secret", time.Hour), v, bcrypt.MinCost, log)
	feedSvc := services.NewFeedService(posts, users, images, v, 2, log)

	return &testEnv{
		users:  users,
		posts:  posts,
		images: images,
		auth:   NewAuthController(authSvc, log),
		feed:   NewFeedController(feedSvc, 1<<20, log),
		image:  NewImageController(images, log),
		svc:    authSvc,
	}
}

func (e *testEnv) createUser(t *testing.T, email, name string) string {
	t.Helper()
	id, err := e.svc.Signup(context.Background(), models.SignupInput{Email: email, Password: "secret", Name: name})
	require.NoError(t, err)
	return id
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a form with the given fields and, if image is not
// nil, an "image" file part.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, filename string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(image))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func withVars(req *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(req, vars)
}

func decodeBody(t *testing.T, rw *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&body))
	return body
}

func imageName(t *testing.T, post map[string]interface{}) string {
	t.Helper()
	url, ok := post["imageUrl"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(url, storage.URLPrefix))
	return storage.NameFromURL(url)
}
