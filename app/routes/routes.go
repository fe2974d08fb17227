package routes

import (
	"net/http"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/mux"

	"socialfeed/app/apperror"
	"socialfeed/app/controllers"
	"socialfeed/app/logger"
	"socialfeed/app/middleware"
	"socialfeed/app/repositories"
	"socialfeed/app/services"
	"socialfeed/app/storage"
	"socialfeed/app/token"
	"socialfeed/app/validation"
)

// Options holds everything the router needs to build its handlers.
type Options struct {
	DB             *badger.DB
	Images         storage.Store
	Tokens         *token.Manager
	PageSize       int
	BcryptCost     int
	MaxUploadBytes int64
	AllowedOrigins []string
	Logger         *logger.Logger
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(opts Options) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger(opts.Logger))
	router.Use(middleware.Recoverer(opts.Logger))
	router.Use(middleware.ContentTypeJSON)

	userRepo := repositories.NewBadgerUserRepository(opts.DB)
	postRepo := repositories.NewBadgerPostRepository(opts.DB)
	validator := validation.New()

	authService := services.NewAuthService(userRepo, opts.Tokens, validator, opts.BcryptCost, opts.Logger)
	feedService := services.NewFeedService(postRepo, userRepo, opts.Images, validator, opts.PageSize, opts.Logger)

	authController := controllers.NewAuthController(authService, opts.Logger)
	feedController := controllers.NewFeedController(feedService, opts.MaxUploadBytes, opts.Logger)
	imageController := controllers.NewImageController(opts.Images, opts.Logger)

	requireAuth := middleware.Authenticate(authService)

	// Auth endpoints
	auth := router.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup", authController.Signup).Methods("PUT")
	auth.HandleFunc("/login", authController.Login).Methods("POST")
	auth.Handle("/status", requireAuth(http.HandlerFunc(authController.GetStatus))).Methods("GET")
	auth.Handle("/status", requireAuth(http.HandlerFunc(authController.UpdateStatus))).Methods("PATCH")

	// Feed endpoints, all authenticated
	feed := router.PathPrefix("/feed").Subrouter()
	feed.Use(requireAuth)
	feed.HandleFunc("/posts", feedController.Index).Methods("GET")
	feed.HandleFunc("/post", feedController.Create).Methods("POST")
	feed.HandleFunc("/post/{postId}", feedController.Show).Methods("GET")
	feed.HandleFunc("/post/{postId}", feedController.Update).Methods("PATCH")
	feed.HandleFunc("/post/{postId}", feedController.Delete).Methods("DELETE")

	// Uploaded images
	router.HandleFunc("/images/{name}", imageController.Show).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apperror.Write(w, apperror.NewNotFound("Not Found", nil))
	})

	return router
}

// NewHandler returns the routes wrapped in CORS handling. CORS sits outside
// the router so preflight requests are answered for every route.
func NewHandler(opts Options) http.Handler {
	return middleware.CORS(opts.AllowedOrigins)(SetupRoutes(opts))
}
