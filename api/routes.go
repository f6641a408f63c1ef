package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// setupRoutes mounts the versioned API. Reads of posts, profiles and
// comments are public; everything else goes through authMiddleware.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, authLimit func(http.Handler) http.Handler) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimit)
			r.Post("/register", handlers.authHandler.register())
			r.Post("/login", handlers.authHandler.login())
			r.Post("/token/refresh", handlers.authHandler.refresh())
			r.Post("/logout", handlers.authHandler.logout())
		})

		r.Route("/user", func(r chi.Router) {
			r.With(authMiddleware.identify).Get("/profile/{userID}", handlers.userHandler.getProfile())
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.authenticate)
				r.Put("/profile/{userID}", handlers.userHandler.updateProfile(false))
				r.Patch("/profile/{userID}", handlers.userHandler.updateProfile(true))
				r.Delete("/delete-account", handlers.userHandler.deleteAccount())
			})
		})

		r.Route("/blogs", func(r chi.Router) {
			r.With(authMiddleware.identify).Get("/", handlers.blogPostHandler.listPosts())
			r.With(authMiddleware.authenticate).Post("/", handlers.blogPostHandler.createPost())

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.authenticate)
				r.Get("/tags", handlers.tagHandler.listTags())
				r.Post("/tags", handlers.tagHandler.createTag())
			})

			r.With(authMiddleware.identify).Get("/user/{userID}", handlers.blogPostHandler.listPostsByUser())
			r.With(authMiddleware.identify).Get("/tag/{tagSlug}", handlers.blogPostHandler.listPostsByTag())

			r.Route("/comments", func(r chi.Router) {
				r.Use(authMiddleware.authenticate)
				r.Put("/reply/{commentID}", handlers.commentHandler.updateComment(replyComment, false))
				r.Patch("/reply/{commentID}", handlers.commentHandler.updateComment(replyComment, true))
				r.Delete("/reply/{commentID}", handlers.commentHandler.deleteComment(replyComment))
				r.Post("/{commentID}/reply", handlers.commentHandler.createReply())
				r.Put("/{commentID}", handlers.commentHandler.updateComment(topLevelComment, false))
				r.Patch("/{commentID}", handlers.commentHandler.updateComment(topLevelComment, true))
				r.Delete("/{commentID}", handlers.commentHandler.deleteComment(topLevelComment))
			})

			r.Route("/{post}", func(r chi.Router) {
				r.With(authMiddleware.identify).Get("/", handlers.blogPostHandler.getPost())
				r.Group(func(r chi.Router) {
					r.Use(authMiddleware.authenticate)
					r.Put("/", handlers.blogPostHandler.updatePost(false))
					r.Patch("/", handlers.blogPostHandler.updatePost(true))
					r.Delete("/", handlers.blogPostHandler.deletePost())
				})

				r.With(authMiddleware.identify).Get("/comments", handlers.commentHandler.listComments())
				r.With(authMiddleware.authenticate).Post("/comments", handlers.commentHandler.createComment())
			})
		})
	})
}
