package api

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, decoder requestDecoder) *routeHandlers {
	db := deps.Database
	return &routeHandlers{
		authHandler:     newAuthHandler(db.UserRepo(), deps.Tokens, deps.Blacklist, decoder),
		userHandler:     newUserHandler(db.UserRepo(), deps.Images, decoder),
		blogPostHandler: newBlogPostHandler(db.BlogPostRepo(), db.TagRepo(), deps.Images, decoder),
		tagHandler:      newTagHandler(db.TagRepo(), decoder),
		commentHandler:  newCommentHandler(db.CommentRepo(), db.BlogPostRepo(), deps.Images, decoder),
	}
}
