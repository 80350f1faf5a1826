package httpapp

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devsocial/devsocial/internal/engagement"
	"github.com/devsocial/devsocial/internal/feed"
)

// handleCreatePost godoc
//
//	@Summary		Create a post
//	@Description	Content is required; hashtags are stored without a leading '#'.
//	@Tags			Posts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			post	body		engagement.PostInput	true	"Post"
//	@Success		200		{object}	model.Post
//	@Failure		400		{object}	map[string]string
//	@Failure		429		{object}	map[string]any	"Rate limited"
//	@Router			/api/posts [post]
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	if !s.allowRateLimit(w, r, "post", s.cfg.RateLimits.PostPerMinute) {
		return
	}
	var in engagement.PostInput
	if err := readJSON(r.Body, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	post, err := s.engagement.CreatePost(r.Context(), id.UserID, in)
	if err != nil {
		s.fail(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// handleListPosts godoc
//
//	@Summary	Global feed
//	@Tags		Posts
//	@Produce	json
//	@Param		skip	query	int	false	"Offset"	default(0)
//	@Param		limit	query	int	false	"Page size"	default(20)	maximum(100)
//	@Success	200		{array}	model.Post
//	@Router		/api/posts [get]
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	posts, err := s.feed.Global(r.Context(), s.viewer(r), skip, limit)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// handleHomeFeed godoc
//
//	@Summary		Home feed
//	@Description	Your posts plus posts of the users you follow, newest first.
//	@Tags			Posts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			skip	query	int	false	"Offset"	default(0)
//	@Param			limit	query	int	false	"Page size"	default(20)	maximum(100)
//	@Success		200		{array}	model.Post
//	@Router			/api/posts/feed [get]
func (s *Server) handleHomeFeed(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	skip, limit := pageParams(r)
	posts, err := s.feed.Home(r.Context(), feed.Viewer(id.UserID), skip, limit)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// handleGetPost godoc
//
//	@Summary	Get a post
//	@Tags		Posts
//	@Produce	json
//	@Param		id	path		string	true	"Post ID"
//	@Success	200	{object}	model.Post
//	@Failure	404	{object}	map[string]string	"Post not found"
//	@Router		/api/posts/{id} [get]
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.feed.GetPost(r.Context(), s.viewer(r), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// handleDeletePost godoc
//
//	@Summary		Delete a post
//	@Description	Deletes your post with its likes and comments.
//	@Tags			Posts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Post ID"
//	@Success		200	{object}	map[string]string
//	@Failure		403	{object}	map[string]string	"Not authorized to delete this post"
//	@Failure		404	{object}	map[string]string	"Post not found"
//	@Router			/api/posts/{id} [delete]
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	if err := s.engagement.DeletePost(r.Context(), id.UserID, mux.Vars(r)["id"]); err != nil {
		s.fail(w, r, err, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleToggleLike godoc
//
//	@Summary		Like or unlike a post
//	@Description	Toggles the caller's like and returns the stored like count.
//	@Tags			Posts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Post ID"
//	@Success		200	{object}	engagement.LikeResult
//	@Failure		404	{object}	map[string]string	"Post not found"
//	@Failure		429	{object}	map[string]any		"Rate limited"
//	@Router			/api/posts/{id}/like [post]
func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	if !s.allowRateLimit(w, r, "like", s.cfg.RateLimits.LikePerMinute) {
		return
	}
	res, err := s.engagement.ToggleLike(r.Context(), id.UserID, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleCreateComment godoc
//
//	@Summary	Comment on a post
//	@Tags		Comments
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Post ID"
//	@Param		comment	body		object{content=string}	true	"Comment"
//	@Success	200		{object}	model.Comment
//	@Failure	404		{object}	map[string]string	"Post not found"
//	@Failure	429		{object}	map[string]any		"Rate limited"
//	@Router		/api/posts/{id}/comments [post]
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	if !s.allowRateLimit(w, r, "comment", s.cfg.RateLimits.CommentPerMinute) {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	comment, err := s.engagement.CreateComment(r.Context(), id.UserID, mux.Vars(r)["id"], req.Content)
	if err != nil {
		s.fail(w, r, err, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// handleListComments godoc
//
//	@Summary	List a post's comments
//	@Tags		Comments
//	@Produce	json
//	@Param		id		path	string	true	"Post ID"
//	@Param		skip	query	int		false	"Offset"	default(0)
//	@Param		limit	query	int		false	"Page size"	default(50)	maximum(100)
//	@Success	200		{array}	model.Comment
//	@Router		/api/posts/{id}/comments [get]
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	comments, err := s.feed.Comments(r.Context(), mux.Vars(r)["id"], skip, limit)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// handleSearchPosts godoc
//
//	@Summary		Search posts
//	@Description	Case-insensitive substring match over content, hashtags and code.
//	@Tags			Search
//	@Produce		json
//	@Param			q		query		string	true	"Search text"	minlength(1)
//	@Param			skip	query		int		false	"Offset"	default(0)
//	@Param			limit	query		int		false	"Page size"	default(20)	maximum(100)
//	@Success		200		{array}		model.Post
//	@Failure		400		{object}	map[string]string
//	@Router			/api/search/posts [get]
func (s *Server) handleSearchPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, errors.New("query parameter q is required"))
		return
	}
	skip, limit := pageParams(r)
	posts, err := s.feed.Search(r.Context(), s.viewer(r), q, skip, limit)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// handleHashtagPosts godoc
//
//	@Summary	Posts with a hashtag
//	@Tags		Search
//	@Produce	json
//	@Param		tag		path	string	true	"Hashtag, matched case-insensitively"
//	@Param		skip	query	int		false	"Offset"	default(0)
//	@Param		limit	query	int		false	"Page size"	default(20)	maximum(100)
//	@Success	200		{array}	model.Post
//	@Router		/api/hashtags/{tag}/posts [get]
func (s *Server) handleHashtagPosts(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	posts, err := s.feed.Hashtag(r.Context(), s.viewer(r), mux.Vars(r)["tag"], skip, limit)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// handleTrending godoc
//
//	@Summary	Trending hashtags
//	@Tags		Search
//	@Produce	json
//	@Param		limit	query	int	false	"How many"	default(10)	maximum(100)
//	@Success	200		{array}	model.HashtagCount
//	@Router		/api/trending/hashtags [get]
func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	_, limit := pageParams(r)
	tags, err := s.feed.Trending(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// handleListNotifications godoc
//
//	@Summary	Your notifications
//	@Tags		Notifications
//	@Produce	json
//	@Security	BearerAuth
//	@Param		skip	query	int	false	"Offset"	default(0)
//	@Param		limit	query	int	false	"Page size"	default(50)	maximum(100)
//	@Success	200		{array}	model.Notification
//	@Router		/api/notifications [get]
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	skip, limit := pageParams(r)
	ns, err := s.engagement.ListNotifications(r.Context(), id.UserID, skip, limit)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, ns)
}

// handleMarkRead godoc
//
//	@Summary	Mark all notifications read
//	@Tags		Notifications
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]string
//	@Router		/api/notifications/mark-read [post]
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	if _, err := s.engagement.MarkAllRead(r.Context(), id.UserID); err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleUnreadCount godoc
//
//	@Summary	Unread notification count
//	@Tags		Notifications
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	map[string]int
//	@Router		/api/notifications/unread-count [get]
func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	count, err := s.engagement.UnreadCount(r.Context(), id.UserID)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
