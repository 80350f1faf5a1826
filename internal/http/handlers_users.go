package httpapp

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devsocial/devsocial/internal/auth"
	"github.com/devsocial/devsocial/internal/feed"
	"github.com/devsocial/devsocial/internal/model"
)

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        model.User `json:"user"`
}

// handleRoot godoc
//
//	@Summary	API banner
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/api/ [get]
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "DevSocial API is running", "version": APIVersion})
}

// handleHealth godoc
//
//	@Summary	Liveness probe
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/api/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleGetStats godoc
//
//	@Summary		Get site statistics
//	@Description	Counts of users, posts, comments, likes and follows
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	model.SiteStats
//	@Router			/api/stats [get]
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetSiteStats(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleAdminReconcile godoc
//
//	@Summary		Reconcile counters (admin)
//	@Description	Recompute follower, following, post, like and comment counters from the underlying edges. Requires X-Admin-Secret header.
//	@Tags			Admin
//	@Produce		json
//	@Param			X-Admin-Secret	header		string	true	"Admin secret"
//	@Success		200				{object}	model.ReconcileReport
//	@Failure		401				{object}	map[string]string	"Invalid admin secret"
//	@Router			/api/admin/reconcile [post]
func (s *Server) handleAdminReconcile(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AdminSecret == "" || r.Header.Get("X-Admin-Secret") != s.cfg.AdminSecret {
		writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	report, err := s.engagement.Reconcile(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleRegister godoc
//
//	@Summary		Register
//	@Description	Create an account and receive a bearer token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			user	body		auth.Registration	true	"New account"
//	@Success		200		{object}	TokenResponse
//	@Failure		400		{object}	map[string]string	"Invalid input or duplicate user"
//	@Router			/api/auth/register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.Registration
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	token, user, err := s.auth.Register(r.Context(), req)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token.Token, TokenType: "bearer", User: user})
}

// handleLogin godoc
//
//	@Summary	Log in
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		credentials	body		object{email=string,password=string}	true	"Credentials"
//	@Success	200			{object}	TokenResponse
//	@Failure	401			{object}	map[string]string	"Invalid email or password"
//	@Router		/api/auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	token, user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token.Token, TokenType: "bearer", User: user})
}

// handleMe godoc
//
//	@Summary	Current user
//	@Tags		Auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	model.User
//	@Failure	401	{object}	map[string]string
//	@Router		/api/auth/me [get]
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	user, err := s.store.GetUser(r.Context(), id.UserID)
	if err != nil {
		s.fail(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleGetUser godoc
//
//	@Summary	Get a user
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	model.User
//	@Failure	404	{object}	map[string]string	"User not found"
//	@Router		/api/users/{id} [get]
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleGetUserByUsername godoc
//
//	@Summary	Get a user by username
//	@Tags		Users
//	@Produce	json
//	@Param		username	path		string	true	"Username"
//	@Success	200			{object}	model.User
//	@Failure	404			{object}	map[string]string	"User not found"
//	@Router		/api/users/username/{username} [get]
func (s *Server) handleGetUserByUsername(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUserByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		s.fail(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleUpdateProfile godoc
//
//	@Summary		Update your profile
//	@Description	Only the fields present in the body are changed.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			profile	body		model.ProfileUpdate	true	"Fields to change"
//	@Success		200		{object}	model.User
//	@Router			/api/users/profile [put]
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var update model.ProfileUpdate
	if err := readJSON(r.Body, &update); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.UpdateProfile(r.Context(), id.UserID, update); err != nil {
		s.fail(w, r, err, "User not found")
		return
	}
	user, err := s.store.GetUser(r.Context(), id.UserID)
	if err != nil {
		s.fail(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleToggleFollow godoc
//
//	@Summary		Follow or unfollow a user
//	@Description	Toggles the follow edge from the caller to the user.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	map[string]string	"followed or unfollowed"
//	@Failure		400	{object}	map[string]string	"Cannot follow yourself"
//	@Failure		404	{object}	map[string]string	"User not found"
//	@Failure		429	{object}	map[string]any		"Rate limited"
//	@Router			/api/users/{id}/follow [post]
func (s *Server) handleToggleFollow(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	if !s.allowRateLimit(w, r, "follow", s.cfg.RateLimits.FollowPerMinute) {
		return
	}
	state, err := s.engagement.ToggleFollow(r.Context(), id.UserID, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(state)})
}

// handleIsFollowing godoc
//
//	@Summary	Whether you follow a user
//	@Tags		Users
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	map[string]bool
//	@Router		/api/users/{id}/is-following [get]
func (s *Server) handleIsFollowing(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	following, err := s.feed.IsFollowing(r.Context(), feed.Viewer(id.UserID), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_following": following})
}

// handleFollowers godoc
//
//	@Summary	List a user's followers
//	@Tags		Users
//	@Produce	json
//	@Param		id		path		string	true	"User ID"
//	@Param		skip	query		int		false	"Offset"	default(0)
//	@Param		limit	query		int		false	"Page size"	default(20)	maximum(100)
//	@Success	200		{array}		model.User
//	@Router		/api/users/{id}/followers [get]
func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	users, err := s.feed.Followers(r.Context(), mux.Vars(r)["id"], skip, limit)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// handleFollowing godoc
//
//	@Summary	List who a user follows
//	@Tags		Users
//	@Produce	json
//	@Param		id		path		string	true	"User ID"
//	@Param		skip	query		int		false	"Offset"	default(0)
//	@Param		limit	query		int		false	"Page size"	default(20)	maximum(100)
//	@Success	200		{array}		model.User
//	@Router		/api/users/{id}/following [get]
func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	users, err := s.feed.Following(r.Context(), mux.Vars(r)["id"], skip, limit)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// handleUserPosts godoc
//
//	@Summary	List a user's posts
//	@Tags		Users
//	@Produce	json
//	@Param		id		path		string	true	"User ID"
//	@Param		skip	query		int		false	"Offset"	default(0)
//	@Param		limit	query		int		false	"Page size"	default(20)	maximum(100)
//	@Success	200		{array}		model.Post
//	@Router		/api/users/{id}/posts [get]
func (s *Server) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	posts, err := s.feed.Author(r.Context(), s.viewer(r), mux.Vars(r)["id"], skip, limit)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// handleSearchUsers godoc
//
//	@Summary	Search users
//	@Tags		Search
//	@Produce	json
//	@Param		q		query		string	true	"Substring of username, full name or skill"	minlength(1)
//	@Param		skip	query		int		false	"Offset"	default(0)
//	@Param		limit	query		int		false	"Page size"	default(20)	maximum(100)
//	@Success	200		{array}		model.User
//	@Failure	400		{object}	map[string]string
//	@Router		/api/search/users [get]
func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, errors.New("query parameter q is required"))
		return
	}
	skip, limit := pageParams(r)
	users, err := s.feed.SearchUsers(r.Context(), q, skip, limit)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, users)
}
