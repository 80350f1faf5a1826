// Package client provides a Go client for the DevSocial API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/devsocial/devsocial/internal/model"
)

// Client is a DevSocial API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
	User       model.User
}

// New creates a new DevSocial client.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("devsocial: %d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Signup is the body of a registration.
type Signup struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	FullName string   `json:"full_name"`
	Bio      string   `json:"bio,omitempty"`
	Skills   []string `json:"skills,omitempty"`
}

// NewPost is the body of a post creation.
type NewPost struct {
	Content     string   `json:"content"`
	CodeSnippet string   `json:"code_snippet,omitempty"`
	Language    string   `json:"language,omitempty"`
	MediaURL    string   `json:"media_url,omitempty"`
	MediaType   string   `json:"media_type,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
}

type LikeResult struct {
	Status     string `json:"status"`
	LikesCount int    `json:"likes_count"`
}

type tokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        model.User `json:"user"`
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(s Signup) (model.User, error) {
	var resp tokenResponse
	if err := c.do(http.MethodPost, "/api/auth/register", s, &resp); err != nil {
		return model.User{}, err
	}
	c.Token, c.User = resp.AccessToken, resp.User
	return resp.User, nil
}

// Login exchanges credentials for a token and keeps it.
func (c *Client) Login(email, password string) (model.User, error) {
	var resp tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return model.User{}, err
	}
	c.Token, c.User = resp.AccessToken, resp.User
	return resp.User, nil
}

// RegisterOrLogin registers s, falling back to a login when the account
// already exists.
func (c *Client) RegisterOrLogin(s Signup) (model.User, error) {
	user, err := c.Register(s)
	if err == nil {
		return user, nil
	}
	if StatusOf(err) != http.StatusBadRequest {
		return model.User{}, fmt.Errorf("register: %w", err)
	}
	return c.Login(s.Email, s.Password)
}

// IsAuthenticated returns true if the client holds a token.
func (c *Client) IsAuthenticated() bool {
	return c.Token != ""
}

func (c *Client) Me() (model.User, error) {
	var user model.User
	err := c.do(http.MethodGet, "/api/auth/me", nil, &user)
	return user, err
}

func (c *Client) GetUser(id string) (model.User, error) {
	var user model.User
	err := c.do(http.MethodGet, "/api/users/"+url.PathEscape(id), nil, &user)
	return user, err
}

func (c *Client) CreatePost(p NewPost) (model.Post, error) {
	var post model.Post
	err := c.do(http.MethodPost, "/api/posts", p, &post)
	return post, err
}

func (c *Client) GetPost(id string) (model.Post, error) {
	var post model.Post
	err := c.do(http.MethodGet, "/api/posts/"+url.PathEscape(id), nil, &post)
	return post, err
}

// DeletePost deletes a post you own.
func (c *Client) DeletePost(id string) error {
	return c.do(http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, nil)
}

// ListPosts fetches the global feed.
func (c *Client) ListPosts(skip, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := c.do(http.MethodGet, "/api/posts"+pageQuery(skip, limit), nil, &posts)
	return posts, err
}

// HomeFeed fetches your posts plus those of accounts you follow.
func (c *Client) HomeFeed(skip, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := c.do(http.MethodGet, "/api/posts/feed"+pageQuery(skip, limit), nil, &posts)
	return posts, err
}

func (c *Client) ToggleLike(postID string) (LikeResult, error) {
	var res LikeResult
	err := c.do(http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/like", nil, &res)
	return res, err
}

// ToggleFollow returns "followed" or "unfollowed".
func (c *Client) ToggleFollow(userID string) (string, error) {
	var res struct {
		Status string `json:"status"`
	}
	err := c.do(http.MethodPost, "/api/users/"+url.PathEscape(userID)+"/follow", nil, &res)
	return res.Status, err
}

func (c *Client) Followers(userID string) ([]model.User, error) {
	var users []model.User
	err := c.do(http.MethodGet, "/api/users/"+url.PathEscape(userID)+"/followers", nil, &users)
	return users, err
}

func (c *Client) CreateComment(postID, content string) (model.Comment, error) {
	var comment model.Comment
	body := map[string]string{"content": content}
	err := c.do(http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/comments", body, &comment)
	return comment, err
}

func (c *Client) ListComments(postID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := c.do(http.MethodGet, "/api/posts/"+url.PathEscape(postID)+"/comments", nil, &comments)
	return comments, err
}

func (c *Client) SearchPosts(q string) ([]model.Post, error) {
	var posts []model.Post
	err := c.do(http.MethodGet, "/api/search/posts?q="+url.QueryEscape(q), nil, &posts)
	return posts, err
}

func (c *Client) Trending(limit int) ([]model.HashtagCount, error) {
	var tags []model.HashtagCount
	err := c.do(http.MethodGet, "/api/trending/hashtags?limit="+strconv.Itoa(limit), nil, &tags)
	return tags, err
}

func (c *Client) Notifications() ([]model.Notification, error) {
	var ns []model.Notification
	err := c.do(http.MethodGet, "/api/notifications", nil, &ns)
	return ns, err
}

func (c *Client) UnreadCount() (int, error) {
	var res struct {
		Count int `json:"count"`
	}
	err := c.do(http.MethodGet, "/api/notifications/unread-count", nil, &res)
	return res.Count, err
}

func (c *Client) MarkNotificationsRead() error {
	return c.do(http.MethodPost, "/api/notifications/mark-read", nil, nil)
}

// Reconcile triggers counter reconciliation with the admin secret.
func (c *Client) Reconcile(adminSecret string) (model.ReconcileReport, error) {
	var report model.ReconcileReport
	req, err := c.newRequest(http.MethodPost, "/api/admin/reconcile", nil)
	if err != nil {
		return report, err
	}
	req.Header.Set("X-Admin-Secret", adminSecret)
	err = c.send(req, &report)
	return report, err
}

func (c *Client) newRequest(method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

// do performs a request and decodes a 2xx JSON body into out when out is
// non-nil.
func (c *Client) do(method, path string, body, out any) error {
	req, err := c.newRequest(method, path, body)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		var payload struct {
			Error string `json:"error"`
		}
		msg := string(raw)
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func pageQuery(skip, limit int) string {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// TestHelper provides utilities for creating authenticated clients in tests.
type TestHelper struct {
	BaseURL string
}

// NewTestHelper creates a new test helper for the given base URL.
func NewTestHelper(baseURL string) *TestHelper {
	return &TestHelper{BaseURL: baseURL}
}

// CreateAuthenticatedClient registers (or logs in) an account derived from
// name and returns a client holding its token.
func (h *TestHelper) CreateAuthenticatedClient(name string) (*Client, error) {
	c := New(h.BaseURL)
	_, err := c.RegisterOrLogin(Signup{
		Username: name,
		Email:    name + "@example.com",
		Password: "password-" + name,
		FullName: name,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetToken creates an account (if needed) and returns an access token.
func (h *TestHelper) GetToken(name string) (string, error) {
	c, err := h.CreateAuthenticatedClient(name)
	if err != nil {
		return "", err
	}
	return c.Token, nil
}
