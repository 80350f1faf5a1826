package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/devsocial/devsocial/internal/model"
	"github.com/devsocial/devsocial/internal/store"

	_ "modernc.org/sqlite"
)

// followSetCap bounds how many follow edges a home feed resolves.
const followSetCap = 1000

type Store struct {
	db *sqlx.DB
}

var _ store.Store = (*Store)(nil)

func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serializes every transaction; SQLite has a single writer
	// anyway and toggles depend on it.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migrations is an ordered list of SQL migrations.
// Each migration runs exactly once, tracked by schema_version table.
var migrations = []string{
	// Migration 1: Initial schema
	`
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name TEXT NOT NULL,
	bio TEXT,
	skills TEXT,
	avatar TEXT,
	followers_count INTEGER NOT NULL DEFAULT 0,
	following_count INTEGER NOT NULL DEFAULT 0,
	posts_count INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	content TEXT NOT NULL,
	code_snippet TEXT,
	language TEXT,
	media_url TEXT,
	media_type TEXT,
	hashtags TEXT,
	likes_count INTEGER NOT NULL DEFAULT 0,
	comments_count INTEGER NOT NULL DEFAULT 0,
	shares_count INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS post_hashtags (
	post_id TEXT NOT NULL,
	tag TEXT NOT NULL,
	PRIMARY KEY (post_id, tag)
);
CREATE INDEX IF NOT EXISTS idx_post_hashtags_tag ON post_hashtags(tag COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS comments (
	id TEXT PRIMARY KEY,
	post_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id, created_at);

CREATE TABLE IF NOT EXISTS likes (
	id TEXT PRIMARY KEY,
	post_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_unique ON likes(post_id, user_id);
CREATE INDEX IF NOT EXISTS idx_likes_user_id ON likes(user_id);

CREATE TABLE IF NOT EXISTS follows (
	id TEXT PRIMARY KEY,
	follower_id TEXT NOT NULL,
	following_id TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_follows_unique ON follows(follower_id, following_id);
CREATE INDEX IF NOT EXISTS idx_follows_following_id ON follows(following_id);

CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL,
	from_user_id TEXT NOT NULL,
	from_username TEXT NOT NULL,
	post_id TEXT,
	read INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS auth_tokens (
	token TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	expires_at INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
`,
	// Migration 2: Unicode case-folded shadow columns for search
	`
ALTER TABLE users ADD COLUMN username_fold TEXT NOT NULL DEFAULT '';
ALTER TABLE users ADD COLUMN full_name_fold TEXT NOT NULL DEFAULT '';
ALTER TABLE users ADD COLUMN skills_fold TEXT NOT NULL DEFAULT '';
ALTER TABLE posts ADD COLUMN content_fold TEXT NOT NULL DEFAULT '';
ALTER TABLE posts ADD COLUMN code_fold TEXT NOT NULL DEFAULT '';
ALTER TABLE post_hashtags ADD COLUMN tag_fold TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS idx_post_hashtags_tag_fold ON post_hashtags(tag_fold);
`,
}

// migrationHooks run in Go right after the migration with the same version.
var migrationHooks = map[int]func(*sqlx.DB) error{
	2: backfillFolds,
}

// fold lowercases s with full Unicode case mapping for the *_fold columns.
// SQLite's LIKE, lower() and NOCASE fold ASCII only.
func fold(s string) string {
	return strings.ToLower(s)
}

func backfillFolds(db *sqlx.DB) error {
	var users []struct {
		ID       string         `db:"id"`
		Username string         `db:"username"`
		FullName string         `db:"full_name"`
		Skills   sql.NullString `db:"skills"`
	}
	if err := db.Select(&users, `SELECT id, username, full_name, skills FROM users`); err != nil {
		return err
	}
	for _, u := range users {
		if _, err := db.Exec(`UPDATE users SET username_fold = ?, full_name_fold = ?, skills_fold = ? WHERE id = ?`,
			fold(u.Username), fold(u.FullName), fold(u.Skills.String), u.ID); err != nil {
			return err
		}
	}

	var posts []struct {
		ID      string         `db:"id"`
		Content string         `db:"content"`
		Code    sql.NullString `db:"code_snippet"`
	}
	if err := db.Select(&posts, `SELECT id, content, code_snippet FROM posts`); err != nil {
		return err
	}
	for _, p := range posts {
		if _, err := db.Exec(`UPDATE posts SET content_fold = ?, code_fold = ? WHERE id = ?`,
			fold(p.Content), fold(p.Code.String), p.ID); err != nil {
			return err
		}
	}

	var tags []struct {
		PostID string `db:"post_id"`
		Tag    string `db:"tag"`
	}
	if err := db.Select(&tags, `SELECT post_id, tag FROM post_hashtags`); err != nil {
		return err
	}
	for _, t := range tags {
		if _, err := db.Exec(`UPDATE post_hashtags SET tag_fold = ? WHERE post_id = ? AND tag = ?`,
			fold(t.Tag), t.PostID, t.Tag); err != nil {
			return err
		}
	}
	return nil
}

func applySchema(db *sqlx.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return err
	}

	var currentVersion int
	if err := db.Get(&currentVersion, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
		return err
	}

	for i := currentVersion; i < len(migrations); i++ {
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if hook := migrationHooks[i+1]; hook != nil {
			if err := hook(db); err != nil {
				return fmt.Errorf("migration %d backfill failed: %w", i+1, err)
			}
		}
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
	}

	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// ---- users ----

const userColumns = `id, username, email, password_hash, full_name, bio, skills, avatar, followers_count, following_count, posts_count, created_at`

type userRow struct {
	ID             string         `db:"id"`
	Username       string         `db:"username"`
	Email          string         `db:"email"`
	PasswordHash   string         `db:"password_hash"`
	FullName       string         `db:"full_name"`
	Bio            sql.NullString `db:"bio"`
	Skills         sql.NullString `db:"skills"`
	Avatar         sql.NullString `db:"avatar"`
	FollowersCount int            `db:"followers_count"`
	FollowingCount int            `db:"following_count"`
	PostsCount     int            `db:"posts_count"`
	CreatedAt      int64          `db:"created_at"`
}

func (r userRow) toModel() model.User {
	return model.User{
		ID:             r.ID,
		Username:       r.Username,
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		FullName:       r.FullName,
		Bio:            r.Bio.String,
		Skills:         decodeStrings(r.Skills),
		Avatar:         r.Avatar.String,
		FollowersCount: r.FollowersCount,
		FollowingCount: r.FollowingCount,
		PostsCount:     r.PostsCount,
		CreatedAt:      fromNanos(r.CreatedAt),
	}
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, username, email, password_hash, full_name, bio, skills, avatar, created_at, username_fold, full_name_fold, skills_fold)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, user.ID, user.Username, user.Email, user.PasswordHash, user.FullName, user.Bio, encodeStrings(user.Skills), user.Avatar, user.CreatedAt.UnixNano(),
		fold(user.Username), fold(user.FullName), fold(encodeStrings(user.Skills)))
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateUser
		}
		return err
	}
	return nil
}

func (s *Store) getUserBy(ctx context.Context, column, value string) (model.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE `+column+` = ? LIMIT 1`, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, store.ErrNotFound
		}
		return model.User{}, err
	}
	return row.toModel(), nil
}

func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	return s.getUserBy(ctx, "id", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return s.getUserBy(ctx, "username", username)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.getUserBy(ctx, "email", email)
}

// GetUsers returns the users with the given ids in the order of ids. Unknown
// ids are skipped.
func (s *Store) GetUsers(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	byID := make(map[string]model.User, len(rows))
	for _, r := range rows {
		byID[r.ID] = r.toModel()
	}
	users := make([]model.User, 0, len(rows))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) error {
	var sets []string
	var args []any
	if update.FullName != nil {
		sets = append(sets, "full_name = ?", "full_name_fold = ?")
		args = append(args, *update.FullName, fold(*update.FullName))
	}
	if update.Bio != nil {
		sets = append(sets, "bio = ?")
		args = append(args, *update.Bio)
	}
	if update.Skills != nil {
		skills := encodeStrings(*update.Skills)
		sets = append(sets, "skills = ?", "skills_fold = ?")
		args = append(args, skills, fold(skills))
	}
	if update.Avatar != nil {
		sets = append(sets, "avatar = ?")
		args = append(args, *update.Avatar)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SearchUsers(ctx context.Context, q string, page store.Page) ([]model.User, error) {
	pattern := likePattern(q)
	var rows []userRow
	err := s.db.SelectContext(ctx, &rows, `
SELECT `+userColumns+`
FROM users
WHERE username_fold LIKE ? ESCAPE '\' OR full_name_fold LIKE ? ESCAPE '\' OR skills_fold LIKE ? ESCAPE '\'
ORDER BY created_at ASC, rowid ASC
LIMIT ? OFFSET ?
`, pattern, pattern, pattern, page.Limit, page.Skip)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toModel())
	}
	return users, nil
}

// ---- posts ----

const postColumns = `p.id, p.user_id, u.username, u.avatar AS user_avatar, p.content, p.code_snippet, p.language, p.media_url, p.media_type, p.hashtags, p.likes_count, p.comments_count, p.shares_count, p.created_at`

type postRow struct {
	ID            string         `db:"id"`
	UserID        string         `db:"user_id"`
	Username      sql.NullString `db:"username"`
	UserAvatar    sql.NullString `db:"user_avatar"`
	Content       string         `db:"content"`
	CodeSnippet   sql.NullString `db:"code_snippet"`
	Language      sql.NullString `db:"language"`
	MediaURL      sql.NullString `db:"media_url"`
	MediaType     sql.NullString `db:"media_type"`
	Hashtags      sql.NullString `db:"hashtags"`
	LikesCount    int            `db:"likes_count"`
	CommentsCount int            `db:"comments_count"`
	SharesCount   int            `db:"shares_count"`
	CreatedAt     int64          `db:"created_at"`
}

func (r postRow) toModel() model.Post {
	return model.Post{
		ID:            r.ID,
		UserID:        r.UserID,
		Username:      r.Username.String,
		UserAvatar:    r.UserAvatar.String,
		Content:       r.Content,
		CodeSnippet:   r.CodeSnippet.String,
		Language:      r.Language.String,
		MediaURL:      r.MediaURL.String,
		MediaType:     r.MediaType.String,
		Hashtags:      decodeStrings(r.Hashtags),
		LikesCount:    r.LikesCount,
		CommentsCount: r.CommentsCount,
		SharesCount:   r.SharesCount,
		CreatedAt:     fromNanos(r.CreatedAt),
	}
}

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Hashtags == nil {
		post.Hashtags = []string{}
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE users SET posts_count = posts_count + 1 WHERE id = ?`, post.UserID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO posts (id, user_id, content, code_snippet, language, media_url, media_type, hashtags, likes_count, comments_count, shares_count, created_at, content_fold, code_fold)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?)
`, post.ID, post.UserID, post.Content, nullIfEmpty(post.CodeSnippet), nullIfEmpty(post.Language), nullIfEmpty(post.MediaURL), nullIfEmpty(post.MediaType), encodeStrings(post.Hashtags), post.CreatedAt.UnixNano(),
			fold(post.Content), fold(post.CodeSnippet))
		if err != nil {
			return err
		}
		for _, tag := range post.Hashtags {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO post_hashtags (post_id, tag, tag_fold) VALUES (?, ?, ?)`, post.ID, tag, fold(tag)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetPost(ctx context.Context, id string) (model.Post, error) {
	var row postRow
	err := s.db.GetContext(ctx, &row, `
SELECT `+postColumns+`
FROM posts p
LEFT JOIN users u ON u.id = p.user_id
WHERE p.id = ?
LIMIT 1
`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, store.ErrNotFound
		}
		return model.Post{}, err
	}
	return row.toModel(), nil
}

func (s *Store) ListPosts(ctx context.Context, q store.PostQuery) ([]model.Post, error) {
	var where string
	var args []any
	switch {
	case len(q.AuthorIDs) > 0:
		where = `WHERE p.user_id IN (?)`
		args = append(args, q.AuthorIDs)
	case q.Hashtag != "":
		where = `WHERE EXISTS (SELECT 1 FROM post_hashtags h WHERE h.post_id = p.id AND h.tag_fold = ?)`
		args = append(args, fold(q.Hashtag))
	case q.Search != "":
		pattern := likePattern(q.Search)
		where = `WHERE p.content_fold LIKE ? ESCAPE '\'
	OR p.code_fold LIKE ? ESCAPE '\'
	OR EXISTS (SELECT 1 FROM post_hashtags h WHERE h.post_id = p.id AND h.tag_fold LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern, pattern)
	}
	args = append(args, q.Page.Limit, q.Page.Skip)

	query := `
SELECT ` + postColumns + `
FROM posts p
LEFT JOIN users u ON u.id = p.user_id
` + where + `
ORDER BY p.created_at DESC, p.rowid DESC
LIMIT ? OFFSET ?
`
	if len(q.AuthorIDs) > 0 {
		var err error
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return nil, err
		}
		query = s.db.Rebind(query)
	}

	var rows []postRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	posts := make([]model.Post, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, r.toModel())
	}
	return posts, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var authorID string
		if err := tx.GetContext(ctx, &authorID, `SELECT user_id FROM posts WHERE id = ?`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrNotFound
			}
			return err
		}
		for _, stmt := range []string{
			`DELETE FROM posts WHERE id = ?`,
			`DELETE FROM likes WHERE post_id = ?`,
			`DELETE FROM comments WHERE post_id = ?`,
			`DELETE FROM post_hashtags WHERE post_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `UPDATE users SET posts_count = posts_count - 1 WHERE id = ?`, authorID)
		return err
	})
}

func (s *Store) TrendingHashtags(ctx context.Context, limit int) ([]model.HashtagCount, error) {
	var rows []struct {
		Tag   string `db:"tag"`
		Count int    `db:"count"`
	}
	err := s.db.SelectContext(ctx, &rows, `
SELECT tag, COUNT(*) AS count
FROM post_hashtags
GROUP BY tag
ORDER BY count DESC, tag ASC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.HashtagCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.HashtagCount{Hashtag: r.Tag, Count: r.Count})
	}
	return out, nil
}

// ---- comments ----

type commentRow struct {
	ID         string         `db:"id"`
	PostID     string         `db:"post_id"`
	UserID     string         `db:"user_id"`
	Username   sql.NullString `db:"username"`
	UserAvatar sql.NullString `db:"user_avatar"`
	Content    string         `db:"content"`
	CreatedAt  int64          `db:"created_at"`
}

func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE posts SET comments_count = comments_count + 1 WHERE id = ?`, comment.PostID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO comments (id, post_id, user_id, content, created_at)
VALUES (?, ?, ?, ?, ?)
`, comment.ID, comment.PostID, comment.UserID, comment.Content, comment.CreatedAt.UnixNano())
		return err
	})
}

func (s *Store) ListCommentsByPost(ctx context.Context, postID string, page store.Page) ([]model.Comment, error) {
	var rows []commentRow
	err := s.db.SelectContext(ctx, &rows, `
SELECT c.id, c.post_id, c.user_id, u.username, u.avatar AS user_avatar, c.content, c.created_at
FROM comments c
LEFT JOIN users u ON u.id = c.user_id
WHERE c.post_id = ?
ORDER BY c.created_at ASC, c.rowid ASC
LIMIT ? OFFSET ?
`, postID, page.Limit, page.Skip)
	if err != nil {
		return nil, err
	}
	comments := make([]model.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, model.Comment{
			ID:         r.ID,
			PostID:     r.PostID,
			UserID:     r.UserID,
			Username:   r.Username.String,
			UserAvatar: r.UserAvatar.String,
			Content:    r.Content,
			CreatedAt:  fromNanos(r.CreatedAt),
		})
	}
	return comments, nil
}

// ---- likes ----

func (s *Store) ToggleLike(ctx context.Context, postID, userID string, at time.Time) (store.EdgeState, error) {
	var state store.EdgeState
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var posts int
		if err := tx.GetContext(ctx, &posts, `SELECT COUNT(*) FROM posts WHERE id = ?`, postID); err != nil {
			return err
		}
		if posts == 0 {
			return store.ErrNotFound
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE post_id = ? AND user_id = ?`, postID, userID)
		if err != nil {
			return err
		}
		delta := -1
		if n, _ := res.RowsAffected(); n > 0 {
			state.Existed = true
		} else {
			delta = 1
			if _, err := tx.ExecContext(ctx, `
INSERT INTO likes (id, post_id, user_id, created_at) VALUES (?, ?, ?, ?)
`, uuid.NewString(), postID, userID, at.UnixNano()); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE posts SET likes_count = likes_count + ? WHERE id = ?`, delta, postID); err != nil {
			return err
		}
		return tx.GetContext(ctx, &state.Count, `SELECT likes_count FROM posts WHERE id = ?`, postID)
	})
	return state, err
}

func (s *Store) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool)
	if len(postIDs) == 0 {
		return liked, nil
	}
	query, args, err := sqlx.In(`SELECT post_id FROM likes WHERE user_id = ? AND post_id IN (?)`, userID, postIDs)
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (s *Store) CountLikes(ctx context.Context, postID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID)
	return count, err
}

// ---- follows ----

func (s *Store) ToggleFollow(ctx context.Context, followerID, followingID string, at time.Time) (store.EdgeState, error) {
	var state store.EdgeState
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var users int
		if err := tx.GetContext(ctx, &users, `SELECT COUNT(*) FROM users WHERE id = ?`, followingID); err != nil {
			return err
		}
		if users == 0 {
			return store.ErrNotFound
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM follows WHERE follower_id = ? AND following_id = ?`, followerID, followingID)
		if err != nil {
			return err
		}
		delta := -1
		if n, _ := res.RowsAffected(); n > 0 {
			state.Existed = true
		} else {
			delta = 1
			if _, err := tx.ExecContext(ctx, `
INSERT INTO follows (id, follower_id, following_id, created_at) VALUES (?, ?, ?, ?)
`, uuid.NewString(), followerID, followingID, at.UnixNano()); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE users SET following_count = following_count + ? WHERE id = ?`, delta, followerID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE users SET followers_count = followers_count + ? WHERE id = ?`, delta, followingID); err != nil {
			return err
		}
		return tx.GetContext(ctx, &state.Count, `SELECT followers_count FROM users WHERE id = ?`, followingID)
	})
	return state, err
}

func (s *Store) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE follower_id = ? AND following_id = ?`, followerID, followingID)
	return count > 0, err
}

func (s *Store) ListFollowingIDs(ctx context.Context, followerID string, page store.Page) ([]string, error) {
	limit := page.Limit
	if limit <= 0 || limit > followSetCap {
		limit = followSetCap
	}
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids, `
SELECT following_id FROM follows
WHERE follower_id = ?
ORDER BY created_at ASC, rowid ASC
LIMIT ? OFFSET ?
`, followerID, limit, page.Skip)
	return ids, err
}

func (s *Store) ListFollowerIDs(ctx context.Context, followingID string, page store.Page) ([]string, error) {
	limit := page.Limit
	if limit <= 0 || limit > followSetCap {
		limit = followSetCap
	}
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids, `
SELECT follower_id FROM follows
WHERE following_id = ?
ORDER BY created_at ASC, rowid ASC
LIMIT ? OFFSET ?
`, followingID, limit, page.Skip)
	return ids, err
}

// ---- notifications ----

type notificationRow struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	Type         string         `db:"type"`
	FromUserID   string         `db:"from_user_id"`
	FromUsername string         `db:"from_username"`
	PostID       sql.NullString `db:"post_id"`
	Read         bool           `db:"read"`
	CreatedAt    int64          `db:"created_at"`
}

func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO notifications (id, user_id, type, from_user_id, from_username, post_id, read, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, n.ID, n.UserID, string(n.Type), n.FromUserID, n.FromUsername, nullIfEmpty(n.PostID), boolToInt(n.Read), n.CreatedAt.UnixNano())
	return err
}

func (s *Store) ListNotifications(ctx context.Context, userID string, page store.Page) ([]model.Notification, error) {
	var rows []notificationRow
	err := s.db.SelectContext(ctx, &rows, `
SELECT id, user_id, type, from_user_id, from_username, post_id, read, created_at
FROM notifications
WHERE user_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ? OFFSET ?
`, userID, page.Limit, page.Skip)
	if err != nil {
		return nil, err
	}
	out := make([]model.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Notification{
			ID:           r.ID,
			UserID:       r.UserID,
			Type:         model.NotificationType(r.Type),
			FromUserID:   r.FromUserID,
			FromUsername: r.FromUsername,
			PostID:       r.PostID.String,
			Read:         r.Read,
			CreatedAt:    fromNanos(r.CreatedAt),
		})
	}
	return out, nil
}

func (s *Store) MarkNotificationsRead(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID)
	return count, err
}

// ---- tokens ----

func (s *Store) CreateToken(ctx context.Context, token model.Token) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO auth_tokens (token, user_id, expires_at, created_at)
VALUES (?, ?, ?, ?)
`, token.Token, token.UserID, token.ExpiresAt.UnixNano(), time.Now().UnixNano())
	return err
}

func (s *Store) GetToken(ctx context.Context, token string) (model.Token, error) {
	var row struct {
		Token     string `db:"token"`
		UserID    string `db:"user_id"`
		ExpiresAt int64  `db:"expires_at"`
	}
	if err := s.db.GetContext(ctx, &row, `SELECT token, user_id, expires_at FROM auth_tokens WHERE token = ?`, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Token{}, store.ErrNotFound
		}
		return model.Token{}, err
	}
	return model.Token{Token: row.Token, UserID: row.UserID, ExpiresAt: fromNanos(row.ExpiresAt)}, nil
}

// ---- maintenance ----

func (s *Store) GetSiteStats(ctx context.Context) (model.SiteStats, error) {
	var stats model.SiteStats
	for _, q := range []struct {
		dest  *int64
		query string
	}{
		{&stats.Users, `SELECT COUNT(*) FROM users`},
		{&stats.Posts, `SELECT COUNT(*) FROM posts`},
		{&stats.Comments, `SELECT COUNT(*) FROM comments`},
		{&stats.Likes, `SELECT COUNT(*) FROM likes`},
		{&stats.Follows, `SELECT COUNT(*) FROM follows`},
	} {
		if err := s.db.GetContext(ctx, q.dest, q.query); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// Reconcile rewrites every denormalized counter that disagrees with the
// cardinality of its edge set.
func (s *Store) Reconcile(ctx context.Context) (model.ReconcileReport, error) {
	var report model.ReconcileReport
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE users SET
	followers_count = (SELECT COUNT(*) FROM follows f WHERE f.following_id = users.id),
	following_count = (SELECT COUNT(*) FROM follows f WHERE f.follower_id = users.id),
	posts_count = (SELECT COUNT(*) FROM posts p WHERE p.user_id = users.id)
WHERE followers_count != (SELECT COUNT(*) FROM follows f WHERE f.following_id = users.id)
	OR following_count != (SELECT COUNT(*) FROM follows f WHERE f.follower_id = users.id)
	OR posts_count != (SELECT COUNT(*) FROM posts p WHERE p.user_id = users.id)
`)
		if err != nil {
			return err
		}
		report.Users, _ = res.RowsAffected()

		res, err = tx.ExecContext(ctx, `
UPDATE posts SET
	likes_count = (SELECT COUNT(*) FROM likes l WHERE l.post_id = posts.id),
	comments_count = (SELECT COUNT(*) FROM comments c WHERE c.post_id = posts.id)
WHERE likes_count != (SELECT COUNT(*) FROM likes l WHERE l.post_id = posts.id)
	OR comments_count != (SELECT COUNT(*) FROM comments c WHERE c.post_id = posts.id)
`)
		if err != nil {
			return err
		}
		report.Posts, _ = res.RowsAffected()
		return nil
	})
	return report, err
}

func encodeStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return string(b)
}

func decodeStrings(raw sql.NullString) []string {
	out := []string{}
	if raw.Valid && raw.String != "" {
		_ = json.Unmarshal([]byte(raw.String), &out)
	}
	return out
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// likePattern builds a folded substring pattern for LIKE ... ESCAPE '\'
// against the *_fold columns.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(fold(q)) + "%"
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
