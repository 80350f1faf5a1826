package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devsocial/devsocial/internal/client"
	"github.com/devsocial/devsocial/internal/model"
)

const defaultServerURL = "http://localhost:8080"

// CLIConfig holds the CLI client session persisted to disk.
type CLIConfig struct {
	BaseURL  string `json:"base_url"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

func clientCmds() []*cobra.Command {
	return []*cobra.Command{
		registerCmd(),
		loginCmd(),
		whoamiCmd(),
		postCmd(),
		readCmd(),
		likeCmd(),
		followCmd(),
		commentCmd(),
		deleteCmd(),
		notificationsCmd(),
	}
}

func registerCmd() *cobra.Command {
	var signup client.Signup
	var url, skills string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if signup.Username == "" || signup.Email == "" || signup.Password == "" {
				return errors.New("--username, --email and --password are required")
			}
			if signup.FullName == "" {
				signup.FullName = signup.Username
			}
			signup.Skills = splitCSV(skills)
			c := client.New(strings.TrimSuffix(url, "/"))
			user, err := c.Register(signup)
			if err != nil {
				return err
			}
			if err := saveSession(c, user); err != nil {
				return err
			}
			fmt.Printf("✓ Registered '%s' (%s)\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", defaultServerURL, "DevSocial server URL")
	cmd.Flags().StringVar(&signup.Username, "username", "", "Username")
	cmd.Flags().StringVar(&signup.Email, "email", "", "Email")
	cmd.Flags().StringVar(&signup.Password, "password", "", "Password")
	cmd.Flags().StringVar(&signup.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&signup.Bio, "bio", "", "Bio")
	cmd.Flags().StringVar(&skills, "skills", "", "Comma-separated skills")
	return cmd
}

func loginCmd() *cobra.Command {
	var url, email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			c := client.New(strings.TrimSuffix(url, "/"))
			user, err := c.Login(email, password)
			if err != nil {
				return err
			}
			if err := saveSession(c, user); err != nil {
				return err
			}
			fmt.Printf("✓ Logged in as '%s'\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", defaultServerURL, "DevSocial server URL")
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	return cmd
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Aliases: []string{"status"},
		Short:   "Show the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadAuthenticatedClient()
			if err != nil {
				return err
			}
			me, err := c.Me()
			if err != nil {
				return err
			}
			fmt.Printf("User:      %s (%s)\n", me.Username, me.ID)
			fmt.Printf("Server:    %s\n", c.BaseURL)
			fmt.Printf("Followers: %d | Following: %d | Posts: %d\n", me.FollowersCount, me.FollowingCount, me.PostsCount)
			return nil
		},
	}
}

func postCmd() *cobra.Command {
	var p client.NewPost
	var codeFile, tags string
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish a post",
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.Content == "" {
				return errors.New("--text is required")
			}
			if codeFile != "" {
				code, err := os.ReadFile(codeFile)
				if err != nil {
					return fmt.Errorf("read code file: %w", err)
				}
				p.CodeSnippet = string(code)
			}
			p.Hashtags = splitCSV(tags)
			c, err := loadAuthenticatedClient()
			if err != nil {
				return err
			}
			post, err := c.CreatePost(p)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Posted %s\n", post.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Content, "text", "", "Post content")
	cmd.Flags().StringVar(&codeFile, "code", "", "File whose contents become the code snippet")
	cmd.Flags().StringVar(&p.Language, "lang", "", "Language of the code snippet")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated hashtags")
	return cmd
}

func readCmd() *cobra.Command {
	var limit int
	var home bool
	var postID string
	cmd := &cobra.Command{
		Use:     "read",
		Aliases: []string{"feed"},
		Short:   "Read the global or home feed, or one post with its comments",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := loadClient()
			if postID != "" {
				post, err := c.GetPost(postID)
				if err != nil {
					return err
				}
				printPost(0, post)
				comments, err := c.ListComments(postID)
				if err == nil && len(comments) > 0 {
					fmt.Printf("  --- Comments (%d) ---\n", len(comments))
					for _, comment := range comments {
						fmt.Printf("  @%s: %s\n", comment.Username, comment.Content)
					}
				}
				return nil
			}

			var posts []model.Post
			var err error
			if home {
				if !c.IsAuthenticated() {
					return errors.New("not logged in - run 'devsocial login'")
				}
				posts, err = c.HomeFeed(0, limit)
			} else {
				posts, err = c.ListPosts(0, limit)
			}
			if err != nil {
				return err
			}
			for i, p := range posts {
				printPost(i+1, p)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of posts")
	cmd.Flags().BoolVar(&home, "home", false, "Read your home feed instead of the global feed")
	cmd.Flags().StringVar(&postID, "post", "", "Show one post with comments")
	return cmd
}

func likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like or unlike a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadAuthenticatedClient()
			if err != nil {
				return err
			}
			res, err := c.ToggleLike(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s (%d likes)\n", res.Status, res.LikesCount)
			return nil
		},
	}
}

func followCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follow <user-id>",
		Short: "Follow or unfollow a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadAuthenticatedClient()
			if err != nil {
				return err
			}
			status, err := c.ToggleFollow(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s\n", status)
			return nil
		},
	}
}

func commentCmd() *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "comment <post-id>",
		Short: "Comment on a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" {
				return errors.New("--text is required")
			}
			c, err := loadAuthenticatedClient()
			if err != nil {
				return err
			}
			comment, err := c.CreateComment(args[0], text)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Commented %s\n", comment.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Comment text")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <post-id>",
		Aliases: []string{"rm"},
		Short:   "Delete one of your posts",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadAuthenticatedClient()
			if err != nil {
				return err
			}
			if err := c.DeletePost(args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Deleted post %s\n", args[0])
			return nil
		},
	}
}

func notificationsCmd() *cobra.Command {
	var markRead bool
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List your notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadAuthenticatedClient()
			if err != nil {
				return err
			}
			ns, err := c.Notifications()
			if err != nil {
				return err
			}
			for _, n := range ns {
				marker := "*"
				if n.Read {
					marker = " "
				}
				fmt.Printf("%s %-8s from @%s %s\n", marker, n.Type, n.FromUsername, n.CreatedAt.Format("2006-01-02 15:04"))
			}
			if markRead {
				return c.MarkNotificationsRead()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&markRead, "mark-read", false, "Mark all notifications read afterwards")
	return cmd
}

func printPost(n int, p model.Post) {
	if n > 0 {
		fmt.Printf("%d. ", n)
	}
	fmt.Printf("@%s: %s\n", p.Username, p.Content)
	if len(p.Hashtags) > 0 {
		fmt.Printf("   #%s\n", strings.Join(p.Hashtags, " #"))
	}
	fmt.Printf("   %d likes | %d comments | %s\n\n", p.LikesCount, p.CommentsCount, p.ID)
}

func splitCSV(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func devsocialDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".devsocial")
}

func cliConfigPath() string {
	return filepath.Join(devsocialDir(), "config.json")
}

func loadCLIConfig() (CLIConfig, error) {
	data, err := os.ReadFile(cliConfigPath())
	if err != nil {
		return CLIConfig{}, errors.New("not logged in - run 'devsocial login' or 'devsocial register'")
	}
	var cfg CLIConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, err
	}
	return cfg, nil
}

func saveCLIConfig(cfg CLIConfig) error {
	if err := os.MkdirAll(devsocialDir(), 0o700); err != nil {
		return err
	}
	data, _ := json.MarshalIndent(cfg, "", "  ")
	return os.WriteFile(cliConfigPath(), data, 0o600)
}

func saveSession(c *client.Client, user model.User) error {
	return saveCLIConfig(CLIConfig{
		BaseURL:  c.BaseURL,
		UserID:   user.ID,
		Username: user.Username,
		Token:    c.Token,
	})
}

// loadClient returns a client for the saved server, authenticated when a
// session exists.
func loadClient() *client.Client {
	cfg, err := loadCLIConfig()
	if err != nil || cfg.BaseURL == "" {
		return client.New(defaultServerURL)
	}
	c := client.New(cfg.BaseURL)
	c.Token = cfg.Token
	return c
}

func loadAuthenticatedClient() (*client.Client, error) {
	cfg, err := loadCLIConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, errors.New("not logged in - run 'devsocial login'")
	}
	c := client.New(cfg.BaseURL)
	c.Token = cfg.Token
	return c, nil
}
