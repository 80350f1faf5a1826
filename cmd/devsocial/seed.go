package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/devsocial/devsocial/internal/client"
)

var seedUsers = []struct {
	name   string
	bio    string
	skills []string
}{
	{"ada", "Analytical engines and first programs", []string{"math", "algorithms"}},
	{"grace", "Compilers, COBOL and nanoseconds", []string{"compilers", "cobol"}},
	{"linus", "Kernels and version control", []string{"c", "git", "linux"}},
	{"margaret", "Flight software that lands on the moon", []string{"embedded", "testing"}},
	{"ken", "Unix, regexps and Go", []string{"go", "unix"}},
}

var seedPosts = []struct {
	content  string
	code     string
	language string
	tags     []string
}{
	{"Table-driven tests keep Go test files short.", "for _, tc := range cases {\n\tt.Run(tc.name, func(t *testing.T) {})\n}", "go", []string{"golang", "testing"}},
	{"Today I learned SQLite runs fine with a single writer connection.", "", "", []string{"sqlite", "til"}},
	{"Hot take: most microservices should have been a module.", "", "", []string{"architecture"}},
	{"Tiny binary search, no off-by-one this time.", "def search(xs, x):\n    lo, hi = 0, len(xs)\n    while lo < hi:\n        mid = (lo + hi) // 2\n        if xs[mid] < x: lo = mid + 1\n        else: hi = mid\n    return lo", "python", []string{"algorithms", "python"}},
	{"What is your favourite debugging trick?", "", "", []string{"ask", "debugging"}},
	{"Context cancellation saved our shutdown path.", "ctx, cancel := context.WithTimeout(ctx, 5*time.Second)\ndefer cancel()", "go", []string{"golang", "concurrency"}},
	{"Reading the Raft paper again. Still great.", "", "", []string{"distributed", "papers"}},
	{"Pair programming with an AI reviewer this week.", "", "", []string{"ai", "tooling"}},
}

var seedComments = []string{
	"Great post, bookmarking this.",
	"Has anyone benchmarked this?",
	"This matches what we saw in production.",
	"Can you share more details about the setup?",
	"I disagree, but appreciate the write-up.",
	"Would love a follow-up on this.",
	"The code looks clean. Nice work!",
}

func seedCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate a running server with demo users, posts and engagement",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(strings.TrimSuffix(baseURL, "/"), slog.Default())
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", defaultServerURL, "DevSocial server URL")
	return cmd
}

func runSeed(baseURL string, logger *slog.Logger) error {
	logger.Info("seeding", "url", baseURL)

	clients := make([]*client.Client, 0, len(seedUsers))
	for _, u := range seedUsers {
		c := client.New(baseURL)
		if _, err := c.RegisterOrLogin(client.Signup{
			Username: u.name,
			Email:    u.name + "@example.com",
			Password: "password-" + u.name,
			FullName: strings.ToUpper(u.name[:1]) + u.name[1:],
			Bio:      u.bio,
			Skills:   u.skills,
		}); err != nil {
			return fmt.Errorf("register %s: %w", u.name, err)
		}
		logger.Info("registered user", "username", u.name, "id", c.User.ID)
		clients = append(clients, c)
	}

	// Everyone follows a random subset of the others.
	follows := 0
	for i, c := range clients {
		for j, other := range clients {
			if i == j || rand.Float32() < 0.4 {
				continue
			}
			if _, err := c.ToggleFollow(other.User.ID); err != nil {
				logger.Warn("follow failed", "error", err)
				continue
			}
			follows++
		}
	}

	var postIDs []string
	for _, p := range seedPosts {
		author := clients[rand.Intn(len(clients))]
		post, err := author.CreatePost(client.NewPost{
			Content:     p.content,
			CodeSnippet: p.code,
			Language:    p.language,
			Hashtags:    p.tags,
		})
		if err != nil {
			logger.Warn("post failed", "error", err)
			continue
		}
		postIDs = append(postIDs, post.ID)
		logger.Info("posted", "id", post.ID, "author", author.User.Username)
		// Spread created_at so feeds have a stable order.
		time.Sleep(20 * time.Millisecond)
	}

	comments, likes := 0, 0
	for _, postID := range postIDs {
		for i := rand.Intn(3) + 1; i > 0; i-- {
			c := clients[rand.Intn(len(clients))]
			if _, err := c.CreateComment(postID, seedComments[rand.Intn(len(seedComments))]); err == nil {
				comments++
			}
		}
		for _, c := range clients {
			if rand.Float32() < 0.5 {
				continue
			}
			if _, err := c.ToggleLike(postID); err == nil {
				likes++
			}
		}
	}

	fmt.Println("\n=== Seed Complete ===")
	fmt.Printf("Users:    %d\n", len(clients))
	fmt.Printf("Follows:  %d\n", follows)
	fmt.Printf("Posts:    %d\n", len(postIDs))
	fmt.Printf("Comments: %d\n", comments)
	fmt.Printf("Likes:    %d\n", likes)
	return nil
}
