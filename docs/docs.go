// Package docs registers the DevSocial OpenAPI document with swag.
// Regenerate with: swag init -g internal/http/doc.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "DevSocial"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/": {
            "get": {"tags": ["System"], "summary": "API banner", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/health": {
            "get": {"tags": ["System"], "summary": "Liveness probe", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/stats": {
            "get": {"tags": ["System"], "summary": "Get site statistics", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SiteStats"}}}}
        },
        "/api/admin/reconcile": {
            "post": {
                "tags": ["Admin"],
                "summary": "Reconcile counters (admin)",
                "parameters": [{"type": "string", "description": "Admin secret", "name": "X-Admin-Secret", "in": "header", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ReconcileReport"}}, "401": {"description": "Invalid admin secret"}}
            }
        },
        "/api/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register",
                "consumes": ["application/json"],
                "parameters": [{"description": "New account", "name": "user", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.Registration"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapp.TokenResponse"}}, "400": {"description": "Invalid input or duplicate user"}}
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "parameters": [{"description": "Credentials", "name": "credentials", "in": "body", "required": true, "schema": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/httpapp.TokenResponse"}}, "401": {"description": "Invalid email or password"}}
            }
        },
        "/api/auth/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Current user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.User"}}, "401": {"description": "Unauthorized"}}}
        },
        "/api/users/profile": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["Users"],
                "summary": "Update your profile",
                "parameters": [{"description": "Fields to change", "name": "profile", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ProfileUpdate"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.User"}}}
            }
        },
        "/api/users/username/{username}": {
            "get": {"tags": ["Users"], "summary": "Get a user by username", "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.User"}}, "404": {"description": "User not found"}}}
        },
        "/api/users/{id}": {
            "get": {"tags": ["Users"], "summary": "Get a user", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.User"}}, "404": {"description": "User not found"}}}
        },
        "/api/users/{id}/follow": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Follow or unfollow a user", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "followed or unfollowed"}, "400": {"description": "Cannot follow yourself"}, "404": {"description": "User not found"}, "429": {"description": "Rate limited"}}}
        },
        "/api/users/{id}/is-following": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Whether you follow a user", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/users/{id}/followers": {
            "get": {"tags": ["Users"], "summary": "List a user's followers", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "integer", "default": 0, "name": "skip", "in": "query"}, {"type": "integer", "default": 20, "maximum": 100, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.User"}}}}}
        },
        "/api/users/{id}/following": {
            "get": {"tags": ["Users"], "summary": "List who a user follows", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "integer", "default": 0, "name": "skip", "in": "query"}, {"type": "integer", "default": 20, "maximum": 100, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.User"}}}}}
        },
        "/api/users/{id}/posts": {
            "get": {"tags": ["Users"], "summary": "List a user's posts", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "integer", "default": 0, "name": "skip", "in": "query"}, {"type": "integer", "default": 20, "maximum": 100, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Post"}}}}}
        },
        "/api/posts": {
            "get": {"tags": ["Posts"], "summary": "Global feed", "parameters": [{"type": "integer", "default": 0, "name": "skip", "in": "query"}, {"type": "integer", "default": 20, "maximum": 100, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Post"}}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Posts"], "summary": "Create a post", "parameters": [{"description": "Post", "name": "post", "in": "body", "required": true, "schema": {"$ref": "#/definitions/engagement.PostInput"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Post"}}, "400": {"description": "Bad Request"}, "429": {"description": "Rate limited"}}}
        },
        "/api/posts/feed": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Posts"], "summary": "Home feed", "parameters": [{"type": "integer", "default": 0, "name": "skip", "in": "query"}, {"type": "integer", "default": 20, "maximum": 100, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Post"}}}}}
        },
        "/api/posts/{id}": {
            "get": {"tags": ["Posts"], "summary": "Get a post", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Post"}}, "404": {"description": "Post not found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Posts"], "summary": "Delete a post", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Not authorized to delete this post"}, "404": {"description": "Post not found"}}}
        },
        "/api/posts/{id}/like": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Posts"], "summary": "Like or unlike a post", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/engagement.LikeResult"}}, "404": {"description": "Post not found"}, "429": {"description": "Rate limited"}}}
        },
        "/api/posts/{id}/comments": {
            "get": {"tags": ["Comments"], "summary": "List a post's comments", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "integer", "default": 0, "name": "skip", "in": "query"}, {"type": "integer", "default": 50, "maximum": 100, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Comment"}}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Comments"], "summary": "Comment on a post", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"description": "Comment", "name": "comment", "in": "body", "required": true, "schema": {"type": "object", "properties": {"content": {"type": "string"}}}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Comment"}}, "404": {"description": "Post not found"}, "429": {"description": "Rate limited"}}}
        },
        "/api/search/posts": {
            "get": {"tags": ["Search"], "summary": "Search posts", "parameters": [{"minLength": 1, "type": "string", "name": "q", "in": "query", "required": true}, {"type": "integer", "default": 0, "name": "skip", "in": "query"}, {"type": "integer", "default": 20, "maximum": 100, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Post"}}}, "400": {"description": "Bad Request"}}}
        },
        "/api/search/users": {
            "get": {"tags": ["Search"], "summary": "Search users", "parameters": [{"minLength": 1, "type": "string", "name": "q", "in": "query", "required": true}, {"type": "integer", "default": 0, "name": "skip", "in": "query"}, {"type": "integer", "default": 20, "maximum": 100, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.User"}}}, "400": {"description": "Bad Request"}}}
        },
        "/api/hashtags/{tag}/posts": {
            "get": {"tags": ["Search"], "summary": "Posts with a hashtag", "parameters": [{"type": "string", "name": "tag", "in": "path", "required": true}, {"type": "integer", "default": 0, "name": "skip", "in": "query"}, {"type": "integer", "default": 20, "maximum": 100, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Post"}}}}}
        },
        "/api/trending/hashtags": {
            "get": {"tags": ["Search"], "summary": "Trending hashtags", "parameters": [{"type": "integer", "default": 10, "maximum": 100, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.HashtagCount"}}}}}
        },
        "/api/notifications": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Notifications"], "summary": "Your notifications", "parameters": [{"type": "integer", "default": 0, "name": "skip", "in": "query"}, {"type": "integer", "default": 50, "maximum": 100, "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Notification"}}}}}
        },
        "/api/notifications/mark-read": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Notifications"], "summary": "Mark all notifications read", "responses": {"200": {"description": "OK"}}}
        },
        "/api/notifications/unread-count": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Notifications"], "summary": "Unread notification count", "responses": {"200": {"description": "OK"}}}
        },
        "/api/ai/check-content": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["AI"], "summary": "Check a draft post", "parameters": [{"description": "Draft", "name": "draft", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapp.contentRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ai.ContentCheck"}}}}
        },
        "/api/ai/generate-caption": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["AI"], "summary": "Suggest a caption", "parameters": [{"description": "Draft", "name": "draft", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapp.contentRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ai.Caption"}}}}
        },
        "/api/ai/explain-code": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["AI"], "summary": "Explain code", "parameters": [{"description": "Code", "name": "code", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapp.codeRequest"}}], "responses": {"200": {"description": "OK"}, "500": {"description": "AI service unavailable"}}}
        },
        "/api/ai/detect-bugs": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["AI"], "summary": "Review code for bugs", "parameters": [{"description": "Code", "name": "code", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapp.codeRequest"}}], "responses": {"200": {"description": "OK"}, "500": {"description": "AI service unavailable"}}}
        },
        "/api/ai/career-guidance": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["AI"], "summary": "Career guidance", "parameters": [{"description": "Skills and interests", "name": "profile", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapp.careerRequest"}}], "responses": {"200": {"description": "OK"}, "500": {"description": "AI service unavailable"}}}
        },
        "/api/upload": {
            "post": {"security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "tags": ["Media"], "summary": "Upload media", "parameters": [{"type": "file", "description": "Media file", "name": "file", "in": "formData", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/media.Upload"}}, "400": {"description": "File type not allowed"}}}
        },
        "/api/uploads/{name}": {
            "get": {"tags": ["Media"], "summary": "Fetch uploaded media", "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        }
    },
    "definitions": {
        "ai.Caption": {"type": "object", "properties": {"caption": {"type": "string"}, "hashtags": {"type": "array", "items": {"type": "string"}}}},
        "ai.ContentCheck": {"type": "object", "properties": {"is_appropriate": {"type": "boolean"}, "reason": {"type": "string"}, "suggested_hashtags": {"type": "array", "items": {"type": "string"}}}},
        "auth.Registration": {"type": "object", "properties": {"username": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}, "full_name": {"type": "string"}, "bio": {"type": "string"}, "skills": {"type": "array", "items": {"type": "string"}}}},
        "engagement.LikeResult": {"type": "object", "properties": {"status": {"type": "string"}, "likes_count": {"type": "integer"}}},
        "engagement.PostInput": {"type": "object", "properties": {"content": {"type": "string"}, "code_snippet": {"type": "string"}, "language": {"type": "string"}, "media_url": {"type": "string"}, "media_type": {"type": "string"}, "hashtags": {"type": "array", "items": {"type": "string"}}}},
        "httpapp.TokenResponse": {"type": "object", "properties": {"access_token": {"type": "string"}, "token_type": {"type": "string"}, "user": {"$ref": "#/definitions/model.User"}}},
        "httpapp.contentRequest": {"type": "object", "properties": {"content": {"type": "string"}, "code_snippet": {"type": "string"}}},
        "httpapp.codeRequest": {"type": "object", "properties": {"code": {"type": "string"}, "language": {"type": "string"}}},
        "httpapp.careerRequest": {"type": "object", "properties": {"skills": {"type": "array", "items": {"type": "string"}}, "interests": {"type": "string"}, "experience_level": {"type": "string"}}},
        "media.Upload": {"type": "object", "properties": {"url": {"type": "string"}, "media_type": {"type": "string"}, "filename": {"type": "string"}}},
        "model.Comment": {"type": "object", "properties": {"id": {"type": "string"}, "post_id": {"type": "string"}, "user_id": {"type": "string"}, "username": {"type": "string"}, "user_avatar": {"type": "string"}, "content": {"type": "string"}, "created_at": {"type": "string"}}},
        "model.HashtagCount": {"type": "object", "properties": {"hashtag": {"type": "string"}, "count": {"type": "integer"}}},
        "model.Notification": {"type": "object", "properties": {"id": {"type": "string"}, "user_id": {"type": "string"}, "type": {"type": "string"}, "from_user_id": {"type": "string"}, "from_username": {"type": "string"}, "post_id": {"type": "string"}, "read": {"type": "boolean"}, "created_at": {"type": "string"}}},
        "model.Post": {"type": "object", "properties": {"id": {"type": "string"}, "user_id": {"type": "string"}, "username": {"type": "string"}, "user_avatar": {"type": "string"}, "content": {"type": "string"}, "code_snippet": {"type": "string"}, "language": {"type": "string"}, "media_url": {"type": "string"}, "media_type": {"type": "string"}, "hashtags": {"type": "array", "items": {"type": "string"}}, "likes_count": {"type": "integer"}, "comments_count": {"type": "integer"}, "shares_count": {"type": "integer"}, "is_liked": {"type": "boolean"}, "created_at": {"type": "string"}}},
        "model.ProfileUpdate": {"type": "object", "properties": {"full_name": {"type": "string"}, "bio": {"type": "string"}, "skills": {"type": "array", "items": {"type": "string"}}, "avatar": {"type": "string"}}},
        "model.ReconcileReport": {"type": "object", "properties": {"users": {"type": "integer"}, "posts": {"type": "integer"}}},
        "model.SiteStats": {"type": "object", "properties": {"users": {"type": "integer"}, "posts": {"type": "integer"}, "comments": {"type": "integer"}, "likes": {"type": "integer"}, "follows": {"type": "integer"}}},
        "model.User": {"type": "object", "properties": {"id": {"type": "string"}, "username": {"type": "string"}, "email": {"type": "string"}, "full_name": {"type": "string"}, "bio": {"type": "string"}, "skills": {"type": "array", "items": {"type": "string"}}, "avatar": {"type": "string"}, "followers_count": {"type": "integer"}, "following_count": {"type": "integer"}, "posts_count": {"type": "integer"}, "created_at": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token from /api/auth/login or /api/auth/register",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "DevSocial API",
	Description:      "A social network for developers: posts with code snippets, likes, comments, follows, notifications and AI helpers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
