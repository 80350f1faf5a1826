// Package httpapp provides the HTTP server for DevSocial.
//
//	@title						DevSocial API
//	@version					1.0.0
//	@description				A social network for developers: posts with code snippets, likes, comments, follows, notifications and AI helpers.
//	@description
//	@description				## Authentication
//	@description
//	@description				Register or log in to receive a bearer token, then send it on every write:
//	@description				```bash
//	@description				curl -X POST /api/auth/register -d '{"username":"ada","email":"ada@example.com","password":"...","full_name":"Ada"}'
//	@description				# Returns: {"access_token": "TOKEN", "token_type": "bearer", "user": {...}}
//	@description				curl -X POST /api/posts -H "Authorization: Bearer TOKEN" -d '{"content":"hello"}'
//	@description				```
//	@description
//	@description				Read endpoints accept an optional token; with one, posts carry `is_liked` for the caller.
//	@description
//	@description				## Toggles
//	@description				`POST /api/users/{id}/follow` and `POST /api/posts/{id}/like` flip the edge on every call
//	@description				and return the resulting state.
//
//	@contact.name				DevSocial
//	@license.name				MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from /api/auth/login or /api/auth/register
//
//	@tag.name					Auth
//	@tag.description			Registration, login and the current user.
//
//	@tag.name					Users
//	@tag.description			Profiles, follow toggles and follower lists.
//
//	@tag.name					Posts
//	@tag.description			Create, read, delete and like posts. Global and home feeds.
//
//	@tag.name					Comments
//	@tag.description			Flat, oldest-first discussion under a post.
//
//	@tag.name					Search
//	@tag.description			Post and user search, hashtag feeds, trending hashtags.
//
//	@tag.name					Notifications
//	@tag.description			Follow, like and comment notifications for the caller.
//
//	@tag.name					AI
//	@tag.description			Helpers backed by an OpenAI-compatible model.
//
//	@tag.name					Media
//	@tag.description			Image and video uploads.
//
//	@tag.name					Admin
//	@tag.description			Maintenance endpoints. Requires X-Admin-Secret header.
package httpapp
