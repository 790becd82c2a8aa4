// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tweet

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tubely/internal/platform/middleware"
	requestutil "github.com/taibuivan/tubely/internal/platform/request"
	"github.com/taibuivan/tubely/internal/platform/respond"
	"github.com/taibuivan/tubely/pkg/pagination"
)

// Handler implements the tweet endpoints.
type Handler struct {
	tweetService *Service
}

// NewHandler constructs a new tweet [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{tweetService: service}
}

// Routes returns the /tweets router.
//
// # Endpoints
//   - POST   /                 : Posts a tweet (auth).
//   - GET    /user/{username}  : Lists a user's tweets (paginated).
//   - PATCH  /{tweetId}        : Edits an owned tweet (auth).
//   - DELETE /{tweetId}        : Deletes an owned tweet (auth).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/user/{username}", handler.listByUser)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.create)
		r.Patch("/{tweetId}", handler.update)
		r.Delete("/{tweetId}", handler.delete)
	})

	return router
}

type createRequest struct {
	TweetContent string `json:"tweetContent"`
}

type updateRequest struct {
	Content string `json:"content"`
}

/*
POST /api/v1/tweets.

Request:
  - body: createRequest

Response:
  - 201: Tweet: The stored tweet
  - 400: Empty or too long content
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tweet, err := handler.tweetService.Create(request.Context(), ownerID, input.TweetContent)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, MsgTweetPosted, tweet)
}

/*
GET /api/v1/tweets/user/{username}?page=&limit=.

Response:
  - 200: []Tweet with pagination meta
  - 404: User not found
*/
func (handler *Handler) listByUser(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)

	tweets, total, err := handler.tweetService.ListByUser(request.Context(), requestutil.Param(request, "username"), page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, MsgUserTweets, tweets, pagination.NewMeta(page.Page, page.Limit, total))
}

/*
PATCH /api/v1/tweets/{tweetId}.

Request:
  - body: updateRequest

Response:
  - 200: Tweet: The updated tweet
  - 400: Missing content or invalid id
  - 403: Caller is not the owner
  - 404: Tweet not found
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tweet, err := handler.tweetService.Update(request.Context(), ownerID, requestutil.Param(request, "tweetId"), input.Content)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgTweetUpdated, tweet)
}

/*
DELETE /api/v1/tweets/{tweetId}.

Response:
  - 200: Tweet deleted
  - 400: Invalid id
  - 403: Caller is not the owner
  - 404: Tweet not found
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.tweetService.Delete(request.Context(), ownerID, requestutil.Param(request, "tweetId")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgTweetDeleted, struct{}{})
}
