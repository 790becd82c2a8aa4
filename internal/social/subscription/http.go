// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/tubely/internal/platform/middleware"
	requestutil "github.com/taibuivan/tubely/internal/platform/request"
	"github.com/taibuivan/tubely/internal/platform/respond"
)

// Handler implements the subscription and channel endpoints.
type Handler struct {
	subscriptionService *Service
}

// NewHandler constructs a new subscription [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{subscriptionService: service}
}

// Routes returns the /subscriptions router.
//
// # Endpoints
//   - POST /c/{channelId}    : Toggles the caller's subscription (auth).
//   - GET  /c/{subscriberId} : Channels the subscriber follows.
//   - GET  /u/{channelId}    : Subscribers of the channel.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(middleware.RequireAuth).Post("/c/{channelId}", handler.toggle)
	router.Get("/c/{subscriberId}", handler.listSubscriptions)
	router.Get("/u/{channelId}", handler.listSubscribers)

	return router
}

// RegisterChannelRoute mounts GET /channel/{username} (auth) on the /users router.
func (handler *Handler) RegisterChannelRoute(router chi.Router) {
	router.With(middleware.RequireAuth).Get("/channel/{username}", handler.channelProfile)
}

type subscribersResponse struct {
	Subscribers      []Member `json:"subscribers"`
	TotalSubscribers int      `json:"totalSubscribers"`
}

type subscriptionsResponse struct {
	Channels      []Member `json:"channels"`
	TotalChannels int      `json:"totalChannels"`
}

/*
POST /api/v1/subscriptions/c/{channelId}.

Response:
  - 201: Subscription: Edge created ("Subscribed successfully")
  - 200: Subscription: Edge removed ("Unsubscribed successfully")
  - 400: Missing or invalid channel ID, self-subscription
  - 404: Channel does not exist
  - 409: A concurrent toggle won the race
*/
func (handler *Handler) toggle(writer http.ResponseWriter, request *http.Request) {
	subscriberID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.subscriptionService.ToggleSubscription(request.Context(), subscriberID, requestutil.Param(request, "channelId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if result.Subscribed {
		respond.Created(writer, MsgSubscribed, result.Record)
		return
	}
	respond.OK(writer, MsgUnsubscribed, result.Record)
}

/*
GET /api/v1/subscriptions/u/{channelId}.

Response:
  - 200: {subscribers, totalSubscribers}
  - 400: Missing or invalid channel ID
*/
func (handler *Handler) listSubscribers(writer http.ResponseWriter, request *http.Request) {
	members, err := handler.subscriptionService.ListSubscribers(request.Context(), requestutil.Param(request, "channelId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	message := MsgSubscribersFound
	if len(members) == 0 {
		message = MsgNoSubscribers
	}
	respond.OK(writer, message, subscribersResponse{Subscribers: members, TotalSubscribers: len(members)})
}

/*
GET /api/v1/subscriptions/c/{subscriberId}.

Response:
  - 200: {channels, totalChannels}
  - 400: Missing or invalid subscriber ID
*/
func (handler *Handler) listSubscriptions(writer http.ResponseWriter, request *http.Request) {
	channels, err := handler.subscriptionService.ListSubscriptions(request.Context(), requestutil.Param(request, "subscriberId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	message := MsgSubscriptionsFound
	if len(channels) == 0 {
		message = MsgNoSubscriptions
	}
	respond.OK(writer, message, subscriptionsResponse{Channels: channels, TotalChannels: len(channels)})
}

/*
GET /api/v1/users/channel/{username}.

Response:
  - 200: Channel: Public profile, counters and isSubscribed for the caller
  - 404: Channel does not exist
*/
func (handler *Handler) channelProfile(writer http.ResponseWriter, request *http.Request) {
	viewerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	channel, err := handler.subscriptionService.ChannelProfile(request.Context(), requestutil.Param(request, "username"), viewerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MsgChannelFetched, channel)
}
