package core

import (
	"context"
	"net/http"
	"net/url"
)

// Me returns the caller's identity from /user/profile/me.
func (a *API) Me(ctx context.Context) (*Identity, error) {
	return readInto[Identity](ctx, a.d, http.MethodGet, "/user/profile/me", nil)
}

func (a *API) Profile(ctx context.Context, id string) (*Profile, error) {
	return readInto[Profile](ctx, a.d, http.MethodGet, p("user", "profile", id), nil)
}

func (a *API) UpdateProfile(ctx context.Context, upd ProfileUpdate) (bool, error) {
	return actionOK(ctx, a.d, http.MethodPatch, "/user/profile/", upd)
}

func (a *API) DeleteProfile(ctx context.Context) (bool, error) {
	return actionOK(ctx, a.d, http.MethodDelete, "/user/profile/", nil)
}

func (a *API) Friends(ctx context.Context, userID string) (*FriendList, error) {
	return readInto[FriendList](ctx, a.d, http.MethodGet, p("user", "friends", userID), nil)
}

// FriendRequests lists requests addressed to the caller.
func (a *API) FriendRequests(ctx context.Context) (*FriendRequests, error) {
	return readInto[FriendRequests](ctx, a.d, http.MethodGet, "/user/friends/requests/", nil)
}

func (a *API) SendFriendRequest(ctx context.Context, userID string) (bool, error) {
	return actionOK(ctx, a.d, http.MethodPost, p("user", "friends", "requests", userID), nil)
}

func (a *API) AcceptRequest(ctx context.Context, userID string) (bool, error) {
	return actionOK(ctx, a.d, http.MethodPatch, p("user", "friends", "requests", userID), nil)
}

func (a *API) RejectRequest(ctx context.Context, userID string) (bool, error) {
	return actionOK(ctx, a.d, http.MethodDelete, p("user", "friends", "requests", userID), nil)
}

func (a *API) DeleteFriend(ctx context.Context, userID string) (bool, error) {
	return actionOK(ctx, a.d, http.MethodDelete, p("user", "friends", userID), nil)
}

func (a *API) SearchUsers(ctx context.Context, query string) (*[]UserSummary, error) {
	return readInto[[]UserSummary](ctx, a.d, http.MethodGet, withQuery("/search/users/", url.Values{"query": {query}}), nil)
}

func (a *API) SearchGroups(ctx context.Context, query string) (*[]Group, error) {
	return readInto[[]Group](ctx, a.d, http.MethodGet, withQuery("/search/groups/", url.Values{"query": {query}}), nil)
}
