package core

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

func (a *API) Group(ctx context.Context, id string) (*Group, error) {
	return readInto[Group](ctx, a.d, http.MethodGet, p("groups", id), nil)
}

func (a *API) Groups(ctx context.Context) (*[]Group, error) {
	return readInto[[]Group](ctx, a.d, http.MethodGet, "/groups/", nil)
}

// UserGroups lists the groups userID is a member of.
func (a *API) UserGroups(ctx context.Context, userID string) (*[]Group, error) {
	return readInto[[]Group](ctx, a.d, http.MethodGet, p("groups", "user", userID), nil)
}

func (a *API) GroupEvents(ctx context.Context, id string) (*[]Event, error) {
	return readInto[[]Event](ctx, a.d, http.MethodGet, p("groups", id, "events"), nil)
}

func (a *API) Members(ctx context.Context, id string) (*[]Member, error) {
	return readInto[[]Member](ctx, a.d, http.MethodGet, p("groups", id, "members"), nil)
}

func (a *API) CreateGroup(ctx context.Context, g GroupCreate) (*CreatedGroup, error) {
	return readInto[CreatedGroup](ctx, a.d, http.MethodPost, "/groups/", g)
}

func (a *API) UpdateGroup(ctx context.Context, id string, upd GroupUpdate) (*Message, error) {
	return readInto[Message](ctx, a.d, http.MethodPut, p("groups", id), upd)
}

func (a *API) DeleteGroup(ctx context.Context, id string) (bool, error) {
	return actionOK(ctx, a.d, http.MethodDelete, p("groups", id), nil)
}

func (a *API) JoinGroup(ctx context.Context, id string) (bool, error) {
	return actionOK(ctx, a.d, http.MethodPost, p("groups", id, "join"), nil)
}

func (a *API) LeaveGroup(ctx context.Context, id string) (bool, error) {
	return actionOK(ctx, a.d, http.MethodDelete, p("groups", id, "leave"), nil)
}

// ToggleAdmin flips the admin flag of a member; only admins may call it.
func (a *API) ToggleAdmin(ctx context.Context, groupID, userID string) (bool, error) {
	return actionOK(ctx, a.d, http.MethodPost, p("groups", groupID, "members", userID, "toggle_admin"), nil)
}

func (a *API) UploadGroupAvatar(ctx context.Context, groupID, filename string, r io.Reader) (*Uploaded, error) {
	path := withQuery("/groups/avatar", url.Values{"group_id": {groupID}})
	return a.upload(ctx, path, http.MethodPatch, filename, r)
}

// InvitationLink asks the backend to mint a join link for a private group.
func (a *API) InvitationLink(ctx context.Context, groupID string) (*InviteLink, error) {
	return readInto[InviteLink](ctx, a.d, http.MethodPost, p("groups", groupID, "generate_link"), nil)
}

// InvitationData describes the group behind an invite token without joining it.
func (a *API) InvitationData(ctx context.Context, token string) (*Invitation, error) {
	return readInto[Invitation](ctx, a.d, http.MethodGet, p("groups", "join_by_token", token), nil)
}

func (a *API) AcceptInvite(ctx context.Context, token string) (bool, error) {
	return actionOK(ctx, a.d, http.MethodPost, p("groups", "join_by_token", token), nil)
}
