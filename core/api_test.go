package core

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiFor(b *fakeBackend, token string) *API {
	return NewAPI(clientFor(b, token))
}

func TestEventReadDecodesBody(t *testing.T) {
	b := newFakeBackend(t, jsonReply(http.StatusOK, `{"id":42,"title":"Meetup"}`))

	ev, err := apiFor(b, "t").Event(context.Background(), "42")
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, Event{ID: 42, Title: "Meetup"}, *ev)

	got := b.last(t)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/events/42", got.Path)
}

func TestLeaveEventNoContentIsTrue(t *testing.T) {
	b := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ok, err := apiFor(b, "t").LeaveEvent(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, ok)
	got := b.last(t)
	assert.Equal(t, http.MethodDelete, got.Method)
	assert.Equal(t, "/events/42/participants", got.Path)
}

func TestJoinGroupForbiddenIsFalse(t *testing.T) {
	b := newFakeBackend(t, jsonReply(http.StatusForbidden, `{"detail":"private group"}`))

	ok, err := apiFor(b, "t").JoinGroup(context.Background(), "7")
	require.NoError(t, err)
	assert.False(t, ok)
	got := b.last(t)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/groups/7/join", got.Path)
}

func TestDomainCallsWithoutTokenIssueNoRequests(t *testing.T) {
	b := newFakeBackend(t, nil)
	a := NewAPI(NewGateway(GatewayConfig{Origin: b.srv.URL}).ClientDispatcher(CookieStringSource("")))
	ctx := context.Background()

	_, err := a.Event(ctx, "1")
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = a.JoinEvent(ctx, "1")
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = a.CreateGroup(ctx, GroupCreate{Name: "x"})
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = a.UploadEventImage(ctx, "1", "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = ResolveCurrentUser(ctx, a.Dispatcher())
	assert.ErrorIs(t, err, ErrNoToken)

	assert.Zero(t, b.calls.Load())
}

// Every read and create collapses a rejection to nil without an error.
func TestReadsReturnNilOnRejection(t *testing.T) {
	ctx := context.Background()
	reads := map[string]func(a *API) (bool, error){
		"Profile":        func(a *API) (bool, error) { v, err := a.Profile(ctx, "1"); return v == nil, err },
		"Friends":        func(a *API) (bool, error) { v, err := a.Friends(ctx, "1"); return v == nil, err },
		"FriendRequests": func(a *API) (bool, error) { v, err := a.FriendRequests(ctx); return v == nil, err },
		"SearchUsers":    func(a *API) (bool, error) { v, err := a.SearchUsers(ctx, "a"); return v == nil, err },
		"SearchGroups":   func(a *API) (bool, error) { v, err := a.SearchGroups(ctx, "a"); return v == nil, err },
		"Event":          func(a *API) (bool, error) { v, err := a.Event(ctx, "1"); return v == nil, err },
		"Events":         func(a *API) (bool, error) { v, err := a.Events(ctx, FilterFriends); return v == nil, err },
		"CreatedEvents":  func(a *API) (bool, error) { v, err := a.CreatedEvents(ctx); return v == nil, err },
		"Participating":  func(a *API) (bool, error) { v, err := a.ParticipatingEvents(ctx); return v == nil, err },
		"CreateEvent":    func(a *API) (bool, error) { v, err := a.CreateEvent(ctx, EventCreate{Title: "x"}); return v == nil, err },
		"UpdateEvent":    func(a *API) (bool, error) { v, err := a.UpdateEvent(ctx, "1", EventUpdate{}); return v == nil, err },
		"Tags":           func(a *API) (bool, error) { v, err := a.Tags(ctx); return v == nil, err },
		"Group":          func(a *API) (bool, error) { v, err := a.Group(ctx, "1"); return v == nil, err },
		"Groups":         func(a *API) (bool, error) { v, err := a.Groups(ctx); return v == nil, err },
		"UserGroups":     func(a *API) (bool, error) { v, err := a.UserGroups(ctx, "1"); return v == nil, err },
		"GroupEvents":    func(a *API) (bool, error) { v, err := a.GroupEvents(ctx, "1"); return v == nil, err },
		"Members":        func(a *API) (bool, error) { v, err := a.Members(ctx, "1"); return v == nil, err },
		"CreateGroup":    func(a *API) (bool, error) { v, err := a.CreateGroup(ctx, GroupCreate{Name: "x"}); return v == nil, err },
		"UpdateGroup":    func(a *API) (bool, error) { v, err := a.UpdateGroup(ctx, "1", GroupUpdate{}); return v == nil, err },
		"InvitationLink": func(a *API) (bool, error) { v, err := a.InvitationLink(ctx, "1"); return v == nil, err },
		"InvitationData": func(a *API) (bool, error) { v, err := a.InvitationData(ctx, "tok"); return v == nil, err },
		"UploadImage": func(a *API) (bool, error) {
			v, err := a.UploadEventImage(ctx, "1", "a.png", strings.NewReader("x"))
			return v == nil, err
		},
		"UploadAvatar": func(a *API) (bool, error) {
			v, err := a.UploadGroupAvatar(ctx, "1", "a.png", strings.NewReader("x"))
			return v == nil, err
		},
	}

	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		b := newFakeBackend(t, jsonReply(status, `{"detail":"no"}`))
		a := apiFor(b, "t")
		for name, call := range reads {
			isNil, err := call(a)
			assert.NoError(t, err, "%s %d", name, status)
			assert.True(t, isNil, "%s %d", name, status)
		}
	}
}

// Actions report exactly the ok indicator whatever the body says.
func TestActionsCollapseToOkFlag(t *testing.T) {
	ctx := context.Background()
	actions := map[string]func(a *API) (bool, error){
		"UpdateProfile":     func(a *API) (bool, error) { return a.UpdateProfile(ctx, ProfileUpdate{}) },
		"DeleteProfile":     func(a *API) (bool, error) { return a.DeleteProfile(ctx) },
		"SendFriendRequest": func(a *API) (bool, error) { return a.SendFriendRequest(ctx, "2") },
		"AcceptRequest":     func(a *API) (bool, error) { return a.AcceptRequest(ctx, "2") },
		"RejectRequest":     func(a *API) (bool, error) { return a.RejectRequest(ctx, "2") },
		"DeleteFriend":      func(a *API) (bool, error) { return a.DeleteFriend(ctx, "2") },
		"DeleteEvent":       func(a *API) (bool, error) { return a.DeleteEvent(ctx, "1") },
		"JoinEvent":         func(a *API) (bool, error) { return a.JoinEvent(ctx, "1") },
		"LeaveEvent":        func(a *API) (bool, error) { return a.LeaveEvent(ctx, "1") },
		"DeleteGroup":       func(a *API) (bool, error) { return a.DeleteGroup(ctx, "1") },
		"JoinGroup":         func(a *API) (bool, error) { return a.JoinGroup(ctx, "1") },
		"LeaveGroup":        func(a *API) (bool, error) { return a.LeaveGroup(ctx, "1") },
		"ToggleAdmin":       func(a *API) (bool, error) { return a.ToggleAdmin(ctx, "1", "2") },
		"AcceptInvite":      func(a *API) (bool, error) { return a.AcceptInvite(ctx, "tok") },
	}

	cases := []struct {
		status int
		body   string
		want   bool
	}{
		{http.StatusOK, `{"msg":"done"}`, true},
		{http.StatusOK, `not json at all`, true},
		{http.StatusNoContent, ``, true},
		{http.StatusCreated, `{"error":"looks bad but is 2xx"}`, true},
		{http.StatusBadRequest, `{"msg":"done"}`, false},
		{http.StatusForbidden, ``, false},
		{http.StatusInternalServerError, `{}`, false},
	}
	for _, tc := range cases {
		b := newFakeBackend(t, jsonReply(tc.status, tc.body))
		a := apiFor(b, "t")
		for name, call := range actions {
			got, err := call(a)
			require.NoError(t, err, "%s %d", name, tc.status)
			assert.Equal(t, tc.want, got, "%s %d %q", name, tc.status, tc.body)
		}
	}
}

func TestRepeatedReadsAreEqual(t *testing.T) {
	b := newFakeBackend(t, jsonReply(http.StatusOK, `{"id":7,"name":"Hikers","tags":["outdoor"],"members_count":3}`))
	a := apiFor(b, "t")

	first, err := a.Group(context.Background(), "7")
	require.NoError(t, err)
	second, err := a.Group(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 2, b.calls.Load())
}

func TestDomainCallRoutes(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		call   func(a *API) error
		method string
		path   string
		query  string
		body   string
	}{
		{"Me", func(a *API) error { _, err := a.Me(ctx); return err }, http.MethodGet, "/user/profile/me", "", ""},
		{"Profile", func(a *API) error { _, err := a.Profile(ctx, "5"); return err }, http.MethodGet, "/user/profile/5", "", ""},
		{"UpdateProfile", func(a *API) error {
			city := "Kazan"
			_, err := a.UpdateProfile(ctx, ProfileUpdate{City: &city})
			return err
		}, http.MethodPatch, "/user/profile/", "", `{"city":"Kazan"}`},
		{"Friends", func(a *API) error { _, err := a.Friends(ctx, "5"); return err }, http.MethodGet, "/user/friends/5", "", ""},
		{"FriendRequests", func(a *API) error { _, err := a.FriendRequests(ctx); return err }, http.MethodGet, "/user/friends/requests/", "", ""},
		{"SendFriendRequest", func(a *API) error { _, err := a.SendFriendRequest(ctx, "5"); return err }, http.MethodPost, "/user/friends/requests/5", "", ""},
		{"AcceptRequest", func(a *API) error { _, err := a.AcceptRequest(ctx, "5"); return err }, http.MethodPatch, "/user/friends/requests/5", "", ""},
		{"RejectRequest", func(a *API) error { _, err := a.RejectRequest(ctx, "5"); return err }, http.MethodDelete, "/user/friends/requests/5", "", ""},
		{"DeleteFriend", func(a *API) error { _, err := a.DeleteFriend(ctx, "5"); return err }, http.MethodDelete, "/user/friends/5", "", ""},
		{"SearchUsers", func(a *API) error { _, err := a.SearchUsers(ctx, "ann lee"); return err }, http.MethodGet, "/search/users/", "query=ann+lee", ""},
		{"SearchGroups", func(a *API) error { _, err := a.SearchGroups(ctx, "chess"); return err }, http.MethodGet, "/search/groups/", "query=chess", ""},
		{"Events", func(a *API) error { _, err := a.Events(ctx, FilterGroups); return err }, http.MethodGet, "/events/filter", "filter_type=groups", ""},
		{"CreatedEvents", func(a *API) error { _, err := a.CreatedEvents(ctx); return err }, http.MethodGet, "/events/my/created", "", ""},
		{"ParticipatingEvents", func(a *API) error { _, err := a.ParticipatingEvents(ctx); return err }, http.MethodGet, "/events/my/participating", "", ""},
		{"CreateEvent", func(a *API) error {
			_, err := a.CreateEvent(ctx, EventCreate{Title: "Run", Start: start, End: start.Add(time.Hour), Tags: []string{"sport"}})
			return err
		}, http.MethodPost, "/events", "", `{"title":"Run","description":"","location":"","start_timestamptz":"2025-05-01T18:00:00Z","end_timestamptz":"2025-05-01T19:00:00Z","tags":["sport"],"by_group":false}`},
		{"DeleteEvent", func(a *API) error { _, err := a.DeleteEvent(ctx, "9"); return err }, http.MethodDelete, "/events/9", "", ""},
		{"JoinEvent", func(a *API) error { _, err := a.JoinEvent(ctx, "9"); return err }, http.MethodPost, "/events/9/participants", "", ""},
		{"Tags", func(a *API) error { _, err := a.Tags(ctx); return err }, http.MethodGet, "/events/tags", "", ""},
		{"Groups", func(a *API) error { _, err := a.Groups(ctx); return err }, http.MethodGet, "/groups/", "", ""},
		{"UserGroups", func(a *API) error { _, err := a.UserGroups(ctx, "3"); return err }, http.MethodGet, "/groups/user/3", "", ""},
		{"GroupEvents", func(a *API) error { _, err := a.GroupEvents(ctx, "3"); return err }, http.MethodGet, "/groups/3/events", "", ""},
		{"Members", func(a *API) error { _, err := a.Members(ctx, "3"); return err }, http.MethodGet, "/groups/3/members", "", ""},
		{"CreateGroup", func(a *API) error { _, err := a.CreateGroup(ctx, GroupCreate{Name: "Chess"}); return err }, http.MethodPost, "/groups/", "", `{"name":"Chess"}`},
		{"UpdateGroup", func(a *API) error {
			name := "Go"
			_, err := a.UpdateGroup(ctx, "3", GroupUpdate{Name: &name})
			return err
		}, http.MethodPut, "/groups/3", "", `{"name":"Go"}`},
		{"LeaveGroup", func(a *API) error { _, err := a.LeaveGroup(ctx, "3"); return err }, http.MethodDelete, "/groups/3/leave", "", ""},
		{"ToggleAdmin", func(a *API) error { _, err := a.ToggleAdmin(ctx, "3", "8"); return err }, http.MethodPost, "/groups/3/members/8/toggle_admin", "", ""},
		{"InvitationLink", func(a *API) error { _, err := a.InvitationLink(ctx, "3"); return err }, http.MethodPost, "/groups/3/generate_link", "", ""},
		{"InvitationData", func(a *API) error { _, err := a.InvitationData(ctx, "abc"); return err }, http.MethodGet, "/groups/join_by_token/abc", "", ""},
		{"AcceptInvite", func(a *API) error { _, err := a.AcceptInvite(ctx, "abc"); return err }, http.MethodPost, "/groups/join_by_token/abc", "", ""},
		{"UploadGroupAvatar", func(a *API) error {
			_, err := a.UploadGroupAvatar(ctx, "3", "a.png", strings.NewReader("x"))
			return err
		}, http.MethodPatch, "/groups/avatar", "group_id=3", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
			require.NoError(t, tc.call(apiFor(b, "t")))
			got := b.last(t)
			assert.Equal(t, tc.method, got.Method)
			assert.Equal(t, tc.path, got.Path)
			assert.Equal(t, tc.query, got.Query)
			if tc.body != "" {
				assert.JSONEq(t, tc.body, got.Body)
			}
		})
	}
}

func TestReadWithUndecodableBody(t *testing.T) {
	b := newFakeBackend(t, jsonReply(http.StatusOK, `{"id":"not a number"`))

	ev, err := apiFor(b, "t").Event(context.Background(), "1")
	assert.Nil(t, ev)
	assert.True(t, errors.Is(err, ErrBadPayload))
}

func TestUploadEventImageDecodesResponse(t *testing.T) {
	b := newFakeBackend(t, jsonReply(http.StatusOK, `{"message":"ok","image_url":"/static/1.png"}`))

	up, err := apiFor(b, "t").UploadEventImage(context.Background(), "1", "1.png", strings.NewReader("PNG"))
	require.NoError(t, err)
	require.NotNil(t, up)
	assert.Equal(t, "/static/1.png", up.ImageURL)
	assert.Equal(t, "/events/1/upload-image", b.last(t).Path)
}

type plainDispatcher struct{}

func (plainDispatcher) Dispatch(context.Context, string, string, any) (*http.Response, error) {
	return nil, errors.New("unused")
}

func TestUploadNeedsUploader(t *testing.T) {
	_, err := NewAPI(plainDispatcher{}).UploadGroupAvatar(context.Background(), "1", "a", strings.NewReader(""))
	assert.ErrorIs(t, err, errUploadUnsupported)
}
