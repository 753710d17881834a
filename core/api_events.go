package core

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

func (a *API) Event(ctx context.Context, id string) (*Event, error) {
	return readInto[Event](ctx, a.d, http.MethodGet, p("events", id), nil)
}

// Events returns one of the feeds (recommendations, friends, groups).
func (a *API) Events(ctx context.Context, filter EventFilter) (*EventsPage, error) {
	q := url.Values{"filter_type": {string(filter)}}
	return readInto[EventsPage](ctx, a.d, http.MethodGet, withQuery("/events/filter", q), nil)
}

// CreatedEvents lists events organized by the caller.
func (a *API) CreatedEvents(ctx context.Context) (*[]Event, error) {
	return readInto[[]Event](ctx, a.d, http.MethodGet, "/events/my/created", nil)
}

// ParticipatingEvents lists events the caller has joined.
func (a *API) ParticipatingEvents(ctx context.Context) (*[]Event, error) {
	return readInto[[]Event](ctx, a.d, http.MethodGet, "/events/my/participating", nil)
}

func (a *API) CreateEvent(ctx context.Context, e EventCreate) (*CreatedEvent, error) {
	return readInto[CreatedEvent](ctx, a.d, http.MethodPost, "/events", e)
}

func (a *API) UpdateEvent(ctx context.Context, id string, upd EventUpdate) (*Message, error) {
	return readInto[Message](ctx, a.d, http.MethodPatch, p("events", id), upd)
}

func (a *API) DeleteEvent(ctx context.Context, id string) (bool, error) {
	return actionOK(ctx, a.d, http.MethodDelete, p("events", id), nil)
}

func (a *API) JoinEvent(ctx context.Context, id string) (bool, error) {
	return actionOK(ctx, a.d, http.MethodPost, p("events", id, "participants"), nil)
}

func (a *API) LeaveEvent(ctx context.Context, id string) (bool, error) {
	return actionOK(ctx, a.d, http.MethodDelete, p("events", id, "participants"), nil)
}

// UploadEventImage attaches a cover image to an event. Call it only after CreateEvent returned.
func (a *API) UploadEventImage(ctx context.Context, id, filename string, r io.Reader) (*Uploaded, error) {
	return a.upload(ctx, p("events", id, "upload-image"), http.MethodPost, filename, r)
}

// Tags lists every tag usable on events, groups and profiles.
func (a *API) Tags(ctx context.Context) (*[]string, error) {
	return readInto[[]string](ctx, a.d, http.MethodGet, "/events/tags", nil)
}
