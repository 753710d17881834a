package core

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// API groups the domain access functions. Each one is a single dispatch:
// reads and creations return the decoded body or nil, state transitions return the ok flag.
// Transport failures and a missing credential come back as errors.
type API struct {
	d Dispatcher
}

func NewAPI(d Dispatcher) *API {
	return &API{d: d}
}

// Dispatcher returns the dispatcher every call goes through.
func (a *API) Dispatcher() Dispatcher { return a.d }

// Uploader is implemented by dispatchers that can send multipart bodies.
type Uploader interface {
	Upload(ctx context.Context, path, method, field, filename string, r io.Reader) (*http.Response, error)
}

var errUploadUnsupported = errors.New("dispatcher does not support uploads")

// upload is a creation: decoded body on 2xx, nil otherwise.
func (a *API) upload(ctx context.Context, path, method, filename string, r io.Reader) (*Uploaded, error) {
	up, ok := a.d.(Uploader)
	if !ok {
		return nil, errUploadUnsupported
	}
	resp, err := up.Upload(ctx, path, method, "file", filename, r)
	if err != nil {
		return nil, err
	}
	o, err := outcomeOf(resp)
	if err != nil {
		return nil, err
	}
	return decodeOrNil[Uploaded](o)
}

// p joins escaped path segments: p("groups", id, "join") -> "/groups/<id>/join".
func p(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// withQuery appends an encoded query to path.
func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
