package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// ErrBadPayload wraps a 2xx body that does not decode into the expected type.
var ErrBadPayload = errors.New("undecodable backend payload")

// OutcomeKind tags how a backend exchange ended.
type OutcomeKind int

const (
	OutcomeValue    OutcomeKind = iota // 2xx with a body
	OutcomeEmpty                       // 2xx without a body
	OutcomeRejected                    // valid HTTP exchange, non-2xx status
)

// Outcome is the internal result of one dispatched request. Sentinel values (nil, false) are
// derived from it at the function boundary.
type Outcome struct {
	Kind   OutcomeKind
	Status int
	Body   []byte
	Reason string // status text for rejections
}

// OK reports whether the backend accepted the request.
func (o Outcome) OK() bool { return o.Kind != OutcomeRejected }

func outcomeOf(resp *http.Response) (Outcome, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{}, fmt.Errorf("read response body: %w", err)
	}
	o := Outcome{Status: resp.StatusCode, Body: body}
	switch {
	case !isOK(resp):
		o.Kind = OutcomeRejected
		o.Reason = resp.Status
	case len(body) == 0:
		o.Kind = OutcomeEmpty
	default:
		o.Kind = OutcomeValue
	}
	return o, nil
}

// decodeOrNil: rejected -> nil; accepted -> decoded body.
func decodeOrNil[T any](o Outcome) (*T, error) {
	if !o.OK() {
		return nil, nil
	}
	var v T
	if o.Kind == OutcomeEmpty {
		return &v, nil
	}
	if err := json.Unmarshal(o.Body, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return &v, nil
}

// fetch dispatches and reduces the response to an Outcome.
func fetch(ctx context.Context, d Dispatcher, method, path string, body any) (Outcome, error) {
	resp, err := d.Dispatch(ctx, path, method, body)
	if err != nil {
		return Outcome{}, err
	}
	return outcomeOf(resp)
}

// readInto is the read/create bucket: decoded body on 2xx, nil on rejection.
func readInto[T any](ctx context.Context, d Dispatcher, method, path string, body any) (*T, error) {
	o, err := fetch(ctx, d, method, path, body)
	if err != nil {
		return nil, err
	}
	return decodeOrNil[T](o)
}

// actionOK is the state-transition bucket: the ok indicator, body ignored.
func actionOK(ctx context.Context, d Dispatcher, method, path string, body any) (bool, error) {
	resp, err := d.Dispatch(ctx, path, method, body)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return isOK(resp), nil
}
