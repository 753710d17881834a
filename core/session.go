package core

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// ResolveCurrentUser asks the backend who owns the credential d carries.
// nil means the session is not valid: a non-2xx answer, or a 2xx body that only carries an
// error detail. Navigation is left to the caller. ErrNoToken and transport errors are returned.
func ResolveCurrentUser(ctx context.Context, d Dispatcher) (*Identity, error) {
	o, err := fetch(ctx, d, http.MethodGet, "/user/profile/me", nil)
	if err != nil {
		return nil, err
	}
	if !o.OK() {
		log.Debug().Int("status", o.Status).Str("detail", gjson.GetBytes(o.Body, "detail").String()).Msg("session rejected")
		return nil, nil
	}
	if invalidSessionPayload(o.Body) {
		log.Debug().Str("detail", gjson.GetBytes(o.Body, "detail").String()).Msg("session payload without identity")
		return nil, nil
	}

	id, err := decodeOrNil[Identity](o)
	if err != nil {
		return nil, fmt.Errorf("resolve current user: %w", err)
	}
	if id == nil || id.ID == 0 {
		return nil, nil
	}
	return id, nil
}

func invalidSessionPayload(body []byte) bool {
	if !gjson.ValidBytes(body) {
		return len(body) > 0
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return false
	}
	return res.Get("detail").Exists() && !res.Get("id").Exists()
}
