// Package limit rate limits requests per client address.
package limit

import (
	"net/http"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/errors"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/ethda/chainfront/frontserver/internal/middleware"
	"github.com/ethda/chainfront/httperr"
)

// RateLimit allows n requests per second from each client. A non-positive n
// disables the limit.
func RateLimit(n float64) middleware.F {
	if n <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	l := tollbooth.NewLimiter(n, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Hour,
	})
	l.SetIPLookups([]string{"X-Forwarded-For", "RemoteAddr", "X-Real-IP"})

	return middleware.P(func(w http.ResponseWriter, r *http.Request) bool {
		if err := tollbooth.LimitByRequest(l, w, r); err != nil {
			err := rateErr{err}
			http.Error(w, err.Error(), httperr.ErrCode(err))
			return false
		}
		return true
	})
}

type rateErr struct {
	*errors.HTTPError
}

func (r rateErr) StatusCode() int {
	return r.HTTPError.StatusCode
}
