package ai

import "net/http"

type exchangeKey struct{}

// exchange captures what the transport saw for a single Ask.
type exchange struct {
	status int
	err    error
}

// recordingDoer stores the response status or transport error of each
// request on the exchange carried by the request context.
type recordingDoer struct {
	next *http.Client
}

func (d *recordingDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.next.Do(req)
	if ex, ok := req.Context().Value(exchangeKey{}).(*exchange); ok {
		if err != nil {
			ex.err = err
		} else {
			ex.status = resp.StatusCode
		}
	}
	return resp, err
}
