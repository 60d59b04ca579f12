package storeweb

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/bernerdschaefer/eventsource"
)

// eventSource consumes server-sent events over HTTP with automatic
// reconnection. Unlike [eventsource.EventSource], it observes the request's
// context: cancellation terminates a blocked Read from the inside, so the
// source is only ever touched by the single goroutine calling Read, and
// there is no Close to call from anywhere else.
type eventSource struct {
	client  HTTPClient
	retry   time.Duration
	request *http.Request
	err     error
	r       io.ReadCloser
	dec     *eventsource.Decoder
	lastID  string
}

func newEventSource(client HTTPClient, req *http.Request, retry time.Duration) *eventSource {
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	return &eventSource{
		client:  client,
		retry:   retry,
		request: req,
	}
}

// connect dials the endpoint, validates the response, and handles
// reconnects, giving up when the request context is done.
func (es *eventSource) connect() {
	for es.err == nil {
		if es.r != nil {
			es.r.Close()
			select {
			case <-time.After(es.retry):
			case <-es.request.Context().Done():
				es.err = es.request.Context().Err()
				return
			}
		}

		req := es.request.Clone(es.request.Context())
		req.Header.Set("Last-Event-Id", es.lastID)

		resp, err := es.client.Do(req)
		if err != nil {
			if ctxErr := es.request.Context().Err(); ctxErr != nil {
				es.err = ctxErr
				return
			}
			continue // reconnect
		}

		switch {
		case resp.StatusCode >= 500:
			resp.Body.Close() // assumed to be temporary, try reconnecting

		case resp.StatusCode == http.StatusNoContent:
			resp.Body.Close()
			es.err = eventsource.ErrClosed

		case resp.StatusCode != http.StatusOK:
			resp.Body.Close()
			es.err = fmt.Errorf("endpoint returned unrecoverable status %q", resp.Status)

		default:
			mediatype, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
			if mediatype != "text/event-stream" {
				resp.Body.Close()
				es.err = fmt.Errorf("invalid content type %q", resp.Header.Get("Content-Type"))
				return
			}
			es.r = resp.Body
			es.dec = eventsource.NewDecoder(es.r)
			return
		}
	}
}

// Read the next event from the source. If an error is returned, the source
// will not reconnect, and every further Read returns the same error. When
// the request context is canceled, Read returns the context's error.
func (es *eventSource) Read() (eventsource.Event, error) {
	if es.r == nil {
		es.connect()
	}

	for es.err == nil {
		var e eventsource.Event

		err := es.dec.Decode(&e)

		if err == eventsource.ErrInvalidEncoding {
			continue
		}

		if err != nil {
			if ctxErr := es.request.Context().Err(); ctxErr != nil {
				es.err = ctxErr
				break
			}
			es.connect()
			continue
		}

		if len(e.Data) == 0 {
			continue
		}

		if len(e.ID) > 0 || e.ResetID {
			es.lastID = e.ID
		}

		if len(e.Retry) > 0 {
			if retry, err := strconv.Atoi(e.Retry); err == nil {
				es.retry = time.Duration(retry) * time.Millisecond
			}
		}

		return e, nil
	}

	return eventsource.Event{}, es.err
}
