package storeweb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bernerdschaefer/eventsource"
	"github.com/peterbourgon/unixtransport"

	"github.com/h7su/debugstore"
)

// Client reads a remote store served by [Server] and [StreamServer].
type Client struct {
	client HTTPClient
	uri    string
}

// NewClient returns a client reading the store at the given URI.
func NewClient(client HTTPClient, remoteURI string) *Client {
	return &Client{
		client: client,
		uri:    remoteURI,
	}
}

// NewDefaultTransport returns an HTTP transport which also handles
// http+unix:// and https+unix:// URLs.
func NewDefaultTransport() *http.Transport {
	transport := &http.Transport{}
	unixtransport.Register(transport)
	return transport
}

// Snapshot fetches the remote store's snapshot wire string.
func (c *Client) Snapshot(ctx context.Context) (string, error) {
	body, err := c.get(ctx, c.uri, "text/plain")
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(body), "\n"), nil
}

// SnapshotData fetches the decoded JSON form of the remote snapshot.
func (c *Client) SnapshotData(ctx context.Context) (*SnapshotData, error) {
	body, err := c.get(ctx, c.uri, "application/json")
	if err != nil {
		return nil, err
	}

	var data SnapshotData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode snapshot response: %w", err)
	}

	return &data, nil
}

// Stats fetches the remote store's bookkeeping counters.
func (c *Client) Stats(ctx context.Context) (*debugstore.Stats, error) {
	uri, err := url.JoinPath(c.uri, "stats")
	if err != nil {
		return nil, fmt.Errorf("build stats URI: %w", err)
	}

	body, err := c.get(ctx, uri, "application/json")
	if err != nil {
		return nil, err
	}

	var stats debugstore.Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("decode stats response: %w", err)
	}

	return &stats, nil
}

func (c *Client) get(ctx context.Context, uri, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", uri, nil)
	if err != nil {
		return nil, fmt.Errorf("create HTTP request: %w", err)
	}

	req.Header.Set("Accept", accept)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute HTTP request: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, res.Body)
		res.Body.Close()
	}()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP response %d %s", res.StatusCode, http.StatusText(res.StatusCode))
	}

	return io.ReadAll(res.Body)
}

// HTTPClient models http.Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ HTTPClient = (*http.Client)(nil)

//
//
//

// StreamClient subscribes to a remote store's event stream.
type StreamClient struct {
	// URI of the remote stream server.
	URI string

	// HTTPClient for stream requests. Defaults to http.DefaultClient.
	HTTPClient HTTPClient

	// RecvBuffer requests the remote per-subscriber buffer size. Default 10.
	RecvBuffer int

	// RetryInterval between reconnect attempts. Default 1s.
	RetryInterval time.Duration
}

// NewStreamClient returns a stream client connecting to the provided URI.
func NewStreamClient(uri string) *StreamClient {
	return &StreamClient{
		URI: uri,
	}
}

// Stream events from the remote server to the provided channel. The stream
// stops when the context is canceled or a non-recoverable error occurs.
func (c *StreamClient) Stream(ctx context.Context, ch chan<- debugstore.Event) error {
	var req *http.Request
	{
		uri, err := url.Parse(c.URI)
		if err != nil {
			return fmt.Errorf("parse stream URI: %w", err)
		}

		if c.RecvBuffer > 0 {
			query := uri.Query()
			query.Set("buf", strconv.Itoa(c.RecvBuffer))
			uri.RawQuery = query.Encode()
		}

		req, err = http.NewRequestWithContext(ctx, "GET", uri.String(), nil)
		if err != nil {
			return fmt.Errorf("create stream request: %w", err)
		}
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	retry := c.RetryInterval
	if retry <= 0 {
		retry = time.Second
	}

	// The source observes the request context, so cancelation unblocks a
	// pending Read without another goroutine touching the source.
	es := newEventSource(client, req, retry)

	for {
		sse, err := es.Read()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		if errors.Is(err, eventsource.ErrClosed) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read server-sent event: %w", err)
		}

		if sse.Type != "event" {
			continue
		}

		var ev debugstore.Event
		if err := json.Unmarshal(sse.Data, &ev); err != nil {
			return fmt.Errorf("decode streamed event: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case ch <- ev:
		}
	}
}
