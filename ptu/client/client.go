package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/pkg/errors"

	"github.com/aldelar/ptu-ri-alert/ptu"
)

//Client facilitates communication with a running function handler
type Client struct {
	ep   *url.URL
	http *http.Client
}

//NewClient sets up an HTTP client that communicates with the handler
func NewClient(endpoint string) (c *Client, err error) {
	c = &Client{
		http: http.DefaultClient,
	}
	c.ep, err = url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse provided endpoint")
	}

	return c, nil
}

func (c *Client) doRequest(ctx context.Context, p string, in interface{}, out interface{}) (err error) {
	loc := *c.ep
	loc.Path = path.Join(loc.Path, p)

	reqBody := bytes.NewBuffer(nil)
	enc := json.NewEncoder(reqBody)
	err = enc.Encode(in)
	if err != nil {
		return errors.Wrap(err, "failed to encode request input")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loc.String(), reqBody)
	if err != nil {
		return errors.Wrap(err, "failed to create HTTP request")
	}

	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to execute HTTP request")
	}

	defer resp.Body.Close()
	respBody := bytes.NewBuffer(nil)
	tr := io.TeeReader(resp.Body, respBody)
	if resp.StatusCode > 399 {
		_, _ = io.Copy(io.Discard, tr)
		return errors.Errorf("unexpected response code '%d' from server, url: '%s' response: '%s'", resp.StatusCode, loc.String(), respBody.String())
	}

	dec := json.NewDecoder(tr)
	err = dec.Decode(out)
	if err != nil {
		return errors.Wrapf(err, "unable to decode response body: '%s'", respBody.String())
	}

	return nil
}

//Invoke calls a function the way the functions host does, out receives the return value
func (c *Client) Invoke(ctx context.Context, function, binding string, ev interface{}, out interface{}) (err error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}

	resp := &ptu.InvokeResponse{ReturnValue: out}
	err = c.doRequest(ctx, function, &ptu.InvokeRequest{
		Data:     map[string]json.RawMessage{binding: data},
		Metadata: map[string]json.RawMessage{},
	}, resp)
	if err != nil {
		return errors.Wrapf(err, "failed to invoke function '%s'", function)
	}

	return nil
}

//InvokeEvent sends a single event to the event grid triggered function
func (c *Client) InvokeEvent(ctx context.Context, function, binding string, ev *ptu.Event) (st *ptu.Status, err error) {
	st = &ptu.Status{}
	if err = c.Invoke(ctx, function, binding, ev, st); err != nil {
		return nil, err
	}

	return st, nil
}

//Deliver posts a batch of events to the event grid webhook
func (c *Client) Deliver(ctx context.Context, evs []*ptu.Event) (sts []*ptu.Status, err error) {
	sts = []*ptu.Status{}
	err = c.doRequest(ctx, "api/events", evs, &sts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to deliver events")
	}

	return sts, nil
}
