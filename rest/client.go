// Copyright 2026 The Launchman Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/net/context"

	"github.com/launchman/launchman"
)

// How long the server is asked to hold a long poll, in seconds.
const watchSecs = 300

// Timeout for requests that do not wait for changes.  Starting an app
// waits for it to settle, so this is generous.
const requestTimeout = 30 * time.Second

type LogInfo struct {
	etag    string
	Records []LogRecord
}

// Client talks to a launchman daemon.  It caches the daemon information
// and the log, so that watchers only transfer them when they change.
type Client struct {
	base      string // URI of the server root
	client    *http.Client
	transport *http.Transport

	// Cached data
	manager *ManagerInfo
	log     *LogInfo
	lock    sync.Mutex
}

func (c *Client) url(id string) string {
	if id == "" {
		return c.base + "/api/apps"
	}
	return c.base + "/api/apps/" + url.PathEscape(id)
}

// Watch waits for the daemon's serial to move past etag, and returns the
// new one.  With an empty etag it returns the current one at once.
func (c *Client) Watch(ctx context.Context, etag string) (string, error) {
	var e error
	c.lock.Lock()
	if c.manager != nil && etag == "" {
		etag = c.manager.etag
		c.lock.Unlock()
		return etag, nil
	}
	c.lock.Unlock()

	minfo := &ManagerInfo{}
	if minfo.etag, e = c.poll(ctx, c.base+"/api", etag, watchSecs, minfo); e != nil {
		return "", e
	}
	if minfo.etag != "" {
		c.lock.Lock()
		if c.manager == nil || c.manager.etag != minfo.etag {
			c.manager = minfo
		}
		c.lock.Unlock()
		etag = minfo.etag
	}
	return etag, nil
}

func (c *Client) GetInfo() (*ManagerInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	minfo := &ManagerInfo{}
	etag, e := c.poll(ctx, c.base+"/api", "", 0, minfo)
	if e != nil {
		return nil, e
	}
	minfo.etag = etag
	c.lock.Lock()
	c.manager = minfo
	c.lock.Unlock()
	return minfo, nil
}

// Apps returns every registered app, in registration order.
func (c *Client) Apps() ([]*AppInfo, error) {
	var v []*AppInfo
	if e := c.do("GET", c.url(""), nil, &v); e != nil {
		return nil, e
	}
	return v, nil
}

func (c *Client) GetApp(id string) (*AppInfo, error) {
	v := &AppInfo{}
	if e := c.do("GET", c.url(id), nil, v); e != nil {
		return nil, e
	}
	return v, nil
}

// AddApp registers an app.  The port in the reply may differ from the one
// asked for.
func (c *Client) AddApp(spec *launchman.AppSpec) (*AppInfo, error) {
	v := &AppInfo{}
	if e := c.do("POST", c.url(""), spec, v); e != nil {
		return nil, e
	}
	return v, nil
}

func (c *Client) UpdateApp(id string, u *launchman.AppUpdate) (*AppInfo, error) {
	v := &AppInfo{}
	if e := c.do("PUT", c.url(id), u, v); e != nil {
		return nil, e
	}
	return v, nil
}

// DeleteApp stops the app, and removes it from the registry.
func (c *Client) DeleteApp(id string) error {
	return c.do("DELETE", c.url(id), nil, &ActionReply{})
}

func (c *Client) StartApp(id string) (*ActionReply, error) {
	v := &ActionReply{}
	if e := c.do("POST", c.url(id)+"/start", nil, v); e != nil {
		return nil, e
	}
	return v, nil
}

func (c *Client) StopApp(id string) (*ActionReply, error) {
	v := &ActionReply{}
	if e := c.do("POST", c.url(id)+"/stop", nil, v); e != nil {
		return nil, e
	}
	return v, nil
}

func (c *Client) AppStatus(id string) (bool, error) {
	v := &StatusReply{}
	if e := c.do("GET", c.url(id)+"/status", nil, v); e != nil {
		return false, e
	}
	return v.Running, nil
}

// do issues a request with an optional JSON body, and decodes the JSON
// reply into v.
func (c *Client) do(method, url string, body interface{}, v interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		b, e := json.Marshal(body)
		if e != nil {
			return e
		}
		rd = bytes.NewReader(b)
	}
	req, e := http.NewRequestWithContext(ctx, method, url, rd)
	if e != nil {
		return e
	}
	if body != nil {
		req.Header.Set("Content-Type", mimeJson)
	}
	res, e := c.client.Do(req)
	if e != nil {
		return e
	}
	defer res.Body.Close()
	b, e := io.ReadAll(res.Body)
	if e != nil {
		return e
	}
	if res.StatusCode != http.StatusOK {
		return replyError(res, b)
	}
	return json.Unmarshal(b, v)
}

// replyError recovers the server's error message where it sent one.
func replyError(res *http.Response, body []byte) error {
	e := &Error{}
	if json.Unmarshal(body, e) != nil || e.Message == "" {
		return &Error{Code: res.StatusCode, Message: res.Status}
	}
	e.Code = res.StatusCode
	return e
}

// poll issues an HTTP GET against the URL, optionally checking for a cache,
// including optionally issuing a long poll that tries to wait until the
// value changes.  The return values are the new Etag and any error.  If the
// value did not change, then the returned etag will be "", but the error will
// be nil.
func (c *Client) poll(ctx context.Context, url string, etag string, wait int, v interface{}) (string, error) {

	req, e := http.NewRequestWithContext(ctx, "GET", url, nil)
	if e != nil {
		return "", e
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
		if wait > 0 {
			req.Header.Set(PollEtagHeader, etag)
			req.Header.Set(PollTimeHeader, strconv.Itoa(wait))
		}
	}

	res, e := c.client.Do(req)
	if e != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", e
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotModified {
		return "", nil
	}
	body, e := io.ReadAll(res.Body)
	if e != nil {
		return "", e
	}
	if res.StatusCode != http.StatusOK {
		return "", replyError(res, body)
	}
	if e := json.Unmarshal(body, v); e != nil {
		return "", e
	}
	return res.Header.Get("Etag"), nil
}

func (c *Client) pollLog(ctx context.Context, secs int, last *LogInfo) (*LogInfo, error) {

	v := &LogInfo{}

	c.lock.Lock()
	cached := c.log
	c.lock.Unlock()

	otag := ""
	if last == nil {
		secs = 0
	} else if cached != nil && last.etag != cached.etag {
		// The caller is behind our cache, so it has news already.
		return cached, nil
	} else {
		otag = last.etag
	}

	etag, e := c.poll(ctx, c.base+"/api/log", otag, secs, &v.Records)
	if e != nil {
		c.lock.Lock()
		c.log = nil
		c.lock.Unlock()
		return nil, e
	}
	if etag == "" {
		if cached == nil {
			return last, nil
		}
		return cached, nil
	}
	v.etag = etag
	c.lock.Lock()
	c.log = v
	c.lock.Unlock()

	return v, nil
}

// WatchLog waits for the log to change from last, and returns it.
func (c *Client) WatchLog(ctx context.Context, last *LogInfo) (*LogInfo, error) {
	return c.pollLog(ctx, watchSecs, last)
}

func (c *Client) GetLog() (*LogInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return c.pollLog(ctx, 0, nil)
}

// NewClient returns a Client handle.  The transport maybe nil to use
// a default transport, but it may also be adjusted to support additional
// options such as TLS.  baseURI is the base URL to use.
func NewClient(t *http.Transport, baseURI string) *Client {
	if t == nil {
		t = &http.Transport{}
	}
	return &Client{
		transport: t,
		base:      baseURI,
		client:    &http.Client{Transport: t},
	}
}
