// Package slack reads channel history from the Slack Web API, exports it, and
// extracts LinkedIn job links posted by alert bots.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"leadhunt-engine/internal/scrape/util"
)

const DefaultAPIBase = "https://slack.com/api"

var ErrChannelNotFound = errors.New("slack channel not found")

type Client struct {
	base  string
	token string
	hc    *http.Client
	lim   *util.HostLimiter
}

func New(base, token string, timeout time.Duration, lim *util.HostLimiter) *Client {
	if base == "" {
		base = DefaultAPIBase
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		hc:    &http.Client{Timeout: timeout},
		lim:   lim,
	}
}

// ChannelID looks up a public or private channel by name (without '#').
func (c *Client) ChannelID(ctx context.Context, name string) (string, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "#")
	params := url.Values{}
	params.Set("types", "public_channel,private_channel")
	params.Set("limit", "1000")

	for {
		body, err := c.get(ctx, "conversations.list", params)
		if err != nil {
			return "", fmt.Errorf("conversations.list: %w", err)
		}
		res := gjson.ParseBytes(body)
		if !res.Get("ok").Bool() {
			code := res.Get("error").String()
			logAPIError("conversations.list", code)
			return "", fmt.Errorf("conversations.list: slack error %s", code)
		}
		for _, ch := range res.Get("channels").Array() {
			if ch.Get("name").String() == name {
				return ch.Get("id").String(), nil
			}
		}
		cursor := res.Get("response_metadata.next_cursor").String()
		if cursor == "" {
			break
		}
		params.Set("cursor", cursor)
	}
	return "", fmt.Errorf("#%s: %w", name, ErrChannelNotFound)
}

// History returns messages newer than oldest, newest first as Slack sends them.
// API errors end pagination and keep what was read; transport errors yield nil.
func (c *Client) History(ctx context.Context, channelID string, oldest time.Time) []json.RawMessage {
	params := url.Values{}
	params.Set("channel", channelID)
	params.Set("oldest", SlackTS(oldest))
	params.Set("limit", "1000")

	var out []json.RawMessage
	for page := 1; ; page++ {
		body, err := c.get(ctx, "conversations.history", params)
		if err != nil {
			log.Printf("[slack] history failed channel=%s page=%d err=%v", channelID, page, err)
			return nil
		}
		res := gjson.ParseBytes(body)
		if !res.Get("ok").Bool() {
			logAPIError("conversations.history", res.Get("error").String())
			break
		}
		for _, m := range res.Get("messages").Array() {
			out = append(out, json.RawMessage(m.Raw))
		}
		if !res.Get("has_more").Bool() {
			break
		}
		cursor := res.Get("response_metadata.next_cursor").String()
		if cursor == "" {
			break
		}
		params.Set("cursor", cursor)
	}
	log.Printf("[slack] history channel=%s messages=%d", channelID, len(out))
	return out
}

func (c *Client) get(ctx context.Context, method string, params url.Values) ([]byte, error) {
	u := c.base + "/" + method + "?" + params.Encode()
	if err := c.lim.WaitURL(ctx, u); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<20))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("malformed json response")
	}
	return body, nil
}

func logAPIError(method, code string) {
	hint := ""
	switch code {
	case "invalid_auth":
		hint = "check SLACK_BOT_TOKEN"
	case "missing_scope":
		hint = "bot needs channels:read and channels:history"
	case "channel_not_found":
		hint = "invite the bot to the channel"
	}
	log.Printf("[slack] api error method=%s error=%s hint=%q", method, code, hint)
}

// SlackTS renders t the way Slack timestamps look ("1700000000.123456").
func SlackTS(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', 6, 64)
}

// ParseTS is the inverse of SlackTS.
func ParseTS(ts string) (time.Time, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(ts), 64)
	if err != nil || f <= 0 {
		return time.Time{}, false
	}
	sec := int64(f)
	return time.Unix(sec, int64((f-float64(sec))*1e9)).UTC(), true
}
