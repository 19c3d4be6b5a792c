// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deliver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	maxAckBody      = 4096
	defaultTemplate = "turquoise"
)

// WeCom posts markdown messages to a WeCom (WeChat Work) group robot.
// The robot answers {"errcode":0,"errmsg":"ok"} on success.
type WeCom struct {
	URL    string
	Client *http.Client
}

type wecomMarkdown struct {
	Content string `json:"content"`
}

type wecomPayload struct {
	MsgType  string        `json:"msgtype"`
	Markdown wecomMarkdown `json:"markdown"`
}

type wecomAck struct {
	ErrCode *int   `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Send implements Transport.
func (w *WeCom) Send(ctx context.Context, text string) error {
	body, err := post(ctx, w.Client, w.URL, wecomPayload{MsgType: "markdown", Markdown: wecomMarkdown{Content: text}})
	if err != nil {
		return err
	}

	var ack wecomAck
	if err := json.Unmarshal(body, &ack); err != nil || ack.ErrCode == nil {
		return fmt.Errorf("%w: %s", ErrMalformedAck, snippet(body))
	}
	if *ack.ErrCode != 0 {
		return fmt.Errorf("%w: errcode=%d errmsg=%s", ErrRejected, *ack.ErrCode, ack.ErrMsg)
	}
	return nil
}

// Feishu posts interactive cards with a single markdown element to a
// Feishu (Lark) custom bot. The bot answers {"code":0,"msg":"success"}.
type Feishu struct {
	URL      string
	Title    string
	Template string
	Client   *http.Client
}

type feishuText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

type feishuCard struct {
	Config struct {
		WideScreenMode bool `json:"wide_screen_mode"`
	} `json:"config"`
	Header struct {
		Title    feishuText `json:"title"`
		Template string     `json:"template"`
	} `json:"header"`
	Elements []feishuText `json:"elements"`
}

type feishuPayload struct {
	MsgType string     `json:"msg_type"`
	Card    feishuCard `json:"card"`
}

type feishuAck struct {
	Code       *int   `json:"code"`
	Msg        string `json:"msg"`
	StatusCode *int   `json:"StatusCode"`
}

// Send implements Transport.
func (f *Feishu) Send(ctx context.Context, text string) error {
	var card feishuCard
	card.Config.WideScreenMode = true
	card.Header.Title = feishuText{Tag: "plain_text", Content: f.Title}
	card.Header.Template = f.Template
	if card.Header.Template == "" {
		card.Header.Template = defaultTemplate
	}
	card.Elements = []feishuText{{Tag: "markdown", Content: text}}

	body, err := post(ctx, f.Client, f.URL, feishuPayload{MsgType: "interactive", Card: card})
	if err != nil {
		return err
	}

	var ack feishuAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedAck, snippet(body))
	}
	code := ack.Code
	if code == nil {
		code = ack.StatusCode
	}
	if code == nil {
		return fmt.Errorf("%w: %s", ErrMalformedAck, snippet(body))
	}
	if *code != 0 {
		return fmt.Errorf("%w: code=%d msg=%s", ErrRejected, *code, ack.Msg)
	}
	return nil
}

// post sends payload as JSON and returns the reply body of a 2xx response.
func post(ctx context.Context, client *http.Client, url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAckBody))
	if err != nil {
		return nil, fmt.Errorf("reading webhook reply: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d %s", ErrRejected, resp.StatusCode, snippet(body))
	}
	return body, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
