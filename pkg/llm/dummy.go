package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
)

const providerDummy = "dummy"

type action struct {
	kind string
	arg  string
}

// parseScript reads a comma separated action list:
// ok | empty | err:<message> | msg:<text> | msgb64:<base64 text>.
// msgb64 exists for payloads containing commas, such as JSON.
func parseScript(script string) ([]action, error) {
	if strings.TrimSpace(script) == "" {
		return []action{{kind: "ok"}}, nil
	}
	var actions []action
	for _, p := range strings.Split(script, ",") {
		token := strings.TrimSpace(p)
		switch {
		case token == "":
			continue
		case token == "ok", token == "empty":
			actions = append(actions, action{kind: token})
		case strings.HasPrefix(token, "err:"):
			actions = append(actions, action{kind: "err", arg: strings.TrimPrefix(token, "err:")})
		case strings.HasPrefix(token, "msg:"):
			actions = append(actions, action{kind: "msg", arg: strings.TrimPrefix(token, "msg:")})
		case strings.HasPrefix(token, "msgb64:"):
			decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(token, "msgb64:"))
			if err != nil {
				return nil, fmt.Errorf("invalid dummy msgb64 payload: %w", err)
			}
			actions = append(actions, action{kind: "msg", arg: string(decoded)})
		default:
			return nil, fmt.Errorf("invalid dummy action: %s", token)
		}
	}
	if len(actions) == 0 {
		actions = append(actions, action{kind: "ok"})
	}
	return actions, nil
}

// DummyClient is a deterministic scripted model. Each call consumes the next
// action; the last action repeats once the script is exhausted.
type DummyClient struct {
	mu       sync.Mutex
	actions  []action
	index    int
	requests []*Request
}

// NewDummyClient builds a scripted client, e.g. "msg:hello,err:boom".
func NewDummyClient(script string) (*DummyClient, error) {
	actions, err := parseScript(script)
	if err != nil {
		return nil, err
	}
	return &DummyClient{actions: actions}, nil
}

func (d *DummyClient) next() action {
	if d.index >= len(d.actions) {
		return d.actions[len(d.actions)-1]
	}
	a := d.actions[d.index]
	d.index++
	return a
}

func (d *DummyClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.requests = append(d.requests, req)
	a := d.next()
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Provider: providerDummy, Err: err}
	}
	switch a.kind {
	case "err":
		return nil, &TransportError{Provider: providerDummy, Err: errors.New(a.arg)}
	case "empty":
		return nil, &EmptyResponseError{Provider: providerDummy, Reason: "scripted"}
	case "msg":
		return &Response{Text: a.arg}, nil
	default:
		return &Response{Text: "ok"}, nil
	}
}

// Requests returns the requests seen so far, in call order.
func (d *DummyClient) Requests() []*Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Request(nil), d.requests...)
}
