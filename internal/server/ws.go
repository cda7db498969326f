package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jward/scopeview"
	"github.com/jward/scopeview/internal/graph"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type wsInbound struct {
	Type     string   `json:"type"`
	Text     string   `json:"text,omitempty"`
	Depth    int      `json:"depth,omitempty"`
	Kind     string   `json:"kind,omitempty"`
	Visible  bool     `json:"visible,omitempty"`
	Excluded []string `json:"excluded,omitempty"`
}

type wsOutbound struct {
	Type     string              `json:"type"`
	Graph    *scopeview.Rendered `json:"graph,omitempty"`
	Text     string              `json:"text,omitempty"`
	Language string              `json:"language,omitempty"`
	Frontend string              `json:"frontend,omitempty"`
	Code     string              `json:"code,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// handleWS runs one live-editing session. The query parameters language
// and frontend pick the parser; the session starts on the language's
// sample text.
//
// Edits run concurrently so a slow parse never blocks the next keystroke;
// the session drops results that finish after a newer edit. Every change
// triggers an asynchronous render and only current renders reach the
// client.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	language := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("language")))
	if language == "" {
		language = s.opts.Frontend.Language
	}
	kind := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("frontend")))

	sess, sessErr := s.newSession(kind, language)
	if sessErr != nil && !errors.Is(sessErr, scopeview.ErrParserUnavailable) {
		http.Error(w, sessErr.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxSourceBytes)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		s.logger.Warn("ws.read_deadline_failed", "err", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writeCh := make(chan wsOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	if sessErr != nil {
		// Without a parser the client can still connect; every edit
		// reports parser_unavailable.
		pushWS(writeCh, wsErr(sessErr))
		sess, _ = scopeview.NewSession(nil)
	}

	c := &wsClient{sess: sess, ctx: ctx, out: writeCh}
	sample := scopeview.SampleSource(language)
	pushWS(writeCh, wsOutbound{Type: "hello", Text: sample, Language: language, Frontend: kind})
	c.edit(sample)

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		c.handle(in)
	}
}

type wsClient struct {
	sess *scopeview.Session
	ctx  context.Context
	out  chan wsOutbound

	mu sync.Mutex
	// version of the last graph sent; renders of older views are dropped.
	version uint64
}

func (c *wsClient) handle(in wsInbound) {
	switch strings.ToLower(strings.TrimSpace(in.Type)) {
	case "":
		pushWS(c.out, wsOutbound{Type: "error", Code: "invalid_argument", Message: "type is required"})
	case "ping":
		pushWS(c.out, wsOutbound{Type: "pong"})
	case "edit":
		c.edit(in.Text)
	case "depth":
		c.sess.SetDepth(in.Depth)
		c.render()
	case "increase":
		c.sess.IncreaseDetail()
		c.render()
	case "decrease":
		c.sess.DecreaseDetail()
		c.render()
	case "kind":
		if err := c.sess.SetKindVisible(scopeview.Kind(in.Kind), in.Visible); err != nil {
			pushWS(c.out, wsOutbound{Type: "error", Code: "invalid_argument", Message: err.Error()})
			return
		}
		c.render()
	case "exclude":
		kinds, err := graph.ParseKinds(in.Excluded)
		if err == nil {
			err = c.sess.SetExcluded(kinds.Sorted()...)
		}
		if err != nil {
			pushWS(c.out, wsOutbound{Type: "error", Code: "invalid_argument", Message: err.Error()})
			return
		}
		c.render()
	default:
		pushWS(c.out, wsOutbound{Type: "error", Code: "invalid_argument", Message: "unsupported type: " + in.Type})
	}
}

// edit applies text in the background and renders on success. Stale edits
// are dropped silently; a parse failure leaves the last graph on screen.
func (c *wsClient) edit(text string) {
	go func() {
		err := c.sess.Edit(c.ctx, text)
		switch {
		case err == nil:
			c.render()
		case errors.Is(err, scopeview.ErrStale), c.ctx.Err() != nil:
		default:
			pushWS(c.out, wsErr(err))
		}
	}()
}

func (c *wsClient) render() {
	ch := c.sess.RenderAsync(c.ctx)
	go func() {
		for r := range ch {
			c.deliver(r)
		}
	}()
}

// deliver sends r unless a render of a newer view already went out.
// Renders of the same view are equal and may repeat.
func (c *wsClient) deliver(r *scopeview.Rendered) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r.Version < c.version {
		return
	}
	c.version = r.Version
	pushWS(c.out, wsOutbound{Type: "graph", Graph: r})
}

func wsErr(err error) wsOutbound {
	code, _ := errorCode(err)
	return wsOutbound{Type: "error", Code: code, Message: err.Error()}
}

// pushWS enqueues out, dropping the oldest queued message when the writer
// falls behind.
func pushWS(writeCh chan wsOutbound, out wsOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
