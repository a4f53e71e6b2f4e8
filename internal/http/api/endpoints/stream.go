package endpoints

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/countdown"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/http/api"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/page"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/render"
)

// Render operations sent to stream clients.
const (
	OpText   = "text"
	OpAppend = "append"
	OpLive   = "live"
	OpClear  = "clear"
	OpShow   = "show"
	OpHide   = "hide"
	OpError  = "error"
)

// Op is one render operation.
type Op struct {
	Op   string `json:"op"`
	ID   string `json:"id"`
	Text string `json:"text"`
	Slot string `json:"slot,omitempty"`
}

type jsonWriter interface {
	WriteJSON(v any) error
}

// Stream is a render target that mirrors a page to a websocket client.
type Stream struct {
	page *render.Page

	mu  sync.Mutex
	w   jsonWriter
	err error
}

func NewStream(w jsonWriter) *Stream {
	return &Stream{page: render.NewPage(), w: w}
}

// Err returns the first write error.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) SetText(id, text string) error {
	if err := s.page.SetText(id, text); err != nil {
		return err
	}
	s.send(Op{Op: OpText, ID: id, Text: text})
	return nil
}

func (s *Stream) AppendListItem(listID, text string) {
	s.page.AppendListItem(listID, text)
	s.send(Op{Op: OpAppend, ID: listID, Text: text})
}

func (s *Stream) AppendLiveItem(listID, label, slotID string) {
	s.page.AppendLiveItem(listID, label, slotID)
	s.send(Op{Op: OpLive, ID: listID, Text: label, Slot: slotID})
}

func (s *Stream) ClearList(listID string) {
	s.page.ClearList(listID)
	s.send(Op{Op: OpClear, ID: listID})
}

func (s *Stream) SetVisible(id string, visible bool) {
	s.page.SetVisible(id, visible)
	op := OpHide
	if visible {
		op = OpShow
	}
	s.send(Op{Op: op, ID: id})
}

func (s *Stream) send(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	if err := s.w.WriteJSON(op); err != nil {
		s.err = err
		log.Debug().Err(err).Str("op", op.Op).Msg("stream write failed")
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type countdownController struct {
	svc      Services
	interval time.Duration
}

func newCountdownController(svc Services, interval time.Duration) *countdownController {
	if interval <= 0 {
		interval = time.Second
	}
	return &countdownController{svc: svc, interval: interval}
}

// CountdownModule streams a live page over a websocket: one page load, then
// countdown updates every interval until the client goes away.
func CountdownModule(svc Services, interval time.Duration) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		cc := newCountdownController(svc, interval)
		c.GET("/countdown/ws", cc.serve)
	})
}

func (cc *countdownController) serve(ctx *gin.Context) {
	coords, apiErr := queryCoordinates(ctx)
	if apiErr != nil {
		ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log.Info().Str("remote", ctx.ClientIP()).Msg("countdown client connected")
	defer log.Info().Str("remote", ctx.ClientIP()).Msg("countdown client disconnected")

	streamCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reads only detect the close; clients have nothing to say.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Msg("countdown client read failed")
				}
				return
			}
		}
	}()

	stream := NewStream(conn)
	registry := countdown.NewRegistry(stream, cc.svc.Clock)
	loader := page.NewLoader(cc.svc.resolver(coords), cc.svc.Times, stream, registry, cc.svc.tz(), cc.svc.Clock)

	if _, err := loader.Load(streamCtx); err != nil {
		log.Warn().Err(err).Msg("countdown page load failed")
		stream.send(Op{Op: OpError, ID: render.UserLocation, Text: page.Status(err)})
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return
	}

	registry.Start(streamCtx, cc.interval)
	defer registry.Stop()

	<-streamCtx.Done()
}
