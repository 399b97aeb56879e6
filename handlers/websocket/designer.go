package websocket

import (
	"certificate-designer/designer"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io-go-parser/packet"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-go-parser/v2/parser"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

// socketSurface makes the client connection the global pointer surface: a
// drag attaches pointer-move and pointer-up handlers to the connection's
// event queue and detaching removes them again.
type socketSurface struct {
	queue *eventQueue
	log   *logrus.Entry
}

func (s socketSurface) Listen(l designer.PointerListener) (detach func()) {
	s.queue.On(EventPointerMove, func(datas ...any) {
		var p designer.Point
		if err := decodePayload(datas, &p); err != nil {
			s.log.WithError(err).Debug("Ignoring malformed pointer-move")
			return
		}
		l.PointerMove(p)
	})
	s.queue.On(EventPointerUp, func(datas ...any) {
		var p designer.Point
		_ = decodePayload(datas, &p)
		l.PointerUp(p)
	})

	return func() {
		s.queue.Off(EventPointerMove, EventPointerUp)
	}
}

// queueEvents feeds the connection's event packets into q in arrival order.
// Engine.IO reports each packet synchronously before Socket.IO hands the event
// to a goroutine of its own, so events are decoded here from that report.
func queueEvents(socket *socketio.Socket, q *eventQueue, log *logrus.Entry) {
	decoder := parser.NewDecoder()
	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	decoder.On("decoded", func(args ...any) {
		p, ok := args[0].(*parser.Packet)
		if !ok || p.Type != parser.EVENT || p.Nsp != "/" {
			return
		}
		if data, ok := p.Data.([]any); ok {
			q.Push(data...)
		}
	})

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	socket.Conn().On("packet", func(args ...any) {
		p, ok := args[0].(*packet.Packet)
		if !ok || p.Type != packet.MESSAGE {
			return
		}
		// String leaves the buffer unread for Socket.IO's own decoder.
		text, ok := p.Data.(fmt.Stringer)
		if !ok {
			return
		}
		raw := text.String()
		if !strings.HasPrefix(raw, string(parser.EVENT)) {
			return
		}
		if err := decoder.Add(raw); err != nil {
			log.WithError(err).Debug("Ignoring malformed event packet")
		}
	})
}

// handle decodes the event payload into a fresh P and runs fn, reporting
// failures to the client as designer-error.
func handle[P any](session *Session, fn func(P) error) func(...any) {
	return func(datas ...any) {
		var p P
		if err := decodePayload(datas, &p); err != nil {
			session.emitError(err)
			return
		}
		if err := fn(p); err != nil {
			session.emitError(err)
		}
	}
}

func SetupSocketIO(repo Repository, allowedOrigins ...any) *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	if len(allowedOrigins) == 0 {
		allowedOrigins = []any{regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`)}
	}
	opts.SetCors(&types.Cors{
		Origin:      allowedOrigins,
		Credentials: true,
	})
	srv := socketio.NewServer(nil, opts)

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}

		queue := newEventQueue()
		surface := socketSurface{queue: queue}
		session := NewSession(repo, socket, surface)
		surface.log = session.log.WithField("socket_id", socket.Id())
		session.surface = surface
		session.log.WithField("socket_id", socket.Id()).Info("Designer client connected")

		queue.On(EventOpenDesigner, handle(session, func(p OpenPayload) error {
			return session.Open(context.Background(), p.TemplateID)
		}))
		queue.On(EventPointerDown, handle(session, session.PointerDown))
		queue.On(EventSetField, handle(session, session.SetField))
		queue.On(EventAddElement, handle(session, session.AddElement))
		queue.On(EventSelect, handle(session, session.Select))
		queue.On(EventDeleteSelected, handle(session, func(struct{}) error {
			return session.DeleteSelected()
		}))
		queue.On(EventSetBackground, handle(session, session.SetBackground))
		queue.On(EventResize, handle(session, session.Resize))
		queue.On(EventSetMetadata, handle(session, session.SetMetadata))
		queue.On(EventSave, handle(session, func(struct{}) error {
			return session.Save(context.Background())
		}))
		queue.On(EventCloseDesigner, handle(session, func(struct{}) error {
			session.Close()
			return nil
		}))

		queueEvents(socket, queue, surface.log)
		go queue.Run()

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On("disconnect", func(datas ...any) {
			queue.Stop()
			session.Close()
			session.log.Info("Designer client disconnected")
			socket.RemoveAllListeners("")
			socket.Disconnect(true)
		})
	})

	return srv
}
