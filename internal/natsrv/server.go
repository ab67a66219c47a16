package natsrv

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/programme-lv/coderun/api"
)

type Executor interface {
	Execute(ctx context.Context, req api.ExecReq) api.ExecRes
}

// Conn is the part of a NATS connection the server needs.
type Conn interface {
	QueueSubscribe(subject, queue string, cb nats.MsgHandler) (Subscription, error)
	PublishMsg(m *nats.Msg) error
}

type Subscription interface {
	Drain() error
	IsValid() bool
}

type natsConn struct {
	*nats.Conn
}

// Wrap adapts a live connection to Conn.
func Wrap(nc *nats.Conn) Conn {
	return natsConn{nc}
}

func (c natsConn) QueueSubscribe(subject, queue string, cb nats.MsgHandler) (Subscription, error) {
	return c.Conn.QueueSubscribe(subject, queue, cb)
}

const DefaultShutdownTimeout = time.Minute

// Server answers execution requests published on a NATS subject. Several
// servers may share a queue group to split the load.
type Server struct {
	conn    Conn
	subject string
	queue   string
	exec    Executor
	log     *slog.Logger

	// ShutdownTimeout bounds how long Serve waits for the subscription to
	// drain and executions in progress to reply once ctx is done.
	ShutdownTimeout time.Duration

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

func New(conn Conn, subject, queue string, exec Executor, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		conn:            conn,
		subject:         subject,
		queue:           queue,
		exec:            exec,
		log:             log.With("subject", subject),
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Serve blocks until ctx is done, then drains the subscription and waits for
// executions in progress to reply. Executions keep running after ctx is done
// and are only cancelled once ShutdownTimeout has passed.
func (s *Server) Serve(ctx context.Context) error {
	execCtx, cancelExec := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelExec()

	sub, err := s.conn.QueueSubscribe(s.subject, s.queue, func(m *nats.Msg) {
		s.mu.Lock()
		if s.closing {
			s.mu.Unlock()
			s.log.Warn("dropping request received during shutdown")
			return
		}
		s.wg.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.wg.Done()
			s.handle(execCtx, m)
		}()
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.subject, err)
	}
	s.log.Info("listening for execution requests", "queue", s.queue)

	<-ctx.Done()
	s.log.Info("shutting down", "timeout", s.ShutdownTimeout)
	shutdown, cancelShutdown := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancelShutdown()

	if err := sub.Drain(); err != nil {
		s.log.Warn("failed to drain subscription", "err", err)
	}
	s.waitDrained(shutdown, sub)

	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdown.Done():
		s.log.Warn("cancelling executions still in progress")
		cancelExec()
		<-done
	}
	return nil
}

// waitDrained polls until every pending message was handed to the callback.
func (s *Server) waitDrained(ctx context.Context, sub Subscription) {
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for sub.IsValid() {
		select {
		case <-tick.C:
		case <-ctx.Done():
			s.log.Warn("subscription did not drain in time")
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, m *nats.Msg) {
	if m.Reply == "" {
		s.log.Warn("dropping request without reply subject")
		return
	}

	reply, err := Handle(ctx, s.exec, m.Header, m.Data)
	if err != nil {
		s.log.Error("failed to build reply", "err", err)
		return
	}
	reply.Subject = m.Reply
	if err := s.conn.PublishMsg(reply); err != nil {
		s.log.Error("failed to respond", "err", err)
	}
}

// Handle executes one encoded request and returns the encoded reply.
func Handle(ctx context.Context, exec Executor, hdr nats.Header, data []byte) (*nats.Msg, error) {
	compress := hdr.Get(HdrAcceptEncoding) == EncodingZstd

	req, err := DecodeRequest(hdr, data)
	if err != nil {
		msg := err.Error()
		now := time.Now().Format(time.RFC3339)
		return EncodeResponse(api.ExecRes{
			Status:       api.InvalidRequest,
			ExitStatus:   -1,
			ErrorMessage: &msg,
			StartTime:    now,
			FinishTime:   now,
		}, compress)
	}

	return EncodeResponse(exec.Execute(ctx, req), compress)
}
