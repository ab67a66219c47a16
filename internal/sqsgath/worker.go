package sqsgath

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/programme-lv/coderun/api"
)

type Executor interface {
	Execute(ctx context.Context, req api.ExecReq) api.ExecRes
}

// QueueMsg is the body of a message on the request queue.
type QueueMsg struct {
	ResSqsUrl string      `json:"res_sqs_url"`
	Request   api.ExecReq `json:"request"`
}

// Worker long-polls a request queue, executes each request and sends the
// trimmed result to the queue named in the message.
type Worker struct {
	client   Client
	queueUrl string
	exec     Executor
	log      *slog.Logger

	batch   int
	wait    int32
	backoff time.Duration
}

func NewWorker(client Client, queueUrl string, exec Executor, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		client:   client,
		queueUrl: queueUrl,
		exec:     exec,
		log:      log.With("queue", queueUrl),
		batch:    1,
		wait:     5,
		backoff:  time.Second,
	}
}

// Run polls until ctx is done. Receive failures are logged and retried.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("polling for execution requests")
	for {
		if ctx.Err() != nil {
			return nil
		}
		out, err := w.receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			w.log.Warn("failed to receive messages", "err", err)
			select {
			case <-time.After(w.backoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		var wg sync.WaitGroup
		for _, m := range out.Messages {
			wg.Add(1)
			go func(m types.Message) {
				defer wg.Done()
				w.Process(ctx, m)
			}(m)
		}
		wg.Wait()
	}
}

// Process handles a single message. The message is deleted once a response
// was sent, or right away if its body can not be understood.
func (w *Worker) Process(ctx context.Context, m types.Message) {
	if m.Body == nil {
		w.log.Warn("dropping message without body")
		w.ack(ctx, m)
		return
	}

	var msg QueueMsg
	if err := json.Unmarshal([]byte(*m.Body), &msg); err != nil {
		w.log.Warn("dropping malformed message", "err", err)
		w.ack(ctx, m)
		return
	}
	if msg.ResSqsUrl == "" {
		w.log.Warn("dropping message without response queue", "uuid", msg.Request.Uuid)
		w.ack(ctx, m)
		return
	}

	res := w.exec.Execute(ctx, msg.Request)
	if err := w.respond(ctx, msg.ResSqsUrl, res); err != nil {
		// left on the queue to be redelivered after the visibility timeout
		w.log.Error("failed to send response", "uuid", res.Uuid, "err", err)
		return
	}
	w.ack(ctx, m)
}

func (w *Worker) respond(ctx context.Context, queueUrl string, res api.ExecRes) error {
	b, err := json.Marshal(res.Trimmed(api.MaxPreviewHeight, api.MaxPreviewWidth))
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	return w.send(ctx, queueUrl, string(b))
}

func (w *Worker) ack(ctx context.Context, m types.Message) {
	if err := w.delete(ctx, m.ReceiptHandle); err != nil {
		w.log.Warn("failed to delete message", "err", err)
	}
}
