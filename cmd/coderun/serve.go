package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/programme-lv/coderun/internal/natsrv"
	"github.com/programme-lv/coderun/internal/sqsgath"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "answer execution requests from a message transport",
		Commands: []*cli.Command{
			{
				Name:  "nats",
				Usage: "reply to requests on a NATS subject",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, err := setup(cmd)
					if err != nil {
						return err
					}
					nc, err := nats.Connect(a.cfg.NatsUrl, nats.Name("coderun"))
					if err != nil {
						return fmt.Errorf("failed to connect to nats at %s: %w", a.cfg.NatsUrl, err)
					}
					defer func() {
						if err := nc.Flush(); err != nil {
							slog.Warn("failed to flush replies", "err", err)
						}
						nc.Close()
					}()

					srv := natsrv.New(natsrv.Wrap(nc), a.cfg.NatsSubject, a.cfg.NatsQueue, a.exec, slog.Default())
					return srv.Serve(ctx)
				},
			},
			{
				Name:  "sqs",
				Usage: "poll an SQS queue and send results to the queue named in each message",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, err := setup(cmd)
					if err != nil {
						return err
					}
					if a.cfg.SqsRequestUrl == "" {
						return cli.Exit("CODERUN_SQS_REQUEST_URL is not set", 2)
					}
					client, err := sqsgath.NewClient(ctx, a.cfg.AwsRegion)
					if err != nil {
						return fmt.Errorf("unable to load SDK config: %w", err)
					}

					w := sqsgath.NewWorker(client, a.cfg.SqsRequestUrl, a.exec, slog.Default())
					return w.Run(ctx)
				},
			},
		},
	}
}
