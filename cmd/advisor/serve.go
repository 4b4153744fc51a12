package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/advisor"
	"github.com/poiesic/advisor/server"
	"github.com/poiesic/advisor/session"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the chat and transcript API over HTTP",
		Action: serveAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address",
				Value:   ":5000",
				EnvVars: []string{"ADVISOR_ADDR"},
			},
			&cli.DurationFlag{
				Name:  "request-timeout",
				Usage: "Deadline for each request (0 disables it)",
				Value: server.DefaultRequestTimeout,
			},
			&cli.DurationFlag{
				Name:  "session-expiry",
				Usage: "How long an idle session is remembered",
				Value: session.DefaultExpiry,
			},
			&cli.Int64Flag{
				Name:  "max-upload-size",
				Usage: "Largest accepted transcript in bytes",
				Value: server.DefaultMaxUploadSize,
			},
			&cli.StringSliceFlag{
				Name:    "cors-origin",
				Usage:   "Origin allowed to call the API from a browser (repeatable, default any)",
				EnvVars: []string{"ADVISOR_CORS_ORIGINS"},
			},
		},
	}
}

func serveAction(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !strings.EqualFold(c.String("log-level"), "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	origins := c.StringSlice("cors-origin")
	if err := server.CheckOrigins(origins); err != nil {
		return err
	}

	adv, err := openAdvisor(c, advisor.WithSessionExpiry(c.Duration("session-expiry")))
	if err != nil {
		return err
	}
	defer adv.Close()

	srv := server.New(adv,
		server.WithRequestTimeout(c.Duration("request-timeout")),
		server.WithMaxUploadSize(c.Int64("max-upload-size")),
		server.WithAllowedOrigins(origins...),
	)
	return srv.Run(ctx, c.String("addr"))
}
