package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/advisor"
	"github.com/urfave/cli/v2"
)

const chatHelp = `Ask about any CSE course. Commands:
  /upload <path>  read completed courses from a transcript PDF
  /session        print the session ID
  /quit           leave`

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:   "chat",
		Usage:  "Chat with the advisor in the terminal",
		Action: chatAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "session",
				Usage: "Session ID to continue (a new one is generated if empty)",
			},
		},
	}
}

func chatAction(c *cli.Context) error {
	adv, err := openAdvisor(c)
	if err != nil {
		return err
	}
	defer adv.Close()

	sessionID := c.String("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	reader := c.App.Reader
	if reader == nil {
		reader = os.Stdin
	}
	return runChat(c.Context, adv, sessionID, reader, c.App.Writer)
}

// chatter is the part of advisor.Advisor the REPL needs.
type chatter interface {
	HandleChat(ctx context.Context, message, sessionID string) (string, error)
	HandleTranscriptUpload(ctx context.Context, document []byte, sessionID string) (*advisor.TranscriptResponse, error)
}

// runChat reads one message per line until EOF or /quit.
func runChat(ctx context.Context, adv chatter, sessionID string, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, chatHelp)
	fmt.Fprintf(out, "Session: %s\n\n", sessionID)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/session":
			fmt.Fprintln(out, sessionID)
		case line == "/help":
			fmt.Fprintln(out, chatHelp)
		case strings.HasPrefix(line, "/upload"):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/upload"))
			if err := uploadTranscript(ctx, adv, sessionID, path, out); err != nil {
				fmt.Fprintf(out, "Upload failed: %v\n", err)
			}
		default:
			reply, err := adv.HandleChat(ctx, line, sessionID)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "\n%s\n\n", reply)
		}
	}
}

func uploadTranscript(ctx context.Context, adv chatter, sessionID, path string, out io.Writer) error {
	if path == "" {
		return errors.New("usage: /upload <path to transcript PDF>")
	}
	document, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	resp, err := adv.HandleTranscriptUpload(ctx, document, sessionID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s\n\n", resp.Response)
	fmt.Fprintf(out, "%d courses found in the catalog.\n\n", len(resp.Courses))
	return nil
}
