package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukaji3/datavision-go/pkg/datavision"
	"github.com/ukaji3/datavision-go/pkg/datavision/chat"
	"github.com/ukaji3/datavision-go/pkg/datavision/llm"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
	"github.com/ukaji3/datavision-go/pkg/datavision/session"
)

const replHelp = "Commands: /select N, /options, /reset, /quit. Anything else is sent to the model."

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if level != 0 && !models.IsLevel(level) {
		return fmt.Errorf("invalid level: %d (must be 20, 50, 70 or 100)", level)
	}

	client, err := current.newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	s, err := loadSession(ctx, client, args[0])
	if err != nil {
		return err
	}
	r := &repl{
		ctx:    ctx,
		client: client,
		path:   args[0],
		s:      s,
		in:     bufio.NewScanner(cmd.InOrStdin()),
		out:    cmd.OutOrStdout(),
	}
	return r.run(level)
}

type repl struct {
	ctx    context.Context
	client llm.Client
	path   string
	s      *session.Session
	in     *bufio.Scanner
	out    io.Writer
}

func (r *repl) run(initial int) error {
	r.printMessages(r.s.Snapshot().Messages)
	r.printOptions()
	fmt.Fprintln(r.out, replHelp)
	if initial != 0 {
		r.selectLevel(initial)
	}

	for {
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}
		line := strings.TrimSpace(r.in.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/options":
			r.printOptions()
		case line == "/reset":
			if err := r.reset(); err != nil {
				return err
			}
		case strings.HasPrefix(line, "/select"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/select")))
			if err != nil {
				fmt.Fprintln(r.out, "usage: /select 20|50|70|100")
				continue
			}
			r.selectLevel(n)
		case strings.HasPrefix(line, "/"):
			fmt.Fprintln(r.out, replHelp)
		default:
			r.send(line)
		}
	}
}

func (r *repl) printOptions() {
	result := r.s.Result()
	if result == nil {
		return
	}
	for _, opt := range result.Options {
		fmt.Fprintf(r.out, "[%d%%] %s (%s)\n", opt.Level, opt.Title, strings.Join(opt.Technologies, ", "))
	}
}

func (r *repl) printMessages(msgs []models.ChatMessage) {
	for _, m := range msgs {
		fmt.Fprintf(r.out, "%s: %s\n", m.Role, m.Text)
	}
}

func (r *repl) selectLevel(n int) {
	msg, changed, err := r.s.SelectLevel(n)
	switch {
	case errors.Is(err, datavision.ErrUnknownLevel):
		fmt.Fprintf(r.out, "no option at level %d\n", n)
	case err != nil:
		fmt.Fprintln(r.out, err)
	case !changed:
		fmt.Fprintf(r.out, "level %d is already selected\n", n)
	default:
		r.printMessages([]models.ChatMessage{msg})
	}
}

// send streams one turn, printing each fragment as it arrives.
func (r *repl) send(text string) {
	printed := 0
	fmt.Fprintf(r.out, "%s: ", models.RoleModel)
	_, err := r.s.Send(r.ctx, r.client, text, func(e chat.Event) {
		if e.Message.Role != models.RoleModel {
			return
		}
		switch e.Kind {
		case chat.MessageUpdated:
			fmt.Fprint(r.out, e.Message.Text[printed:])
			printed = len(e.Message.Text)
		case chat.MessageAppended:
			if e.Message.Text != "" {
				if printed > 0 {
					fmt.Fprintln(r.out)
				}
				fmt.Fprint(r.out, e.Message.Text)
			}
		}
	})
	fmt.Fprintln(r.out)
	if err != nil && !errors.Is(err, datavision.ErrChatTransport) {
		fmt.Fprintln(r.out, err)
	}
}

// reset starts over with a fresh extraction and analysis of the same file.
func (r *repl) reset() error {
	r.s.Reset()
	requester, err := current.newRequester(r.client)
	if err != nil {
		return err
	}
	if err := analyzeInto(r.ctx, r.s, requester, r.path); err != nil {
		return err
	}
	r.printMessages(r.s.Snapshot().Messages)
	r.printOptions()
	return nil
}
