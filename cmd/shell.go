package main

import (
	"bufio"
	"chat-shell/contract"
	"chat-shell/domain"
	"chat-shell/errors"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

const usage = `commands:
  register <name> <email> <password>
  login <email> <password>
  logout
  whoami
  say <text>
  messages
  name <new name>
  password <new password>
  help
  quit`

// Shell is the line-oriented surface over the session subsystem.
// It renders whatever the session manager publishes and never keeps
// its own copy of the session.
type Shell struct {
	log      *slog.Logger
	out      io.Writer
	manager  contract.ISessionManager
	messages contract.IMessageStore
}

func NewShell(log *slog.Logger, out io.Writer, manager contract.ISessionManager, messages contract.IMessageStore) *Shell {
	return &Shell{log: log, out: out, manager: manager, messages: messages}
}

// Run reads commands from in until quit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	s.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := s.Execute(ctx, line); quit {
				return nil
			}
			s.prompt()
		}
	}
}

// Execute runs a single command line and reports whether the shell should stop.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	command, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch command {
	case "quit", "exit":
		return true
	case "help":
		s.println(usage)
	case "register":
		if len(args) < 3 {
			s.println("usage: register <name> <email> <password>")
			return false
		}
		name := strings.Join(args[:len(args)-2], " ")
		err = s.manager.Register(ctx, name, args[len(args)-2], args[len(args)-1])
	case "login":
		if len(args) != 2 {
			s.println("usage: login <email> <password>")
			return false
		}
		err = s.manager.Login(ctx, args[0], args[1])
	case "logout":
		s.manager.Logout()
	case "whoami":
		s.whoami()
	case "say":
		err = s.say(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0])))
	case "messages":
		if s.requireSession() {
			renderMessages(s.out, s.messages.List())
		}
	case "name":
		if len(args) == 0 {
			s.println("usage: name <new name>")
			return false
		}
		err = s.updateProfile(ctx, domain.ProfileUpdate{Name: lo.ToPtr(strings.Join(args, " "))})
	case "password":
		if len(args) != 1 {
			s.println("usage: password <new password>")
			return false
		}
		err = s.updateProfile(ctx, domain.ProfileUpdate{Password: lo.ToPtr(args[0])})
	default:
		s.println(fmt.Sprintf("unknown command %q, type help", command))
	}

	if err != nil {
		s.log.Debug("Command failed", "command", command, "error", err)
		renderError(s.out, err)
	}
	return false
}

func (s *Shell) whoami() {
	session := s.manager.Snapshot()
	if !session.IsAuthenticated() {
		s.println("not logged in")
		return
	}
	renderUser(s.out, *session.User)
}

func (s *Shell) say(text string) error {
	if !s.requireSession() {
		return nil
	}
	_, err := s.messages.Append(text, domain.SenderMe)
	return err
}

func (s *Shell) updateProfile(ctx context.Context, update domain.ProfileUpdate) error {
	if !s.requireSession() {
		return nil
	}
	user, err := s.manager.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	renderUser(s.out, user)
	return nil
}

// requireSession gates the chat and profile commands on an authenticated
// snapshot, the way the chat surface is only reachable after login.
func (s *Shell) requireSession() bool {
	if s.manager.Snapshot().IsAuthenticated() {
		return true
	}
	renderError(s.out, errors.ErrNotAuthenticated)
	return false
}

func (s *Shell) prompt() {
	_, _ = fmt.Fprint(s.out, "> ")
}

func (s *Shell) println(text string) {
	_, _ = fmt.Fprintln(s.out, text)
}
