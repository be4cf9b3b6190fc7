package main

import (
	"chat-shell/contract"
	"chat-shell/domain"
	"chat-shell/errors"
	"chat-shell/internal"
	"fmt"
	"io"
	"time"

	"github.com/gookit/color"
)

var statusStyles = map[domain.Status]color.Style{
	domain.StatusIdle:            color.New(color.FgGray),
	domain.StatusLoading:         color.New(color.FgYellow),
	domain.StatusAuthenticated:   color.New(color.FgGreen, color.OpBold),
	domain.StatusUnauthenticated: color.New(color.FgCyan),
	domain.StatusError:           color.New(color.FgRed, color.OpBold),
}

// sessionPrinter echoes every published transition.
func sessionPrinter(out io.Writer) contract.SessionObserver {
	return contract.ObserverFunc(func(session domain.Session) {
		style, ok := statusStyles[session.Status]
		if !ok {
			style = color.New(color.FgDefault)
		}
		line := fmt.Sprintf("[%s]", session.Status)
		switch {
		case session.IsAuthenticated():
			line += fmt.Sprintf(" %s <%s>", session.User.Name, session.User.Email)
		case session.Error != "":
			line += " " + session.Error
		}
		_, _ = fmt.Fprintln(out, style.Render(line))
	})
}

func renderError(out io.Writer, err error) {
	label := errors.KindOf(err).String()
	_, _ = fmt.Fprintln(out, color.New(color.FgRed).Render(fmt.Sprintf("%s error: %s", label, errors.MessageOf(err))))
}

func renderUser(out io.Writer, user domain.UserProfile) {
	table := internal.NewTable(out, "ID", "Name", "Email", "Created", "Updated")
	table.Append([]string{
		fmt.Sprintf("%d", user.ID),
		user.Name,
		user.Email,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	})
	table.Render()
}

func renderMessages(out io.Writer, messages []domain.Message) {
	if len(messages) == 0 {
		_, _ = fmt.Fprintln(out, "no messages")
		return
	}
	table := internal.NewTable(out, "At", "From", "Text", "State")
	for _, m := range messages {
		table.Append([]string{m.Timestamp.Format("15:04:05"), sender(m), m.Text, string(m.DeliveryState)})
	}
	table.Render()
}

func sender(m domain.Message) string {
	if m.IsMine() {
		return "you"
	}
	return "them"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
