package main

import (
	"bytes"
	"chat-shell/domain"
	"chat-shell/errors"
	"chat-shell/mocks"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var ann = domain.UserProfile{ID: 1, Name: "Ann", Email: "a@b.com"}

func newShell(t *testing.T) (*Shell, *mocks.MockISessionManager, *mocks.MockIMessageStore, *bytes.Buffer) {
	ctrl := gomock.NewController(t)
	manager := mocks.NewMockISessionManager(ctrl)
	messages := mocks.NewMockIMessageStore(ctrl)
	out := &bytes.Buffer{}
	return NewShell(logs.GetLoggerFromLevel(slog.LevelDebug), out, manager, messages), manager, messages, out
}

func TestShell_Login_Forwards_Credentials(t *testing.T) {
	req := require.New(t)
	shell, manager, _, _ := newShell(t)
	manager.EXPECT().Login(gomock.Any(), "a@b.com", "pw").Return(nil)

	req.False(shell.Execute(context.Background(), "login a@b.com pw"))
}

func TestShell_Register_Joins_Multi_Word_Name(t *testing.T) {
	req := require.New(t)
	shell, manager, _, _ := newShell(t)
	manager.EXPECT().Register(gomock.Any(), "Ann Lee", "a@b.com", "secret1").Return(nil)

	req.False(shell.Execute(context.Background(), "register Ann Lee a@b.com secret1"))
}

func TestShell_Prints_Failure_Message(t *testing.T) {
	req := require.New(t)
	shell, manager, _, out := newShell(t)
	manager.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New(errors.KindAuth, "invalid credentials"))

	shell.Execute(context.Background(), "login a@b.com wrong")

	req.Contains(out.String(), "auth error: invalid credentials")
}

func TestShell_Say_Requires_Session(t *testing.T) {
	req := require.New(t)
	shell, manager, messages, out := newShell(t)
	manager.EXPECT().Snapshot().Return(domain.Unauthenticated(""))
	messages.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

	shell.Execute(context.Background(), "say hello")

	req.Contains(out.String(), "not authenticated")
}

func TestShell_Say_Appends_Local_Echo(t *testing.T) {
	req := require.New(t)
	shell, manager, messages, out := newShell(t)
	manager.EXPECT().Snapshot().Return(domain.Authenticated("tok-1", ann))
	messages.EXPECT().Append("hello there", domain.SenderMe).
		Return(domain.Message{ID: "m1", Text: "hello there", Sender: domain.SenderMe}, nil)

	shell.Execute(context.Background(), "say   hello there")

	req.Empty(out.String())
}

func TestShell_Messages_Lists_Timeline(t *testing.T) {
	req := require.New(t)
	shell, manager, messages, out := newShell(t)
	manager.EXPECT().Snapshot().Return(domain.Authenticated("tok-1", ann))
	messages.EXPECT().List().Return([]domain.Message{
		{ID: "m1", Text: "hi", Sender: domain.SenderMe, Timestamp: time.Now(), DeliveryState: domain.DeliverySent},
		{ID: "m2", Text: "yo", Sender: domain.SenderOther, Timestamp: time.Now(), DeliveryState: domain.DeliverySent},
	})

	shell.Execute(context.Background(), "messages")

	output := out.String()
	req.Less(strings.Index(output, "hi"), strings.Index(output, "yo"))
	req.Contains(output, "you")
	req.Contains(output, "them")
	req.NotContains(output, string(domain.SenderOther))
}

func TestShell_Name_Updates_Profile(t *testing.T) {
	req := require.New(t)
	shell, manager, _, out := newShell(t)
	manager.EXPECT().Snapshot().Return(domain.Authenticated("tok-1", ann))
	manager.EXPECT().UpdateProfile(gomock.Any(), domain.ProfileUpdate{Name: lo.ToPtr("Ann Lee")}).
		Return(domain.UserProfile{ID: 1, Name: "Ann Lee", Email: "a@b.com"}, nil)

	shell.Execute(context.Background(), "name Ann Lee")

	req.Contains(out.String(), "Ann Lee")
}

func TestShell_Whoami(t *testing.T) {
	req := require.New(t)
	shell, manager, _, out := newShell(t)
	gomock.InOrder(
		manager.EXPECT().Snapshot().Return(domain.Unauthenticated("")),
		manager.EXPECT().Snapshot().Return(domain.Authenticated("tok-1", ann)),
	)

	shell.Execute(context.Background(), "whoami")
	req.Contains(out.String(), "not logged in")

	shell.Execute(context.Background(), "whoami")
	req.Contains(out.String(), "a@b.com")
}

func TestShell_Run_Stops_On_Quit(t *testing.T) {
	req := require.New(t)
	shell, manager, _, out := newShell(t)
	manager.EXPECT().Logout()

	err := shell.Run(context.Background(), strings.NewReader("logout\nquit\nlogout\n"))

	req.NoError(err)
	req.Contains(out.String(), "> ")
}

func TestShell_Unknown_Command(t *testing.T) {
	req := require.New(t)
	shell, _, _, out := newShell(t)

	req.False(shell.Execute(context.Background(), "dance"))
	req.Contains(out.String(), `unknown command "dance"`)
}

func TestSessionPrinter(t *testing.T) {
	req := require.New(t)
	out := &bytes.Buffer{}
	printer := sessionPrinter(out)

	printer.OnSession(domain.Loading())
	printer.OnSession(domain.Authenticated("tok-1", ann))
	printer.OnSession(domain.Failed("invalid credentials"))

	output := out.String()
	req.Contains(output, "[loading]")
	req.Contains(output, "Ann <a@b.com>")
	req.Contains(output, "invalid credentials")
}
