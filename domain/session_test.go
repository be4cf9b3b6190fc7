package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_Authenticated_Copies_User(t *testing.T) {
	user := UserProfile{ID: 1, Name: "Ann", Email: "a@b.com"}

	session := Authenticated("tok-1", user)
	user.Name = "changed"

	require.True(t, session.IsAuthenticated())
	require.Equal(t, "tok-1", session.Token)
	require.Equal(t, "Ann", session.User.Name)
}

func TestSession_Clone_Shares_No_User(t *testing.T) {
	session := Authenticated("tok-1", UserProfile{ID: 1, Name: "Ann"})

	clone := session.Clone()
	clone.User.Name = "tampered"

	require.Equal(t, "Ann", session.User.Name)
	require.Equal(t, Idle(), Idle().Clone())
}

func TestSession_Non_Authenticated_States_Carry_No_User(t *testing.T) {
	for _, session := range []Session{Idle(), Loading(), Unauthenticated("boom"), Failed("boom")} {
		require.False(t, session.IsAuthenticated())
		require.Nil(t, session.User)
		require.Empty(t, session.Token)
	}
	require.Equal(t, "boom", Unauthenticated("boom").Error)
	require.Equal(t, StatusError, Failed("boom").Status)
}

func TestMessage_IsMine(t *testing.T) {
	require.True(t, Message{Sender: SenderMe}.IsMine())
	require.False(t, Message{Sender: SenderOther}.IsMine())
}
