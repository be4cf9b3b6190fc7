package main

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	sign := func(exp time.Time) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userID": 7, "exp": exp.Unix()}).
			SignedString([]byte("secret"))
		req.NoError(err)
		return token
	}

	valid := describe("session:token", sign(now.Add(time.Hour)), false, now)
	req.Equal("7", valid[2])
	req.Equal("VALID", valid[4])
	req.Contains(valid[1], "...")

	expired := describe("session:token", sign(now.Add(-time.Hour)), false, now)
	req.Equal("EXPIRED", expired[4])

	opaque := describe("session:token", "tok-1", true, now)
	req.Equal([]string{"session:token", "tok-1", "-", "-", "OPAQUE"}, opaque)
}

func TestMask(t *testing.T) {
	require.Equal(t, "*****", mask("tok-1"))
	require.Equal(t, "abcdef...uvwxyz", mask("abcdefghijklmnopqrstuvwxyz"))
}
