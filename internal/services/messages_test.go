package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medicore-api/internal/apperr"
)

func messageInput(body string) MessageInput {
	return MessageInput{
		FirstName: "Ayesha",
		LastName:  "Khan",
		Email:     "p@x.com",
		Phone:     "0300123456",
		Message:   body,
	}
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "p@x.com")

	_, err := f.inbox.Send(context.Background(), p, messageInput("First question about visiting hours"))
	require.NoError(t, err)
	msg, err := f.inbox.Send(context.Background(), p, messageInput("Second question about parking"))
	require.NoError(t, err)
	assert.Equal(t, p.ID, msg.SenderID)

	msgs, err := f.inbox.List(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Second question about parking", msgs[0].Message)
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "p@x.com")

	_, err := f.inbox.Send(context.Background(), p, messageInput("too short"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Contains(t, apperr.From(err).Message, "message must contain at least 10 characters")

	msgs, err := f.inbox.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
