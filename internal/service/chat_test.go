package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LahcenOub/tinmel-lms-sub000/internal/repository/inmem"
)

func TestChatSendReturnsUpdatedLog(t *testing.T) {
	svc := NewChatService(inmem.NewChannelMessageRepository())

	msg, log, err := svc.Send(context.Background(), student, "staff-room", "first")
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Len(t, log, 1)

	msg2, log, err := svc.Send(context.Background(), host, "staff-room", "second")
	require.NoError(t, err)

	require.Len(t, log, 2)
	assert.Equal(t, msg.ID, log[0].ID)
	assert.Equal(t, msg2.ID, log[1].ID)
	assert.Equal(t, "Prof. Amrani", msg2.SenderName)
}

func TestChatSendEmptyDropped(t *testing.T) {
	repo := inmem.NewChannelMessageRepository()
	svc := NewChatService(repo)

	msg, log, err := svc.Send(context.Background(), student, "staff-room", "")

	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Nil(t, log)

	count, err := repo.CountByReceiver(context.Background(), "staff-room")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestChatChannelsIsolated(t *testing.T) {
	svc := NewChatService(inmem.NewChannelMessageRepository())

	_, _, err := svc.Send(context.Background(), student, "class-3a", "hi 3a")
	require.NoError(t, err)
	_, _, err = svc.Send(context.Background(), student, "staff-room", "hi staff")
	require.NoError(t, err)

	msgs, err := svc.List(context.Background(), "class-3a", 50, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi 3a", msgs[0].Content)
}

func TestChatListPagination(t *testing.T) {
	svc := NewChatService(inmem.NewChannelMessageRepository())

	for i := 0; i < 5; i++ {
		_, _, err := svc.Send(context.Background(), student, "staff-room", fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), "staff-room", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "msg 2", page[0].Content)
	assert.Equal(t, "msg 3", page[1].Content)

	total, err := svc.Count(context.Background(), "staff-room")
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}
