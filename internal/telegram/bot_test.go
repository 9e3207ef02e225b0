// FilePath: internal/telegram/bot_test.go
package telegram

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent map[int64][]string
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: map[int64][]string{}}
}

func (s *fakeSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	s.sent[chatID] = append(s.sent[chatID], text)
	return nil
}

type fakeUpdates struct {
	batches [][]Update
}

func (u *fakeUpdates) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	if len(u.batches) == 0 {
		return nil, nil
	}
	batch := u.batches[0]
	u.batches = u.batches[1:]

	out := []Update{}
	for _, upd := range batch {
		if upd.UpdateID >= offset {
			out = append(out, upd)
		}
	}
	return out, nil
}

func textUpdate(id, chatID int64, text string) Update {
	return Update{
		UpdateID: id,
		Message:  &Message{MessageID: id, Text: text, Chat: Chat{ID: chatID}},
	}
}

func TestMemoryTokenStoreRedeemOnce(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()

	token := NewLinkToken()
	require.NoError(t, store.Put(ctx, token, 7, time.Minute))

	userID, ok, err := store.Redeem(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), userID)

	_, ok, err = store.Redeem(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok, "a token redeems exactly once")
}

func TestMemoryTokenStoreExpiry(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tok", 7, -time.Second))

	_, ok, err := store.Redeem(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeepLink(t *testing.T) {
	assert.Equal(t, "https://t.me/broilink_bot?start=abc", DeepLink("broilink_bot", "abc"))
}

func TestBotAdvancesOffset(t *testing.T) {
	sender := newFakeSender()
	updates := &fakeUpdates{batches: [][]Update{
		{textUpdate(10, 500, "halo")},
		{textUpdate(10, 500, "halo"), textUpdate(11, 500, "lagi")},
	}}
	bot := NewBot(nil, updates, sender, NewMemoryTokenStore(), nil, time.Second)

	bot.Poll(context.Background())
	assert.Equal(t, int64(11), bot.offset)

	// The replayed update 10 is filtered by the offset; only 11 is new.
	bot.Poll(context.Background())
	assert.Equal(t, int64(12), bot.offset)
	assert.Len(t, sender.sent[500], 2)
}

func TestBotStartWithoutToken(t *testing.T) {
	sender := newFakeSender()
	updates := &fakeUpdates{batches: [][]Update{{textUpdate(1, 500, "/start")}}}
	bot := NewBot(nil, updates, sender, NewMemoryTokenStore(), nil, time.Second)

	bot.Poll(context.Background())

	require.Len(t, sender.sent[500], 1)
	assert.Contains(t, sender.sent[500][0], "Hubungkan akun")
}

func TestBotStartWithExpiredToken(t *testing.T) {
	sender := newFakeSender()
	updates := &fakeUpdates{batches: [][]Update{{textUpdate(1, 500, "/start tgl_nope")}}}
	bot := NewBot(nil, updates, sender, NewMemoryTokenStore(), nil, time.Second)

	bot.Poll(context.Background())

	require.Len(t, sender.sent[500], 1)
	assert.Contains(t, sender.sent[500][0], "kedaluwarsa")
}

func TestBotUnknownCommandShowsHelp(t *testing.T) {
	sender := newFakeSender()
	updates := &fakeUpdates{batches: [][]Update{{textUpdate(1, 500, "apa ini")}}}
	bot := NewBot(nil, updates, sender, NewMemoryTokenStore(), nil, time.Second)

	bot.Poll(context.Background())

	require.Len(t, sender.sent[500], 1)
	assert.True(t, strings.Contains(sender.sent[500][0], "/cekiot"))
}
