// FilePath: internal/telegram/bot.go
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/farmservice"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

const offsetKey = "telegram_bot_offset"

// UpdateSource is the inbound half of the client, what the bot polls.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64) ([]Update, error)
}

// Bot handles incoming chat commands: the /start deep link that binds a
// chat to an account, and /cekiot for an on-demand farm condition check.
type Bot struct {
	svc      *farmservice.FarmService
	client   UpdateSource
	sender   Sender
	tokens   TokenStore
	redis    *redis.Client
	interval time.Duration
	offset   int64
}

func NewBot(svc *farmservice.FarmService, client UpdateSource, sender Sender, tokens TokenStore, redisClient *redis.Client, interval time.Duration) *Bot {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Bot{
		svc:      svc,
		client:   client,
		sender:   sender,
		tokens:   tokens,
		redis:    redisClient,
		interval: interval,
	}
}

// CreateDeepLink mints a token for the user and returns the t.me URL the
// frontend shows as the "connect Telegram" button.
func (b *Bot) CreateDeepLink(ctx context.Context, userID int64, botUsername string) (string, error) {
	token := NewLinkToken()
	if err := b.tokens.Put(ctx, token, userID, LinkTokenTTL); err != nil {
		return "", err
	}
	return DeepLink(botUsername, token), nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.loadOffset(ctx)
	nuts.L.Infof("[TelegramBot] Started (poll interval %v, offset %d)", b.interval, b.offset)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			nuts.L.Infof("[TelegramBot] Stopped")
			return
		case <-ticker.C:
			b.Poll(ctx)
		}
	}
}

// Poll fetches and handles one batch of updates. Exposed for tests.
func (b *Bot) Poll(ctx context.Context) {
	updates, err := b.client.GetUpdates(ctx, b.offset)
	if err != nil {
		nuts.L.Errorf("[TelegramBot] Poll failed: %v", err)
		return
	}

	for _, update := range updates {
		if update.UpdateID >= b.offset {
			b.offset = update.UpdateID + 1
		}
		if update.Message == nil {
			continue
		}
		b.handleMessage(ctx, update.Message)
	}

	if len(updates) > 0 {
		b.saveOffset(ctx)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, "/start"):
		b.handleStart(ctx, msg, strings.TrimSpace(strings.TrimPrefix(text, "/start")))
	case strings.HasPrefix(text, "/cekiot"):
		b.handleCheck(ctx, msg)
	default:
		b.reply(ctx, msg.Chat.ID, "Perintah tersedia:\n/cekiot - cek kondisi kandang Anda")
	}
}

// handleStart redeems the deep-link token and binds this chat to the
// account that minted it.
func (b *Bot) handleStart(ctx context.Context, msg *Message, token string) {
	if token == "" {
		b.reply(ctx, msg.Chat.ID, "Halo! Hubungkan akun Broilink Anda lewat tombol \"Hubungkan Telegram\" di aplikasi.")
		return
	}

	userID, ok, err := b.tokens.Redeem(ctx, token)
	if err != nil {
		nuts.L.Errorf("[TelegramBot] Token redeem failed: %v", err)
		b.reply(ctx, msg.Chat.ID, "Terjadi kesalahan, coba lagi nanti.")
		return
	}
	if !ok {
		b.reply(ctx, msg.Chat.ID, "Tautan sudah kedaluwarsa. Buat tautan baru dari aplikasi.")
		return
	}

	if err := b.svc.TelegramLinks.Link(ctx, userID, msg.Chat.ID); err != nil {
		nuts.L.Errorf("[TelegramBot] Link failed for user %d: %v", userID, err)
		b.reply(ctx, msg.Chat.ID, "Terjadi kesalahan, coba lagi nanti.")
		return
	}

	nuts.L.Infof("[TelegramBot] Linked user %d to chat %d", userID, msg.Chat.ID)
	b.reply(ctx, msg.Chat.ID, "Akun berhasil terhubung. Anda akan menerima notifikasi kondisi kandang di sini.")
}

// handleCheck answers with the current condition of every farm the
// linked user can see.
func (b *Bot) handleCheck(ctx context.Context, msg *Message) {
	link, err := b.svc.TelegramLinks.GetByChatID(ctx, msg.Chat.ID)
	if err != nil {
		b.reply(ctx, msg.Chat.ID, "Chat ini belum terhubung ke akun Broilink. Hubungkan lewat aplikasi terlebih dahulu.")
		return
	}

	farms, err := b.userFarms(ctx, link.UserID)
	if err != nil || len(farms) == 0 {
		b.reply(ctx, msg.Chat.ID, "Tidak ada kandang yang terkait dengan akun Anda.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Kondisi kandang saat ini:\n")
	for _, farm := range farms {
		fs, err := b.svc.GetFarmStatus(ctx, farm.ID)
		if err != nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s: %s", farm.Name, statusLine(fs)))
	}
	b.reply(ctx, msg.Chat.ID, sb.String())
}

// statusLine renders one farm condition for the /cekiot reply.
func statusLine(fs *farmservice.FarmStatus) string {
	if fs.Reading == nil {
		return string(fs.Status)
	}
	return fmt.Sprintf("%s (%.1f°C, %.1f%%, %.1f ppm)",
		fs.Status, fs.Reading.Temperature, fs.Reading.Humidity, fs.Reading.Ammonia)
}

func (b *Bot) userFarms(ctx context.Context, userID int64) ([]*models.Farm, error) {
	user, err := b.svc.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	filters := models.FarmFilters{}
	switch user.RoleID {
	case models.RoleOwner:
		filters.OwnerID = userID
	case models.RolePeternak:
		filters.PeternakID = userID
	}
	_, farms, err := b.svc.Farms.List(ctx, filters, 1, 100)
	return farms, err
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.sender.SendMessage(ctx, chatID, text); err != nil {
		nuts.L.Errorf("[TelegramBot] Reply to chat %d failed: %v", chatID, err)
	}
}

func (b *Bot) loadOffset(ctx context.Context) {
	if b.redis == nil {
		return
	}
	raw, err := b.redis.Get(ctx, offsetKey).Int64()
	if err == nil {
		b.offset = raw
	}
}

func (b *Bot) saveOffset(ctx context.Context) {
	if b.redis == nil {
		return
	}
	if err := b.redis.Set(ctx, offsetKey, b.offset, 0).Err(); err != nil {
		nuts.L.Errorf("[TelegramBot] Failed to persist offset: %v", err)
	}
}
