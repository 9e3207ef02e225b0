// FilePath: internal/telegram/notifier.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/farmservice"
	"github.com/mirnanodes/broilink-backend/internal/models"
	"github.com/mirnanodes/broilink-backend/internal/status"
)

// Notifier delivers farm alerts to the linked chats of the farm's owner
// and assigned peternak.
type Notifier struct {
	svc    *farmservice.FarmService
	sender Sender
}

func NewNotifier(svc *farmservice.FarmService, sender Sender) *Notifier {
	return &Notifier{svc: svc, sender: sender}
}

// NotifyFarmAlert sends the alert to every linked audience chat. Users
// without a linked chat are skipped silently; delivery succeeds when at
// least everything linked was attempted.
func (n *Notifier) NotifyFarmAlert(ctx context.Context, farm *models.Farm, st status.Status, reading *models.SensorReading) error {
	text := alertMessage(farm, st, reading)

	audience := []int64{farm.OwnerID}
	if farm.PeternakID != nil {
		audience = append(audience, *farm.PeternakID)
	}

	var firstErr error
	for _, userID := range audience {
		link, err := n.svc.TelegramLinks.GetByUserID(ctx, userID)
		if err != nil {
			continue // no linked chat
		}
		if err := n.sender.SendMessage(ctx, link.ChatID, text); err != nil {
			nuts.L.Errorf("[TelegramNotifier] Delivery to chat %d failed: %v", link.ChatID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// BroadcastResult summarizes a fan-out delivery.
type BroadcastResult struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// BroadcastMessage delivers the text to every linked chat. Individual
// delivery failures are counted, not fatal.
func (n *Notifier) BroadcastMessage(ctx context.Context, text string) (*BroadcastResult, error) {
	links, err := n.svc.TelegramLinks.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &BroadcastResult{Total: len(links)}
	for _, link := range links {
		if err := n.sender.SendMessage(ctx, link.ChatID, text); err != nil {
			nuts.L.Errorf("[TelegramNotifier] Broadcast to chat %d failed: %v", link.ChatID, err)
			result.Failed++
			continue
		}
		result.Sent++
	}
	nuts.L.Infof("[TelegramNotifier] Broadcast reached %d of %d chats", result.Sent, result.Total)
	return result, nil
}

func alertMessage(farm *models.Farm, st status.Status, reading *models.SensorReading) string {
	var sb strings.Builder

	switch st {
	case status.StatusCritical:
		sb.WriteString("🚨 BAHAYA! ")
	default:
		sb.WriteString("⚠️ Waspada! ")
	}
	sb.WriteString(fmt.Sprintf("Kondisi kandang %s berstatus %s.\n", farm.Name, st))

	if reading != nil {
		sb.WriteString(fmt.Sprintf(
			"Suhu: %.1f°C\nKelembapan: %.1f%%\nAmonia: %.1f ppm\n",
			reading.Temperature, reading.Humidity, reading.Ammonia,
		))
	}
	sb.WriteString("Segera periksa kondisi kandang Anda.")
	return sb.String()
}
