// FilePath: internal/ingest/mqtt.go
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/internal/config"
	"github.com/mirnanodes/broilink-backend/internal/models"
	"github.com/mirnanodes/broilink-backend/internal/monitoring"
)

// Ingestor stores a reading coming off the wire.
type Ingestor interface {
	SubmitReading(ctx context.Context, reading *models.SensorReading) error
}

// mqttPayload is the JSON shape devices publish. Timestamp is optional;
// a missing timestamp means "now".
type mqttPayload struct {
	FarmID      int64      `json:"farm_id"`
	Temperature float64    `json:"temperature"`
	Humidity    float64    `json:"humidity"`
	Ammonia     float64    `json:"ammonia"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// MQTTBridge subscribes to the device topic and feeds readings into the
// farm service.
type MQTTBridge struct {
	cfg    config.MQTTConfig
	svc    Ingestor
	client mqtt.Client
}

func NewMQTTBridge(cfg config.MQTTConfig, svc Ingestor) *MQTTBridge {
	return &MQTTBridge{cfg: cfg, svc: svc}
}

// Start connects to the broker with exponential backoff and subscribes to
// the configured topic. It returns once the subscription is active.
func (b *MQTTBridge) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(b.cfg.BrokerURL)
	opts.SetClientID(b.cfg.ClientID)
	opts.SetUsername(b.cfg.Username)
	opts.SetPassword(b.cfg.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		if token := c.Subscribe(b.cfg.Topic, b.cfg.QoS, b.handleMessage); token.Wait() && token.Error() != nil {
			nuts.L.Errorf("[MQTTBridge] subscribe to %s failed: %v", b.cfg.Topic, token.Error())
			return
		}
		nuts.L.Infof("[MQTTBridge] subscribed to %s", b.cfg.Topic)
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		nuts.L.Warnf("[MQTTBridge] connection lost: %v", err)
	})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute

	err := backoff.Retry(func() error {
		b.client = mqtt.NewClient(opts)
		if token := b.client.Connect(); token.Wait() && token.Error() != nil {
			nuts.L.Warnf("[MQTTBridge] connect to %s failed: %v", b.cfg.BrokerURL, token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return fmt.Errorf("mqtt connect to %s: %w", b.cfg.BrokerURL, err)
	}

	nuts.L.Infof("[MQTTBridge] connected to %s", b.cfg.BrokerURL)

	go func() {
		<-ctx.Done()
		b.Stop()
	}()
	return nil
}

// Stop disconnects from the broker, letting in-flight handlers finish.
func (b *MQTTBridge) Stop() {
	if b.client != nil && b.client.IsConnected() {
		b.client.Disconnect(250)
		nuts.L.Infof("[MQTTBridge] disconnected")
	}
}

// handleMessage decodes one published payload and stores it. Malformed
// payloads are counted and dropped so a misbehaving device cannot stall
// the stream.
func (b *MQTTBridge) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	reading, err := decodePayload(msg.Payload())
	if err != nil {
		monitoring.MQTTMessagesTotal.WithLabelValues("invalid").Inc()
		nuts.L.Warnf("[MQTTBridge] dropping message on %s: %v", msg.Topic(), err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.svc.SubmitReading(ctx, reading); err != nil {
		monitoring.MQTTMessagesTotal.WithLabelValues("error").Inc()
		nuts.L.Errorf("[MQTTBridge] storing reading for farm %d failed: %v", reading.FarmID, err)
		return
	}
	monitoring.MQTTMessagesTotal.WithLabelValues("ok").Inc()
}

func decodePayload(data []byte) (*models.SensorReading, error) {
	var p mqttPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if p.FarmID <= 0 {
		return nil, fmt.Errorf("payload missing farm_id")
	}
	ts := time.Now().UTC()
	if p.Timestamp != nil {
		ts = p.Timestamp.UTC()
	}
	return &models.SensorReading{
		FarmID:      p.FarmID,
		Timestamp:   ts,
		Temperature: p.Temperature,
		Humidity:    p.Humidity,
		Ammonia:     p.Ammonia,
		DataSource:  models.SourceIoT,
	}, nil
}
