// FilePath: internal/ingest/mqtt_test.go
package ingest

import (
	"context"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirnanodes/broilink-backend/internal/config"
	"github.com/mirnanodes/broilink-backend/internal/models"
)

type fakeIngestor struct {
	readings []*models.SensorReading
	err      error
}

func (f *fakeIngestor) SubmitReading(_ context.Context, r *models.SensorReading) error {
	if f.err != nil {
		return f.err
	}
	f.readings = append(f.readings, r)
	return nil
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool    { return false }
func (m *fakeMessage) Qos() byte          { return 1 }
func (m *fakeMessage) Retained() bool     { return false }
func (m *fakeMessage) Topic() string      { return m.topic }
func (m *fakeMessage) MessageID() uint16  { return 1 }
func (m *fakeMessage) Payload() []byte    { return m.payload }
func (m *fakeMessage) Ack()               {}

var _ mqtt.Message = (*fakeMessage)(nil)

func TestDecodePayload(t *testing.T) {
	reading, err := decodePayload([]byte(`{"farm_id":7,"temperature":31.5,"humidity":62,"ammonia":12,"timestamp":"2024-03-15T08:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(7), reading.FarmID)
	assert.Equal(t, 31.5, reading.Temperature)
	assert.Equal(t, 62.0, reading.Humidity)
	assert.Equal(t, 12.0, reading.Ammonia)
	assert.Equal(t, models.SourceIoT, reading.DataSource)
	assert.Equal(t, time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC), reading.Timestamp)
}

func TestDecodePayloadDefaultsTimestamp(t *testing.T) {
	before := time.Now().UTC()
	reading, err := decodePayload([]byte(`{"farm_id":7,"temperature":30}`))
	require.NoError(t, err)
	assert.False(t, reading.Timestamp.Before(before))
}

func TestDecodePayloadRejectsBadInput(t *testing.T) {
	_, err := decodePayload([]byte(`not json`))
	assert.Error(t, err)

	_, err = decodePayload([]byte(`{"temperature":30}`))
	assert.Error(t, err)
}

func TestHandleMessageStoresReading(t *testing.T) {
	svc := &fakeIngestor{}
	bridge := NewMQTTBridge(config.MQTTConfig{Topic: "broilink/+/readings"}, svc)

	bridge.handleMessage(nil, &fakeMessage{
		topic:   "broilink/7/readings",
		payload: []byte(`{"farm_id":7,"temperature":36.2,"humidity":70,"ammonia":5}`),
	})

	require.Len(t, svc.readings, 1)
	assert.Equal(t, int64(7), svc.readings[0].FarmID)
	assert.Equal(t, models.SourceIoT, svc.readings[0].DataSource)
}

func TestHandleMessageDropsMalformed(t *testing.T) {
	svc := &fakeIngestor{}
	bridge := NewMQTTBridge(config.MQTTConfig{}, svc)

	bridge.handleMessage(nil, &fakeMessage{topic: "broilink/x/readings", payload: []byte(`{garbage`)})

	assert.Empty(t, svc.readings)
}
