package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
	"github.com/lcalzada-xor/nettrust/internal/core/ports"
	"github.com/lcalzada-xor/nettrust/internal/core/services/scan"
	"github.com/lcalzada-xor/nettrust/internal/telemetry"
)

const (
	inboxSize      = 32
	enqueueTimeout = time.Second
	publishTimeout = 5 * time.Second

	// broadcastDevice fills the result topic for scans that did not arrive over MQTT.
	broadcastDevice = "all"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Client is the subset of paho.Client used by the bridge.
type Client interface {
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// BridgeConfig names the topics. ResultTopic may contain {device_id}, which
// is replaced by the second level of the topic the scan arrived on.
type BridgeConfig struct {
	ScanTopic   string // e.g. "nettrust/+/scan"
	ResultTopic string // e.g. "nettrust/{device_id}/result"
	QoS         byte
}

type inbound struct {
	topic   string
	payload []byte
}

// Bridge feeds scans received on the broker into the scan service and
// publishes completed scans back to it.
type Bridge struct {
	client Client
	scans  ports.ScanProcessor
	cfg    BridgeConfig
	inbox  chan inbound
	logger *slog.Logger
}

var _ ports.ResultPublisher = (*Bridge)(nil)

// NewBridge creates a bridge. Register it as a result publisher on the scan
// service so results of every scan reach the broker.
func NewBridge(client Client, scans ports.ScanProcessor, cfg BridgeConfig, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		client: client,
		scans:  scans,
		cfg:    cfg,
		inbox:  make(chan inbound, inboxSize),
		logger: logger,
	}
}

// Run subscribes to the scan topic and processes messages until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	token := b.client.Subscribe(b.cfg.ScanTopic, b.cfg.QoS, b.onMessage)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.cfg.ScanTopic, token.Error())
	}
	b.logger.Info("MQTT scan topic subscribed", "topic", b.cfg.ScanTopic)

	for {
		select {
		case <-ctx.Done():
			b.client.Unsubscribe(b.cfg.ScanTopic).WaitTimeout(publishTimeout)
			b.logger.Info("MQTT bridge stopped")
			return nil
		case msg := <-b.inbox:
			if err := b.handle(ctx, msg); err != nil {
				b.logger.Warn("Rejected MQTT scan", "topic", msg.topic, "error", err)
			}
		}
	}
}

// onMessage runs on the paho router goroutine; it only queues the payload.
func (b *Bridge) onMessage(_ paho.Client, msg paho.Message) {
	in := inbound{topic: msg.Topic(), payload: msg.Payload()}
	select {
	case b.inbox <- in:
	case <-time.After(enqueueTimeout):
		telemetry.IngestMessages.WithLabelValues("dropped").Inc()
		b.logger.Warn("MQTT inbox full, dropping scan", "topic", in.topic)
	}
}

func (b *Bridge) handle(ctx context.Context, msg inbound) error {
	var req domain.ScanRequest
	if err := json.Unmarshal(msg.payload, &req); err != nil {
		telemetry.IngestMessages.WithLabelValues("invalid").Inc()
		return fmt.Errorf("decode scan: %w", err)
	}
	if err := req.Validate(); err != nil {
		telemetry.IngestMessages.WithLabelValues("invalid").Inc()
		return err
	}
	telemetry.IngestMessages.WithLabelValues("accepted").Inc()

	ctx = withDevice(scan.WithSource(ctx, "mqtt"), extractDeviceID(msg.topic))
	_, err := b.scans.Process(ctx, req.Observations)
	return err
}

// PublishScan sends the scan to the result topic. It is a no-op without one.
func (b *Bridge) PublishScan(ctx context.Context, sc domain.Scan) error {
	if b.cfg.ResultTopic == "" {
		return nil
	}
	payload, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to marshal scan: %w", err)
	}

	device := deviceFrom(ctx)
	if device == "" {
		device = broadcastDevice
	}
	topic := formatTopic(b.cfg.ResultTopic, device)

	token := b.client.Publish(topic, b.cfg.QoS, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

type deviceKey struct{}

func withDevice(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deviceKey{}, id)
}

func deviceFrom(ctx context.Context) string {
	id, _ := ctx.Value(deviceKey{}).(string)
	return id
}
