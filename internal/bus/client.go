// Package bus adapts the Paho MQTT client to the schedule profile:
// one retained topic per field under a lowercased "{topic}/{profile}/"
// prefix, inbound messages delivered as (field, payload) callbacks.
package bus

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"heatzone/internal/logger"
	"heatzone/internal/schedule"
)

// Config carries the broker credentials and the profile namespace,
// supplied once at startup by the host configuration.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Topic    string // base topic, e.g. "heatzone/profiles"
	Profile  string // profile name appended to the base topic
}

// MessageHandler receives one inbound field update. field is the topic
// suffix with the profile prefix already stripped.
type MessageHandler func(field string, payload []byte)

const (
	connectTimeout   = 10 * time.Second
	disconnectQuiet  = 250 // ms the paho client waits for in-flight work
	publishQoS       = 0
	clientIDHexBytes = 4
)

var ErrNotConnected = errors.New("mqtt: not connected")

// Client is the transport adapter between the synchronizer and the
// broker. Publishes are retained and fire-and-forget; delivery failures
// are logged, never returned to the save path.
type Client struct {
	cfg       Config
	log       *logger.Logger
	onMessage MessageHandler

	prefix    string
	client    mqtt.Client
	connected atomic.Bool
}

// New builds a client for the given profile namespace. Connect must be
// called before publishing.
func New(cfg Config, log *logger.Logger, onMessage MessageHandler) *Client {
	return &Client{
		cfg:       cfg,
		log:       log,
		onMessage: onMessage,
		prefix:    topicPrefix(cfg.Topic, cfg.Profile),
	}
}

// topicPrefix folds "{topic}/{profile}" to lowercase and appends the
// trailing separator. The profile name can arrive with capitals from
// user config; the controller publishes lowercase.
func topicPrefix(topic, profile string) string {
	return strings.ToLower(topic+"/"+profile) + "/"
}

// fieldFromTopic strips the profile prefix from a full topic. The second
// return is false for topics outside this profile's namespace.
func fieldFromTopic(prefix, topic string) (string, bool) {
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	return topic[len(prefix):], true
}

func newClientID() string {
	b := make([]byte, clientIDHexBytes)
	_, _ = rand.Read(b)
	return "heatzone-" + hex.EncodeToString(b)
}

// Connect dials the broker and subscribes to all fourteen field topics.
// The paho client reconnects (and resubscribes) on its own afterwards.
func (c *Client) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", c.cfg.Host, c.cfg.Port)).
		SetClientID(newClientID()).
		SetUsername(c.cfg.Username).
		SetPassword(c.cfg.Password).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(cl mqtt.Client) {
			c.connected.Store(true)
			c.subscribe(cl)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			c.connected.Store(false)
			c.log.Warnw("mqtt_connection_lost", "err", err)
		})

	c.client = mqtt.NewClient(opts)

	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt: connect to %s:%d timed out", c.cfg.Host, c.cfg.Port)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: connect to %s:%d: %w", c.cfg.Host, c.cfg.Port, err)
	}
	return nil
}

func (c *Client) subscribe(cl mqtt.Client) {
	filters := make(map[string]byte, len(schedule.Suffixes()))
	for _, sfx := range schedule.Suffixes() {
		filters[c.prefix+sfx] = publishQoS
	}
	token := cl.SubscribeMultiple(filters, c.route)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			c.log.Errorw("mqtt_subscribe_failed", "prefix", c.prefix, "err", err)
			return
		}
		c.log.Infow("mqtt_subscribed", "prefix", c.prefix, "topics", len(filters))
	}()
}

func (c *Client) route(_ mqtt.Client, msg mqtt.Message) {
	field, ok := fieldFromTopic(c.prefix, msg.Topic())
	if !ok {
		return
	}
	if c.onMessage != nil {
		c.onMessage(field, msg.Payload())
	}
}

// Publish marshals v and publishes it retained under the field's topic.
// The broker handshake is not awaited; a failed delivery only logs.
func (c *Client) Publish(field string, v any) error {
	if !c.connected.Load() || c.client == nil {
		return ErrNotConnected
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("mqtt: marshal %s payload: %w", field, err)
	}

	topic := c.prefix + field
	token := c.client.Publish(topic, publishQoS, true, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			c.log.Warnw("mqtt_publish_failed", "topic", topic, "err", err)
		}
	}()
	return nil
}

// Connected reports whether a broker session is currently up.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Prefix returns the lowercased profile namespace, trailing slash
// included.
func (c *Client) Prefix() string {
	return c.prefix
}

// Disconnect unsubscribes from the profile topics and closes the
// session.
func (c *Client) Disconnect() {
	if c.client == nil || !c.connected.Load() {
		return
	}
	topics := make([]string, 0, len(schedule.Suffixes()))
	for _, sfx := range schedule.Suffixes() {
		topics = append(topics, c.prefix+sfx)
	}
	c.client.Unsubscribe(topics...).WaitTimeout(connectTimeout)
	c.client.Disconnect(disconnectQuiet)
	c.connected.Store(false)
}
