package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/bikedash/core/dashboard"
	"github.com/kilianp07/bikedash/core/model"
	"github.com/kilianp07/bikedash/infra/logger"
	"github.com/kilianp07/bikedash/internal/eventbus"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker       string      `json:"broker"`
	ClientID     string      `json:"client_id"`
	Username     string      `json:"username"`
	Password     string      `json:"password"`
	Topic        string      `json:"topic"`
	ControlTopic string      `json:"control_topic"`
	StatusTopic  string      `json:"status_topic"`
	QoS          byte        `json:"qos"`
	Retain       bool        `json:"retain"`
	UseTLS       bool        `json:"use_tls"`
	ClientCert   string      `json:"client_cert"`
	ClientKey    string      `json:"client_key"`
	CABundle     string      `json:"ca_bundle"`
	MaxRetries   int         `json:"max_retries"`
	BackoffMS    int         `json:"backoff_ms"`
	TLSConfig    *tls.Config `json:"-"`
}

// Status payloads written to StatusTopic.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Snapshot is the message published after every accepted view change.
type Snapshot struct {
	ID          string              `json:"snapshot_id"`
	PublishedAt time.Time           `json:"published_at"`
	Dashboard   dashboard.Dashboard `json:"dashboard"`
}

// Updater applies a selection change.
type Updater interface {
	Update(c model.FilterCriteria, groups []model.GroupKey) (dashboard.Dashboard, error)
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// Publisher pushes dashboard snapshots to an MQTT broker using Eclipse Paho.
type Publisher struct {
	cli        pahoClient
	cfg        Config
	bounds     model.DateRange
	updater    Updater
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPublisher connects to the broker. When cfg.ControlTopic is set and
// updater is not nil, control messages are applied to updater with bounds
// as the default date range.
func NewPublisher(cfg Config, bounds model.DateRange, updater Updater) (*Publisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_publisher")
	p := &Publisher{
		cfg:        cfg,
		bounds:     bounds,
		updater:    updater,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if cfg.StatusTopic != "" {
			c.Publish(cfg.StatusTopic, cfg.QoS, true, StatusOnline)
		}
		if cfg.ControlTopic != "" && p.updater != nil {
			if token := c.Subscribe(cfg.ControlTopic, cfg.QoS, p.onControl); token.Wait() && token.Error() != nil {
				log.Errorf("subscribe error: %v", token.Error())
			}
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	p.cli = c
	return p, nil
}

// SetDefaults fills unset topics and retry settings.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "bikedash-" + uuid.NewString()[:8]
	}
	if c.Topic == "" {
		c.Topic = "bikedash/dashboard"
	}
	if c.StatusTopic == "" {
		c.StatusTopic = "bikedash/status"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.StatusTopic != "" {
		opts.SetWill(cfg.StatusTopic, StatusOffline, cfg.QoS, true)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

// Publish sends a snapshot of d and returns its identifier.
func (p *Publisher) Publish(d dashboard.Dashboard) (string, error) {
	snap := Snapshot{ID: uuid.NewString(), PublishedAt: time.Now().UTC(), Dashboard: d}
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published snapshot %s to %s", snap.ID, p.cfg.Topic)
			return snap.ID, nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(p.backoff * time.Duration(1<<attempt))
	}
	return "", fmt.Errorf("publish snapshot: %w", publishErr)
}

// Run publishes a snapshot for every view change received on bus until ctx
// is canceled or the bus is closed.
func (p *Publisher) Run(ctx context.Context, bus *eventbus.Bus[dashboard.ViewChanged]) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if _, err := p.Publish(ev.Dashboard); err != nil {
				p.logger.Errorf("snapshot: %v", err)
			}
		}
	}
}

func (p *Publisher) onControl(_ paho.Client, msg paho.Message) {
	var q dashboard.Query
	if err := json.Unmarshal(msg.Payload(), &q); err != nil {
		p.logger.Errorf("failed to decode control message: %v", err)
		return
	}
	c, groups, err := q.Parse(p.bounds)
	if err != nil {
		p.logger.Warnf("rejected control message: %v", err)
		return
	}
	if _, err := p.updater.Update(c, groups); err != nil {
		p.logger.Warnf("rejected selection: %v", err)
		return
	}
	p.logger.Infof("selection updated from %s", msg.Topic())
}

// Disconnect marks the publisher offline and closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		if p.cfg.StatusTopic != "" {
			p.cli.Publish(p.cfg.StatusTopic, p.cfg.QoS, true, StatusOffline).WaitTimeout(time.Second)
		}
		p.cli.Disconnect(250)
	}
}
