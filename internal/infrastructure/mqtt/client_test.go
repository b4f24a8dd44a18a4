package mqtt

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/aircontrol-core/internal/infrastructure/config"
)

// testConfig returns an MQTT configuration pointing at a port nothing listens on.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "aircontrol-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
		TopicRoot: "aircontrol",
	}
}

func TestTopicBuilders(t *testing.T) {
	topics := Topics{Root: "aircontrol"}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Pollutants", topics.Pollutants("b1", "2", "201"), "aircontrol/b1/2/201/pollutants"},
		{"Advisory", topics.Advisory("b1", "2", "201"), "aircontrol/b1/2/201/advisory"},
		{"ActuatorState", topics.ActuatorState("b1", "2", "201", "windows"), "aircontrol/b1/2/201/windows"},
		{"SystemStatus", topics.SystemStatus(), "aircontrol/system/status"},
		{"AllPollutants", topics.AllPollutants(), "aircontrol/+/+/+/pollutants"},
		{"DefaultRoot", Topics{}.AllPollutants(), "aircontrol/+/+/+/pollutants"},
		{"CustomRoot", Topics{Root: "campus"}.Advisory("x", "0", "1"), "campus/x/0/1/advisory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}

func TestSplitRoom(t *testing.T) {
	topics := Topics{Root: "aircontrol"}

	tests := []struct {
		topic  string
		wantOK bool
		want   [4]string
	}{
		{"aircontrol/b1/2/201/pollutants", true, [4]string{"b1", "2", "201", "pollutants"}},
		{"aircontrol/b1/2/201/windows", true, [4]string{"b1", "2", "201", "windows"}},
		{"other/b1/2/201/pollutants", false, [4]string{}},
		{"aircontrol/b1/2/pollutants", false, [4]string{}},
		{"aircontrol/b1//201/pollutants", false, [4]string{}},
		{"aircontrol/b1/2/201/pollutants/extra", false, [4]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			b, f, n, leaf, ok := topics.SplitRoom(tt.topic)
			if ok != tt.wantOK {
				t.Fatalf("SplitRoom(%q) ok = %v, want %v", tt.topic, ok, tt.wantOK)
			}
			if got := [4]string{b, f, n, leaf}; got != tt.want {
				t.Errorf("SplitRoom(%q) = %v, want %v", tt.topic, got, tt.want)
			}
		})
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "controller"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want tcp://127.0.0.1:1883", opts.Servers)
	}
	if opts.ClientID != "aircontrol-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "controller" || opts.Password != "secret" {
		t.Errorf("credentials not applied: %q/%q", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
	if opts.TLSConfig != nil && cfg.Broker.TLS {
		t.Error("unexpected TLS config")
	}
}

func TestBrokerURL_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	if got := brokerURL(cfg); got != "ssl://127.0.0.1:8883" {
		t.Errorf("brokerURL() = %q, want ssl://127.0.0.1:8883", got)
	}
	opts := buildClientOptions(cfg)
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS config not set with minimum version")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := pahomqtt.NewClientOptions()
	configureLWT(opts, Topics{Root: "campus"}, "ctrl-1")

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false, want true")
	}
	if opts.WillTopic != "campus/system/status" {
		t.Errorf("WillTopic = %q, want campus/system/status", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("WillRetained = false, want true")
	}
	if !strings.Contains(string(opts.WillPayload), `"unexpected_disconnect"`) {
		t.Errorf("WillPayload = %s", opts.WillPayload)
	}
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("ctrl-1")
	if !strings.Contains(online, `"status":"online"`) || !strings.Contains(online, `"client_id":"ctrl-1"`) {
		t.Errorf("online payload = %s", online)
	}
	offline := buildOfflinePayload("ctrl-1")
	if !strings.Contains(offline, `"graceful_shutdown"`) {
		t.Errorf("offline payload = %s", offline)
	}
}

func TestConnect_BrokerRefused(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 1 // nothing listens here

	_, err := Connect(cfg)
	if err == nil {
		t.Fatal("Connect() expected error for refused broker")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

// unconnectedClient builds a client that never dialled a broker.
func unconnectedClient() *Client {
	cfg := testConfig()
	return &Client{
		cfg:           cfg,
		topics:        Topics{Root: cfg.TopicRoot},
		client:        pahomqtt.NewClient(buildClientOptions(cfg)),
		subscriptions: make(map[string]subscription),
	}
}

func TestPublish_Validation(t *testing.T) {
	c := unconnectedClient()

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "a/b", []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", "a/b", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "a/b", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribe_Validation(t *testing.T) {
	c := unconnectedClient()
	noop := func(string, []byte) error { return nil }

	if err := c.Subscribe("", 1, noop); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v", err)
	}
	if err := c.Subscribe("a/b", 3, noop); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("invalid qos error = %v", err)
	}
	if err := c.Subscribe("a/b", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler error = %v", err)
	}
	if err := c.Subscribe("a/b", 1, noop); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected error = %v", err)
	}
	if c.SubscriptionCount() != 0 || c.HasSubscription("a/b") {
		t.Error("failed subscription must not be tracked")
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	c := unconnectedClient()

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() cancelled error = %v", err)
	}
}

func TestCloseNil(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
}

type fakeMessage struct {
	pahomqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
	errs  []string
}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, msg)
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func TestWrapHandler_RecoversPanicAndLogsErrors(t *testing.T) {
	c := unconnectedClient()
	logger := &recordingLogger{}
	c.SetLogger(logger)

	panicking := c.wrapHandler(func(string, []byte) error { panic("boom") })
	failing := c.wrapHandler(func(string, []byte) error { return errors.New("bad payload") })

	msg := fakeMessage{topic: "aircontrol/b1/2/201/pollutants", payload: []byte("{}")}
	panicking(nil, msg)
	failing(nil, msg)

	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.errs) != 1 {
		t.Errorf("panic logs = %d, want 1", len(logger.errs))
	}
	if len(logger.warns) != 1 {
		t.Errorf("error logs = %d, want 1", len(logger.warns))
	}
}

// fakeToken is a paho token that either completes with err or never completes.
type fakeToken struct {
	done bool
	err  error
}

func (t fakeToken) Wait() bool                     { return t.done }
func (t fakeToken) WaitTimeout(time.Duration) bool { return t.done }
func (t fakeToken) Done() <-chan struct{}          { return make(chan struct{}) }
func (t fakeToken) Error() error                   { return t.err }

func TestWaitToken(t *testing.T) {
	refused := errors.New("not authorized")

	tests := []struct {
		name        string
		token       fakeToken
		wantTimeout bool
		wantCause   error
	}{
		{"acknowledged", fakeToken{done: true}, false, nil},
		{"timed out", fakeToken{}, true, nil},
		{"broker error", fakeToken{done: true, err: refused}, false, refused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := waitToken(tt.token, 10*time.Millisecond, ErrPublishFailed)
			if tt.name == "acknowledged" {
				if err != nil {
					t.Fatalf("waitToken() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrPublishFailed) {
				t.Errorf("error = %v, want ErrPublishFailed", err)
			}
			if errors.Is(err, ErrTimeout) != tt.wantTimeout {
				t.Errorf("errors.Is(ErrTimeout) = %v, want %v", !tt.wantTimeout, tt.wantTimeout)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Errorf("error = %v lost cause %v", err, tt.wantCause)
			}
		})
	}
}

func TestQoSAndPublishRetained(t *testing.T) {
	c := unconnectedClient()

	if got := c.QoS(); got != 1 {
		t.Errorf("QoS() = %d, want 1", got)
	}
	if err := c.PublishRetained("", []byte("x")); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("PublishRetained(empty) error = %v", err)
	}
	if err := c.PublishRetained("aircontrol/b1/2/201/windows", []byte("x")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishRetained() disconnected error = %v", err)
	}
}
