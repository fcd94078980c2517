package monitor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"exchange-diary/internal/notify"
	"exchange-diary/internal/rate"
)

var (
	ErrAlreadyRunning = errors.New("monitoring is already running")
	ErrNotRunning     = errors.New("monitoring is not running")
	ErrInvalidConfig  = errors.New("telegram token and chat id are required")
)

const defaultPollInterval = 60 * time.Second

// Settings is the monitor configuration supplied on start. A nil limit
// disables the check on that side.
type Settings struct {
	UpperLimit     *float64
	LowerLimit     *float64
	TelegramToken  string
	TelegramChatID string
}

// Status is the redacted view returned by GET /status: notification
// credentials are masked, limits echo back as given.
type Status struct {
	Monitoring bool             `json:"monitoring"`
	Settings   RedactedSettings `json:"settings"`
}

type RedactedSettings struct {
	UpperLimit     *float64 `json:"upperLimit"`
	LowerLimit     *float64 `json:"lowerLimit"`
	TelegramToken  string   `json:"telegramToken"`
	TelegramChatID string   `json:"telegramChatId"`
}

// NotifierFactory builds the notifier owned by one monitoring run. Swapped
// for a stub in tests.
type NotifierFactory func(token, chatID string) (notify.Notifier, error)

// Monitor is a two-state (idle/running) polling loop. Each cycle fetches the
// rate, skips silently when the source is unavailable, and on the first
// bound breach sends exactly one notification and stops itself. At most one
// loop runs at a time; cancellation is cooperative at cycle boundaries.
type Monitor struct {
	Source       rate.Source
	Logger       *zap.Logger
	PollInterval time.Duration
	NewNotifier  NotifierFactory

	mu       sync.Mutex
	running  bool
	settings Settings
	cancel   context.CancelFunc
	done     chan struct{}
}

// Start transitions idle -> running and launches the polling goroutine.
func (m *Monitor) Start(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrAlreadyRunning
	}
	if settings.TelegramToken == "" || settings.TelegramChatID == "" {
		return ErrInvalidConfig
	}

	factory := m.NewNotifier
	if factory == nil {
		factory = func(token, chatID string) (notify.Notifier, error) {
			return notify.NewTelegram(token, chatID, m.Logger)
		}
	}
	notifier, err := factory(settings.TelegramToken, settings.TelegramChatID)
	if err != nil {
		return fmt.Errorf("start monitoring: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.running = true
	m.settings = settings
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.loop(ctx, notifier, settings, m.done)

	if m.Logger != nil {
		m.Logger.Info("monitoring started",
			zap.Bool("upper_set", settings.UpperLimit != nil),
			zap.Bool("lower_set", settings.LowerLimit != nil),
		)
	}
	return nil
}

// Stop transitions running -> idle. The loop observes the cancellation
// within one sleep interval and exits without further side effects.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return ErrNotRunning
	}
	m.running = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.Logger != nil {
		m.Logger.Info("monitoring stopped")
	}
	return nil
}

func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		Monitoring: m.running,
		Settings: RedactedSettings{
			UpperLimit:     m.settings.UpperLimit,
			LowerLimit:     m.settings.LowerLimit,
			TelegramToken:  "********",
			TelegramChatID: "********",
		},
	}
}

func (m *Monitor) loop(ctx context.Context, notifier notify.Notifier, settings Settings, done chan struct{}) {
	defer close(done)

	interval := m.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	for {
		if m.checkOnce(ctx, notifier, settings) {
			m.selfStop(done)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// checkOnce fetches the rate and reports whether a bound was breached (and
// the single notification sent). An unavailable source skips the cycle.
func (m *Monitor) checkOnce(ctx context.Context, notifier notify.Notifier, settings Settings) bool {
	value, err := m.Source.Fetch(ctx)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("rate unavailable, skipping cycle", zap.Error(err))
		}
		return false
	}
	// The run may have been stopped while the fetch was in flight. A
	// cancelled run produces no side effects, whatever the value was.
	if ctx.Err() != nil {
		return false
	}

	switch {
	case settings.UpperLimit != nil && value > *settings.UpperLimit:
		m.notify(ctx, notifier, fmt.Sprintf(
			"🚨 알림: 환율이 상한선에 도달했습니다!\n현재 환율: %s원\n설정한 상한선: %s원\n모니터링을 자동으로 중지합니다.",
			formatRate(value), formatRate(*settings.UpperLimit)))
		if m.Logger != nil {
			m.Logger.Info("monitoring stopped automatically",
				zap.Float64("rate", value),
				zap.Float64("upper_limit", *settings.UpperLimit),
			)
		}
		return true
	case settings.LowerLimit != nil && value < *settings.LowerLimit:
		m.notify(ctx, notifier, fmt.Sprintf(
			"🚨 알림: 환율이 하한선에 도달했습니다!\n현재 환율: %s원\n설정한 하한선: %s원\n모니터링을 자동으로 중지합니다.",
			formatRate(value), formatRate(*settings.LowerLimit)))
		if m.Logger != nil {
			m.Logger.Info("monitoring stopped automatically",
				zap.Float64("rate", value),
				zap.Float64("lower_limit", *settings.LowerLimit),
			)
		}
		return true
	}
	return false
}

func (m *Monitor) notify(ctx context.Context, notifier notify.Notifier, text string) {
	if err := notifier.Send(ctx, text); err != nil && m.Logger != nil {
		m.Logger.Error("breach notification failed", zap.Error(err))
	}
}

// selfStop transitions running -> idle on behalf of one run. The done
// channel identifies the run: a stale loop racing Stop+Start must not tear
// down state now owned by its successor.
func (m *Monitor) selfStop(done chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done != done {
		return
	}
	if !m.running {
		return
	}
	m.running = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
