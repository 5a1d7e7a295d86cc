package session

import "log/slog"

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notifier shows short-lived messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// LogNotifier writes notifications to a slog logger.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(level Level, message string) {
	if level == LevelError {
		n.logger.Error(message, "source", "notification")
		return
	}
	n.logger.Info(message, "source", "notification")
}
