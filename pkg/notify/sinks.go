package notify

import (
	"github.com/icondb/icondb/pkg/request"
	"github.com/rs/zerolog"
)

// Log writes notifications to a zerolog logger.
type Log struct {
	logger zerolog.Logger
}

// NewLog returns a sink that logs through logger.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) NotifySuccess(title, message string) {
	l.logger.Info().Str("level_hint", string(LevelSuccess)).Str("title", title).Msg(message)
}

func (l *Log) NotifyError(title, message string) {
	l.logger.Error().Str("title", title).Msg(message)
}

func (l *Log) NotifyWarning(title, message string) {
	l.logger.Warn().Str("title", title).Msg(message)
}

func (l *Log) NotifyInfo(title, message string) {
	l.logger.Info().Str("title", title).Msg(message)
}

// Multi forwards every notification to each sink in order.
type Multi []request.NotificationSink

func (m Multi) NotifySuccess(title, message string) {
	for _, s := range m {
		s.NotifySuccess(title, message)
	}
}

func (m Multi) NotifyError(title, message string) {
	for _, s := range m {
		s.NotifyError(title, message)
	}
}

func (m Multi) NotifyWarning(title, message string) {
	for _, s := range m {
		s.NotifyWarning(title, message)
	}
}

func (m Multi) NotifyInfo(title, message string) {
	for _, s := range m {
		s.NotifyInfo(title, message)
	}
}
