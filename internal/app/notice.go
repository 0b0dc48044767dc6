package app

import (
	"errors"

	"github.com/muurk/scantag/internal/apperr"
)

// Level is how a Notice is presented.
type Level int

const (
	// LevelStatus notices go to the status line and need no dismissal
	LevelStatus Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelStatus:
		return "status"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notice is the user-facing outcome of a command.
type Notice struct {
	Level   Level
	Title   string
	Message string
	Hints   []string
}

// Modal reports whether the notice must be dismissed before continuing.
func (n Notice) Modal() bool {
	return n.Level != LevelStatus
}

func status(msg string) Notice {
	return Notice{Level: LevelStatus, Message: msg}
}

func info(title, msg string) Notice {
	return Notice{Level: LevelInfo, Title: title, Message: msg}
}

func warning(title, msg string) Notice {
	return Notice{Level: LevelWarning, Title: title, Message: msg}
}

// failure builds an error notice from a typed error.
func failure(title string, err error) Notice {
	msg := apperr.ShortMessage(err)
	var e *apperr.Error
	if errors.As(err, &e) && e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return Notice{
		Level:   LevelError,
		Title:   title,
		Message: msg,
		Hints:   apperr.TroubleshootingHint(err),
	}
}
