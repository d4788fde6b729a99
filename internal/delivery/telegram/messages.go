package telegram

import "errors"

var (
	errNoChat          = errors.New("no chat in context")
	errUnsupportedPort = errors.New("unsupported outbound port")
)

const (
	msgWelcome        = "Send <code>/quiz ID</code> to load a quiz."
	msgUsage          = "Usage: <code>/quiz ID</code>"
	msgUnknownCommand = "Unknown command. Available commands:\n\n/quiz ID - load a quiz\n/help - show help"
	msgInternalError  = "Something went wrong. Please try again later."
	msgQuizNotFound   = "Quiz <code>%s</code> is not available."
)
