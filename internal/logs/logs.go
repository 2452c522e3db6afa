package logs

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New настраивает глобальный логгер: файл и, опционально, консоль
func New(logFilePath string, withConsole bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var writer io.Writer = os.Stderr
	logFile, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		writer = logFile
	}

	if withConsole {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		if logFile != nil {
			writer = zerolog.MultiLevelWriter(logFile, consoleWriter)
		} else {
			writer = consoleWriter
		}
	}

	logger := zerolog.New(writer).With().
		Timestamp().
		Logger()

	log.Logger = logger
	return logger
}
