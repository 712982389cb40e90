package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup routes the standard logger to stdout plus a size-rotated file.
func Setup(logPath string) io.Closer {
	rotated := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    5, // MB
		MaxBackups: 2,
		MaxAge:     14, // days
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotated))
	return rotated
}
