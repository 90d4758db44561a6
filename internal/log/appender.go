package log

import (
	"errors"
	"io"

	"gopkg.in/natefinch/lumberjack.v2"

	"firestige.xyz/ptpwire/internal/config"
)

// fanout copies each record to every sink. A failing sink does not starve
// the others; its error is joined into the result.
type fanout []io.Writer

func (f fanout) Write(p []byte) (int, error) {
	var errs []error
	for _, w := range f {
		if _, err := w.Write(p); err != nil {
			errs = append(errs, err)
		}
	}
	return len(p), errors.Join(errs...)
}

func rotatingFile(fc config.FileOutputConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   fc.Path,
		MaxSize:    fc.Rotation.MaxSizeMB,
		MaxBackups: fc.Rotation.MaxBackups,
		MaxAge:     fc.Rotation.MaxAgeDays,
		Compress:   fc.Rotation.Compress,
	}
}
