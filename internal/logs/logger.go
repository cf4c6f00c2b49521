package logs

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger — глобальный логгер приложения (инициализируется через Init).
var Logger = logrus.New()

// Options — параметры инициализации логгера.
type Options struct {
	Level  string // trace|debug|info|warning|error|fatal
	Format string // text|json
	File   string // путь/префикс лог-файла; если пусто — только stdout
}

// Init настраивает глобальный логгер по переданным опциям.
func Init(opts Options) {
	l := logrus.New()

	// уровень; непонятные значения молча превращаются в info
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	// формат
	if opts.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	// вывод
	if opts.File != "" {
		logFileName := fmt.Sprintf("%s_%s.log", opts.File, time.Now().Format("2006-01-02_15-04-05"))
		file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			l.Fatalf("failed to open log file %s: %v", logFileName, err)
		}
		l.SetOutput(io.MultiWriter(file, os.Stdout))
	} else {
		l.SetOutput(os.Stdout)
	}

	Logger = l
}
