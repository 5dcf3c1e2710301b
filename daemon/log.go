package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// dailyFile is a zapcore.WriteSyncer that always writes to
// "<dir>/rdir.log"; when the wall-clock date changes it rotates the
// previous day's content aside to "rdir.log.YYYY-MM-DD" before
// continuing to write to the same path, mirroring a daily-rolling file
// appender.
type dailyFile struct {
	mu   sync.Mutex
	dir  string
	day  string
	file *os.File
}

func newDailyFile(dir string) (*dailyFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	d := &dailyFile{dir: dir}
	if err := d.rollIfNeeded(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *dailyFile) path() string { return filepath.Join(d.dir, "rdir.log") }

func (d *dailyFile) rollIfNeeded() error {
	today := time.Now().Format("2006-01-02")
	if d.file != nil && d.day == today {
		return nil
	}
	if d.file != nil {
		d.file.Close()
		rolled := fmt.Sprintf("%s.%s", d.path(), d.day)
		_ = os.Rename(d.path(), rolled)
	}
	f, err := os.OpenFile(d.path(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	d.file = f
	d.day = today
	return nil
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.rollIfNeeded(); err != nil {
		return 0, err
	}
	return d.file.Write(p)
}

func (d *dailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	return d.file.Sync()
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}

// NewLogger builds the daemon's structured logger, writing JSON lines to
// a daily-rotated file under logDir.
func NewLogger(logDir string) (*zap.Logger, func() error, error) {
	df, err := newDailyFile(logDir)
	if err != nil {
		return nil, nil, err
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(df), zap.InfoLevel)
	logger := zap.New(core)
	return logger, df.Close, nil
}
