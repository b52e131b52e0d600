package s1o

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with dataset-specific context. Observability is
// opt-in: every constructor that accepts an Option defaults to NoopLogger,
// so an unconfigured dataset pays nothing for logging.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps an arbitrary slog.Handler. A nil handler falls back to a
// text handler on stderr at info level.
func NewLogger(h slog.Handler) *Logger {
	if h == nil {
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(h)}
}

// NewJSONLogger builds a Logger that writes JSON-formatted records to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))}
}

// NewTextLogger builds a Logger that writes human-readable records to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
}

// noopLevel sits above every standard slog level, so a NoopLogger's handler
// always skips — cheaper than a handler that discards after formatting.
const noopLevel = slog.Level(1 << 20)

// NoopLogger discards everything. It is the default when no logger Option
// is supplied.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: noopLevel}))}
}

func (l *Logger) WithBasepath(basepath string) *Logger {
	return &Logger{Logger: l.Logger.With("basepath", basepath)}
}

func (l *Logger) WithUID(uid uint64) *Logger {
	return &Logger{Logger: l.Logger.With("uid", uid)}
}

func (l *Logger) WithSlot(slot int) *Logger {
	return &Logger{Logger: l.Logger.With("slot", slot)}
}

func (l *Logger) WithCount(count int) *Logger {
	return &Logger{Logger: l.Logger.With("count", count)}
}

func (l *Logger) LogCreate(basepath string, numElements, numSlots int, err error) {
	if err != nil {
		l.Error("create failed", "basepath", basepath, "num_elements", numElements, "num_slots", numSlots, "error", err)
		return
	}
	l.Info("create completed", "basepath", basepath, "num_elements", numElements, "num_slots", numSlots)
}

func (l *Logger) LogOpen(basepath string, numElements int, rwp bool, err error) {
	if err != nil {
		l.Error("open failed", "basepath", basepath, "error", err)
		return
	}
	l.Info("open completed", "basepath", basepath, "num_elements", numElements, "rwp", rwp)
}

func (l *Logger) LogPush(basepath string, uid uint64, err error) {
	if err != nil {
		l.Error("push failed", "basepath", basepath, "error", err)
		return
	}
	l.Debug("push completed", "basepath", basepath, "uid", uid)
}

func (l *Logger) LogWrite(basepath string, uid uint64, slot int, err error) {
	if err != nil {
		l.Error("write failed", "basepath", basepath, "uid", uid, "slot", slot, "error", err)
		return
	}
	l.Debug("write completed", "basepath", basepath, "uid", uid, "slot", slot)
}

func (l *Logger) LogRead(basepath string, uid uint64, slot int, err error) {
	if err != nil {
		l.Error("read failed", "basepath", basepath, "uid", uid, "slot", slot, "error", err)
		return
	}
	l.Debug("read completed", "basepath", basepath, "uid", uid, "slot", slot)
}

func (l *Logger) LogQuery(basepath string, numResults int, err error) {
	if err != nil {
		l.Error("query failed", "basepath", basepath, "error", err)
		return
	}
	l.Debug("query completed", "basepath", basepath, "num_results", numResults)
}

func (l *Logger) LogFind(basepath string, uid uint64, err error) {
	if err != nil {
		l.Error("find failed", "basepath", basepath, "error", err)
		return
	}
	l.Debug("find completed", "basepath", basepath, "uid", uid)
}

func (l *Logger) LogSync(basepath string, err error) {
	if err != nil {
		l.Error("sync failed", "basepath", basepath, "error", err)
		return
	}
	l.Debug("sync completed", "basepath", basepath)
}

func (l *Logger) LogUnlink(basepath string, err error) {
	if err != nil {
		l.Error("unlink failed", "basepath", basepath, "error", err)
		return
	}
	l.Info("unlink completed", "basepath", basepath)
}
