package s1o

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives one call per dataset operation, successful or
// not, carrying the operation's duration and the error it returned (nil on
// success).
type MetricsCollector interface {
	RecordCreate(duration time.Duration, err error)
	RecordOpen(duration time.Duration, err error)
	RecordPush(duration time.Duration, err error)
	RecordWrite(duration time.Duration, err error)
	RecordRead(duration time.Duration, err error)
	RecordQuery(duration time.Duration, err error)
	RecordFind(duration time.Duration, err error)
	RecordSync(duration time.Duration, err error)
}

// NoopMetricsCollector discards everything. It is the default when no
// metrics Option is supplied.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCreate(time.Duration, error) {}
func (NoopMetricsCollector) RecordOpen(time.Duration, error)   {}
func (NoopMetricsCollector) RecordPush(time.Duration, error)   {}
func (NoopMetricsCollector) RecordWrite(time.Duration, error)  {}
func (NoopMetricsCollector) RecordRead(time.Duration, error)   {}
func (NoopMetricsCollector) RecordQuery(time.Duration, error)  {}
func (NoopMetricsCollector) RecordFind(time.Duration, error)   {}
func (NoopMetricsCollector) RecordSync(time.Duration, error)   {}

// BasicMetricsCollector counts every operation category with atomic
// int64 counters, cheap enough to always run when enabled.
type BasicMetricsCollector struct {
	createCount, createErrors atomic.Int64
	openCount, openErrors     atomic.Int64
	pushCount, pushErrors     atomic.Int64
	writeCount, writeErrors   atomic.Int64
	readCount, readErrors     atomic.Int64
	queryCount, queryErrors   atomic.Int64
	findCount, findErrors     atomic.Int64
	syncCount, syncErrors     atomic.Int64
}

func record(count, errors *atomic.Int64, err error) {
	count.Add(1)
	if err != nil {
		errors.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordCreate(_ time.Duration, err error) {
	record(&b.createCount, &b.createErrors, err)
}

func (b *BasicMetricsCollector) RecordOpen(_ time.Duration, err error) {
	record(&b.openCount, &b.openErrors, err)
}

func (b *BasicMetricsCollector) RecordPush(_ time.Duration, err error) {
	record(&b.pushCount, &b.pushErrors, err)
}

func (b *BasicMetricsCollector) RecordWrite(_ time.Duration, err error) {
	record(&b.writeCount, &b.writeErrors, err)
}

func (b *BasicMetricsCollector) RecordRead(_ time.Duration, err error) {
	record(&b.readCount, &b.readErrors, err)
}

func (b *BasicMetricsCollector) RecordQuery(_ time.Duration, err error) {
	record(&b.queryCount, &b.queryErrors, err)
}

func (b *BasicMetricsCollector) RecordFind(_ time.Duration, err error) {
	record(&b.findCount, &b.findErrors, err)
}

func (b *BasicMetricsCollector) RecordSync(_ time.Duration, err error) {
	record(&b.syncCount, &b.syncErrors, err)
}

// BasicMetricsStats is a point-in-time snapshot of a BasicMetricsCollector.
type BasicMetricsStats struct {
	CreateCount, CreateErrors int64
	OpenCount, OpenErrors     int64
	PushCount, PushErrors     int64
	WriteCount, WriteErrors   int64
	ReadCount, ReadErrors     int64
	QueryCount, QueryErrors   int64
	FindCount, FindErrors     int64
	SyncCount, SyncErrors     int64
}

// Stats returns a snapshot of every counter.
func (b *BasicMetricsCollector) Stats() BasicMetricsStats {
	return BasicMetricsStats{
		CreateCount: b.createCount.Load(), CreateErrors: b.createErrors.Load(),
		OpenCount: b.openCount.Load(), OpenErrors: b.openErrors.Load(),
		PushCount: b.pushCount.Load(), PushErrors: b.pushErrors.Load(),
		WriteCount: b.writeCount.Load(), WriteErrors: b.writeErrors.Load(),
		ReadCount: b.readCount.Load(), ReadErrors: b.readErrors.Load(),
		QueryCount: b.queryCount.Load(), QueryErrors: b.queryErrors.Load(),
		FindCount: b.findCount.Load(), FindErrors: b.findErrors.Load(),
		SyncCount: b.syncCount.Load(), SyncErrors: b.syncErrors.Load(),
	}
}
