package linter

import (
	"time"
)

// Stage says what just happened to the file named in an Event.
type Stage uint8

const (
	// StageDiscovered - обходчик нашёл файл, он поставлен в очередь.
	StageDiscovered Stage = iota
	// StageScanned - файл прошёл конвейер, результат учтён.
	StageScanned
)

func (s Stage) String() string {
	switch s {
	case StageDiscovered:
		return "discovered"
	case StageScanned:
		return "scanned"
	default:
		return "unknown"
	}
}

// Event reports scan progress for one file to whoever is watching.
// Findings, Err and Elapsed are only meaningful for StageScanned.
type Event struct {
	Path     string
	Stage    Stage
	Findings int
	Err      error
	Elapsed  time.Duration
}

// ProgressSink consumes per-file events during a scan. Implementations must
// not block: a stalled consumer must never stall the workers.
type ProgressSink interface {
	Post(Event)
}

// ChannelSink adapts a channel to ProgressSink. Post drops the event when
// the channel is full.
type ChannelSink chan Event

func (c ChannelSink) Post(e Event) {
	select {
	case c <- e:
	default:
	}
}

type discardSink struct{}

func (discardSink) Post(Event) {}

// sinkOrDiscard normalizes a possibly-nil sink.
func sinkOrDiscard(s ProgressSink) ProgressSink {
	if s == nil {
		return discardSink{}
	}
	return s
}
