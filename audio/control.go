package audio

import (
	"sync"

	"github.com/lixenwraith/polyphonica/core"
)

// commandKind tags which Engine operation a queued Command applies.
type commandKind int

const (
	cmdTrigger commandKind = iota
	cmdRelease
	cmdReleaseAll
	cmdStopAll
	cmdSetFrequency
	cmdSetAmp
	cmdSetMasterAmp
)

// Command is a POD record describing one control-surface operation,
// queued by a non-audio thread and applied by the audio thread in FIFO
// order at the top of the next ProcessBuffer call.
type Command struct {
	kind commandKind

	waveform  core.Waveform
	frequency float64
	envelope  core.Envelope
	amp       float64
	voiceID   uint32

	// result, if non-nil, receives the voiceId assigned to a cmdTrigger
	// command once applied. Only meaningful for Trigger/TriggerWithAmp.
	result chan uint32
}

// TriggerCommand builds a Command that allocates a voice. Send result on
// a buffered channel of capacity 1 to read back the assigned voiceId, or
// pass nil to fire-and-forget.
func TriggerCommand(waveform core.Waveform, frequency float64, env core.Envelope, amp float64, result chan uint32) Command {
	return Command{kind: cmdTrigger, waveform: waveform, frequency: frequency, envelope: env, amp: amp, result: result}
}

func ReleaseCommand(voiceID uint32) Command   { return Command{kind: cmdRelease, voiceID: voiceID} }
func ReleaseAllCommand() Command              { return Command{kind: cmdReleaseAll} }
func StopAllCommand() Command                 { return Command{kind: cmdStopAll} }
func SetFrequencyCommand(id uint32, f float64) Command {
	return Command{kind: cmdSetFrequency, voiceID: id, frequency: f}
}
func SetAmpCommand(id uint32, amp float64) Command {
	return Command{kind: cmdSetAmp, voiceID: id, amp: amp}
}
func SetMasterAmpCommand(amp float64) Command { return Command{kind: cmdSetMasterAmp, amp: amp} }

// CommandQueue is a bounded single-producer/single-consumer-per-producer
// command channel, per §4.5: commands from one producer apply in
// program order, producers interleave arbitrarily. Multiple producer
// goroutines may call Submit concurrently; the channel's own ordering
// guarantee covers same-goroutine ordering, which is all the spec
// requires.
type CommandQueue struct {
	ch chan Command
}

// NewCommandQueue builds a queue with the given bounded capacity.
func NewCommandQueue(capacity int) *CommandQueue {
	return &CommandQueue{ch: make(chan Command, capacity)}
}

// Submit enqueues a command, dropping it if the queue is full rather
// than blocking the caller indefinitely. Returns false if dropped.
func (q *CommandQueue) Submit(cmd Command) bool {
	select {
	case q.ch <- cmd:
		return true
	default:
		return false
	}
}

// Drain applies every currently queued command to e, in FIFO order. The
// audio thread calls this once at the top of each ProcessBuffer before
// mixing; it never blocks.
func (q *CommandQueue) Drain(e *Engine) {
	for {
		select {
		case cmd := <-q.ch:
			apply(e, cmd)
		default:
			return
		}
	}
}

func apply(e *Engine, cmd Command) {
	switch cmd.kind {
	case cmdTrigger:
		id, _ := e.TriggerWithAmp(cmd.waveform, cmd.frequency, cmd.envelope, cmd.amp)
		if cmd.result != nil {
			select {
			case cmd.result <- id:
			default:
			}
		}
	case cmdRelease:
		e.Release(cmd.voiceID)
	case cmdReleaseAll:
		e.ReleaseAll()
	case cmdStopAll:
		e.StopAll()
	case cmdSetFrequency:
		e.SetFrequency(cmd.voiceID, cmd.frequency)
	case cmdSetAmp:
		e.SetAmp(cmd.voiceID, cmd.amp)
	case cmdSetMasterAmp:
		e.SetMasterAmp(cmd.amp)
	}
}

// GuardedEngine is the simpler concurrency mode from §4.5/§9: a single
// coarse mutex around the whole engine, acquired once per ProcessBuffer.
// Adequate when buffer sizes are comfortably larger than lock-contention
// time; CommandQueue is preferred for tighter latency targets.
type GuardedEngine struct {
	mu     sync.Mutex
	Engine *Engine
}

// NewGuardedEngine wraps e for mutex-protected multi-thread access.
func NewGuardedEngine(e *Engine) *GuardedEngine {
	return &GuardedEngine{Engine: e}
}

// WithLock runs fn with the engine's lock held; used by both the audio
// thread (once per callback) and control threads (once per mutation).
func (g *GuardedEngine) WithLock(fn func(*Engine)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.Engine)
}
