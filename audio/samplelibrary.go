package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-audio/wav"

	"github.com/lixenwraith/polyphonica/core"
)

// ErrNotFound is returned by Load when name resolves against no search
// path.
var ErrNotFound = errors.New("audio: sample not found")

// ErrOutOfMemory is returned by Load when the entry cannot fit even in
// an empty cache.
var ErrOutOfMemory = errors.New("audio: sample library memory budget exceeded")

// cachedSample is one LRU entry. pcm is shared read-only with any voice
// that has triggered against it; eviction only drops the library's own
// reference, per §3's shared-ownership invariant.
type cachedSample struct {
	ref          *core.SampleRef
	memoryBytes  int64
	lastAccess   time.Time
	accessCount  uint64
}

// SampleLibrary is a lazy, LRU-capped cache of decoded PCM sample
// buffers, consulted only at preparation time by non-audio threads; the
// audio thread never calls Load or Prepare.
type SampleLibrary struct {
	mu          sync.Mutex
	searchPaths []string
	maxBytes    int64
	usedBytes   int64
	cache       map[string]*cachedSample
}

// NewSampleLibrary builds a library whose cache is capped at maxBytes
// (maxBytes<=0 disables the cap and eviction pressure entirely).
func NewSampleLibrary(maxBytes int64) *SampleLibrary {
	return &SampleLibrary{maxBytes: maxBytes, cache: make(map[string]*cachedSample)}
}

// AddSearchPath appends a directory to the ordered list Load consults.
func (lib *SampleLibrary) AddSearchPath(dir string) {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	lib.searchPaths = append(lib.searchPaths, dir)
}

// Load resolves name (a bare filename, e.g. "kick.wav") against the
// search paths, decodes it to mono f32 PCM, and inserts it into the
// cache under the given baseFrequency. Evicts LRU entries if needed to
// stay within the memory budget; returns ErrOutOfMemory if the entry
// cannot fit even in an empty cache.
func (lib *SampleLibrary) Load(name string, baseFrequency float64) (*core.SampleRef, error) {
	lib.mu.Lock()
	if entry, ok := lib.cache[name]; ok {
		entry.lastAccess = time.Now()
		entry.accessCount++
		ref := entry.ref
		lib.mu.Unlock()
		return ref, nil
	}
	paths := append([]string(nil), lib.searchPaths...)
	lib.mu.Unlock()

	path, err := resolvePath(paths, name)
	if err != nil {
		return nil, err
	}

	mono, sourceRate, err := decodeWAVMono(path)
	if err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", path, err)
	}

	ref := &core.SampleRef{
		Name:             name,
		Mono:             mono,
		SourceSampleRate: sourceRate,
		BaseFrequency:    baseFrequency,
	}
	memBytes := int64(len(mono)) * 4

	lib.mu.Lock()
	defer lib.mu.Unlock()
	if lib.maxBytes > 0 {
		if memBytes > lib.maxBytes {
			return nil, ErrOutOfMemory
		}
		for lib.usedBytes+memBytes > lib.maxBytes && len(lib.cache) > 0 {
			lib.evictLRULocked()
		}
	}
	lib.cache[name] = &cachedSample{ref: ref, memoryBytes: memBytes, lastAccess: time.Now(), accessCount: 1}
	lib.usedBytes += memBytes
	return ref, nil
}

// evictLRULocked removes the cache entry with the smallest lastAccess.
// Caller must hold lib.mu. Active voices referencing the evicted PCM
// keep it alive through their own *core.SampleRef pointer.
func (lib *SampleLibrary) evictLRULocked() {
	var oldestName string
	var oldest time.Time
	first := true
	for name, e := range lib.cache {
		if first || e.lastAccess.Before(oldest) {
			oldest = e.lastAccess
			oldestName = name
			first = false
		}
	}
	if oldestName == "" {
		return
	}
	lib.usedBytes -= lib.cache[oldestName].memoryBytes
	delete(lib.cache, oldestName)
}

// Prepare loads (if needed) and packages name into a ready-to-trigger
// record. This is the only sample-loading entry point meant to be
// called just before a trigger; the audio thread must never call Load
// or Prepare itself.
func (lib *SampleLibrary) Prepare(name string, baseFrequency float64, env core.Envelope, amp float64) (core.Waveform, core.Envelope, float64, error) {
	ref, err := lib.Load(name, baseFrequency)
	if err != nil {
		return core.Waveform{}, core.Envelope{}, 0, err
	}
	return core.SampleWave(ref), env, amp, nil
}

func resolvePath(searchPaths []string, name string) (string, error) {
	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	return "", ErrNotFound
}

// decodeWAVMono decodes a WAV file to mono f32 samples normalized to
// [-1,1], downmixing multi-channel files by averaging, per §6.
func decodeWAVMono(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("audio: %s is not a valid WAV file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	maxVal := float64(int64(1) << (uint(buf.SourceBitDepth) - 1))
	if buf.SourceBitDepth == 0 {
		maxVal = 32768
	}

	frames := len(buf.Data) / channels
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		mono[i] = float32((sum / float64(channels)) / maxVal)
	}
	return mono, buf.Format.SampleRate, nil
}
