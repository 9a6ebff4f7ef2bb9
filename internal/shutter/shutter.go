// Package shutter plays a camera shutter click.
package shutter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate   = 44100
	channelCount = 1
)

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// Shutter plays the click. A nil *Shutter is silent.
type Shutter struct {
	ctx *oto.Context
	pcm []byte

	mu     sync.Mutex
	player *oto.Player // held so playback is not collected mid-click
}

// New opens the audio device.
func New() (*Shutter, error) {
	ctx, err := initOto()
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	return &Shutter{ctx: ctx, pcm: clickPCM(sampleRate)}, nil
}

// Click starts the sound and returns immediately.
func (s *Shutter) Click() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		s.player.Pause()
		if err := s.player.Close(); err != nil {
			slog.Debug("shutter: closing previous player", "error", err)
		}
	}
	s.player = s.ctx.NewPlayer(bytes.NewReader(s.pcm))
	s.player.Play()
}

// Close stops any sound still playing.
func (s *Shutter) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	return err
}

// clickPCM synthesizes two short noise bursts, the mirror slap and the
// shutter close, as 16-bit little-endian mono samples.
func clickPCM(rate int) []byte {
	total := rate * 90 / 1000
	second := rate * 45 / 1000
	buf := make([]byte, total*2)

	var seed uint32 = 0x1234567
	for i := 0; i < total; i++ {
		seed = seed*1664525 + 1013904223
		noise := float64(int32(seed))/float64(math.MaxInt32)

		var env float64
		t := float64(i) / float64(rate)
		env += math.Exp(-t * 180)
		if i >= second {
			env += 0.7 * math.Exp(-float64(i-second)/float64(rate)*220)
		}

		v := int16(math.Max(-1, math.Min(1, noise*env*0.6)) * math.MaxInt16)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}
	return buf
}
