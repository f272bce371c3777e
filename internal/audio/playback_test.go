package audio

import (
	"bytes"
	"testing"
	"time"
)

func TestPlayer_GaplessConcatenation(t *testing.T) {
	p := NewPlayer(PlayerConfig{SampleRate: 24000}, testLogger())

	// Chunks queued faster than they drain must come out as one contiguous
	// stream, each chunk starting exactly where its predecessor ended.
	chunks := [][]byte{
		Int16ToBytes([]int16{1, 2, 3}),
		Int16ToBytes([]int16{4, 5}),
		Int16ToBytes([]int16{6, 7, 8, 9}),
	}
	var want []byte
	for _, chunk := range chunks {
		p.Enqueue(chunk)
		want = append(want, chunk...)
	}

	// Drain with a pull size that does not align with chunk boundaries.
	var got []byte
	for len(got) < len(want) {
		buf := make([]byte, 6)
		p.ReadPCM(buf)
		got = append(got, buf...)
	}
	if !bytes.Equal(got[:len(want)], want) {
		t.Errorf("Expected contiguous chunk concatenation, got %v want %v", got[:len(want)], want)
	}
	// Anything past the queued audio is silence.
	for i := len(want); i < len(got); i++ {
		if got[i] != 0 {
			t.Errorf("Expected zero-fill past queued audio at byte %d, got %d", i, got[i])
		}
	}
}

func TestPlayer_SilenceWhenEmpty(t *testing.T) {
	p := NewPlayer(PlayerConfig{}, testLogger())

	buf := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	p.ReadPCM(buf)
	for i, b := range buf {
		if b != 0 {
			t.Errorf("Expected silence at byte %d, got %d", i, b)
		}
	}
}

func TestPlayer_EnqueueAfterStopDropped(t *testing.T) {
	p := NewPlayer(PlayerConfig{}, testLogger())

	p.Enqueue(Int16ToBytes([]int16{1, 2}))
	p.Stop()
	p.Enqueue(Int16ToBytes([]int16{3, 4}))

	buf := make([]byte, 8)
	p.ReadPCM(buf)
	for i, b := range buf {
		if b != 0 {
			t.Errorf("Expected only silence after stop at byte %d, got %d", i, b)
		}
	}
}

func TestPlayer_StopIdempotent(t *testing.T) {
	p := NewPlayer(PlayerConfig{}, testLogger())
	p.Stop()
	p.Stop()
}

func TestPlayer_FlushDropsQueued(t *testing.T) {
	p := NewPlayer(PlayerConfig{SampleRate: 24000}, testLogger())

	p.Enqueue(Int16ToBytes([]int16{1, 2, 3, 4}))
	p.Flush()
	if p.Buffered() != 0 {
		t.Errorf("Expected empty buffer after flush, got %v", p.Buffered())
	}

	// Flush must not kill the player; the next reply still plays.
	next := Int16ToBytes([]int16{5, 6})
	p.Enqueue(next)
	buf := make([]byte, len(next))
	p.ReadPCM(buf)
	if !bytes.Equal(buf, next) {
		t.Errorf("Expected post-flush chunk to play, got %v want %v", buf, next)
	}
}

func TestPlayer_Buffered(t *testing.T) {
	p := NewPlayer(PlayerConfig{SampleRate: 24000}, testLogger())

	// 24000 samples at 24kHz is one second.
	p.Enqueue(make([]byte, 48000))
	if got := p.Buffered(); got != time.Second {
		t.Errorf("Expected 1s buffered, got %v", got)
	}

	p.ReadPCM(make([]byte, 24000))
	if got := p.Buffered(); got != 500*time.Millisecond {
		t.Errorf("Expected 500ms buffered after draining half, got %v", got)
	}
	if p.Played() != 12000 {
		t.Errorf("Expected 12000 samples played, got %d", p.Played())
	}
}
