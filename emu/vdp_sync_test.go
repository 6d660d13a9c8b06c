package emu

import "testing"

func TestSync_PulseAfterTwoSamples(t *testing.T) {
	var ps pulseSync
	var rs resampler

	ps.publish(42, false, 7, 1000)

	if pulse, _ := rs.sample(&ps); pulse {
		t.Error("pulse visible after one resampling stage")
	}
	pulse, snap := rs.sample(&ps)
	if !pulse {
		t.Fatal("no pulse after two resampling stages")
	}
	if snap.line != 42 || snap.count != 7 || snap.start != 1000 || snap.frameStart {
		t.Errorf("snapshot = %+v, want line 42, count 7, start 1000", snap)
	}
}

func TestSync_OnePulsePerPublish(t *testing.T) {
	var ps pulseSync
	var rs resampler

	ps.publish(1, false, 0, 0)
	pulses := 0
	for i := 0; i < 10; i++ {
		if pulse, _ := rs.sample(&ps); pulse {
			pulses++
		}
	}
	if pulses != 1 {
		t.Errorf("observed %d pulses for one publish, want 1", pulses)
	}

	ps.publish(2, false, 0, 0)
	for i := 0; i < 10; i++ {
		if pulse, _ := rs.sample(&ps); pulse {
			pulses++
		}
	}
	if pulses != 2 {
		t.Errorf("observed %d pulses for two publishes, want 2", pulses)
	}
}

func TestSync_FrameStartBit(t *testing.T) {
	var ps pulseSync
	var rs resampler

	ps.publish(0, true, 3, 64)
	rs.sample(&ps)
	pulse, snap := rs.sample(&ps)
	if !pulse || !snap.frameStart {
		t.Errorf("pulse=%v frameStart=%v, want both true", pulse, snap.frameStart)
	}
}

func TestSync_SnapshotFieldRanges(t *testing.T) {
	var ps pulseSync
	var rs resampler

	// Largest representable field values survive the packed word.
	ps.publish(vTotal-1, false, numSprites, 0xFFFFFFFF)
	rs.sample(&ps)
	_, snap := rs.sample(&ps)
	if snap.line != vTotal-1 {
		t.Errorf("line = %d, want %d", snap.line, vTotal-1)
	}
	if snap.count != numSprites {
		t.Errorf("count = %d, want %d", snap.count, numSprites)
	}
	if snap.start != 0xFFFFFFFF {
		t.Errorf("start = %#x, want 0xFFFFFFFF", snap.start)
	}
}

func TestSync_BackToBackPublishesCancel(t *testing.T) {
	var ps pulseSync
	var rs resampler

	// Two publishes with no sample in between return the toggle to its
	// previous level, so neither is observed. The line schedule keeps
	// hundreds of draw samples between publishes, so this only occurs
	// if the domains stop running.
	ps.publish(10, false, 0, 0)
	ps.publish(11, false, 0, 0)

	for i := 0; i < 10; i++ {
		if pulse, _ := rs.sample(&ps); pulse {
			t.Fatal("cancelled toggle produced a pulse")
		}
	}
}
