package toolrunner

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// hangGrace is the initial quiet period before any CPU sample is trusted;
// sampling immediately after launch would misclassify normal slow-starting
// tools (module imports, JIT warmup) as hung.
const hangGrace = 60 * time.Second

// hangSampleInterval is how often CPU% is sampled once past the grace
// period.
const hangSampleInterval = 15 * time.Second

// hangCPUThresholdPercent is the ceiling below which a process is a hang
// candidate. Elapsed time alone is never sufficient — a steady-state 99%
// CPU tool is never "hung" no matter how long it runs.
const hangCPUThresholdPercent = 1.0

// hangDetector samples one process's CPU usage on a ticker and declares it
// hung only when CPU stays below hangCPUThresholdPercent AND enough
// wall-clock time has passed, per the spec's two-condition predicate.
type hangDetector struct {
	pid            int
	minHangElapsed time.Duration
	grace          time.Duration
	sampleInterval time.Duration
	hungCh         chan struct{}
	stopCh         chan struct{}
	reason         string
}

// newHangDetector starts sampling pid in the background. timeoutSeconds is
// the hook's own configured timeout; the hang threshold is
// min(180s, timeoutSeconds/2), so a hook with a short timeout never waits
// the full 180s to be declared hung.
func newHangDetector(pid int, timeoutSeconds int) *hangDetector {
	return newHangDetectorWithTiming(pid, timeoutSeconds, hangGrace, hangSampleInterval)
}

// newHangDetectorWithTiming is the real constructor; it exists separately
// from newHangDetector so tests can exercise the sampling state machine
// without waiting out the real 60s grace and 15s sampling cadence.
func newHangDetectorWithTiming(pid int, timeoutSeconds int, grace, sampleInterval time.Duration) *hangDetector {
	half := time.Duration(timeoutSeconds) * time.Second / 2
	threshold := 180 * time.Second
	if half < threshold {
		threshold = half
	}

	hd := &hangDetector{
		pid:            pid,
		minHangElapsed: threshold,
		grace:          grace,
		sampleInterval: sampleInterval,
		hungCh:         make(chan struct{}),
		stopCh:         make(chan struct{}),
	}
	go hd.run()
	return hd
}

func (hd *hangDetector) run() {
	start := time.Now()
	time.Sleep(hd.grace)

	ticker := time.NewTicker(hd.sampleInterval)
	defer ticker.Stop()

	var lastCPUTicks uint64
	var lastSampleAt time.Time
	haveSample := false

	for {
		select {
		case <-hd.stopCh:
			return
		case now := <-ticker.C:
			ticks, err := readProcessCPUTicks(hd.pid)
			if err != nil {
				// Process likely exited; nothing to declare.
				return
			}

			if haveSample {
				elapsedSinceSample := now.Sub(lastSampleAt).Seconds()
				deltaTicks := float64(ticks - lastCPUTicks)
				cpuPercent := 0.0
				if elapsedSinceSample > 0 {
					cpuPercent = (deltaTicks / clockTicksPerSecond()) / elapsedSinceSample * 100
				}

				if cpuPercent < hangCPUThresholdPercent && time.Since(start) > hd.minHangElapsed {
					hd.reason = fmt.Sprintf(
						"CPU usage %.2f%% below %.1f%% threshold after %s elapsed (grace %s, sample window %s)",
						cpuPercent, hangCPUThresholdPercent, time.Since(start).Round(time.Second), hd.grace, hd.sampleInterval)
					close(hd.hungCh)
					return
				}
			}

			lastCPUTicks = ticks
			lastSampleAt = now
			haveSample = true
		}
	}
}

// Hung returns a channel that closes once the process has been declared
// hung. It never closes for a process that stays above the CPU threshold or
// that exits before the grace period elapses.
func (hd *hangDetector) Hung() <-chan struct{} { return hd.hungCh }

// Reason returns a human-readable explanation, valid once Hung has fired.
func (hd *hangDetector) Reason() string { return hd.reason }

// Stop releases the sampling goroutine. Safe to call after Hung has fired
// or after the monitored process has already exited.
func (hd *hangDetector) Stop() {
	select {
	case <-hd.stopCh:
	default:
		close(hd.stopCh)
	}
}

// readProcessCPUTicks reads utime+stime (fields 14 and 15) from
// /proc/<pid>/stat. On platforms without /proc (non-Linux), it returns an
// error, and the hang detector degrades to a no-op: timeouts alone still
// bound a runaway hook.
func readProcessCPUTicks(pid int) (uint64, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return 0, err
	}

	// The comm field (2nd, parenthesized) may itself contain spaces or
	// close-parens, so split on the last ')' rather than naive whitespace
	// tokenization.
	text := string(data)
	closeParen := strings.LastIndexByte(text, ')')
	if closeParen < 0 || closeParen+2 >= len(text) {
		return 0, fmt.Errorf("unexpected /proc/%d/stat format", pid)
	}
	fields := strings.Fields(text[closeParen+2:])
	// fields[0] is state (3rd overall field); utime is field 14 overall,
	// i.e. fields[11] in this 0-indexed remainder; stime is fields[12].
	if len(fields) < 13 {
		return 0, fmt.Errorf("unexpected /proc/%d/stat field count", pid)
	}
	utime, err := strconv.ParseUint(fields[11], 10, 64)
	if err != nil {
		return 0, err
	}
	stime, err := strconv.ParseUint(fields[12], 10, 64)
	if err != nil {
		return 0, err
	}
	return utime + stime, nil
}

// clockTicksPerSecond is USER_HZ, almost universally 100 on Linux. Reading
// it via getconf at runtime would add a subprocess per sample; the
// hardcoded constant matches every mainstream Linux distribution's kernel
// config.
func clockTicksPerSecond() float64 { return 100.0 }
