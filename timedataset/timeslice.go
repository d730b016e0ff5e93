package timedataset

import (
	"math"
	"time"
)

type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}

	lastTime = t[len(t)-1]
	return lastTime
}

func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}

	frequencies := make(map[time.Duration]int)
	for i := 1; i < len(t); i++ {
		delta := t[i].Sub(t[i-1])
		frequencies[delta] += 1
	}

	var maxCnt int
	maxDelta := time.Duration(math.MaxInt64)

	for delta, cnt := range frequencies {
		if cnt >= maxCnt && delta < maxDelta {
			maxCnt = cnt
			maxDelta = delta
		}
	}
	return maxDelta, nil
}

// Extend returns periods time points continuing after the last time point spaced by freq
func (t TimeSlice) Extend(periods int, freq time.Duration) []time.Time {
	if len(t) == 0 || periods <= 0 || freq <= 0 {
		return nil
	}
	last := t.EndTime()
	res := make([]time.Time, 0, periods)
	for i := 1; i <= periods; i++ {
		res = append(res, last.Add(time.Duration(i)*freq))
	}
	return res
}

// Gaps counts the number of missing time points assuming a regular spacing of freq
func (t TimeSlice) Gaps(freq time.Duration) int {
	if len(t) < 2 || freq <= 0 {
		return 0
	}
	var gaps int
	for i := 1; i < len(t); i++ {
		steps := int(t[i].Sub(t[i-1]) / freq)
		if steps > 1 {
			gaps += steps - 1
		}
	}
	return gaps
}
