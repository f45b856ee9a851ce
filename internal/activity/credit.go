package activity

// One composition rule for every caller that credits time: the minutes are
// added and, when the span is at least MinActiveSpan, the day counts towards
// the streak. Non-positive spans credit nothing.

func CreditRead(r ReadRecorder, minutes float64) {
	if !(minutes > 0) {
		return
	}
	r.IncrementMinutesRead(minutes)
	if countsAsActive(minutes) {
		r.RecordActivity()
	}
}

func CreditListened(r ListenRecorder, minutes float64) {
	if !(minutes > 0) {
		return
	}
	r.IncrementMinutesListened(minutes)
	if countsAsActive(minutes) {
		r.RecordActivity()
	}
}

func countsAsActive(minutes float64) bool {
	// tolerance for spans converted from seconds
	return minutes*60 >= MinActiveSpan.Seconds()-1e-9
}
