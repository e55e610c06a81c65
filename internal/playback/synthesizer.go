package playback

// UtteranceEvents carries the lifecycle callbacks for one dispatched
// utterance. A synthesizer must never invoke them synchronously from Speak;
// the engine may be holding its own lock at dispatch time.
type UtteranceEvents struct {
	OnStart func()
	OnEnd   func()
	OnError func(err error)
}

// Synthesizer is the speech capability: one utterance per Speak call, with
// pause/resume/cancel acting on the currently queued or speaking utterance.
// Pitch and volume are fixed at natural defaults by implementations.
type Synthesizer interface {
	// Speak vocalizes text at the given rate and reports lifecycle events.
	Speak(text string, rate float64, ev UtteranceEvents)
	// Pause suspends the current utterance. A paused utterance fires its
	// end event only after Resume.
	Pause()
	// Resume continues a paused utterance in place.
	Resume()
	// Cancel discards the current utterance. No further events fire for it
	// (the engine additionally guards against stragglers).
	Cancel()
	// MaxRate is the highest rate the engine supports; Speak rates are
	// clamped to it by callers.
	MaxRate() float64
}
