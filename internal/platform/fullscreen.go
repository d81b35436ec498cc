package platform

import "time"

// fullscreenSettleTimeout bounds how long a request may stay unconfirmed
// before the native state is trusted again.
const fullscreenSettleTimeout = 2 * time.Second

// fullscreenState reconciles fullscreen requests with the state the native
// window reports. Requests are applied asynchronously (an animation, a round
// trip through the window manager), so while one is in flight the requested
// value wins. Otherwise the native value wins, which keeps toggles correct
// after the user changes fullscreen through the window's own controls.
type fullscreenState struct {
	requested bool
	pending   bool
	since     time.Time
	now       func() time.Time
}

func (s *fullscreenState) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *fullscreenState) request(on bool) {
	s.requested = on
	s.pending = true
	s.since = s.clock()
}

// settle marks the in-flight request as finished.
func (s *fullscreenState) settle() {
	s.pending = false
}

// resolve returns the effective state given the native reading. A failed
// reading falls back to the last request.
func (s *fullscreenState) resolve(native bool, err error) bool {
	if err != nil {
		return s.requested
	}
	if s.pending {
		if native != s.requested && s.clock().Sub(s.since) < fullscreenSettleTimeout {
			return s.requested
		}
		s.pending = false
	}
	s.requested = native
	return native
}
