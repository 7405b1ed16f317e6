/*
NAME
  source.go

DESCRIPTION
  source.go defines the audio source manager interface (component C4):
  a minimal, implementation-agnostic contract the continuous monitor
  (C5) and the streaming decoder drive without caring whether audio
  comes from a WAV file, ALSA capture, or anything else.

AUTHOR
  Grounded on ausocean/av/device.AVDevice's small-interface style,
  narrowed to the monitor's actual needs.
*/

// Package audiosrc provides the audio source interface (C4) and its
// concrete implementations: a looping WAV file replayer and a live ALSA
// capture source.
package audiosrc

// Source is implemented by anything the continuous monitor can pull
// mono float samples from. Implementations must not block ReadAudio for
// longer than roughly 100ms.
type Source interface {
	// ReadAudio returns up to n mono float samples in [-1, 1]. ok is
	// false if no source is active or data is momentarily unavailable;
	// callers must not treat that as a fatal error.
	ReadAudio(n int) (samples []float64, ok bool)

	// GetActiveSource returns the name of the currently active source
	// and true, or ("", false) if nothing is active.
	GetActiveSource() (string, bool)
}
