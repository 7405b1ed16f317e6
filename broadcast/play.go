/*
NAME
  play.go

DESCRIPTION
  play.go invokes an external player command on an archived broadcast
  file, piping its stdout/stderr to the logger.

AUTHOR
  Grounded on cmd/speaker/main.go's playAudio (os/exec, stdout/stderr
  pipe-and-log pattern).
*/

package broadcast

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"

	"github.com/ausocean/utils/logging"

	"github.com/samestation/eas/easerr"
)

// DefaultPlayer is the external command used to play a broadcast file.
const DefaultPlayer = "aplay"

// Play runs player (DefaultPlayer if empty) against path and blocks until
// playback completes. The broadcaster thread cannot be cancelled mid-file:
// callers must not invoke Play again for a given station until a prior
// call has returned.
func Play(player, path string, l logging.Logger) error {
	if player == "" {
		player = DefaultPlayer
	}
	if _, err := exec.LookPath(player); err != nil {
		return easerr.New(easerr.HardwareError, fmt.Errorf("player %q not found: %w", player, err))
	}

	cmd := exec.Command(player, path)
	outPipe, err := cmd.StdoutPipe()
	if err != nil {
		return easerr.New(easerr.HardwareError, fmt.Errorf("stdout pipe: %w", err))
	}
	errPipe, err := cmd.StderrPipe()
	if err != nil {
		return easerr.New(easerr.HardwareError, fmt.Errorf("stderr pipe: %w", err))
	}

	if err := cmd.Start(); err != nil {
		return easerr.New(easerr.HardwareError, fmt.Errorf("starting %s: %w", player, err))
	}
	l.Debug("broadcast: playing", "player", player, "path", path)

	var outBuf, errBuf bytes.Buffer
	done := make(chan struct{}, 2)
	go func() { io.Copy(&outBuf, outPipe); done <- struct{}{} }()
	go func() { io.Copy(&errBuf, errPipe); done <- struct{}{} }()
	<-done
	<-done

	if err := cmd.Wait(); err != nil {
		l.Error("broadcast: player exited with error", "error", err, "stderr", errBuf.String())
		return easerr.New(easerr.HardwareError, err)
	}
	if errBuf.Len() != 0 {
		l.Warning("broadcast: player wrote to stderr", "stderr", errBuf.String())
	}
	l.Debug("broadcast: playback finished", "stdout", outBuf.String())
	return nil
}
