// Package shutdown reports the signals that should end the process.
package shutdown

import "os"

// Channel returns a channel that receives the first stop signal.
func Channel() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	Notify(ch)
	return ch
}
