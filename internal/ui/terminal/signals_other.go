//go:build !unix

package terminal

import (
	"errors"
	"os"
)

var resumeSignals []os.Signal

func stopSelf() error {
	return errors.New("job control not supported")
}
