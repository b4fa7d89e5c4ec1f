package model

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable marks a readings or settings store that could not be
// reached. The control loop recovers from it locally: the cycle degrades to
// safe defaults instead of aborting.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrMalformedSetting marks a setting value that could not be parsed. It is
// always recovered inside the settings provider via default substitution and
// never escapes to the control loop.
var ErrMalformedSetting = errors.New("malformed setting")

// ActuatorFault reports a failed hardware write on a single relay channel.
// The channel's state is unknown until the next successful write; other
// channels are unaffected.
type ActuatorFault struct {
	Channel Channel
	Err     error
}

func (f *ActuatorFault) Error() string {
	return fmt.Sprintf("actuator fault on %s: %v", f.Channel, f.Err)
}

func (f *ActuatorFault) Unwrap() error { return f.Err }
