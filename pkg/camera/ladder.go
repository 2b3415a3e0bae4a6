package camera

// Rung names, most to least specific.
const (
	RungIdeal      = "ideal-1280x720"
	RungReduced    = "reduced-640x480"
	RungTargetOnly = "target-only"
	RungMinimum    = "minimum"
	RungBare       = "bare"
)

// Rung is one named attempt of the constraint ladder.
type Rung struct {
	Name    string
	Request StreamRequest
}

// Outcome is the result of trying a single rung.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeRetryable
	OutcomeTerminal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeRetryable:
		return "retryable"
	}
	return "terminal"
}

// OutcomeOf classifies the error of a rung attempt. Only an overconstrained
// failure lets the ladder continue.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSucceeded
	case IsOverconstrained(err):
		return OutcomeRetryable
	}
	return OutcomeTerminal
}

// Target picks what to ask for: an explicit device id, else the selected
// device, else a bare facing hint.
func Target(preferredID string, selected *Device, facing FacingMode) Constraints {
	switch {
	case preferredID != "":
		return Constraints{DeviceID: preferredID}
	case selected != nil:
		return Constraints{DeviceID: selected.ID}
	}
	return Constraints{FacingMode: facing}
}

// BuildLadder returns the four rungs for target. haveDevices decides whether
// the last rung drops every constraint or keeps just the facing hint.
func BuildLadder(target Constraints, haveDevices bool, facing FacingMode) []Rung {
	ideal := target
	ideal.Width, ideal.Height = 1280, 720

	reduced := target
	reduced.Width, reduced.Height = 640, 480

	plain := target
	plain.Width, plain.Height = 0, 0

	minimum := Constraints{}
	if !haveDevices {
		minimum.FacingMode = facing
	}

	return []Rung{
		{Name: RungIdeal, Request: StreamRequest{Video: ideal}},
		{Name: RungReduced, Request: StreamRequest{Video: reduced}},
		{Name: RungTargetOnly, Request: StreamRequest{Video: plain}},
		{Name: RungMinimum, Request: StreamRequest{Video: minimum}},
	}
}

// BareRung is the last resort after the ladder is exhausted: any video
// input, no audio.
func BareRung() Rung {
	return Rung{Name: RungBare, Request: StreamRequest{}}
}
