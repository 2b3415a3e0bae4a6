package camera

import (
	"reflect"
	"testing"
)

func TestBuildLadderForDevice(t *testing.T) {
	target := Constraints{DeviceID: "cam-1"}
	ladder := BuildLadder(target, true, FacingModeUser)

	want := []Rung{
		{Name: RungIdeal, Request: StreamRequest{Video: Constraints{DeviceID: "cam-1", Width: 1280, Height: 720}}},
		{Name: RungReduced, Request: StreamRequest{Video: Constraints{DeviceID: "cam-1", Width: 640, Height: 480}}},
		{Name: RungTargetOnly, Request: StreamRequest{Video: Constraints{DeviceID: "cam-1"}}},
		{Name: RungMinimum, Request: StreamRequest{Video: Constraints{}}},
	}
	if !reflect.DeepEqual(ladder, want) {
		t.Errorf("Unexpected ladder:\n got %+v\nwant %+v", ladder, want)
	}
}

func TestBuildLadderFacingOnly(t *testing.T) {
	target := Target("", nil, FacingModeUser)
	ladder := BuildLadder(target, false, FacingModeUser)

	if len(ladder) != 4 {
		t.Fatalf("Expected 4 rungs, got %d", len(ladder))
	}
	for i, r := range ladder {
		if r.Request.Video.DeviceID != "" {
			t.Errorf("Rung %d carries a device id: %+v", i+1, r.Request.Video)
		}
		if r.Request.Video.FacingMode != FacingModeUser {
			t.Errorf("Rung %d lost the facing hint: %+v", i+1, r.Request.Video)
		}
		if r.Request.Audio {
			t.Errorf("Rung %d requests audio", i+1)
		}
	}
	if got := ladder[3].Request.Video; got != (Constraints{FacingMode: FacingModeUser}) {
		t.Errorf("Expected rung 4 to be facing only, got %+v", got)
	}
}

func TestTargetPriority(t *testing.T) {
	sel := &Device{ID: "selected"}

	if got := Target("explicit", sel, FacingModeUser); got != (Constraints{DeviceID: "explicit"}) {
		t.Errorf("Explicit id should win, got %+v", got)
	}
	if got := Target("", sel, FacingModeUser); got != (Constraints{DeviceID: "selected"}) {
		t.Errorf("Selection should be used, got %+v", got)
	}
	if got := Target("", nil, FacingModeEnvironment); got != (Constraints{FacingMode: FacingModeEnvironment}) {
		t.Errorf("Facing hint should be used, got %+v", got)
	}
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		err  error
		want Outcome
	}{
		{nil, OutcomeSucceeded},
		{&PlatformError{Name: NameOverconstrained}, OutcomeRetryable},
		{&PlatformError{Name: NameConstraintNotSatisfied}, OutcomeRetryable},
		{&PlatformError{Name: NameNotAllowed}, OutcomeTerminal},
		{&PlatformError{Name: NameNotReadable}, OutcomeTerminal},
		{errBoom, OutcomeTerminal},
	}
	for _, tt := range tests {
		if got := OutcomeOf(tt.err); got != tt.want {
			t.Errorf("OutcomeOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestBareRung(t *testing.T) {
	r := BareRung()
	if !r.Request.Video.IsZero() || r.Request.Audio {
		t.Errorf("Bare rung must ask for any video without audio, got %+v", r.Request)
	}
}
