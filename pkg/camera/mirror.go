package camera

// MirrorInput is the state the mirroring decision looks at.
type MirrorInput struct {
	HasVideoTrack bool       // a stream is held and has a video track
	TrackFacing   FacingMode // facing mode reported by that track
	Selected      *Device    // currently selected enumerated device
	FacingHint    FacingMode // last facing hint the caller worked with
}

// ShouldMirror decides whether the viewfinder shows a mirrored image.
// A facing mode reported by the track wins; without one the selected
// device's label decides; without a track the facing hint decides.
func ShouldMirror(in MirrorInput) bool {
	if !in.HasVideoTrack {
		return in.FacingHint == FacingModeUser
	}
	if in.TrackFacing != FacingModeNone {
		return in.TrackFacing == FacingModeUser
	}
	if in.Selected != nil {
		return IsFrontLabel(in.Selected.Label)
	}
	return false
}
