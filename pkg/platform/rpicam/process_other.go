//go:build !darwin && !(linux && arm64)

package rpicam

import "os/exec"

func command(Config) (*exec.Cmd, error) {
	return nil, errUnavailable
}
