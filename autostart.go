package main

import (
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"
)

// setupAutostart registers or unregisters the running binary as a login item,
// skipping the platform call when the state already matches.
func setupAutostart(enable bool) error {
	execPath, err := os.Executable()
	if err != nil {
		return err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return err
	}

	entry := &autostart.App{
		Name:        "spotiwake",
		DisplayName: "Spotiwake",
		Exec:        []string{execPath},
	}

	switch {
	case enable && !entry.IsEnabled():
		return entry.Enable()
	case !enable && entry.IsEnabled():
		return entry.Disable()
	}
	return nil
}
