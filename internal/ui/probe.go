package ui

import (
	"fmt"
	"runtime"

	"CanvasEditor/internal/caps"
)

// Probes reports what the desktop driver offers, in the same terms a browser
// reports its features.
func Probes(storageOK, mobile bool) map[string]bool {
	return map[string]bool{
		string(caps.Canvas):                true,
		string(caps.CanvasText):            true,
		string(caps.PointerEvents):         false,
		string(caps.TouchEvents):           mobile,
		string(caps.MouseEvents):           true,
		string(caps.PassiveEvents):         true,
		string(caps.LocalStorage):          storageOK,
		string(caps.RequestAnimationFrame): true,
		string(caps.HardwareAcceleration):  true,
	}
}

// UserAgent identifies the desktop client. Mobile platforms use the tokens
// the browser detector recognizes.
func UserAgent() string {
	platform := runtime.GOOS
	switch platform {
	case "android":
		platform = "Linux; Android"
	case "ios":
		platform = "iPhone; iOS"
	}
	return fmt.Sprintf("CanvasEditor/1.0 (%s; %s) Fyne/2.6", platform, runtime.GOARCH)
}
