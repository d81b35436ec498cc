//go:build darwin && cgo

package platform

import "C"

// Custom menu items carry their index into menuIDs as the NSMenuItem tag.
// Both are only touched on the UI thread.
var (
	menuIDs    []string
	menuSelect func(id string)
)

// fullscreenSettled is set by BuildWindow for the shell's single window.
var fullscreenSettled func()

//export goMenuSelected
func goMenuSelected(tag C.int) {
	i := int(tag)
	if i < 0 || i >= len(menuIDs) || menuSelect == nil {
		return
	}
	menuSelect(menuIDs[i])
}

//export goFullscreenSettled
func goFullscreenSettled() {
	if fullscreenSettled != nil {
		fullscreenSettled()
	}
}
