//go:build !cgo || !(linux || darwin || windows)

package platform

// New fails on builds without a native backend. The web view needs cgo.
func New(Options) (Platform, error) {
	return nil, ErrUnsupported
}
