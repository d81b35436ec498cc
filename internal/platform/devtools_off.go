//go:build !devtools

package platform

// DevtoolsBuild is set when the binary is built with the devtools tag.
const DevtoolsBuild = false
