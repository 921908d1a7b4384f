//go:build !linux

package platform

func newIdleProvider() IdleProvider {
	return unsupportedIdleProvider{}
}
