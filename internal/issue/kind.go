// SPDX-License-Identifier: MPL-2.0

package issue

import "errors"

// Kind classifies the failure behind an ActionableError.
type Kind int

const (
	// KindUnknown is the zero Kind, used for errors that were never classified.
	KindUnknown Kind = iota
	// KindNetwork covers failed requests and non-success HTTP statuses.
	KindNetwork
	// KindDecode covers malformed feed JSON, manifests and checksum sidecars.
	KindDecode
	// KindFilesystem covers local I/O failures.
	KindFilesystem
	// KindEmptyResult is returned when the version feed yields no usable release.
	KindEmptyResult
	// KindConfig covers invalid configuration files and values.
	KindConfig
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindFilesystem:
		return "filesystem"
	case KindEmptyResult:
		return "empty-result"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// KindOf returns the first non-unknown Kind found in err's chain.
func KindOf(err error) Kind {
	for err != nil {
		var ae *ActionableError
		if !errors.As(err, &ae) {
			return KindUnknown
		}
		if ae.Kind != KindUnknown {
			return ae.Kind
		}
		err = ae.Cause
	}
	return KindUnknown
}
