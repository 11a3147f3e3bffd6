package common

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	major = 0
	minor = 2
	patch = 0

	// Versions from which an update should be performed.
	// These should be used in a group (so prevMinor can be equal to minor if there are
	// any migration routines.
	prevMajor = 0
	prevMinor = 1
	prevPatch = 0

	Version = major*1_000_000 + minor*1_000 + patch

	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch
)

var (
	// ErrVersionMismatch is returned by CheckVersion in case of error.
	ErrVersionMismatch = errors.New("previous version mismatch")

	// ErrAlreadyUpdated is returned by CheckVersion if current version equals
	// to the version state is being updated from.
	ErrAlreadyUpdated = errors.New("state is already of the latest version")
)

// CheckVersion checks that previous version is more than PrevVersion to ensure migrating
// stored data was done successfully. Versions newer than the current one are
// rejected.
func CheckVersion(from int) error {
	if from < PrevVersion {
		return fmt.Errorf("%w: expected >=%d, got %d", ErrVersionMismatch, PrevVersion, from)
	}
	if from > Version {
		return fmt.Errorf("%w: state version %s is newer than %s", ErrVersionMismatch, VersionString(from), VersionString(Version))
	}
	if from == Version {
		return fmt.Errorf("%w: %d", ErrAlreadyUpdated, Version)
	}
	return nil
}

// VersionString returns human-readable form of the packed version.
func VersionString(v int) string {
	return fmt.Sprintf("%d.%d.%d", v/1_000_000, v/1_000%1_000, v%1_000)
}

// EncodeVersion packs version into the storage value.
func EncodeVersion(v int) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(v))
}

// DecodeVersion unpacks version stored by EncodeVersion.
func DecodeVersion(data []byte) (int, error) {
	if len(data) != 4 {
		return 0, fmt.Errorf("invalid version length %d", len(data))
	}
	return int(binary.LittleEndian.Uint32(data)), nil
}
