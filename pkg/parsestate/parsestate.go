// Package parsestate implements a best-effort interpreter for checkpoint
// blobs produced by Coordinator.checkpoint. The on-disk save-state format
// is whatever the attached emulator produces; this package never assumes
// a specific layout and never fabricates fields it could not actually
// read.
package parsestate

import (
	"encoding/binary"
	"strconv"
)

// headerMagic is the only byte sequence this parser recognizes. Anything
// else is reported as unparseable rather than guessed at.
var headerMagic = [4]byte{'P', 'L', 'S', '1'}

// Parsed is the structured subset of a save-state this package is
// confident it extracted correctly.
type Parsed struct {
	FormatVersion uint16
	PartySize     uint8
	BadgeCount    uint8
}

// Result is Parse's tagged outcome. OK reports whether Parsed is
// populated; when false, Reason explains why, and Parsed/Formatted are
// zero values rather than guesses.
type Result struct {
	OK        bool
	Parsed    Parsed
	Formatted string
	Reason    string
}

// Parse attempts to interpret data as a checkpoint blob. It recognizes
// only one fixed 8-byte header layout; no code in this module writes that
// header (a checkpoint stores SaveState's bytes unchanged), and any other
// layout (including the emulator's native, unspecified save-state binary)
// surfaces as a failure, per spec.md's "do not guess structure"
// directive.
func Parse(data []byte) Result {
	if len(data) < 8 {
		return Result{Reason: "blob shorter than the minimum 8-byte header"}
	}
	var magic [4]byte
	copy(magic[:], data[:4])
	if magic != headerMagic {
		return Result{Reason: "unrecognized header magic; format is not the one this parser understands"}
	}

	version := binary.BigEndian.Uint16(data[4:6])
	partySize := data[6]
	badges := data[7]

	if partySize > 6 {
		return Result{Reason: "party size byte out of range (0-6); refusing to fabricate a value"}
	}

	parsed := Parsed{
		FormatVersion: version,
		PartySize:     partySize,
		BadgeCount:    badges,
	}
	return Result{
		OK:        true,
		Parsed:    parsed,
		Formatted: formatParsed(parsed),
	}
}

func formatParsed(p Parsed) string {
	return "save-state v" + strconv.Itoa(int(p.FormatVersion)) +
		", party=" + strconv.Itoa(int(p.PartySize)) +
		", badges=" + strconv.Itoa(int(p.BadgeCount))
}
