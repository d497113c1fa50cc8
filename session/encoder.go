package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const recordFormatVersionCurrent = 1

// Field length limits of the binary format, in bytes.
const (
	MaxUserIDLen      = math.MaxUint8
	MaxUserNameLen    = math.MaxUint16
	MaxEndTypeLen     = math.MaxUint8
	MaxTokenSymbolLen = math.MaxUint8
)

// ErrRecordCorrupt is returned when a cached blob cannot be decoded.
var ErrRecordCorrupt = errors.New("session record corrupt")

// Encode serializes r into the current binary format.
func Encode(r *Record) ([]byte, error) {
	if r == nil {
		return nil, errors.New("nil record")
	}

	var buf bytes.Buffer
	buf.Grow(16 + len(r.UserID) + len(r.UserName) + len(r.EndType) + len(r.TokenSymbol))

	buf.WriteByte(recordFormatVersionCurrent)

	if len(r.UserID) > MaxUserIDLen {
		return nil, errors.New("userID too long")
	}
	buf.WriteByte(byte(len(r.UserID)))
	buf.WriteString(r.UserID)

	if len(r.UserName) > MaxUserNameLen {
		return nil, errors.New("userName too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(r.UserName))); err != nil {
		return nil, err
	}
	buf.WriteString(r.UserName)

	if len(r.EndType) > MaxEndTypeLen {
		return nil, errors.New("endType too long")
	}
	buf.WriteByte(byte(len(r.EndType)))
	buf.WriteString(r.EndType)

	if len(r.TokenSymbol) > MaxTokenSymbolLen {
		return nil, errors.New("tokenSymbol too long")
	}
	buf.WriteByte(byte(len(r.TokenSymbol)))
	buf.WriteString(r.TokenSymbol)

	if err := binary.Write(&buf, binary.BigEndian, r.IssuedAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a blob produced by [Encode]. Malformed input yields an error
// wrapping [ErrRecordCorrupt]; it never panics.
func Decode(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, corrupt(err)
	}
	if version != recordFormatVersionCurrent {
		return nil, corrupt(errors.New("unknown record version"))
	}

	r := &Record{}

	if r.UserID, err = readShortString(reader); err != nil {
		return nil, corrupt(err)
	}

	var nameLen uint16
	if err := binary.Read(reader, binary.BigEndian, &nameLen); err != nil {
		return nil, corrupt(err)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(reader, name); err != nil {
		return nil, corrupt(err)
	}
	r.UserName = string(name)

	if r.EndType, err = readShortString(reader); err != nil {
		return nil, corrupt(err)
	}
	if r.TokenSymbol, err = readShortString(reader); err != nil {
		return nil, corrupt(err)
	}

	if err := binary.Read(reader, binary.BigEndian, &r.IssuedAt); err != nil {
		return nil, corrupt(err)
	}

	return r, nil
}

func readShortString(reader *bytes.Reader) (string, error) {
	n, err := reader.ReadByte()
	if err != nil {
		return "", err
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}

func corrupt(err error) error {
	return fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
}
