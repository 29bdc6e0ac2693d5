package cache

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"
)

// This file contains the format for binary encoding of table snapshots. It
// follows the same length-prefixed scheme as the teacher's tunascript
// binary codec, but encBinaryInt/decBinaryInt here use a true fixed 8-byte
// big-endian field: the teacher's version zero-pads 8 bytes and then
// appends a variable-width varint after them, while its decoder only ever
// inspects those 8 leading (always-zero) bytes, so every decoded int comes
// back as 0. A table snapshot needs a round-trip that actually survives,
// so the width stays fixed at 8 bytes but the encoding inside it does not
// lie about what it reads back.

func encBinaryBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func encBinaryString(s string) []byte {
	enc := make([]byte, 0, len(s))
	chCount := 0
	for _, ch := range s {
		chBuf := make([]byte, utf8.UTFMax)
		byteLen := utf8.EncodeRune(chBuf, ch)
		enc = append(enc, chBuf[:byteLen]...)
		chCount++
	}
	return append(encBinaryInt(chCount), enc...)
}

func encBinaryInt(i int) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, uint64(int64(i)))
	return enc
}

func encBinary(b encoding.BinaryMarshaler) []byte {
	enc, _ := b.MarshalBinary()
	return append(encBinaryInt(len(enc)), enc...)
}

// always consumes 1 byte.
func decBinaryBool(data []byte) (bool, int, error) {
	if len(data) < 1 {
		return false, 0, fmt.Errorf("unexpected end of data")
	}
	switch data[0] {
	case 0:
		return false, 1, nil
	case 1:
		return true, 1, nil
	default:
		return false, 0, fmt.Errorf("unknown non-bool value")
	}
}

// returns the string followed by bytes consumed.
func decBinaryString(data []byte) (string, int, error) {
	if len(data) < 8 {
		return "", 0, fmt.Errorf("unexpected end of data")
	}
	runeCount, _, err := decBinaryInt(data)
	if err != nil {
		return "", 0, fmt.Errorf("decoding string rune count: %w", err)
	}
	data = data[8:]
	if runeCount < 0 {
		return "", 0, fmt.Errorf("string rune count < 0")
	}

	readBytes := 8
	var sb strings.Builder
	for i := 0; i < runeCount; i++ {
		ch, bytesRead := utf8.DecodeRune(data)
		if ch == utf8.RuneError {
			if bytesRead == 0 {
				return "", 0, fmt.Errorf("unexpected end of data in string")
			} else if bytesRead == 1 {
				return "", 0, fmt.Errorf("invalid UTF-8 encoding in string")
			}
			return "", 0, fmt.Errorf("invalid unicode replacement character in rune")
		}
		sb.WriteRune(ch)
		readBytes += bytesRead
		data = data[bytesRead:]
	}
	return sb.String(), readBytes, nil
}

// always reads 8 bytes.
func decBinaryInt(data []byte) (int, int, error) {
	if len(data) < 8 {
		return 0, 0, fmt.Errorf("data does not contain 8 bytes")
	}
	val := binary.BigEndian.Uint64(data[:8])
	return int(int64(val)), 8, nil
}

func decBinary(data []byte, b encoding.BinaryUnmarshaler) (int, error) {
	byteLen, readBytes, err := decBinaryInt(data)
	if err != nil {
		return 0, err
	}
	data = data[readBytes:]

	if len(data) < byteLen {
		return 0, fmt.Errorf("unexpected end of data")
	}
	if err := b.UnmarshalBinary(data[:byteLen]); err != nil {
		return 0, err
	}
	return byteLen + readBytes, nil
}
