package typeutil

import (
	"strconv"

	"github.com/docker/go-units"
)

// ByteSize is a retype uint64 for TOML and JSON.
type ByteSize uint64

// ParseByteSize parses a human readable size, like 64MB or 1GiB
func ParseByteSize(s string) (ByteSize, error) {
	v, err := units.RAMInBytes(s)
	if err != nil {
		return 0, err
	}
	return ByteSize(v), nil
}

func (b ByteSize) String() string {
	return units.BytesSize(float64(b))
}

// MarshalJSON returns the size as a JSON string.
func (b ByteSize) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(b.String())), nil
}

// UnmarshalJSON parses a JSON string into the byte size.
func (b *ByteSize) UnmarshalJSON(text []byte) error {
	s, err := strconv.Unquote(string(text))
	if err != nil {
		return err
	}
	return b.UnmarshalText([]byte(s))
}

// UnmarshalText parses a Toml string into the byte size.
func (b *ByteSize) UnmarshalText(text []byte) error {
	v, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
