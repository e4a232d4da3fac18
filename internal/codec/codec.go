// Package codec implements the persisted binary layout of platform, entity
// and user-rewards records.
//
// Every record starts with an 8-byte discriminator identifying its kind and a
// 1-byte layout version. Integers are fixed-width little-endian. Strings are
// a u32 length followed by UTF-8 bytes and are bounded per field.
package codec

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"bonding-rewards-go/internal/keys"
)

// LayoutVersion is written after the discriminator of every record.
const LayoutVersion uint8 = 1

const discriminatorLen = 8

// Kind names a record type.
type Kind string

const (
	KindPlatform    Kind = "Platform"
	KindEntity      Kind = "Entity"
	KindUserRewards Kind = "UserRewards"
)

var (
	ErrFieldTooLong          = errors.New("field exceeds maximum length")
	ErrInvalidUTF8           = errors.New("field is not valid UTF-8")
	ErrTruncated             = errors.New("record truncated")
	ErrDiscriminatorMismatch = errors.New("record discriminator mismatch")
	ErrUnsupportedVersion    = errors.New("unsupported record layout version")
	ErrTrailingBytes         = errors.New("unexpected trailing bytes")
)

// Discriminator returns the 8-byte tag of a record kind.
func Discriminator(kind Kind) [discriminatorLen]byte {
	sum := sha256.Sum256([]byte("record:" + string(kind)))
	var d [discriminatorLen]byte
	copy(d[:], sum[:discriminatorLen])
	return d
}

// KindOf reads the discriminator of an encoded record.
func KindOf(data []byte) (Kind, error) {
	if len(data) < discriminatorLen {
		return "", ErrTruncated
	}
	for _, kind := range []Kind{KindPlatform, KindEntity, KindUserRewards} {
		d := Discriminator(kind)
		if string(data[:discriminatorLen]) == string(d[:]) {
			return kind, nil
		}
	}
	return "", ErrDiscriminatorMismatch
}

type writer struct {
	buf []byte
	err error
}

func newWriter(kind Kind) *writer {
	d := Discriminator(kind)
	w := &writer{buf: make([]byte, 0, 256)}
	w.buf = append(w.buf, d[:]...)
	w.buf = append(w.buf, LayoutVersion)
	return w
}

func (w *writer) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) u64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *writer) i64(v int64) {
	w.u64(uint64(v))
}

func (w *writer) time(t time.Time) {
	w.i64(unixOrZero(t))
}

func (w *writer) address(a keys.Address) {
	w.buf = append(w.buf, a[:]...)
}

func (w *writer) str(field, s string, max int) {
	if w.err != nil {
		return
	}
	if len(s) > max {
		w.err = fmt.Errorf("%w: %s is %d bytes, max %d", ErrFieldTooLong, field, len(s), max)
		return
	}
	if !utf8.ValidString(s) {
		w.err = fmt.Errorf("%w: %s", ErrInvalidUTF8, field)
		return
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

type reader struct {
	data []byte
	off  int
	err  error
}

func newReader(kind Kind, data []byte) *reader {
	r := &reader{data: data}
	if len(data) < discriminatorLen+1 {
		r.err = ErrTruncated
		return r
	}
	d := Discriminator(kind)
	if string(data[:discriminatorLen]) != string(d[:]) {
		r.err = fmt.Errorf("%w: expected %s", ErrDiscriminatorMismatch, kind)
		return r
	}
	if v := data[discriminatorLen]; v != LayoutVersion {
		r.err = fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
		return r
	}
	r.off = discriminatorLen + 1
	return r
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.data)-r.off < n {
		r.err = ErrTruncated
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) i64() int64 {
	return int64(r.u64())
}

func (r *reader) time() time.Time {
	return timeOrZero(r.i64())
}

func (r *reader) address() keys.Address {
	var a keys.Address
	if b := r.take(keys.AddressLen); b != nil {
		copy(a[:], b)
	}
	return a
}

func (r *reader) str(field string, max int) string {
	lb := r.take(4)
	if lb == nil {
		return ""
	}
	n := binary.LittleEndian.Uint32(lb)
	if int64(n) > int64(max) {
		r.err = fmt.Errorf("%w: %s is %d bytes, max %d", ErrFieldTooLong, field, n, max)
		return ""
	}
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.err = fmt.Errorf("%w: %s", ErrInvalidUTF8, field)
		return ""
	}
	return string(b)
}

func (r *reader) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.data) {
		return fmt.Errorf("%w: %d", ErrTrailingBytes, len(r.data)-r.off)
	}
	return nil
}

// Times are stored as unix seconds; zero means unset.
func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
