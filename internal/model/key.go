package model

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// RecordKey identifies a sample by the tuple (hotel, business date, source file).
// Local snapshots have no stored row identifier, so this is the identity used
// there; remote stores use it for deterministic IDs when upserting.
type RecordKey struct {
	HotelName  string    `json:"hotelName"`
	Date       time.Time `json:"date"`
	SourceFile string    `json:"sourceFile"`
}

// Hash returns a hex BLAKE2b-128 digest of the key. Every field is length
// prefixed so that no choice of hotel or file name can collide with another.
func (k RecordKey) Hash() string {
	h, _ := blake2b.New(16, nil)
	writeField(h, []byte(k.HotelName))
	writeField(h, []byte(Date(k.Date).Format("2006-01-02")))
	writeField(h, []byte(k.SourceFile))
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(w interface{ Write([]byte) (int, error) }, b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	_, _ = w.Write(n[:])
	_, _ = w.Write(b)
}
