package cityroads

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/hupe1980/cityroads/eliasfano"
	"github.com/hupe1980/cityroads/internal/seekbuf"
	"github.com/hupe1980/cityroads/section"
)

// SortIDs sorts ids in place and fails with ErrDuplicateFeatureID if any id
// occurs twice.
func SortIDs(ids []uint64) error {
	slices.Sort(ids)
	if err := eliasfano.CheckStrictlyIncreasing(ids); err != nil {
		var dup *eliasfano.DuplicateError
		if errors.As(err, &dup) {
			return fmt.Errorf("%w: id %d at position %d", ErrDuplicateFeatureID, dup.Value, dup.Index)
		}
		return err
	}
	return nil
}

// EncodeSection encodes strictly increasing ids as a complete city_roads
// section: header followed by the Elias-Fano payload. The universe is the
// largest id plus one.
func EncodeSection(ids []uint64) ([]byte, section.Header, error) {
	seq, err := eliasfano.Encode(ids)
	if err != nil {
		return nil, section.Header{}, err
	}

	buf := seekbuf.New(section.HeaderSize + seq.EncodedSize())
	hdr, err := section.Write(buf, section.Header{Version: section.Version}, func(w io.Writer) error {
		_, err := seq.WriteTo(w)
		return err
	})
	if err != nil {
		return nil, hdr, err
	}
	return buf.Bytes(), hdr, nil
}
