// Package bvf writes (and reads back) the BVF binary animation format.
//
// Layout, all integers unsigned little-endian:
//
//	header: frame_rate u8 | frame_count u32 | horizontal_resolution u8 | vertical_resolution u8
//	frame:  vertical_resolution × ( num_vectors u8 | num_vectors × (start u8 | end u8) )
//
// There are no frame markers, no end-of-stream marker and no checksum.
package bvf

import "encoding/binary"

// HeaderSize is the encoded size of Metadata.
const HeaderSize = 7

// Metadata is the global header written once at the start of a stream.
type Metadata struct {
	FrameRate            uint8
	FrameCount           uint32
	HorizontalResolution uint8
	VerticalResolution   uint8
}

// MarshalBinary encodes the header.
func (m Metadata) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderSize)
	b[0] = m.FrameRate
	binary.LittleEndian.PutUint32(b[1:5], m.FrameCount)
	b[5] = m.HorizontalResolution
	b[6] = m.VerticalResolution
	return b, nil
}

// UnmarshalBinary decodes a header produced by MarshalBinary.
func (m *Metadata) UnmarshalBinary(b []byte) error {
	if len(b) != HeaderSize {
		return errShortHeader
	}
	m.FrameRate = b[0]
	m.FrameCount = binary.LittleEndian.Uint32(b[1:5])
	m.HorizontalResolution = b[5]
	m.VerticalResolution = b[6]
	return nil
}
