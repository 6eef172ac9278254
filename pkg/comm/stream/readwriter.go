// Package stream frames packets on a byte stream, used for recording
// telemetry to files and replaying it.
package stream

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxPacketSize bounds the length prefix accepted by ReadPacket.
const MaxPacketSize = 1 << 20

// ErrPacketTooLarge indicates a corrupted or foreign stream.
var ErrPacketTooLarge = errors.New("packet too large")

// ReadWriter implements PacketReadWriter.
// Each packet is prefixed by 4-byte (little-endian) indicate the length.
type ReadWriter struct {
	io.ReadWriter
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{s}
}

// ReadPacket implements PacketReader.
// A stream ending on a packet boundary returns io.EOF; a truncated
// packet returns io.ErrUnexpectedEOF.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var size uint32
	if err := binary.Read(p, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxPacketSize {
		return nil, ErrPacketTooLarge
	}
	pkt := make([]byte, size)
	if _, err := io.ReadFull(p, pkt); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return pkt, nil
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	if len(pkt) > MaxPacketSize {
		return ErrPacketTooLarge
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(pkt)))
	if _, err := p.Write(hdr[:]); err != nil {
		return err
	}
	_, err := p.Write(pkt)
	return err
}
