// Package protocol implements the wire framing and message codecs for the
// client<->room-server lockstep link: length-prefixed frames carrying
// hand-encoded protobuf-wire-format payloads, transported over KCP (or TCP
// as an equivalent fallback).
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPayloadSize bounds a single frame's payload; anything larger is
// dropped rather than buffered, since a well-behaved peer never sends a
// FrameData/ServerFrame payload anywhere near this size.
const MaxPayloadSize = 1 << 20 // 1 MiB

// frameHeaderSize is the size of the on-wire length prefix (u32be, covers
// type+payload); the single type byte follows it.
const frameHeaderSize = 4

// WriteFrame writes one length-prefixed, typed message: length:u32be =
// 1+len(payload), type:u8, payload.
func WriteFrame(w io.Writer, msgType byte, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("protocol: payload %d exceeds max %d", len(payload), MaxPayloadSize)
	}
	length := uint32(1 + len(payload))
	header := make([]byte, frameHeaderSize+1)
	binary.BigEndian.PutUint32(header[:frameHeaderSize], length)
	header[frameHeaderSize] = msgType

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("protocol: write header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("protocol: write payload: %w", err)
		}
	}
	return nil
}

// ErrOversizedFrame is returned by ReadFrame when a peer advertises a
// length beyond MaxPayloadSize; the caller should drop the connection
// rather than attempt to resynchronize the stream.
var ErrOversizedFrame = fmt.Errorf("protocol: frame exceeds max payload size %d", MaxPayloadSize)

// ReadFrame reads one length-prefixed, typed message.
func ReadFrame(r io.Reader) (msgType byte, payload []byte, err error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, fmt.Errorf("protocol: read header: %w", err)
	}
	length := binary.BigEndian.Uint32(header)
	if length == 0 {
		return 0, nil, fmt.Errorf("protocol: zero-length frame (missing type byte)")
	}
	if length-1 > MaxPayloadSize {
		// Drain nothing: the caller owns connection lifecycle and should
		// close it, since the stream can no longer be trusted to resync.
		return 0, nil, ErrOversizedFrame
	}

	typeBuf := make([]byte, 1)
	if _, err := io.ReadFull(r, typeBuf); err != nil {
		return 0, nil, fmt.Errorf("protocol: read type: %w", err)
	}
	msgType = typeBuf[0]

	payloadLen := length - 1
	if payloadLen == 0 {
		return msgType, nil, nil
	}
	payload = make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("protocol: read payload: %w", err)
	}
	return msgType, payload, nil
}
