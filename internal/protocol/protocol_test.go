package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0x01, 0x02, 0x03}
	if err := WriteFrame(&buf, TypeHeartbeat, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	msgType, got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if msgType != TypeHeartbeat {
		t.Fatalf("expected type %d, got %d", TypeHeartbeat, msgType)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected payload %v, got %v", payload, got)
	}
}

func TestWriteReadFrameEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, TypeDisconnect, nil); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	msgType, payload, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if msgType != TypeDisconnect {
		t.Fatalf("expected type %d, got %d", TypeDisconnect, msgType)
	}
	if len(payload) != 0 {
		t.Fatalf("expected empty payload, got %v", payload)
	}
}

func TestWriteFrameRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	payload := make([]byte, MaxPayloadSize+1)
	if err := WriteFrame(&buf, TypeFrameData, payload); err == nil {
		t.Fatalf("expected error for oversized payload")
	}
}

func TestReadFrameRejectsOversizedAdvertisedLength(t *testing.T) {
	var buf bytes.Buffer
	header := []byte{0, 0, 0, 0}
	length := uint32(MaxPayloadSize + 2)
	header[0] = byte(length >> 24)
	header[1] = byte(length >> 16)
	header[2] = byte(length >> 8)
	header[3] = byte(length)
	buf.Write(header)

	_, _, err := ReadFrame(&buf)
	if !errors.Is(err, ErrOversizedFrame) {
		t.Fatalf("expected ErrOversizedFrame, got %v", err)
	}
}

func TestConnectCodecRoundTrip(t *testing.T) {
	in := Connect{PlayerID: 7, PlayerName: "rook"}
	out, err := DecodeConnect(EncodeConnect(in))
	if err != nil {
		t.Fatalf("DecodeConnect: %v", err)
	}
	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestFrameDataCodecRoundTrip(t *testing.T) {
	for _, dir := range []InputDirection{DirectionNone, DirectionUp, DirectionDown, DirectionLeft, DirectionRight} {
		in := FrameData{PlayerID: 3, Direction: dir, Actions: 3, FrameNumber: 42}
		out, err := DecodeFrameData(EncodeFrameData(in))
		if err != nil {
			t.Fatalf("DecodeFrameData: %v", err)
		}
		if out != in {
			t.Fatalf("expected %+v, got %+v", in, out)
		}
	}
}

func TestServerFrameCodecRoundTrip(t *testing.T) {
	in := ServerFrame{
		FrameNumber: 10,
		Timestamp:   -123,
		FrameDatas: []FrameData{
			{PlayerID: 1, Direction: DirectionUp, Actions: 1, FrameNumber: 10},
			{PlayerID: 2, Direction: DirectionLeft, Actions: 2, FrameNumber: 10},
		},
	}
	out, err := DecodeServerFrame(EncodeServerFrame(in))
	if err != nil {
		t.Fatalf("DecodeServerFrame: %v", err)
	}
	if out.FrameNumber != in.FrameNumber || out.Timestamp != in.Timestamp {
		t.Fatalf("header mismatch: %+v vs %+v", out, in)
	}
	if len(out.FrameDatas) != len(in.FrameDatas) {
		t.Fatalf("expected %d frame datas, got %d", len(in.FrameDatas), len(out.FrameDatas))
	}
	for i := range in.FrameDatas {
		if out.FrameDatas[i] != in.FrameDatas[i] {
			t.Fatalf("frame data %d mismatch: %+v vs %+v", i, out.FrameDatas[i], in.FrameDatas[i])
		}
	}
}

func TestFrameLossCodecRoundTrip(t *testing.T) {
	in := FrameLoss{FromFrame: 5, ToFrame: 9}
	out, err := DecodeFrameLoss(EncodeFrameLoss(in))
	if err != nil {
		t.Fatalf("DecodeFrameLoss: %v", err)
	}
	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestGameStartCodecRoundTrip(t *testing.T) {
	in := GameStart{RoomID: 4, RandomSeed: -99, PlayerIDs: []uint32{1, 2, 3}}
	out, err := DecodeGameStart(EncodeGameStart(in))
	if err != nil {
		t.Fatalf("DecodeGameStart: %v", err)
	}
	if out.RoomID != in.RoomID || out.RandomSeed != in.RandomSeed {
		t.Fatalf("header mismatch: %+v vs %+v", out, in)
	}
	if len(out.PlayerIDs) != len(in.PlayerIDs) {
		t.Fatalf("expected %d player ids, got %d", len(in.PlayerIDs), len(out.PlayerIDs))
	}
	for i := range in.PlayerIDs {
		if out.PlayerIDs[i] != in.PlayerIDs[i] {
			t.Fatalf("player id %d mismatch: %d vs %d", i, out.PlayerIDs[i], in.PlayerIDs[i])
		}
	}
}

func TestDisconnectAndHeartbeatCodecsAreEmpty(t *testing.T) {
	if len(EncodeDisconnect(Disconnect{})) != 0 {
		t.Fatalf("expected empty Disconnect payload")
	}
	if len(EncodeHeartbeat(Heartbeat{})) != 0 {
		t.Fatalf("expected empty Heartbeat payload")
	}
	if _, err := DecodeDisconnect(nil); err != nil {
		t.Fatalf("DecodeDisconnect: %v", err)
	}
	if _, err := DecodeHeartbeat(nil); err != nil {
		t.Fatalf("DecodeHeartbeat: %v", err)
	}
}
