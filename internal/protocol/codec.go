package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers are fixed per message type; they are part of the wire
// contract just like the message type codes in messages.go.
const (
	fieldConnectPlayerID   protowire.Number = 1
	fieldConnectPlayerName protowire.Number = 2

	fieldFrameDataPlayerID    protowire.Number = 1
	fieldFrameDataDirection   protowire.Number = 2
	fieldFrameDataActions     protowire.Number = 3
	fieldFrameDataFrameNumber protowire.Number = 4

	fieldServerFrameNumber    protowire.Number = 1
	fieldServerFrameTimestamp protowire.Number = 2
	fieldServerFrameDatas     protowire.Number = 3

	fieldFrameLossFrom protowire.Number = 1
	fieldFrameLossTo   protowire.Number = 2

	fieldGameStartRoomID     protowire.Number = 1
	fieldGameStartSeed       protowire.Number = 2
	fieldGameStartPlayerIDs  protowire.Number = 3
)

// EncodeConnect serializes a Connect message.
func EncodeConnect(m Connect) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldConnectPlayerID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.PlayerID))
	b = protowire.AppendTag(b, fieldConnectPlayerName, protowire.BytesType)
	b = protowire.AppendString(b, m.PlayerName)
	return b
}

// DecodeConnect parses a Connect message.
func DecodeConnect(data []byte) (Connect, error) {
	var m Connect
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return m, fmt.Errorf("protocol: connect: bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case fieldConnectPlayerID:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: connect: bad player_id: %w", protowire.ParseError(n))
			}
			m.PlayerID = uint32(v)
			data = data[n:]
		case fieldConnectPlayerName:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: connect: bad player_name: %w", protowire.ParseError(n))
			}
			m.PlayerName = string(v)
			data = data[n:]
		default:
			n := skipField(data, typ)
			if n < 0 {
				return m, fmt.Errorf("protocol: connect: bad field %d", num)
			}
			data = data[n:]
		}
	}
	return m, nil
}

// EncodeFrameData serializes a FrameData message.
func EncodeFrameData(m FrameData) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldFrameDataPlayerID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.PlayerID))
	b = protowire.AppendTag(b, fieldFrameDataDirection, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Direction))
	b = protowire.AppendTag(b, fieldFrameDataActions, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Actions))
	b = protowire.AppendTag(b, fieldFrameDataFrameNumber, protowire.VarintType)
	b = protowire.AppendVarint(b, m.FrameNumber)
	return b
}

// DecodeFrameData parses a FrameData message.
func DecodeFrameData(data []byte) (FrameData, error) {
	var m FrameData
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return m, fmt.Errorf("protocol: frame_data: bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch num {
		case fieldFrameDataPlayerID:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: frame_data: bad player_id")
			}
			m.PlayerID = uint32(v)
			data = data[n:]
		case fieldFrameDataDirection:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: frame_data: bad direction")
			}
			m.Direction = InputDirection(v)
			data = data[n:]
		case fieldFrameDataActions:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: frame_data: bad actions")
			}
			m.Actions = uint32(v)
			data = data[n:]
		case fieldFrameDataFrameNumber:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: frame_data: bad frame_number")
			}
			m.FrameNumber = v
			data = data[n:]
		default:
			n := skipField(data, typ)
			if n < 0 {
				return m, fmt.Errorf("protocol: frame_data: bad field %d", num)
			}
			data = data[n:]
		}
	}
	return m, nil
}

// EncodeServerFrame serializes a ServerFrame message.
func EncodeServerFrame(m ServerFrame) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldServerFrameNumber, protowire.VarintType)
	b = protowire.AppendVarint(b, m.FrameNumber)
	b = protowire.AppendTag(b, fieldServerFrameTimestamp, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.Timestamp))
	for _, fd := range m.FrameDatas {
		b = protowire.AppendTag(b, fieldServerFrameDatas, protowire.BytesType)
		b = protowire.AppendBytes(b, EncodeFrameData(fd))
	}
	return b
}

// DecodeServerFrame parses a ServerFrame message.
func DecodeServerFrame(data []byte) (ServerFrame, error) {
	var m ServerFrame
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return m, fmt.Errorf("protocol: server_frame: bad tag")
		}
		data = data[n:]
		switch num {
		case fieldServerFrameNumber:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: server_frame: bad frame_number")
			}
			m.FrameNumber = v
			data = data[n:]
		case fieldServerFrameTimestamp:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: server_frame: bad timestamp")
			}
			m.Timestamp = protowire.DecodeZigZag(v)
			data = data[n:]
		case fieldServerFrameDatas:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: server_frame: bad frame_datas entry")
			}
			fd, err := DecodeFrameData(v)
			if err != nil {
				return m, err
			}
			m.FrameDatas = append(m.FrameDatas, fd)
			data = data[n:]
		default:
			n := skipField(data, typ)
			if n < 0 {
				return m, fmt.Errorf("protocol: server_frame: bad field %d", num)
			}
			data = data[n:]
		}
	}
	return m, nil
}

// EncodeDisconnect and EncodeHeartbeat are empty messages; their codecs
// exist for symmetry with the dispatch table.
func EncodeDisconnect(Disconnect) []byte { return nil }
func DecodeDisconnect([]byte) (Disconnect, error) { return Disconnect{}, nil }

func EncodeHeartbeat(Heartbeat) []byte { return nil }
func DecodeHeartbeat([]byte) (Heartbeat, error) { return Heartbeat{}, nil }

// EncodeFrameLoss serializes a FrameLoss message.
func EncodeFrameLoss(m FrameLoss) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldFrameLossFrom, protowire.VarintType)
	b = protowire.AppendVarint(b, m.FromFrame)
	b = protowire.AppendTag(b, fieldFrameLossTo, protowire.VarintType)
	b = protowire.AppendVarint(b, m.ToFrame)
	return b
}

// DecodeFrameLoss parses a FrameLoss message.
func DecodeFrameLoss(data []byte) (FrameLoss, error) {
	var m FrameLoss
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return m, fmt.Errorf("protocol: frame_loss: bad tag")
		}
		data = data[n:]
		switch num {
		case fieldFrameLossFrom:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: frame_loss: bad from_frame")
			}
			m.FromFrame = v
			data = data[n:]
		case fieldFrameLossTo:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: frame_loss: bad to_frame")
			}
			m.ToFrame = v
			data = data[n:]
		default:
			n := skipField(data, typ)
			if n < 0 {
				return m, fmt.Errorf("protocol: frame_loss: bad field %d", num)
			}
			data = data[n:]
		}
	}
	return m, nil
}

// EncodeGameStart serializes a GameStart message.
func EncodeGameStart(m GameStart) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldGameStartRoomID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.RoomID))
	b = protowire.AppendTag(b, fieldGameStartSeed, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(m.RandomSeed))
	for _, pid := range m.PlayerIDs {
		b = protowire.AppendTag(b, fieldGameStartPlayerIDs, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(pid))
	}
	return b
}

// DecodeGameStart parses a GameStart message.
func DecodeGameStart(data []byte) (GameStart, error) {
	var m GameStart
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return m, fmt.Errorf("protocol: game_start: bad tag")
		}
		data = data[n:]
		switch num {
		case fieldGameStartRoomID:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: game_start: bad room_id")
			}
			m.RoomID = uint32(v)
			data = data[n:]
		case fieldGameStartSeed:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: game_start: bad random_seed")
			}
			m.RandomSeed = protowire.DecodeZigZag(v)
			data = data[n:]
		case fieldGameStartPlayerIDs:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("protocol: game_start: bad player_id entry")
			}
			m.PlayerIDs = append(m.PlayerIDs, uint32(v))
			data = data[n:]
		default:
			n := skipField(data, typ)
			if n < 0 {
				return m, fmt.Errorf("protocol: game_start: bad field %d", num)
			}
			data = data[n:]
		}
	}
	return m, nil
}

// skipField consumes and discards one field's value of the given wire
// type, for forward-compatibility with unknown fields.
func skipField(data []byte, typ protowire.Type) int {
	return protowire.ConsumeFieldValue(0, typ, data)
}
