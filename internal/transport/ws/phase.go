package ws

// RoomCapacity: максимум участников в живой комнате.
const RoomCapacity = 2

// Phase комнаты определяется только числом занятых мест.
type Phase uint8

const (
	PhaseEmpty Phase = iota
	PhaseWaiting
	PhaseReady
)

func PhaseOf(occupants int) Phase {
	switch {
	case occupants <= 0:
		return PhaseEmpty
	case occupants < RoomCapacity:
		return PhaseWaiting
	default:
		return PhaseReady
	}
}

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseWaiting:
		return "waiting"
	default:
		return "ready"
	}
}

// CanSeat: место есть, если комната не заполнена или участник с этим id уже сидит
// (тогда его запись заменяется).
func CanSeat(occupants int, alreadySeated bool) bool {
	return alreadySeated || occupants < RoomCapacity
}
