package domain

// RoomCode is the short human-shareable join key of a room.
type RoomCode string

type Room struct {
	Code           RoomCode `json:"code"`
	HostID         UserID   `json:"host_id"`
	ParticipantsID []UserID `json:"participants_id"`
}

func (r *Room) IsHost(id UserID) bool { return r.HostID == id }
