package model

// Room represents a bookable room inside a building.  Rooms are
// identified by a short code and carry the permission level required to
// reserve them.  This struct corresponds to a row in the `room` table.
//
// Fields:
//  ID           – room code, at most 10 characters.
//  BuildingID   – building that contains the room.
//  FloorNumber  – non-negative floor number.
//  MaxOccupancy – positive head count limit.
//  Description  – optional free text (empty when NULL).
//  Permission   – highest permission level allowed to book the room.
type Room struct {
	ID           string     // room.room_id
	BuildingID   string     // room.building_id
	FloorNumber  int        // room.floor_number
	MaxOccupancy int        // room.max_occupancy
	Description  string     // room.room_desc (nullable)
	Permission   Permission // room.permission_id
}
