package model

// Building represents a campus building that contains bookable rooms.
// This struct corresponds to a row in the `building` table.
//
// Fields:
//  ID         – exactly three upper-case characters (e.g. "ENG").
//  Name       – display name, at most 45 characters.
//  TimeOpen   – opening time of day.
//  TimeClosed – closing time of day.
type Building struct {
	ID         string // building.building_id
	Name       string // building.building_name
	TimeOpen   Clock  // building.time_open
	TimeClosed Clock  // building.time_closed
}
