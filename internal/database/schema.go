package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/i-reserve/room-reservation/internal/model"
)

// Table definitions use {{AUTO_ID}} for the generated surrogate key and
// {{NOW}} for the creation timestamp default; the dialect fills both in.
var tables = []struct {
	name string
	ddl  string
}{
	{"permissions", `CREATE TABLE IF NOT EXISTS permissions (
	permission_id INT PRIMARY KEY,
	permission_name VARCHAR(15) NOT NULL
)`},
	{"building", `CREATE TABLE IF NOT EXISTS building (
	building_id CHAR(3) PRIMARY KEY,
	building_name VARCHAR(45) NOT NULL,
	time_open TIME NOT NULL,
	time_closed TIME NOT NULL
)`},
	{"room", `CREATE TABLE IF NOT EXISTS room (
	room_id VARCHAR(10) PRIMARY KEY,
	building_id CHAR(3) NOT NULL,
	floor_number SMALLINT NOT NULL,
	max_occupancy INT NOT NULL,
	room_desc TEXT,
	permission_id INT NOT NULL,
	FOREIGN KEY (building_id) REFERENCES building(building_id),
	FOREIGN KEY (permission_id) REFERENCES permissions(permission_id)
)`},
	{"users", `CREATE TABLE IF NOT EXISTS users (
	i_number BIGINT PRIMARY KEY,
	fname VARCHAR(45) NOT NULL,
	lname VARCHAR(45) NOT NULL,
	password VARCHAR(255) NOT NULL,
	email VARCHAR(45) NOT NULL UNIQUE,
	permission_id INT NOT NULL,
	FOREIGN KEY (permission_id) REFERENCES permissions(permission_id)
)`},
	{"reservation", `CREATE TABLE IF NOT EXISTS reservation (
	reserve_id {{AUTO_ID}},
	i_number BIGINT NOT NULL,
	room_id VARCHAR(10) NOT NULL,
	event_name VARCHAR(45) NOT NULL,
	date DATE NOT NULL,
	time_start TIME NOT NULL,
	time_end TIME NOT NULL,
	event_desc TEXT,
	people_count INT NOT NULL,
	confirmed SMALLINT NOT NULL DEFAULT 0,
	FOREIGN KEY (i_number) REFERENCES users(i_number),
	FOREIGN KEY (room_id) REFERENCES room(room_id)
)`},
	{"message", `CREATE TABLE IF NOT EXISTS message (
	message_id {{AUTO_ID}},
	i_number BIGINT NOT NULL,
	return_email VARCHAR(45) NOT NULL,
	message_title VARCHAR(45) NOT NULL,
	message VARCHAR(256) NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT {{NOW}},
	FOREIGN KEY (i_number) REFERENCES users(i_number)
)`},
}

// DDL returns the CREATE TABLE statements in dependency order.
func (d Dialect) DDL() []string {
	autoID := "BIGINT AUTO_INCREMENT PRIMARY KEY"
	if d == Postgres {
		autoID = "BIGSERIAL PRIMARY KEY"
	}
	r := strings.NewReplacer("{{AUTO_ID}}", autoID, "{{NOW}}", "CURRENT_TIMESTAMP")
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		out = append(out, r.Replace(t.ddl))
	}
	return out
}

// Migrate creates any missing tables and seeds the permission levels.  It
// is safe to run on every start.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range db.Dialect.DDL() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create %s: %w", tables[i].name, err)
		}
	}
	seed := db.Dialect.Rebind(db.Dialect.Upsert("permissions", "permission_id", "permission_name"))
	for _, p := range model.Permissions() {
		if _, err := db.ExecContext(ctx, seed, int(p), p.Name()); err != nil {
			return fmt.Errorf("seed permission %d: %w", p, err)
		}
	}
	return nil
}
