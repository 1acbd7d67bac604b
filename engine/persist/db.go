// Package persist provides SQLite-based snapshot storage for the
// simulation. A snapshot captures cell static data, road and structure
// state, and the live occupancy arrays; flow fields are derived state and
// are never persisted.
package persist

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/hexforge/rts-core/engine/hexmap"
	"github.com/hexforge/rts-core/engine/sim"
)

// DB wraps a SQLite connection for snapshot storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a snapshot database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		tick INTEGER NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS cells (
		snapshot_id TEXT NOT NULL,
		col INTEGER NOT NULL,
		row INTEGER NOT NULL,
		terrain INTEGER NOT NULL,
		base_cost REAL NOT NULL,
		walkable INTEGER NOT NULL,
		world_x REAL NOT NULL,
		world_y REAL NOT NULL,
		PRIMARY KEY (snapshot_id, col, row)
	);

	CREATE TABLE IF NOT EXISTS roads (
		snapshot_id TEXT NOT NULL,
		col INTEGER NOT NULL,
		row INTEGER NOT NULL,
		under_construction INTEGER NOT NULL,
		hp INTEGER NOT NULL,
		max_hp INTEGER NOT NULL,
		pending INTEGER NOT NULL,
		in_transit INTEGER NOT NULL,
		PRIMARY KEY (snapshot_id, col, row)
	);

	CREATE TABLE IF NOT EXISTS structures (
		snapshot_id TEXT NOT NULL,
		col INTEGER NOT NULL,
		row INTEGER NOT NULL,
		owner INTEGER NOT NULL,
		under_construction INTEGER NOT NULL,
		hp INTEGER NOT NULL,
		max_hp INTEGER NOT NULL,
		pending INTEGER NOT NULL,
		in_transit INTEGER NOT NULL,
		PRIMARY KEY (snapshot_id, col, row)
	);

	CREATE TABLE IF NOT EXISTS unit_slots (
		snapshot_id TEXT NOT NULL,
		col INTEGER NOT NULL,
		row INTEGER NOT NULL,
		slot INTEGER NOT NULL,
		agent_id INTEGER NOT NULL,
		faction INTEGER NOT NULL,
		PRIMARY KEY (snapshot_id, col, row, slot)
	);

	CREATE TABLE IF NOT EXISTS builder_occupants (
		snapshot_id TEXT NOT NULL,
		col INTEGER NOT NULL,
		row INTEGER NOT NULL,
		agent_id INTEGER NOT NULL,
		faction INTEGER NOT NULL,
		PRIMARY KEY (snapshot_id, col, row, agent_id)
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot writes the current world state and returns the snapshot ID.
// Call it from the tick goroutine so the state is quiescent.
func (db *DB) SaveSnapshot(w *sim.World) (string, error) {
	id := uuid.NewString()

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO snapshots (id, tick) VALUES (?, ?)`, id, w.TickCount); err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	var saveErr error
	w.Grid.Cells(func(c *hexmap.Cell) {
		if saveErr != nil {
			return
		}
		saveErr = saveCell(tx, id, c)
	})
	if saveErr != nil {
		return "", saveErr
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func saveCell(tx *sqlx.Tx, id string, c *hexmap.Cell) error {
	_, err := tx.Exec(
		`INSERT INTO cells (snapshot_id, col, row, terrain, base_cost, walkable, world_x, world_y)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, c.Coord.Col, c.Coord.Row, c.Terrain, c.BaseCost, c.Walkable, c.WorldX, c.WorldY)
	if err != nil {
		return fmt.Errorf("insert cell %v: %w", c.Coord, err)
	}

	if r := c.Road(); r != nil {
		_, err := tx.Exec(
			`INSERT INTO roads (snapshot_id, col, row, under_construction, hp, max_hp, pending, in_transit)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, c.Coord.Col, c.Coord.Row, r.UnderConstruction, r.HP, r.MaxHP,
			r.PendingResources, r.InTransitResources)
		if err != nil {
			return fmt.Errorf("insert road %v: %w", c.Coord, err)
		}
	}
	if s := c.Structure(); s != nil {
		_, err := tx.Exec(
			`INSERT INTO structures (snapshot_id, col, row, owner, under_construction, hp, max_hp, pending, in_transit)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, c.Coord.Col, c.Coord.Row, s.Owner, s.UnderConstruction, s.HP, s.MaxHP,
			s.PendingResources, s.InTransitResources)
		if err != nil {
			return fmt.Errorf("insert structure %v: %w", c.Coord, err)
		}
	}
	for slot, entry := range c.Slots() {
		if entry.ID == 0 {
			continue
		}
		_, err := tx.Exec(
			`INSERT INTO unit_slots (snapshot_id, col, row, slot, agent_id, faction)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, c.Coord.Col, c.Coord.Row, slot, entry.ID, entry.Faction)
		if err != nil {
			return fmt.Errorf("insert slot %v/%d: %w", c.Coord, slot, err)
		}
	}
	for agentID, faction := range c.Builders() {
		_, err := tx.Exec(
			`INSERT INTO builder_occupants (snapshot_id, col, row, agent_id, faction)
			 VALUES (?, ?, ?, ?, ?)`,
			id, c.Coord.Col, c.Coord.Row, agentID, faction)
		if err != nil {
			return fmt.Errorf("insert builder %v/%d: %w", c.Coord, agentID, err)
		}
	}
	return nil
}

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	ID        string `db:"id"`
	Tick      uint64 `db:"tick"`
	CreatedAt string `db:"created_at"`
}

// ListSnapshots returns stored snapshots, newest first.
func (db *DB) ListSnapshots() ([]SnapshotInfo, error) {
	var out []SnapshotInfo
	err := db.conn.Select(&out, `SELECT id, tick, created_at FROM snapshots ORDER BY created_at DESC`)
	return out, err
}

// LoadGrid rebuilds a finalized grid from a snapshot, including road,
// structure, and occupancy state. Agents themselves are not restored; the
// occupancy arrays preserve who stood where for inspection and replay
// seeding.
func (db *DB) LoadGrid(snapshotID string, params hexmap.Params) (*hexmap.Grid, uint64, error) {
	var info SnapshotInfo
	if err := db.conn.Get(&info, `SELECT id, tick, created_at FROM snapshots WHERE id = ?`, snapshotID); err != nil {
		return nil, 0, fmt.Errorf("snapshot %s: %w", snapshotID, err)
	}

	type cellRow struct {
		Col      int     `db:"col"`
		Row      int     `db:"row"`
		Terrain  uint8   `db:"terrain"`
		BaseCost float64 `db:"base_cost"`
		Walkable bool    `db:"walkable"`
		WorldX   float64 `db:"world_x"`
		WorldY   float64 `db:"world_y"`
	}
	var cells []cellRow
	if err := db.conn.Select(&cells,
		`SELECT col, row, terrain, base_cost, walkable, world_x, world_y
		 FROM cells WHERE snapshot_id = ?`, snapshotID); err != nil {
		return nil, 0, fmt.Errorf("load cells: %w", err)
	}

	g := hexmap.NewGrid(params)
	for _, row := range cells {
		c := g.AddCell(hexmap.Coord{Col: row.Col, Row: row.Row},
			hexmap.TerrainType(row.Terrain), row.WorldX, row.WorldY)
		c.BaseCost = row.BaseCost
		c.Walkable = row.Walkable
	}
	g.Finalize()

	rows, err := db.conn.Queryx(
		`SELECT col, row, under_construction, hp, max_hp, pending, in_transit
		 FROM roads WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return nil, 0, fmt.Errorf("load roads: %w", err)
	}
	for rows.Next() {
		var col, row, hp, maxHP, pending, inTransit int
		var uc bool
		if err := rows.Scan(&col, &row, &uc, &hp, &maxHP, &pending, &inTransit); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan road: %w", err)
		}
		if c := g.CellAt(hexmap.Coord{Col: col, Row: row}); c != nil {
			c.SetRoad(&hexmap.RoadState{
				UnderConstruction: uc, HP: hp, MaxHP: maxHP,
				PendingResources: pending, InTransitResources: inTransit,
			})
		}
	}
	rows.Close()

	rows, err = db.conn.Queryx(
		`SELECT col, row, owner, under_construction, hp, max_hp, pending, in_transit
		 FROM structures WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return nil, 0, fmt.Errorf("load structures: %w", err)
	}
	for rows.Next() {
		var col, row, owner, hp, maxHP, pending, inTransit int
		var uc bool
		if err := rows.Scan(&col, &row, &owner, &uc, &hp, &maxHP, &pending, &inTransit); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan structure: %w", err)
		}
		if c := g.CellAt(hexmap.Coord{Col: col, Row: row}); c != nil {
			c.SetStructure(&hexmap.Structure{
				Owner: hexmap.Faction(owner), UnderConstruction: uc,
				HP: hp, MaxHP: maxHP,
				PendingResources: pending, InTransitResources: inTransit,
			})
		}
	}
	rows.Close()

	rows, err = db.conn.Queryx(
		`SELECT col, row, slot, agent_id, faction FROM unit_slots WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return nil, 0, fmt.Errorf("load slots: %w", err)
	}
	for rows.Next() {
		var col, row, slot, faction int
		var agentID uint64
		if err := rows.Scan(&col, &row, &slot, &agentID, &faction); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan slot: %w", err)
		}
		if c := g.CellAt(hexmap.Coord{Col: col, Row: row}); c != nil {
			c.RestoreSlot(slot, hexmap.AgentID(agentID), hexmap.Faction(faction))
		}
	}
	rows.Close()

	rows, err = db.conn.Queryx(
		`SELECT col, row, agent_id, faction FROM builder_occupants WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return nil, 0, fmt.Errorf("load builders: %w", err)
	}
	for rows.Next() {
		var col, row, faction int
		var agentID uint64
		if err := rows.Scan(&col, &row, &agentID, &faction); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan builder: %w", err)
		}
		if c := g.CellAt(hexmap.Coord{Col: col, Row: row}); c != nil {
			c.RestoreBuilder(hexmap.AgentID(agentID), hexmap.Faction(faction))
		}
	}
	rows.Close()

	return g, info.Tick, nil
}
