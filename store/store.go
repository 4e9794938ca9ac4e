// Package store persists Airspace/Border/Vertex records to an on-disk
// SQLite database and provides indexed lookup for query and KML
// generation (spec §4.3). SQLite is named explicitly by the spec as
// the persistence format; the package layout (a dedicated package
// wrapping typed row structs over database/sql) is grounded on the
// internal/storage/sqlite shape seen in the retrieved pack's ATC
// transcription tools.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/skyvolume/airspace"
)

const schema = `
CREATE TABLE IF NOT EXISTS airspaces (
	id                INTEGER PRIMARY KEY,
	code_id           TEXT NOT NULL,
	code_type         TEXT NOT NULL,
	name              TEXT,
	airspace_class    TEXT,
	min_altitude_ft   REAL,
	max_altitude_ft   REAL,
	min_altitude_unit INTEGER,
	max_altitude_unit INTEGER,
	operating_hours   TEXT,
	remarks           TEXT,
	created_at        TIMESTAMP,
	updated_at        TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_airspaces_code_id ON airspaces(code_id);
CREATE INDEX IF NOT EXISTS idx_airspaces_name ON airspaces(name);

CREATE TABLE IF NOT EXISTS borders (
	id          INTEGER PRIMARY KEY,
	airspace_id INTEGER NOT NULL REFERENCES airspaces(id),
	ordinal     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_borders_airspace_id ON borders(airspace_id);

CREATE TABLE IF NOT EXISTS vertices (
	id        INTEGER PRIMARY KEY,
	border_id INTEGER NOT NULL REFERENCES borders(id),
	ordinal   INTEGER NOT NULL,
	lat       REAL NOT NULL,
	lon       REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vertices_border_ordinal ON vertices(border_id, ordinal);
`

// Store is a single-writer/many-reader handle onto the SQLite airspace
// database (§4.3, §5). database/sql's own connection pool provides the
// concurrent-reader guarantee; bulk_insert is the only write path and
// runs inside a single transaction.
type Store struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at path and ensures the
// logical schema of §4.3 exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, airspace.NewError(airspace.DatasetMissing, "open sqlite database "+path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, airspace.NewError(airspace.Internal, "create schema", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// BulkInsert transactionally writes records; a later record with the
// same code_id replaces an earlier one (§4.3).
func (s *Store) BulkInsert(records []airspace.Airspace) error {
	tx, err := s.db.Begin()
	if err != nil {
		return airspace.NewError(airspace.Internal, "begin transaction", err)
	}
	defer tx.Rollback()

	upsertAse, err := tx.Prepare(`
		INSERT INTO airspaces
			(code_id, code_type, name, airspace_class, min_altitude_ft, max_altitude_ft,
			 min_altitude_unit, max_altitude_unit, operating_hours, remarks, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP,CURRENT_TIMESTAMP)
		ON CONFLICT(code_id) DO UPDATE SET
			code_type=excluded.code_type, name=excluded.name, airspace_class=excluded.airspace_class,
			min_altitude_ft=excluded.min_altitude_ft, max_altitude_ft=excluded.max_altitude_ft,
			min_altitude_unit=excluded.min_altitude_unit, max_altitude_unit=excluded.max_altitude_unit,
			operating_hours=excluded.operating_hours, remarks=excluded.remarks,
			updated_at=CURRENT_TIMESTAMP
		RETURNING id`)
	if err != nil {
		return airspace.NewError(airspace.Internal, "prepare upsert", err)
	}
	defer upsertAse.Close()

	deleteBorders, err := tx.Prepare(`DELETE FROM vertices WHERE border_id IN (SELECT id FROM borders WHERE airspace_id=?)`)
	if err != nil {
		return airspace.NewError(airspace.Internal, "prepare border cleanup", err)
	}
	defer deleteBorders.Close()
	deleteBorders2, err := tx.Prepare(`DELETE FROM borders WHERE airspace_id=?`)
	if err != nil {
		return airspace.NewError(airspace.Internal, "prepare border cleanup", err)
	}
	defer deleteBorders2.Close()

	insertBorder, err := tx.Prepare(`INSERT INTO borders (airspace_id, ordinal) VALUES (?,?) RETURNING id`)
	if err != nil {
		return airspace.NewError(airspace.Internal, "prepare border insert", err)
	}
	defer insertBorder.Close()

	insertVertex, err := tx.Prepare(`INSERT INTO vertices (border_id, ordinal, lat, lon) VALUES (?,?,?,?)`)
	if err != nil {
		return airspace.NewError(airspace.Internal, "prepare vertex insert", err)
	}
	defer insertVertex.Close()

	for _, a := range records {
		if err := a.Validate(); err != nil {
			return err
		}
		var id int64
		row := upsertAse.QueryRow(a.Code, string(a.Type), a.Name, a.Class,
			a.MinAltitude, a.MaxAltitude, int(a.MinAltitudeUnit), int(a.MaxAltitudeUnit),
			a.OperatingHours, a.Remarks)
		if err := row.Scan(&id); err != nil {
			return airspace.NewError(airspace.Internal, "upsert airspace "+a.Code, err)
		}

		if _, err := deleteBorders.Exec(id); err != nil {
			return airspace.NewError(airspace.Internal, "clear old vertices for "+a.Code, err)
		}
		if _, err := deleteBorders2.Exec(id); err != nil {
			return airspace.NewError(airspace.Internal, "clear old borders for "+a.Code, err)
		}

		for _, b := range a.Borders {
			var borderID int64
			if err := insertBorder.QueryRow(id, b.Ordinal).Scan(&borderID); err != nil {
				return airspace.NewError(airspace.Internal, "insert border", err)
			}
			for _, v := range b.Vertices {
				if _, err := insertVertex.Exec(borderID, v.Ordinal, v.Lat, v.Lon); err != nil {
					return airspace.NewError(airspace.Internal, "insert vertex", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return airspace.NewError(airspace.Internal, "commit", err)
	}
	return nil
}

// SearchByKeyword substring-matches keyword against name or code_id,
// ordered by (code_type, code_id) (§4.3).
func (s *Store) SearchByKeyword(keyword string, caseSensitive bool, limit int) ([]airspace.Airspace, error) {
	nameCol, codeCol, pattern := "name", "code_id", "%"+keyword+"%"
	if !caseSensitive {
		nameCol, codeCol = "UPPER(name)", "UPPER(code_id)"
		pattern = strings.ToUpper(pattern)
	}
	sqlStr := fmt.Sprintf(`SELECT id, code_id, code_type, name, airspace_class,
		min_altitude_ft, max_altitude_ft, min_altitude_unit, max_altitude_unit, operating_hours, remarks
		FROM airspaces WHERE %s LIKE ? OR %s LIKE ? ORDER BY code_type, code_id LIMIT ?`, nameCol, codeCol)
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(sqlStr, pattern, pattern, limit)
	if err != nil {
		return nil, airspace.NewError(airspace.Internal, "search_by_keyword", err)
	}
	defer rows.Close()
	return scanAirspaces(rows)
}

// Find runs a Query's filters/order/limit against the airspaces table
// (§4.3), for ad hoc lookups that don't fit GetByID/GetByCode/
// SearchByKeyword's fixed shapes.
func (s *Store) Find(q *Query) ([]airspace.Airspace, error) {
	where, args, orderLimit := q.SQL()
	sqlStr := `SELECT id, code_id, code_type, name, airspace_class,
		min_altitude_ft, max_altitude_ft, min_altitude_unit, max_altitude_unit, operating_hours, remarks
		FROM airspaces`
	if where != "" {
		sqlStr += " WHERE " + where
	}
	sqlStr += orderLimit

	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, airspace.NewError(airspace.Internal, "find: "+q.String(), err)
	}
	defer rows.Close()
	return scanAirspaces(rows)
}

func scanAirspaces(rows *sql.Rows) ([]airspace.Airspace, error) {
	var out []airspace.Airspace
	for rows.Next() {
		var a airspace.Airspace
		var typ string
		var minUnit, maxUnit int
		if err := rows.Scan(&a.ID, &a.Code, &typ, &a.Name, &a.Class,
			&a.MinAltitude, &a.MaxAltitude, &minUnit, &maxUnit, &a.OperatingHours, &a.Remarks); err != nil {
			return nil, airspace.NewError(airspace.Internal, "scan airspace row", err)
		}
		a.Type = airspace.AirspaceType(typ)
		a.MinAltitudeUnit = airspace.AltitudeUnit(minUnit)
		a.MaxAltitudeUnit = airspace.AltitudeUnit(maxUnit)
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByID returns the airspace with the given id, or nil if not found.
func (s *Store) GetByID(id int64) (*airspace.Airspace, error) {
	return s.getOne("id = ?", id)
}

// GetByCode returns the airspace with the given code_id, or nil if not found.
func (s *Store) GetByCode(code string) (*airspace.Airspace, error) {
	return s.getOne("code_id = ?", code)
}

func (s *Store) getOne(where string, arg interface{}) (*airspace.Airspace, error) {
	rows, err := s.db.Query(`SELECT id, code_id, code_type, name, airspace_class,
		min_altitude_ft, max_altitude_ft, min_altitude_unit, max_altitude_unit, operating_hours, remarks
		FROM airspaces WHERE `+where, arg)
	if err != nil {
		return nil, airspace.NewError(airspace.Internal, "get airspace", err)
	}
	defer rows.Close()
	found, err := scanAirspaces(rows)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	a := found[0]
	if err := s.loadGeometry(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) loadGeometry(a *airspace.Airspace) error {
	rows, err := s.db.Query(`SELECT id, ordinal FROM borders WHERE airspace_id=? ORDER BY ordinal`, a.ID)
	if err != nil {
		return airspace.NewError(airspace.Internal, "load borders", err)
	}
	defer rows.Close()

	type borderRow struct {
		id      int64
		ordinal int
	}
	var borders []borderRow
	for rows.Next() {
		var b borderRow
		if err := rows.Scan(&b.id, &b.ordinal); err != nil {
			return airspace.NewError(airspace.Internal, "scan border", err)
		}
		borders = append(borders, b)
	}

	for _, b := range borders {
		border := airspace.Border{ID: b.id, AirspaceID: a.ID, Ordinal: b.ordinal}
		vrows, err := s.db.Query(`SELECT id, ordinal, lat, lon FROM vertices WHERE border_id=? ORDER BY ordinal`, b.id)
		if err != nil {
			return airspace.NewError(airspace.Internal, "load vertices", err)
		}
		for vrows.Next() {
			var v airspace.Vertex
			if err := vrows.Scan(&v.ID, &v.Ordinal, &v.Lat, &v.Lon); err != nil {
				vrows.Close()
				return airspace.NewError(airspace.Internal, "scan vertex", err)
			}
			v.BorderID = b.id
			border.Vertices = append(border.Vertices, v)
		}
		vrows.Close()
		a.Borders = append(a.Borders, border)
	}
	return nil
}

// IterAllWithGeometry calls fn once per airspace that has at least one
// border, in id order, skipping airspaces with no geometry (§4.3). It
// is the feed for building the spatial index.
func (s *Store) IterAllWithGeometry(fn func(airspace.Airspace) error) error {
	rows, err := s.db.Query(`SELECT DISTINCT a.id FROM airspaces a JOIN borders b ON b.airspace_id=a.id ORDER BY a.id`)
	if err != nil {
		return airspace.NewError(airspace.Internal, "iter_all_with_geometry", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return airspace.NewError(airspace.Internal, "scan id", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	for _, id := range ids {
		a, err := s.GetByID(id)
		if err != nil {
			return err
		}
		if a == nil || len(a.Borders) == 0 {
			continue
		}
		if err := fn(*a); err != nil {
			return err
		}
	}
	return nil
}

// Statistics summarizes the store's contents (§4.3).
type Statistics struct {
	CountByType          map[airspace.AirspaceType]int
	Total                int
	GeometryCoveragePct  float64
}

// GetStatistics returns per-type counts and the fraction of airspaces
// that have at least one border.
func (s *Store) GetStatistics() (*Statistics, error) {
	stats := &Statistics{CountByType: map[airspace.AirspaceType]int{}}

	rows, err := s.db.Query(`SELECT code_type, COUNT(*) FROM airspaces GROUP BY code_type`)
	if err != nil {
		return nil, airspace.NewError(airspace.Internal, "get_statistics", err)
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, airspace.NewError(airspace.Internal, "scan statistic", err)
		}
		stats.CountByType[airspace.AirspaceType(typ)] = n
		stats.Total += n
	}

	var withGeometry int
	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT airspace_id) FROM borders`).Scan(&withGeometry); err != nil {
		return nil, airspace.NewError(airspace.Internal, "count geometry coverage", err)
	}
	if stats.Total > 0 {
		stats.GeometryCoveragePct = 100.0 * float64(withGeometry) / float64(stats.Total)
	}
	return stats, nil
}
