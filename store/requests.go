package store

import "time"

// Request journal statuses.
const (
	RequestDispatched = "dispatched"
	RequestRejected   = "rejected"
)

// LiftRequest is one journal row. The journal is history only; the fleet
// never reads it back.
type LiftRequest struct {
	ID        int64     `json:"id"`
	RequestID string    `json:"request_id"`
	Source    string    `json:"source"`
	Floor     int       `json:"floor"`
	Direction string    `json:"direction"`
	LiftID    string    `json:"lift_id"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const requestSelectCols = `id, request_id, source, floor, direction, lift_id, status, reason, created_at`

func (db *DB) RecordRequest(r *LiftRequest) error {
	res, err := db.Exec(db.Q(`INSERT INTO lift_requests (request_id, source, floor, direction, lift_id, status, reason) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		r.RequestID, r.Source, r.Floor, r.Direction, r.LiftID, r.Status, r.Reason)
	if err != nil {
		return err
	}
	if db.Driver() == "sqlite" {
		r.ID, _ = res.LastInsertId()
	}
	return nil
}

func (db *DB) GetRequest(requestID string) (*LiftRequest, error) {
	row := db.QueryRow(db.Q(`SELECT `+requestSelectCols+` FROM lift_requests WHERE request_id=?`), requestID)
	return scanRequest(row)
}

// ListRequests returns the most recent journal rows, newest first.
func (db *DB) ListRequests(limit int) ([]*LiftRequest, error) {
	rows, err := db.Query(db.Q(`SELECT `+requestSelectCols+` FROM lift_requests ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*LiftRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRequestsByLift counts dispatched requests per lift.
func (db *DB) CountRequestsByLift() (map[string]int, error) {
	rows, err := db.Query(db.Q(`SELECT lift_id, COUNT(*) FROM lift_requests WHERE status=? GROUP BY lift_id`), RequestDispatched)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(s scanner) (*LiftRequest, error) {
	var r LiftRequest
	var createdAt any
	if err := s.Scan(&r.ID, &r.RequestID, &r.Source, &r.Floor, &r.Direction, &r.LiftID, &r.Status, &r.Reason, &createdAt); err != nil {
		return nil, err
	}
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}
