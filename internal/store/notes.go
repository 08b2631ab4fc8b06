package store

import (
	"context"

	"github.com/google/uuid"
)

const createInternalNote = `
INSERT INTO internal_notes (order_id, seq, title, content, created_by)
SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3, $4
FROM internal_notes
WHERE order_id = $1
RETURNING id, order_id, seq, title, content, created_by, created_at
`

// CreateInternalNoteParams appends one audit entry to an order. The sequence
// number is assigned in the insert itself; notes are never updated or removed.
type CreateInternalNoteParams struct {
	OrderID   uuid.UUID
	Title     string
	Content   string
	CreatedBy string
}

func (s *Store) CreateInternalNote(ctx context.Context, arg CreateInternalNoteParams) (InternalNote, error) {
	row := s.db.QueryRow(ctx, createInternalNote, arg.OrderID, arg.Title, arg.Content, arg.CreatedBy)
	var n InternalNote
	err := row.Scan(&n.ID, &n.OrderID, &n.Seq, &n.Title, &n.Content, &n.CreatedBy, &n.CreatedAt)
	return n, err
}

const listInternalNotesByOrder = `
SELECT id, order_id, seq, title, content, created_by, created_at
FROM internal_notes
WHERE order_id = $1
ORDER BY seq
`

func (s *Store) ListInternalNotesByOrder(ctx context.Context, orderID uuid.UUID) ([]InternalNote, error) {
	rows, err := s.db.Query(ctx, listInternalNotesByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []InternalNote
	for rows.Next() {
		var n InternalNote
		if err := rows.Scan(&n.ID, &n.OrderID, &n.Seq, &n.Title, &n.Content,
			&n.CreatedBy, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
