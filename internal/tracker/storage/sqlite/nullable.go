package sqlite

import "database/sql"

// nullString and nullInt adapt database/sql's null wrappers to the
// pointer-based optional fields the NDJSON and tracker.Issue shapes use.
type nullString sql.NullString

func (n *nullString) Scan(v any) error { return (*sql.NullString)(n).Scan(v) }

func (n nullString) ptr() *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

type nullInt sql.NullInt64

func (n *nullInt) Scan(v any) error { return (*sql.NullInt64)(n).Scan(v) }

func (n nullInt) intPtr() *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
