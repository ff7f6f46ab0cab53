package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// Cursor is the position of the last row of a page of transactions, which are
// ordered by transaction date, then creation time, then id, all descending.
type Cursor struct {
	TransactionDate time.Time
	CreatedAt       time.Time
	ID              string
}

// EncodeToken creates a base64 encoded token from a transaction date, creation time and id.
func EncodeToken(transactionDate time.Time, createdAt time.Time, id string) string {
	tokenStr := fmt.Sprintf("%s|%s|%s", transactionDate.Format(timeFormat), createdAt.Format(timeFormat), id)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses the base64 encoded token back into a Cursor.
func DecodeToken(token string) (Cursor, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	transactionDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (transaction date parse): %w", err)
	}

	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return Cursor{TransactionDate: transactionDate, CreatedAt: createdAt, ID: parts[2]}, nil
}

// After reports whether a row at (date, createdAt, id) comes after c in
// descending order, i.e. belongs to the next page.
func (c Cursor) After(date, createdAt time.Time, id string) bool {
	if !date.Equal(c.TransactionDate) {
		return date.Before(c.TransactionDate)
	}
	if !createdAt.Equal(c.CreatedAt) {
		return createdAt.Before(c.CreatedAt)
	}
	return id < c.ID
}
