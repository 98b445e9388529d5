package handler

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/trungbq/docflow-be/internal/domain"
)

// DecodeListCursor parses an opaque pagination cursor produced by
// EncodeListCursor. An empty string means "first page".
func DecodeListCursor(cursorStr string) (*domain.ListCursor, error) {
	if cursorStr == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(cursorStr)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(string(decoded), "|")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	var createdAt int64
	if _, err := fmt.Sscanf(parts[0], "%d", &createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at in cursor: %w", err)
	}

	return &domain.ListCursor{
		CreatedAt: createdAt,
		ID:        parts[1],
	}, nil
}

// EncodeListCursor encodes a list position as an opaque base64 token.
func EncodeListCursor(cursor *domain.ListCursor) string {
	raw := fmt.Sprintf("%d|%s", cursor.CreatedAt, cursor.ID)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}
