package ledger

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/mhartley/tally/internal/model"
)

// ListRefEntities fetches one reference-data collection, described by its
// RefKind rather than guessed from response titles. The service sometimes
// wraps these lists in a page envelope {content: [...]}; both shapes are
// accepted transparently.
func (c *Client) ListRefEntities(ctx context.Context, kind model.RefKind, userID, typeFilter string) ([]model.RefEntity, error) {
	q := url.Values{"userId": {userID}}
	if typeFilter != "" && kind.Typed {
		q.Set("type", typeFilter)
	}

	var raw json.RawMessage
	if err := c.get(ctx, kind.Path, q, &raw); err != nil {
		return nil, err
	}

	rows, err := unwrapRows(raw)
	if err != nil {
		return nil, &Error{Kind: KindServer, Message: "malformed " + kind.Name + " response", cause: err}
	}

	entities := make([]model.RefEntity, 0, len(rows))
	for _, row := range rows {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(row, &fields); err != nil {
			return nil, &Error{Kind: KindServer, Message: "malformed " + kind.Name + " row", cause: err}
		}
		entities = append(entities, model.RefEntity{
			ID:   fieldString(fields, kind.IDField),
			Name: fieldString(fields, "name"),
			Type: fieldString(fields, "type"),
		})
	}
	return entities, nil
}

// unwrapRows accepts either a bare JSON array or a page envelope.
func unwrapRows(raw json.RawMessage) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err == nil {
		return rows, nil
	}
	var envelope struct {
		Content []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	return envelope.Content, nil
}

func fieldString(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var id flexID
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return id.String()
}
