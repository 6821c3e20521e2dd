// ABOUTME: SQL builders for the Postgres record store
// ABOUTME: Kept pure so statement shapes can be tested without a server
package pgstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
)

// buildList pushes owner and string equality filters into SQL. Numeric and
// flag filters are left to gateway.Apply, which compares them leniently.
func buildList(c gateway.Collection, q gateway.Query) (string, []any, error) {
	var sb strings.Builder
	args := []any{string(c)}
	sb.WriteString(`SELECT data FROM records WHERE collection = $1`)

	switch {
	case len(q.AnyOwner) > 0:
		args = append(args, q.AnyOwner)
		fmt.Fprintf(&sb, ` AND user_id = ANY($%d)`, len(args))
	case q.Where["user_id"] != nil:
		args = append(args, fmt.Sprint(q.Where["user_id"]))
		fmt.Fprintf(&sb, ` AND user_id = $%d`, len(args))
	}

	contains := map[string]string{}
	for key, value := range q.Where {
		if key == "user_id" {
			continue
		}
		if s, ok := value.(string); ok {
			contains[key] = s
		}
	}
	if len(contains) > 0 {
		data, err := json.Marshal(contains)
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode filter: %w", err)
		}
		args = append(args, data)
		fmt.Fprintf(&sb, ` AND data @> $%d::jsonb`, len(args))
	}

	sb.WriteString(` ORDER BY created_at DESC`)
	return sb.String(), args, nil
}

// buildUpdate merges partial into the stored document. Keys set to nil are
// removed so cleared optional fields read back as absent.
func buildUpdate(c gateway.Collection, id string, partial gateway.Row, now time.Time) (string, []any, error) {
	set := gateway.Row{}
	var remove []string
	for key, value := range partial {
		switch {
		case key == "id":
		case value == nil:
			remove = append(remove, key)
		default:
			set[key] = value
		}
	}
	if _, ok := set["updated_at"]; !ok {
		set["updated_at"] = models.FormatTime(now)
	}

	data, err := json.Marshal(set)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode %s update: %w", c, err)
	}

	args := []any{data}
	expr := `(data || $1::jsonb)`
	if len(remove) > 0 {
		sort.Strings(remove)
		args = append(args, remove)
		expr = fmt.Sprintf(`(%s - $%d::text[])`, expr, len(args))
	}

	sql := `UPDATE records SET data = ` + expr + `, updated_at = now()`
	if owner, ok := set["user_id"].(string); ok {
		args = append(args, owner)
		sql += fmt.Sprintf(`, user_id = $%d`, len(args))
	}
	args = append(args, string(c), id)
	sql += fmt.Sprintf(` WHERE collection = $%d AND id = $%d`, len(args)-1, len(args))
	return sql, args, nil
}
