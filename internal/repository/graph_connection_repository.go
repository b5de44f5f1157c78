package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
	"github.com/vanshika/paymybuddy/backend/internal/graph"
)

// GraphConnectionRepository keeps friend edges in Neo4j as
// (:User)-[:CONNECTED_TO]->(:User) relationships. User nodes carry the email
// and username known when the edge was created.
type GraphConnectionRepository struct {
	client graph.Client
}

// NewGraphConnectionRepository instantiates a repository backed by the supplied graph client.
func NewGraphConnectionRepository(client graph.Client) *GraphConnectionRepository {
	return &GraphConnectionRepository{client: client}
}

// Save merges both user nodes and the edge between them. The edge keeps the
// creation time of its first Save.
func (r *GraphConnectionRepository) Save(ctx context.Context, conn domain.Connection) (domain.Connection, error) {
	createdAt := conn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	params := map[string]any{
		"userId":             conn.User.ID,
		"userEmail":          conn.User.Email,
		"userUsername":       conn.User.Username,
		"connectionId":       conn.Connection.ID,
		"connectionEmail":    conn.Connection.Email,
		"connectionUsername": conn.Connection.Username,
		"createdAt":          formatTime(createdAt),
	}

	res, err := r.client.ExecuteWrite(ctx, saveConnectionCypher, params)
	if err != nil {
		return domain.Connection{}, domain.NewStorageError(fmt.Sprintf("merge connection %s->%s", conn.User.ID, conn.Connection.ID), err)
	}
	conn.CreatedAt = createdAt
	if len(res.Records) > 0 {
		if stored := toTimePtr(res.Records[0]["createdAt"]); stored != nil {
			conn.CreatedAt = *stored
		}
	}
	return conn, nil
}

func (r *GraphConnectionRepository) FindByUser(ctx context.Context, userID string) ([]domain.Connection, error) {
	return r.find(ctx, connectionsByUserCypher, map[string]any{"userId": userID}, "find connections by user")
}

func (r *GraphConnectionRepository) FindByConnection(ctx context.Context, connectionID string) ([]domain.Connection, error) {
	return r.find(ctx, connectionsByConnectionCypher, map[string]any{"connectionId": connectionID}, "find connections by connection")
}

func (r *GraphConnectionRepository) Exists(ctx context.Context, key domain.ConnectionKey) (bool, error) {
	res, err := r.client.ExecuteRead(ctx, connectionExistsCypher, keyParams(key))
	if err != nil {
		return false, domain.NewStorageError("check connection", err)
	}
	if len(res.Records) == 0 {
		return false, nil
	}
	return toInt64(res.Records[0]["edges"]) > 0, nil
}

func (r *GraphConnectionRepository) Delete(ctx context.Context, key domain.ConnectionKey) error {
	if _, err := r.client.ExecuteWrite(ctx, deleteConnectionCypher, keyParams(key)); err != nil {
		return domain.NewStorageError("delete connection", err)
	}
	return nil
}

func (r *GraphConnectionRepository) find(ctx context.Context, cypher string, params map[string]any, op string) ([]domain.Connection, error) {
	res, err := r.client.ExecuteRead(ctx, cypher, params)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	conns := make([]domain.Connection, 0, len(res.Records))
	for _, rec := range res.Records {
		conn := domain.Connection{
			User: domain.User{
				ID:       toString(rec["userId"]),
				Email:    toString(rec["userEmail"]),
				Username: toString(rec["userUsername"]),
			},
			Connection: domain.User{
				ID:       toString(rec["connectionId"]),
				Email:    toString(rec["connectionEmail"]),
				Username: toString(rec["connectionUsername"]),
			},
		}
		if ts := toTimePtr(rec["createdAt"]); ts != nil {
			conn.CreatedAt = *ts
		}
		conns = append(conns, conn)
	}
	return conns, nil
}

func keyParams(key domain.ConnectionKey) map[string]any {
	return map[string]any{
		"userId":       key.UserID,
		"connectionId": key.ConnectionID,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func toTimePtr(val any) *time.Time {
	switch v := val.(type) {
	case time.Time:
		return &v
	case string:
		if v == "" {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &parsed
		}
	}
	return nil
}

const saveConnectionCypher = `
MERGE (u:User {userId: $userId})
SET u.email = $userEmail, u.username = $userUsername
MERGE (c:User {userId: $connectionId})
SET c.email = $connectionEmail, c.username = $connectionUsername
MERGE (u)-[r:CONNECTED_TO]->(c)
ON CREATE SET r.createdAt = $createdAt
RETURN r.createdAt AS createdAt
`

const connectionsByUserCypher = `
MATCH (u:User {userId: $userId})-[r:CONNECTED_TO]->(c:User)
RETURN u.userId AS userId, u.email AS userEmail, u.username AS userUsername,
	c.userId AS connectionId, c.email AS connectionEmail, c.username AS connectionUsername,
	r.createdAt AS createdAt
ORDER BY createdAt ASC, connectionId ASC
`

const connectionsByConnectionCypher = `
MATCH (u:User)-[r:CONNECTED_TO]->(c:User {userId: $connectionId})
RETURN u.userId AS userId, u.email AS userEmail, u.username AS userUsername,
	c.userId AS connectionId, c.email AS connectionEmail, c.username AS connectionUsername,
	r.createdAt AS createdAt
ORDER BY createdAt ASC, userId ASC
`

const connectionExistsCypher = `
MATCH (:User {userId: $userId})-[r:CONNECTED_TO]->(:User {userId: $connectionId})
RETURN count(r) AS edges
`

const deleteConnectionCypher = `
MATCH (:User {userId: $userId})-[r:CONNECTED_TO]->(:User {userId: $connectionId})
DELETE r
`
