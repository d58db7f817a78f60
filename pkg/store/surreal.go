package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/surrealdb/surrealdb.go"
)

// SurrealBackend keeps the document as a single record in SurrealDB. The
// document is stored as one JSON string field, matching the flat structured
// layout the file backend uses.
type SurrealBackend struct {
	db *surrealdb.DB
}

const surrealRecord = "bot:state"

func NewSurrealBackend(host, user, pass, namespace, database string) (*SurrealBackend, error) {
	db, err := surrealdb.New(host)
	if err != nil {
		return nil, fmt.Errorf("failed to create surrealdb client: %w", err)
	}

	if _, err = db.SignIn(context.Background(), map[string]interface{}{
		"user": user,
		"pass": pass,
	}); err != nil {
		return nil, fmt.Errorf("failed to signin to surrealdb: %w", err)
	}

	if err = db.Use(context.Background(), namespace, database); err != nil {
		return nil, fmt.Errorf("failed to use surrealdb namespace/database: %w", err)
	}

	return &SurrealBackend{db: db}, nil
}

func (s *SurrealBackend) Close() {
	s.db.Close(context.Background())
}

func (s *SurrealBackend) Load() (*Document, error) {
	result, err := s.query("SELECT data FROM "+surrealRecord, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load store record: %w", err)
	}

	raw := extractField(result, "data")
	if raw == "" {
		return NewDocument(), nil
	}

	doc := &Document{}
	if err := json.Unmarshal([]byte(raw), doc); err != nil {
		return nil, fmt.Errorf("failed to parse store record: %w", err)
	}
	doc.normalize()
	return doc, nil
}

func (s *SurrealBackend) Save(doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	_, err = s.query("UPSERT "+surrealRecord+" SET data = $data", map[string]interface{}{
		"data": string(data),
	})
	if err != nil {
		return fmt.Errorf("failed to save store record: %w", err)
	}
	return nil
}

func (s *SurrealBackend) query(sql string, vars map[string]interface{}) (interface{}, error) {
	if vars == nil {
		vars = map[string]interface{}{}
	}
	result, err := surrealdb.Query[interface{}](context.Background(), s.db, sql, vars)
	if err != nil {
		return nil, err
	}

	// Unwrap the driver response down to the Result field of the last query.
	rv := reflect.ValueOf(result)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		if f := rv.FieldByName("Result"); f.IsValid() {
			return f.Interface(), nil
		}
	} else if rv.Kind() == reflect.Slice && rv.Len() > 0 {
		last := rv.Index(rv.Len() - 1)
		if last.Kind() == reflect.Struct {
			if f := last.FieldByName("Result"); f.IsValid() {
				return f.Interface(), nil
			}
		}
	}
	return result, nil
}

// extractField digs a string field out of a loosely typed query result.
func extractField(result interface{}, field string) string {
	rows, ok := result.([]interface{})
	if !ok || len(rows) == 0 {
		if row, ok := result.(map[string]interface{}); ok {
			if v, ok := row[field].(string); ok {
				return v
			}
		}
		return ""
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return ""
	}
	v, _ := row[field].(string)
	return v
}
