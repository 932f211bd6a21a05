package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecommendationRepository handles recommendation history operations.
type RecommendationRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a recommendation with its items.
func (r *RecommendationRepository) Create(ctx context.Context, rec *Recommendation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	recQuery := `
		INSERT INTO recommendations (id, visitor_id, query, emotion, confidence, source, stage, genre, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()))
		RETURNING created_at
	`
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	var createdAt any
	if !rec.CreatedAt.IsZero() {
		createdAt = rec.CreatedAt
	}
	err = tx.QueryRow(ctx, recQuery,
		rec.ID,
		rec.VisitorID,
		rec.Query,
		rec.Emotion,
		rec.Confidence,
		rec.Source,
		rec.Stage,
		rec.Genre,
		createdAt,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting recommendation: %w", err)
	}

	if len(rec.Items) > 0 {
		positions := make([]int32, len(rec.Items))
		titles := make([]string, len(rec.Items))
		urls := make([]string, len(rec.Items))
		for i, item := range rec.Items {
			positions[i] = int32(i)
			titles[i] = item.Title
			urls[i] = item.URL
		}

		itemsQuery := `
			INSERT INTO recommendation_items (recommendation_id, position, title, url)
			SELECT $1, * FROM unnest($2::int[], $3::text[], $4::text[])
		`
		if _, err := tx.Exec(ctx, itemsQuery, rec.ID, positions, titles, urls); err != nil {
			return fmt.Errorf("inserting recommendation items: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetForVisitor retrieves one of a visitor's recommendations and its items.
// Returns ErrNotFound when the ID is unknown or belongs to another visitor.
func (r *RecommendationRepository) GetForVisitor(ctx context.Context, visitorID string, id uuid.UUID) (*Recommendation, error) {
	query := `
		SELECT id, visitor_id, query, emotion, confidence, source, stage, genre, created_at
		FROM recommendations
		WHERE id = $1 AND visitor_id = $2
	`
	var rec Recommendation
	err := r.pool.QueryRow(ctx, query, id, visitorID).Scan(
		&rec.ID,
		&rec.VisitorID,
		&rec.Query,
		&rec.Emotion,
		&rec.Confidence,
		&rec.Source,
		&rec.Stage,
		&rec.Genre,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying recommendation: %w", err)
	}

	items, err := r.GetItems(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	rec.Items = items
	return &rec, nil
}

// ListForVisitor retrieves a visitor's most recent recommendations,
// newest first, with their items.
func (r *RecommendationRepository) ListForVisitor(ctx context.Context, visitorID string, limit int) ([]Recommendation, error) {
	query := `
		SELECT id, visitor_id, query, emotion, confidence, source, stage, genre, created_at
		FROM recommendations
		WHERE visitor_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, visitorID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying visitor recommendations: %w", err)
	}
	defer rows.Close()

	var recs []Recommendation
	for rows.Next() {
		var rec Recommendation
		if err := rows.Scan(
			&rec.ID,
			&rec.VisitorID,
			&rec.Query,
			&rec.Emotion,
			&rec.Confidence,
			&rec.Source,
			&rec.Stage,
			&rec.Genre,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recommendations: %w", err)
	}

	for i := range recs {
		items, err := r.GetItems(ctx, recs[i].ID)
		if err != nil {
			return nil, err
		}
		recs[i].Items = items
	}
	return recs, nil
}

// GetItems retrieves the items of a recommendation in display order.
func (r *RecommendationRepository) GetItems(ctx context.Context, recommendationID uuid.UUID) ([]RecommendationItem, error) {
	query := `
		SELECT title, url
		FROM recommendation_items
		WHERE recommendation_id = $1
		ORDER BY position
	`
	rows, err := r.pool.Query(ctx, query, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("querying recommendation items: %w", err)
	}
	defer rows.Close()

	var items []RecommendationItem
	for rows.Next() {
		var item RecommendationItem
		if err := rows.Scan(&item.Title, &item.URL); err != nil {
			return nil, fmt.Errorf("scanning recommendation item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteForVisitor removes all recommendations for a visitor.
func (r *RecommendationRepository) DeleteForVisitor(ctx context.Context, visitorID string) error {
	query := `DELETE FROM recommendations WHERE visitor_id = $1`
	_, err := r.pool.Exec(ctx, query, visitorID)
	if err != nil {
		return fmt.Errorf("deleting visitor recommendations: %w", err)
	}
	return nil
}
