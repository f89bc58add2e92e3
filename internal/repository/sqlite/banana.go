package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/meteoryte/banana-oracle/internal/apperror"
	"github.com/meteoryte/banana-oracle/internal/model"
	"github.com/meteoryte/banana-oracle/internal/repository"
)

// BananaDB is the catalog view over the shared pool.
type BananaDB struct {
	conn *sql.DB
}

// compile-time check that *BananaDB implements repository.BananaRepository
var _ repository.BananaRepository = (*BananaDB)(nil)

const bananaColumns = `id, name, scientific_name, origin, year_discovered,
	invention_story, fun_fact, color, taste, rarity, image_url,
	calories, potassium, fiber, sugar, cultural_significance,
	created_at, updated_at`

// Create inserts a new catalog item. The generated xid and both timestamps
// are written back into the caller's struct.
func (db *BananaDB) Create(ctx context.Context, banana *model.Banana) error {
	banana.ID = xid.New().String()
	now := time.Now()
	banana.CreatedAt = now
	banana.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO bananas (`+bananaColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		banana.ID,
		banana.Name,
		banana.ScientificName,
		banana.Origin,
		banana.YearDiscovered,
		banana.InventionStory,
		banana.FunFact,
		banana.Color,
		banana.Taste,
		banana.Rarity,
		banana.ImageURL,
		banana.Nutrition.Calories,
		banana.Nutrition.Potassium,
		banana.Nutrition.Fiber,
		banana.Nutrition.Sugar,
		banana.CulturalSignificance,
		banana.CreatedAt,
		banana.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating banana: %w", err)
	}

	return nil
}

func scanBanana(scan func(...any) error) (*model.Banana, error) {
	var b model.Banana
	err := scan(
		&b.ID,
		&b.Name,
		&b.ScientificName,
		&b.Origin,
		&b.YearDiscovered,
		&b.InventionStory,
		&b.FunFact,
		&b.Color,
		&b.Taste,
		&b.Rarity,
		&b.ImageURL,
		&b.Nutrition.Calories,
		&b.Nutrition.Potassium,
		&b.Nutrition.Fiber,
		&b.Nutrition.Sugar,
		&b.CulturalSignificance,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByID retrieves a single item. Returns apperror.ErrNotFound when no row
// matches.
func (db *BananaDB) GetByID(ctx context.Context, id string) (*model.Banana, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+bananaColumns+` FROM bananas WHERE id = ?`, id)

	b, err := scanBanana(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("banana", id)
		}
		return nil, fmt.Errorf("sqlite: getting banana %s: %w", id, err)
	}
	return b, nil
}

// filterClause builds the WHERE fragment and args for a BananaFilter.
func filterClause(filter repository.BananaFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Rarity != "" {
		conds = append(conds, "rarity = ?")
		args = append(args, filter.Rarity)
	}
	if filter.Taste != "" {
		conds = append(conds, "taste = ?")
		args = append(args, filter.Taste)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List retrieves catalog items newest-first with filter and pagination.
// Zero matches is a legitimate empty slice, not an error.
func (db *BananaDB) List(ctx context.Context, filter repository.BananaFilter, opts repository.ListOptions) ([]model.Banana, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	where, args := filterClause(filter)
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+bananaColumns+` FROM bananas`+where+`
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing bananas: %w", err)
	}
	defer rows.Close()

	bananas := make([]model.Banana, 0, limit)
	for rows.Next() {
		b, err := scanBanana(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning banana row: %w", err)
		}
		bananas = append(bananas, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating bananas: %w", err)
	}

	return bananas, nil
}

// Count returns the number of items matching the filter.
func (db *BananaDB) Count(ctx context.Context, filter repository.BananaFilter) (int, error) {
	where, args := filterClause(filter)

	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bananas`+where, args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting bananas: %w", err)
	}
	return count, nil
}

// Random picks a uniformly random persisted item: count the rows, then read
// at a uniform skip offset. Returns apperror.ErrNotFound on an empty
// catalog so the caller can fall back to the demo set.
func (db *BananaDB) Random(ctx context.Context) (*model.Banana, error) {
	count, err := db.Count(ctx, repository.BananaFilter{})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperror.NotFound("banana", "random")
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+bananaColumns+` FROM bananas LIMIT 1 OFFSET ?`,
		rand.IntN(count),
	)
	b, err := scanBanana(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			// A concurrent delete shrank the table under us.
			return nil, apperror.NotFound("banana", "random")
		}
		return nil, fmt.Errorf("sqlite: picking random banana: %w", err)
	}
	return b, nil
}

// Update rewrites every mutable column and refreshes updated_at.
func (db *BananaDB) Update(ctx context.Context, banana *model.Banana) error {
	banana.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE bananas
		 SET name = ?, scientific_name = ?, origin = ?, year_discovered = ?,
		     invention_story = ?, fun_fact = ?, color = ?, taste = ?,
		     rarity = ?, image_url = ?, calories = ?, potassium = ?,
		     fiber = ?, sugar = ?, cultural_significance = ?, updated_at = ?
		 WHERE id = ?`,
		banana.Name,
		banana.ScientificName,
		banana.Origin,
		banana.YearDiscovered,
		banana.InventionStory,
		banana.FunFact,
		banana.Color,
		banana.Taste,
		banana.Rarity,
		banana.ImageURL,
		banana.Nutrition.Calories,
		banana.Nutrition.Potassium,
		banana.Nutrition.Fiber,
		banana.Nutrition.Sugar,
		banana.CulturalSignificance,
		banana.UpdatedAt,
		banana.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating banana %s: %w", banana.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("banana", banana.ID)
	}

	return nil
}

// Delete removes an item. Same RowsAffected pattern as Update to detect
// "not found".
func (db *BananaDB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM bananas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting banana %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("banana", id)
	}

	return nil
}
