package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vkazmin/profiles_api/internal/pkg/config"
	"github.com/vkazmin/profiles_api/internal/pkg/pgtools"
	"github.com/vkazmin/profiles_api/internal/profiles/domain/models"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/feedrepo"
)

type FeedPostgresRepo struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresDB) (FeedPostgresRepo, error) {
	connString := "postgres://" + cfg.Username + ":" + cfg.Password + "@" +
		cfg.Addr + "/" + cfg.DB + "?" + "sslmode=" + cfg.SSLmode + "&pool_max_conns=" + cfg.MaxConns

	db, err := pgtools.Connect(ctx, connString)
	if err != nil {
		return FeedPostgresRepo{}, fmt.Errorf("connect to db error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg); err != nil {
		return FeedPostgresRepo{}, fmt.Errorf("apply migration error: %w", err)
	}

	return FeedPostgresRepo{
		db: db,
	}, nil
}

func (fr FeedPostgresRepo) CreateFeedItem(ctx context.Context, //nolint:nonamedreturns
	item models.FeedItem,
) (id int64, err error) {
	tx, err := fr.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("feed_items").
		Columns("user_id", "status_text", "created_on").
		Values(item.UserID, item.StatusText, item.CreatedOn).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	row := tx.QueryRow(ctx, query, args...)

	if err = row.Scan(&id); err != nil {
		return 0, fmt.Errorf("scan error: %w", err)
	}

	return id, nil
}

func (fr FeedPostgresRepo) GetFeedItem(ctx context.Context, id int64) (item models.FeedItem, err error) { //nolint:nonamedreturns
	tx, err := fr.db.Begin(ctx)
	if err != nil {
		return models.FeedItem{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("id", "user_id", "status_text", "created_on").
		From("feed_items").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return models.FeedItem{}, fmt.Errorf("to sql error: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(
		&item.ID, &item.UserID, &item.StatusText, &item.CreatedOn); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return item, feedrepo.ErrNotFound
		}

		return item, fmt.Errorf("scan error: %w", err)
	}

	return item, nil
}

func (fr FeedPostgresRepo) ListFeedItems(ctx context.Context, //nolint:nonamedreturns
	req feedrepo.ListFeedItemsRequest,
) (items []models.FeedItem, err error) {
	tx, err := fr.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "list")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sb := psql.Select("id", "user_id", "status_text", "created_on").
		From("feed_items").
		OrderBy("id ASC")

	if req.UserID != 0 {
		sb = sb.Where(squirrel.Eq{"user_id": req.UserID})
	}

	if req.Offset != 0 {
		sb = sb.Offset(uint64(req.Offset))
	}

	if req.Limit != 0 {
		sb = sb.Limit(uint64(req.Limit))
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	items = make([]models.FeedItem, 0, 10) //nolint:gomnd

	for rows.Next() {
		var item models.FeedItem

		err = rows.Scan(&item.ID, &item.UserID, &item.StatusText, &item.CreatedOn)
		if err != nil {
			return nil, fmt.Errorf("scan error %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}

// UpdateFeedItem rewrites status_text only. user_id and created_on are
// immutable after creation.
func (fr FeedPostgresRepo) UpdateFeedItem(ctx context.Context, item models.FeedItem) (err error) { //nolint:nonamedreturns
	tx, err := fr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update("feed_items").
		Set("status_text", item.StatusText).
		Where(squirrel.Eq{"id": item.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return feedrepo.ErrNotFound
	}

	return nil
}

func (fr FeedPostgresRepo) DeleteFeedItem(ctx context.Context, id int64) (err error) { //nolint:nonamedreturns
	tx, err := fr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("feed_items").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return feedrepo.ErrNotFound
	}

	return nil
}

func (fr FeedPostgresRepo) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		fr.db.Close()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context error: %w", ctx.Err())
	case <-done:
		return nil
	}
}
