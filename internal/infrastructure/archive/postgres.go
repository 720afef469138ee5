package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

// PostgresSource reads the archive from an `archive_articles` table. Bodies
// are stored as rendered HTML, same as the snapshot export, and stripped on
// load.
type PostgresSource struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ ports.ArchiveSource = (*PostgresSource)(nil)

// OpenPostgres connects and pings the archive database.
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping archive db: %w", err)
	}
	return &PostgresSource{db: db, logger: logger}, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

// LoadAll streams the table and applies the same corpus minimums as the
// snapshot loader.
func (s *PostgresSource) LoadAll(ctx context.Context) ([]domain.ArchiveArticle, error) {
	query, args, err := sq.Select("id", "title", "url", "content", "published_at").
		From("archive_articles").
		Where(sq.Eq{"status": "publish"}).
		OrderBy("published_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build archive query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var articles []domain.ArchiveArticle
	skipped := 0
	for rows.Next() {
		var (
			id          int64
			title, url  string
			content     string
			publishedAt sql.NullTime
		)
		if err := rows.Scan(&id, &title, &url, &content, &publishedAt); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}

		text := StripHTML(content)
		words := len(strings.Fields(text))
		if words < minArticleWords || len([]rune(text)) < minArticleChars {
			skipped++
			continue
		}

		var published time.Time
		if publishedAt.Valid {
			published = publishedAt.Time
		}
		articles = append(articles, domain.ArchiveArticle{
			ID:          id,
			Title:       strings.TrimSpace(title),
			URL:         url,
			Text:        text,
			WordCount:   words,
			PublishedAt: published,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive rows: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("archive table loaded", "articles", len(articles), "skipped", skipped)
	}
	return articles, nil
}
