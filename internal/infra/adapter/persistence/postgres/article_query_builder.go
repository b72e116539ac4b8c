// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"
	"strings"

	"catchup-feed/internal/pkg/search"
	"catchup-feed/internal/repository"
)

// ArticleQueryBuilder builds WHERE clauses for article search in PostgreSQL.
// This builder is shared between COUNT and SELECT queries to eliminate duplication.
// It uses PostgreSQL-specific features like ILIKE, the array-contains operator, and
// numbered placeholders ($1, $2, etc.).
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause builds the WHERE clause and arguments for an article
// search. userID is always required and is the first parameter ($1); it
// supports multi-keyword AND logic over title/snippet plus optional topic
// and date-range filters. Returns "WHERE user_id = $1" with no further
// conditions if no keywords or filters are given.
func (qb *ArticleQueryBuilder) BuildWhereClause(userID string, keywords []string, filters repository.ArticleSearchFilters, tableAlias string) (clause string, args []interface{}) {
	col := func(name string) string {
		if tableAlias != "" {
			return tableAlias + "." + name
		}
		return name
	}

	paramIndex := 1
	conditions := []string{fmt.Sprintf("%s = $%d", col("user_id"), paramIndex)}
	args = append(args, userID)
	paramIndex++

	for _, keyword := range keywords {
		escaped := search.EscapeILIKE(keyword)
		conditions = append(conditions, fmt.Sprintf("(%s ILIKE $%d OR %s ILIKE $%d)",
			col("title"), paramIndex, col("snippet"), paramIndex))
		args = append(args, escaped)
		paramIndex++
	}

	if filters.TopicID != nil {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(%s)", paramIndex, col("matched_topic_ids")))
		args = append(args, *filters.TopicID)
		paramIndex++
	}

	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("%s >= $%d", col("published_at"), paramIndex))
		args = append(args, *filters.From)
		paramIndex++
	}

	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("%s <= $%d", col("published_at"), paramIndex))
		args = append(args, *filters.To)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}
