package repository

import (
	"errors"
	"fmt"
	"testing"

	repo "storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), repo.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23505"})), repo.ErrConflict)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), repo.ErrConflict)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))

	//一意制約以外のpgエラーはそのまま
	fk := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, error(fk), translate(fk))
}
