package util

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestULID(t *testing.T) {
	a, b := NewULID(), NewULID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
	assert.True(t, IsULID(a))
	assert.False(t, IsULID("not-a-ulid"))
	assert.False(t, IsULID(""))
}

func TestNullHelpers(t *testing.T) {
	assert.False(t, StringToNullString("").Valid)
	assert.Equal(t, sql.NullString{String: "x", Valid: true}, StringToNullString("x"))

	id := int64(4)
	assert.Equal(t, sql.NullInt64{Int64: 4, Valid: true}, Int64PtrToNullInt64(&id))
	assert.False(t, Int64PtrToNullInt64(nil).Valid)
	assert.Equal(t, &id, NullInt64ToPtr(sql.NullInt64{Int64: 4, Valid: true}))
	assert.Nil(t, NullInt64ToPtr(sql.NullInt64{}))

	now := time.Now()
	assert.Equal(t, &now, NullTimeToPtr(TimePtrToNullTime(&now)))
	assert.Nil(t, NullTimeToPtr(TimePtrToNullTime(nil)))

	assert.Equal(t, 1, BoolToInt(true))
	assert.Equal(t, 0, BoolToInt(false))
	assert.True(t, IntToBool(1))
	assert.False(t, IntToBool(0))
}
