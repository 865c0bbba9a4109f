package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckOrder(t *testing.T) {
	assert.NoError(t, CheckOrder(Asc("order_index"), ProjectColumns))
	assert.NoError(t, CheckOrder(Asc("price"), PackageColumns))

	err := CheckOrder(Asc("id; drop table projects"), ProjectColumns)
	assert.True(t, errors.Is(err, ErrInvalidOrder))
}

func TestOrder_String(t *testing.T) {
	assert.Equal(t, "created_at desc", Desc("created_at").String())
	assert.Equal(t, "order_index asc", Asc("order_index").String())
}
