package trace

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "abc")
	assert.Equal(t, "abc", FromContext(ctx))
	assert.Empty(t, FromContext(context.Background()))
}

func TestFromHeader(t *testing.T) {
	assert.Equal(t, "given", FromHeader("given"))
	assert.NotEmpty(t, FromHeader(""))
	assert.NotEqual(t, strings.Repeat("x", 200), FromHeader(strings.Repeat("x", 200)))
}
