package connid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithIDStampsAUniqueValue(t *testing.T) {
	ctx := WithID(context.Background())
	id, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.NotEmpty(t, id)

	other, _ := FromContext(WithID(context.Background()))
	assert.NotEqual(t, id, other)
}

func TestFromContextWithoutStampReturnsFalse(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}
