package ringmux

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControlFlowConstructors(t *testing.T) {
	assert.True(t, Continue().isContinue())
	assert.True(t, Exit().isExit())

	werr := errors.New("careful")
	w := Warn(werr)
	assert.True(t, w.isWarn())
	assert.Same(t, werr, w.err)

	ferr := errors.New("boom")
	f := Fail(ferr)
	assert.True(t, f.isFail())
	assert.Same(t, ferr, f.err)
}

func TestCompletionViewMore(t *testing.T) {
	v := CompletionView{Flags: 1 << 1}
	assert.True(t, v.More())

	v2 := CompletionView{Flags: 0}
	assert.False(t, v2.More())
}
