package murmur

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordsMatchesStepwise(t *testing.T) {
	h := Initialize(DefaultSeed)
	h = Update(h, 4)
	h = Update(h, 3)
	h = Update(h, 7)
	assert.Equal(t, Finish(h, 3), Words(4, 3, 7))
}

func TestOrderSensitive(t *testing.T) {
	assert.NotEqual(t, Words(3, 7), Words(7, 3))
}

func TestWordCountParticipates(t *testing.T) {
	h := Update(Initialize(DefaultSeed), 5)
	assert.NotEqual(t, Finish(h, 1), Finish(h, 2), "field count must change the final hash")
}

func TestDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, Words(1, 2, 3), Words(1, 2, 3))
	}
}

func TestNegativeValuesUseLow32Bits(t *testing.T) {
	all := ^uint32(0)
	assert.Equal(t, Words(-1), Words(int(all)))
}

func TestUpdateHash(t *testing.T) {
	inner := Words(9)
	assert.Equal(t, Update(Initialize(0), int(inner)), UpdateHash(Initialize(0), inner))
}

func TestFinishAvalanche(t *testing.T) {
	// A single bit of input difference must spread across the output.
	a := Words(0)
	b := Words(1)
	diff := a ^ b
	set := 0
	for diff != 0 {
		set += int(diff & 1)
		diff >>= 1
	}
	assert.Greater(t, set, 4)
}
