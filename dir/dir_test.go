package dir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-vfs/common"
)

func TestValidName(t *testing.T) {
	assert := assert.New(t)
	assert.True(ValidName("a"))
	assert.True(ValidName("12345678.tx"), "11 bytes fit")
	assert.False(ValidName("12345678.txt"), "12 bytes leave no terminator")
	assert.False(ValidName(""))
	assert.False(ValidName("a/b"))
	assert.False(ValidName("a\x00"))
}

func TestEncode(t *testing.T) {
	assert := assert.New(t)
	de := MkDirEnt(258, "notes.txt")
	b := de.Encode()
	assert.Equal(int(common.DIRENTSZ), len(b))
	assert.Equal([]byte{2, 1, 0, 0}, b[0:4])
	assert.Equal([]byte("notes.txt\x00\x00\x00"), b[4:16])
	assert.Equal(de, Decode(b))

	long := MkDirEnt(1, "abcdefghijkl").Encode()
	assert.Equal(byte(0), long[15], "terminator is always kept")
	assert.Equal("abcdefghijk", Decode(long).Name)
}

func TestEncodeAll(t *testing.T) {
	assert := assert.New(t)
	ents := []DirEnt{
		MkDirEnt(4, common.SelfName),
		MkDirEnt(0, common.ParentName),
		MkDirEnt(9, "f"),
	}
	blk := EncodeAll(ents, 128)
	assert.Equal(128, len(blk))
	assert.Equal(ents, DecodeAll(blk, 3))
	assert.Equal(ents[:2], DecodeAll(blk, 2))
	assert.Equal(make([]byte, 128-48), blk[48:], "tail is zeroed")

	i, ok := Lookup(ents, "f")
	assert.True(ok)
	assert.Equal(2, i)
	_, ok = Lookup(ents, "F")
	assert.False(ok, "names are case-sensitive")
}
