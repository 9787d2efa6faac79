package xlsx

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArenaIntern(t *testing.T) {
	ar := &arena{}

	require.Equal(t, "", ar.intern(nil))

	// earlier strings must stay intact across chunk rollovers
	var got []string
	for i := 0; i < 5000; i++ {
		got = append(got, ar.intern([]byte("value "+strconv.Itoa(i))))
	}
	for i, s := range got {
		require.Equal(t, "value "+strconv.Itoa(i), s)
	}

	// inputs larger than a chunk get their own allocation
	big := bytes.Repeat([]byte("x"), arenaChunkSize+1)
	require.Equal(t, string(big), ar.intern(big))
}
