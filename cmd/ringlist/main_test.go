package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nobletooth/ringlist/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsAreRegisteredInConfig(t *testing.T) {
	unregisteredFlags := config.CollectUnregisteredFlags()
	if len(unregisteredFlags) != 0 {
		t.Fail()
		for _, flagErr := range unregisteredFlags {
			t.Error(flagErr)
		}
	}
}

func TestRunDemo(t *testing.T) {
	out := new(bytes.Buffer)
	require.NoError(t, runDemo(out))
	transcript := out.String()

	assert.True(t, strings.HasPrefix(transcript, "LIST CREATED WITH SUCCESS!\nIs list empty? YES\nList size: 0\n"))
	assert.Contains(t, transcript, "list[1]: 77\n")
	assert.Contains(t, transcript, "Is list empty? NO\nList size: 10\n")
	assert.Contains(t, transcript, strings.Join([]string{
		"list[1]= 9", "list[2]= 11", "list[3]= 22", "list[4]= 66", "list[5]= 44",
		"list[6]= 88", "list[7]= 55", "list[8]= 33", "list[9]= 0", "list[10]= 2",
	}, "\n"))
	for _, line := range []string{
		"Element 9 was deleted from first position of the list.",
		"Element 11 was deleted from first position of the list.",
		"Element 2 was deleted from last position of the list.",
		"Element 0 was deleted from last position of the list.",
	} {
		assert.Contains(t, transcript, line)
	}
	assert.Contains(t, transcript, "First and last node swapped positions!\n----- Printing list! -----\n"+
		"list[1]= 33\nlist[2]= 66\nlist[3]= 44\nlist[4]= 88\nlist[5]= 55\nlist[6]= 22\n")
	assert.True(t, strings.HasSuffix(transcript, "*** List destroyed successfully! ***\n"))
}

// failingWriter fails every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRunDemo_WriteError(t *testing.T) {
	assert.ErrorContains(t, runDemo(failingWriter{}), "disk full")
}
