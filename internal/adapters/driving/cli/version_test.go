package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	original := version
	t.Cleanup(func() { version = original })

	SetVersion("1.2.3")
	out, err := executeCommand(t, nil, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "zenji version 1.2.3")
}

func TestVersionCmd_DevByDefault(t *testing.T) {
	original := version
	t.Cleanup(func() { version = original })

	version = "dev"
	out, err := executeCommand(t, nil, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "zenji version dev")
}
