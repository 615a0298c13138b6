package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/GhostDeck/internal/api"
	"github.com/Rorical/GhostDeck/internal/modal"
	"github.com/Rorical/GhostDeck/internal/transport"
)

func TestWriteOutput(t *testing.T) {
	d := &api.Dashboard{Version: "0.1.0", DockerVersion: "24.0.7", StackCount: 2}

	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, "yaml", d))
	assert.Contains(t, buf.String(), "docker_version: 24.0.7")

	buf.Reset()
	require.NoError(t, writeOutput(&buf, "json", d))
	assert.Contains(t, buf.String(), `"dockerVersion": "24.0.7"`)

	assert.Error(t, writeOutput(&buf, "xml", d))
}

func TestPrintDialog(t *testing.T) {
	var buf bytes.Buffer
	printDialog(&buf, modal.Snapshot{})
	assert.Empty(t, buf.String())

	printDialog(&buf, modal.Snapshot{State: modal.Open, Request: &modal.Request{
		Title:     transport.EscalationTitle,
		Message:   transport.EscalationMessage,
		Component: modal.ComponentNetworkError,
	}})
	assert.Contains(t, buf.String(), "! Do you want to continue?")
	assert.Contains(t, buf.String(), "could not be reached")
}
