package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programme-lv/coderun/internal/lang"
)

func TestCommandTree(t *testing.T) {
	app := newApp()

	names := map[string]bool{}
	for _, c := range app.Commands {
		names[c.Name] = true
	}
	for _, want := range []string{"run", "behave", "serve", "version"} {
		assert.True(t, names[want], want)
	}

	serve := app.Command("serve")
	require.NotNil(t, serve)
	assert.NotNil(t, serve.Command("nats"))
	assert.NotNil(t, serve.Command("sqs"))
}

func TestExtensionsMapToSupportedLanguages(t *testing.T) {
	for ext, l := range langByExt {
		assert.True(t, lang.Supported().Contains(l), ext)
	}
}
