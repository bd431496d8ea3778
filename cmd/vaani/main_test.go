package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/vaani/internal/config"
	"github.com/nadzzz/vaani/internal/interpreter/multilang"
	"github.com/nadzzz/vaani/internal/message"
	"github.com/nadzzz/vaani/internal/store"
)

func TestAppAliases_SortedWithoutBrowser(t *testing.T) {
	apps := map[string][]string{
		"vlc-nightly": {"vlc-nightly"},
		" VLC ":       {"vlc"},
		"browser":     {"firefox"},
		"spotify":     {"spotify"},
		"":            {"true"},
	}

	for range 5 {
		got := appAliases(apps)
		assert.Equal(t, []multilang.Alias{
			{Name: "spotify", Variations: []string{"spotify"}},
			{Name: "vlc", Variations: []string{"vlc"}},
			{Name: "vlc-nightly", Variations: []string{"vlc-nightly"}},
		}, got)
	}
}

func TestNewInterpreter_ExtendsRegistries(t *testing.T) {
	ctx := context.Background()
	db := store.NewTestDB(t)
	_, err := db.AddContact(ctx, "Rohan", "+919800000002", []string{"ronu"})
	require.NoError(t, err)

	interp, err := newInterpreter(ctx, db, config.LauncherConfig{
		Apps: map[string][]string{"spotify": {"spotify"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Rohan", interp.ExtractContact(multilang.Normalize("ronu ko call karo")))
	assert.Equal(t, "Mummy", interp.ExtractContact(multilang.Normalize("mummy ko call karo")))
	assert.Equal(t, "spotify", interp.ExtractApp(multilang.Normalize("open spotify")))
}

func TestTargets(t *testing.T) {
	got := targets(map[string]config.Target{
		"kitchen": {Endpoint: "home/kitchen", Protocol: "mqtt"},
	})
	assert.Equal(t, message.Target{ServiceName: "kitchen", Endpoint: "home/kitchen", Protocol: "mqtt"}, got["kitchen"])
}
