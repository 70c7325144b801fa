package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SavePublish/internal/domain"
)

type recordingIndex struct {
	name string
	refs []domain.ItemRef
	err  error
}

func (r *recordingIndex) Name() string { return r.name }

func (r *recordingIndex) Refresh(_ context.Context, ref domain.ItemRef) error {
	r.refs = append(r.refs, ref)
	return r.err
}

func TestNotifierRefreshesFirstMatchingIndex(t *testing.T) {
	t.Parallel()

	master := &recordingIndex{name: "sitecore_master_index"}
	web := &recordingIndex{name: "Sitecore_WEB_Index"}
	webCustom := &recordingIndex{name: "custom_web_index"}

	reg := NewRegistry()
	reg.Register(master)
	reg.Register(web)
	reg.Register(webCustom)

	ref := domain.ItemRef{ID: "{A1}", Language: "en", Version: 1}
	require.NoError(t, NewNotifier(reg, "", nil).Refresh(context.Background(), ref))

	assert.Equal(t, []domain.ItemRef{ref}, web.refs)
	assert.Empty(t, master.refs)
	assert.Empty(t, webCustom.refs)
}

func TestNotifierWithoutMatchIsSilent(t *testing.T) {
	t.Parallel()

	master := &recordingIndex{name: "sitecore_master_index"}
	reg := NewRegistry()
	reg.Register(master)

	err := NewNotifier(reg, "web", nil).Refresh(context.Background(), domain.ItemRef{ID: "{A1}"})
	assert.NoError(t, err)
	assert.Empty(t, master.refs)
}

func TestNotifierWrapsIndexError(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&recordingIndex{name: "web", err: errors.New("index offline")})

	err := NewNotifier(reg, "web", nil).Refresh(context.Background(), domain.ItemRef{ID: "{A1}"})
	assert.ErrorContains(t, err, "refresh index web: index offline")
}

func TestRegistryReplaceKeepsOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&recordingIndex{name: "a_web"})
	reg.Register(&recordingIndex{name: "b_web"})
	replacement := &recordingIndex{name: "a_web"}
	reg.Register(replacement)

	assert.Equal(t, []string{"a_web", "b_web"}, reg.Names())

	found, ok := reg.Find("WEB")
	require.True(t, ok)
	assert.Same(t, replacement, found)

	_, err := reg.Resolve("missing")
	assert.Error(t, err)
}
