package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"SavePublish/internal/domain"
)

func TestWriteAudit(t *testing.T) {
	t.Parallel()

	entries := []domain.AuditEntry{
		{
			SessionID: "5b1d",
			Item:      domain.ItemRef{ID: "{A1}", Language: "en", Version: 2},
			Actor:     "sitecore\\admin",
			Message:   "Publish item now: /sitecore/content/Home",
			CreatedAt: time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAudit(&buf, entries))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(auditSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, auditHeaders, rows[0])
	assert.Equal(t, []string{"2026-03-03 10:00:00", "sitecore\\admin", "{A1}", "en", "2", "5b1d", "Publish item now: /sitecore/content/Home"}, rows[1])
}
