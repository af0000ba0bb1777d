package services

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintlytotracker/config"
	"sprintlytotracker/models"
)

func fixedRow(title string, tail ...string) models.Row {
	row := models.Row{"2014-07-14", "", "Joe Developer", "", "feature", "2", "accepted", title, "", ""}
	return append(row, tail...)
}

func TestHeaders(t *testing.T) {
	headers := Headers(DefaultCommentColumns)
	require.Len(t, headers, 16)
	assert.Equal(t, "Created at, Accepted at, Requested By, Owned By, Type, Estimate, Current State, Title, Description, Labels",
		strings.Join(headers[:FixedColumns], ", "))
	for _, h := range headers[FixedColumns:] {
		assert.Equal(t, "Comment", h)
	}
}

func TestLayoutPadsToWidestRow(t *testing.T) {
	p := NewCSVProcessor(&config.Config{})

	rows := []models.Row{
		fixedRow("no comments"),
		fixedRow("one comment", "c1", ""),
	}
	headers, records := p.Layout(rows)
	require.Len(t, headers, 16)
	for _, r := range records {
		assert.Len(t, r, 16)
	}
	assert.Equal(t, "c1", records[1][10])
	assert.Equal(t, "", records[0][10])

	wide := fixedRow("eight tail cells", "1", "2", "3", "4", "5", "6", "7", "attachments")
	headers, records = p.Layout([]models.Row{fixedRow("short"), wide})
	require.Len(t, headers, 18)
	assert.Equal(t, "Comment", headers[17])
	assert.Len(t, records[0], 18)
	assert.Equal(t, "attachments", records[1][17])
}

func TestLayoutRagged(t *testing.T) {
	p := NewCSVProcessor(&config.Config{RaggedRows: true})

	wide := fixedRow("wide", "1", "2", "3", "4", "5", "6", "7", "8")
	headers, records := p.Layout([]models.Row{fixedRow("short"), wide})
	assert.Len(t, headers, 16)
	assert.Len(t, records[0], 10)
	assert.Len(t, records[1], 18)
}

func TestWriteBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out-0.csv")
	p := NewCSVProcessor(&config.Config{})

	rows := []models.Row{
		fixedRow("quoted, \"title\"", "multi\nline (Joe Developer - Jul 14, 2014)", "a.png: https://files/a.png\n"),
		fixedRow("plain"),
	}
	require.NoError(t, p.WriteBatch(path, rows))

	records, err := p.ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Headers(DefaultCommentColumns), records[0])
	assert.Equal(t, "quoted, \"title\"", records[1][7])
	assert.Equal(t, "multi\nline (Joe Developer - Jul 14, 2014)", records[1][10])
	assert.Equal(t, "a.png: https://files/a.png\n", records[1][11])
	assert.Len(t, records[2], 16)
}

func TestWriteBatchRagged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out-0.csv")
	p := NewCSVProcessor(&config.Config{RaggedRows: true})

	require.NoError(t, p.WriteBatch(path, []models.Row{fixedRow("short"), fixedRow("long", "c1", "")}))

	records, err := p.ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Len(t, records[0], 16)
	assert.Len(t, records[1], 10)
	assert.Len(t, records[2], 12)
}

func TestWriteBatchHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out-300.csv")
	p := NewCSVProcessor(&config.Config{})

	require.NoError(t, p.WriteBatch(path, nil))

	records, err := p.ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestWriteBatchBadPath(t *testing.T) {
	p := NewCSVProcessor(&config.Config{})
	assert.Error(t, p.WriteBatch(filepath.Join(t.TempDir(), "missing", "out.csv"), nil))
}
