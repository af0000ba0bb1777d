package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sprintlytotracker/config"
	"sprintlytotracker/models"
	"sprintlytotracker/utils"
)

var testDirectory = map[string]string{
	"Joe Developer":  "@joedev",
	"Jane Developer": "@janedev",
}

func TestRewriteBody(t *testing.T) {
	r := NewMentionRewriter(testDirectory, config.MentionKeep)

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "leading mention", body: "@[Jane Developer](pk:26395) hello", want: "@janedev hello"},
		{name: "mention at end of text", body: "thanks @[Joe Developer](pk:26560)", want: "thanks @joedev"},
		{name: "mention is whole body", body: "@[Joe Developer](pk:26560)", want: "@joedev"},
		{name: "adjacent mentions", body: "@[Joe Developer](pk:1)@[Jane Developer](pk:2)", want: "@joedev@janedev"},
		{name: "repeated name rewritten each time", body: "@[Jane Developer](pk:2) and @[Jane Developer](pk:2)", want: "@janedev and @janedev"},
		{name: "no mentions", body: "plain @ text [x](y)", want: "plain @ text [x](y)"},
		{name: "malformed pk ignored", body: "@[Jane Developer](26395) hi", want: "@[Jane Developer](26395) hi"},
		{name: "unclosed markup ignored", body: "@[Jane Developer](pk:26395 hi", want: "@[Jane Developer](pk:26395 hi"},
		{name: "empty name ignored", body: "@[](pk:1)", want: "@[](pk:1)"},
		{name: "multiline body", body: "line1\n@[Joe Developer](pk:1)\nline3", want: "line1\n@joedev\nline3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.RewriteBody(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRewriteBodyUnresolvedKeep(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	restore := utils.SetLogger(zap.New(core))
	defer restore()

	r := NewMentionRewriter(testDirectory, config.MentionKeep)
	got, err := r.RewriteBody("@[Ann Tester](pk:77) ping @[Jane Developer](pk:2)")
	require.NoError(t, err)
	assert.Equal(t, "@[Ann Tester](pk:77) ping @janedev", got)
	assert.NotContains(t, got, "null")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Ann Tester", entries[0].ContextMap()["name"])
	assert.Equal(t, "77", entries[0].ContextMap()["pk"])
}

func TestRewriteBodyUnresolvedFail(t *testing.T) {
	r := NewMentionRewriter(testDirectory, config.MentionFail)

	_, err := r.RewriteBody("hi @[Ann Tester](pk:77)")
	var mentionErr *UnresolvedMentionError
	require.ErrorAs(t, err, &mentionErr)
	assert.Equal(t, "Ann Tester", mentionErr.Name)
	assert.Equal(t, "77", mentionErr.PK)

	got, err := r.RewriteBody("hi @[Joe Developer](pk:1)")
	require.NoError(t, err)
	assert.Equal(t, "hi @joedev", got)
}

func TestNewMentionRewriterDefaultsToKeep(t *testing.T) {
	r := NewMentionRewriter(testDirectory, "")
	got, err := r.RewriteBody("@[Nobody](pk:1)")
	require.NoError(t, err)
	assert.Equal(t, "@[Nobody](pk:1)", got)
}

func TestRewriteComment(t *testing.T) {
	r := NewMentionRewriter(testDirectory, config.MentionKeep)
	author := &models.Person{FirstName: "Joe", LastName: "Developer", CreatedAt: "2014-07-14T17:48:02+00:00"}

	cell, ok, err := r.RewriteComment(models.Comment{
		Body:      strPtr("@[Jane Developer](pk:26395) hello"),
		CreatedBy: author,
		CreatedAt: "2014-07-21T11:47:29+00:00",
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "@janedev hello (Joe Developer - Jul 14, 2014)", cell)

	t.Run("nil body is dropped", func(t *testing.T) {
		cell, ok, err := r.RewriteComment(models.Comment{CreatedBy: author})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, cell)
	})

	t.Run("empty body still rendered", func(t *testing.T) {
		cell, ok, err := r.RewriteComment(models.Comment{Body: strPtr(""), CreatedBy: author})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, " (Joe Developer - Jul 14, 2014)", cell)
	})

	t.Run("missing author", func(t *testing.T) {
		cell, ok, err := r.RewriteComment(models.Comment{Body: strPtr("hi")})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "hi ( - )", cell)
	})
}
