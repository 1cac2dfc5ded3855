package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/SecurePass/internal/models"
)

func TestLine(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("alice\r\nlast"), &out)

	got, err := p.Line("Username: ")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
	assert.Equal(t, "Username: ", out.String())

	got, err = p.Line("> ")
	require.NoError(t, err)
	assert.Equal(t, "last", got, "a final line without newline still counts")

	_, err = p.Line("> ")
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestSecret_NonTerminalFallsBackToLine(t *testing.T) {
	p := New(strings.NewReader("s3cret\n"), &bytes.Buffer{})
	got, err := p.Secret("Master password: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}

func TestEntry(t *testing.T) {
	input := " GitHub \nhttps://github.com\nocto\nhunter2\nmaster\n"
	p := New(strings.NewReader(input), &bytes.Buffer{})

	req, err := p.Entry("")
	require.NoError(t, err)
	assert.Equal(t, models.NewEntryRequest{
		MasterPassword: "master",
		SiteName:       "GitHub",
		SiteURL:        "https://github.com",
		SiteUsername:   "octo",
		SitePassword:   "hunter2",
	}, req)
}

func TestEntry_GeneratedPassword(t *testing.T) {
	input := "Mail\n\nme\nmaster\n"
	p := New(strings.NewReader(input), &bytes.Buffer{})

	req, err := p.Entry("Gen3rated!")
	require.NoError(t, err)
	assert.Equal(t, "Gen3rated!", req.SitePassword)
	assert.Equal(t, "master", req.MasterPassword)
	assert.Empty(t, req.SiteURL)
}

func TestEntry_InputEnds(t *testing.T) {
	p := New(strings.NewReader("Mail\n"), &bytes.Buffer{})
	_, err := p.Entry("")
	assert.ErrorIs(t, err, ErrCancelled)
}
