package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-rcs/site-coordination/internal/parser"
	"github.com/campus-rcs/site-coordination/pkg/utils"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "", "hash-password", "s3cret")
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword("s3cret", strings.TrimSpace(out)))

	out, err = run(t, "from-stdin\n", "hash-password")
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword("from-stdin", strings.TrimSpace(out)))

	_, err = run(t, "", "hash-password")
	assert.Error(t, err)
}

func TestGeneratePassword(t *testing.T) {
	out, err := run(t, "", "generate-password")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), utils.PasswordLength)
}

func TestParse(t *testing.T) {
	out, err := run(t, "Email: R@Lab.org\nProjekt: P\nZeitraum: W10; Mo\nDauer: 2", "parse", "booking")
	require.NoError(t, err)

	var req parser.BookingRequest
	require.NoError(t, json.Unmarshal([]byte(out), &req))
	assert.Equal(t, "r@lab.org", req.Email)
	assert.Equal(t, 2, req.DurationWeeks)

	_, err = run(t, "Email: r@lab.org", "parse", "access")
	var pe *parser.ParseError
	assert.ErrorAs(t, err, &pe)

	_, err = run(t, "", "parse", "invoice")
	assert.Error(t, err)
}

func TestBookingsRejectsBadID(t *testing.T) {
	_, err := run(t, "", "bookings", "approve", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid booking id")
}
