package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		args    []string
		command string
		rest    []string
	}{
		{nil, "", nil},
		{[]string{"history", "-n", "5"}, "history", []string{"-n", "5"}},
		{[]string{"--debug"}, "", []string{"--debug"}},
		{[]string{"export", "out.csv"}, "export", []string{"out.csv"}},
	}

	for _, c := range cases {
		command, rest := splitCommand(c.args)
		assert.Equal(t, c.command, command)
		assert.Equal(t, c.rest, rest)
	}
}

func TestDegradationVerdict(t *testing.T) {
	assert.Equal(t, "significant degradation", degradationVerdict(-3.1))
	assert.Equal(t, "normal wear", degradationVerdict(-1.0))
	assert.Equal(t, "stable", degradationVerdict(-0.2))
	assert.Equal(t, "stable", degradationVerdict(0.5))
}
