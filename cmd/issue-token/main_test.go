package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRoles(t *testing.T) {
	assert.Equal(t, []string{"chat", "admin"}, splitRoles(" chat, ,admin "))
	assert.Nil(t, splitRoles(""))
}
