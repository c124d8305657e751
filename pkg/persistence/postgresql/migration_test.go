package postgresql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrations(t *testing.T) {
	m := migrations()

	assert.Len(t, m, 2)
	assert.Contains(t, m[1], "CREATE TABLE workflows")
	assert.Contains(t, m[1], "REFERENCES workflows(id) ON DELETE CASCADE")
	assert.Contains(t, m[2], "CREATE TABLE contacts")
	assert.Contains(t, m[2], "CREATE TABLE tasks")
	assert.Contains(t, m[2], "CREATE TABLE activities")
}
