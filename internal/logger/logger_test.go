package logger

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithFields(t *testing.T) {
	assert.Equal(t, "plain message", withFields("plain message"))
	assert.Equal(t, "lock released lock_id=lock_abc released=true", withFields("lock released", "lock_id", "lock_abc", "released", true))
	assert.Equal(t, "dangling key", withFields("dangling", "key"))
}

func TestLoggersWrite(t *testing.T) {
	Init()

	var buf bytes.Buffer
	InfoLogger = log.New(&buf, "INFO: ", 0)

	Info("availability lock created", "quantity", 3)
	assert.Contains(t, buf.String(), "availability lock created quantity=3")

	buf.Reset()
	Infof("scope %s locked", "1:double")
	assert.Contains(t, buf.String(), "scope 1:double locked")
}
