package domain_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	err := &domain.ConfigError{Path: ".kraftlint.yaml", Err: fs.ErrNotExist}
	assert.Equal(t, "invalid configuration .kraftlint.yaml: file does not exist", err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)

	bare := &domain.ConfigError{Err: errors.New("unknown rule XX000")}
	assert.Equal(t, "invalid configuration: unknown rule XX000", bare.Error())
}

func TestParseError(t *testing.T) {
	assert.Equal(t, "line 4: unterminated block comment", (&domain.ParseError{Line: 4, Reason: "unterminated block comment"}).Error())
	assert.Equal(t, "bad input", (&domain.ParseError{Reason: "bad input"}).Error())
}
