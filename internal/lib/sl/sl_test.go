package sl_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	attr := sl.Err(errors.New("something went wrong"))

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "", attr.Value.String())
	})
}

func TestOp(t *testing.T) {
	attr := sl.Op("services.auth.Login")

	assert.Equal(t, "op", attr.Key)
	assert.Equal(t, "services.auth.Login", attr.Value.String())
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	sl.New("prod", &buf).Info("started", slog.String("env", "prod"))

	var line map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "started", line["msg"])

	buf.Reset()
	sl.New("local", &buf).Debug("debug line")
	assert.Contains(t, buf.String(), "msg=\"debug line\"")
}
