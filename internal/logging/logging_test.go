package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSlog_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlog(slog.New(slog.NewJSONHandler(&buf, nil)), "dashlog")

	logger.Info("upload complete", "object", "proj-1/key.json")

	out := buf.String()
	assert.Contains(t, out, `"component":"dashlog"`)
	assert.Contains(t, out, `"object":"proj-1/key.json"`)
	assert.Contains(t, out, "upload complete")
}

func TestDiscard_DropsEverything(t *testing.T) {
	logger := Discard()

	assert.NotPanics(t, func() {
		logger.Debug("a")
		logger.Info("b", "k", "v")
		logger.Warn("c")
		logger.Error("d", "err", "boom")
	})
}
