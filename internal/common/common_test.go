package common

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("OCR_DPI", "")
	cfg := LoadConfig()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 150, cfg.OCR.DPI)
	assert.Equal(t, 5, cfg.OCR.MaxPages)
	assert.True(t, cfg.OCR.AlwaysOCR)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("OCR_DPI", "300")
	t.Setenv("WORKERS", "8")
	t.Setenv("PROCESS_TIMEOUT", "90s")
	cfg := LoadConfig()

	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, 8, cfg.Worker.Workers)
	assert.Equal(t, 90*time.Second, cfg.Worker.ProcessTimeout)
}

func TestIntakeRoots(t *testing.T) {
	t.Setenv("WATCH_DIR", "")
	t.Setenv("INGEST_ROOTS", "")
	assert.Empty(t, LoadConfig().IntakeRoots())

	t.Setenv("WATCH_DIR", "/srv/inbox")
	assert.Equal(t, []string{"/srv/inbox"}, LoadConfig().IntakeRoots())

	t.Setenv("INGEST_ROOTS", "/srv/a, /srv/b ,")
	assert.Equal(t, []string{"/srv/a", "/srv/b"}, LoadConfig().IntakeRoots())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bok.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: postgres
  dsn: postgres://localhost/bok
ocr:
  dpi: 200
  always_ocr: false
worker:
  process_timeout: 45s
`), 0o600))
	t.Setenv("BOK_OCR_MAX_PAGES", "9")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/bok", cfg.Database.DSN)
	assert.Equal(t, 200, cfg.OCR.DPI)
	assert.False(t, cfg.OCR.AlwaysOCR)
	assert.Equal(t, 9, cfg.OCR.MaxPages)
	assert.Equal(t, 45*time.Second, cfg.Worker.ProcessTimeout)
	assert.Equal(t, "tesseract", cfg.OCR.TesseractBin)
}

func TestLoadConfigFileMissing(t *testing.T) {
	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, LoadConfig().OCR.DPI, cfg.OCR.DPI)
}

func TestConfigValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Database.Driver = "oracle"
	cfg.OCR.DPI = 10

	err := cfg.Validate()
	require.Error(t, err)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "ocr.dpi")
}

func TestValidatorError(t *testing.T) {
	v := NewValidator().
		Field("name", "", Required).
		Field("id", "not-a-uuid", UUID).
		Field("note", "abcdef", MaxLength(3))
	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)
	assert.True(t, IsValidation(v.Error()))
	assert.NoError(t, NewValidator().Field("name", "ok", Required).Error())
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{WrapError(ErrNotFound, "document"), codes.NotFound},
		{NewAppError("BAD", "bad path", ErrUnsupportedFile), codes.InvalidArgument},
		{ErrNoText, codes.FailedPrecondition},
		{errors.New("boom"), codes.Internal},
		{NotFoundError("gone"), codes.NotFound},
		{NewAppError("PERMISSION_DENIED", "outside", ErrForbidden), codes.PermissionDenied},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, status.Code(ToStatus(tt.err)), tt.err.Error())
	}
	assert.NoError(t, ToStatus(nil))
}

func TestLoggerFromContext(t *testing.T) {
	base := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	ctx := WithRequestID(context.Background(), "req-1")
	assert.NotNil(t, LoggerFromContext(ctx, base))

	scoped := base.With("k", "v")
	assert.Same(t, scoped, LoggerFromContext(WithLogger(ctx, scoped), base))
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
