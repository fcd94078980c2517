package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"exchange-diary/internal/config"
	"exchange-diary/internal/ledger"
)

const tempFilePrefix = "ocr_"

// Result is the structured output of one extraction run.
type Result struct {
	Success bool            `json:"success"`
	Records []ledger.Record `json:"records"`
	Error   string          `json:"error,omitempty"`
}

// Extractor turns an image into candidate ledger records.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (*Result, error)
}

// ScriptExtractor shells out to the EasyOCR python script. The image is
// handed over as a temp PNG which is removed again whether or not the run
// succeeds; a crashed process can leave strays, which the cron sweep
// collects later.
type ScriptExtractor struct {
	Logger  *zap.Logger
	Python  string
	Script  string
	TempDir string
}

func NewScriptExtractor(cfg config.OCRConfig, logger *zap.Logger) *ScriptExtractor {
	return &ScriptExtractor{
		Logger:  logger,
		Python:  cfg.Python,
		Script:  cfg.Script,
		TempDir: cfg.TempDir,
	}
}

func (e *ScriptExtractor) Extract(ctx context.Context, image []byte) (*Result, error) {
	dir := e.TempDir
	if dir == "" {
		dir = "temp"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	filename := filepath.Join(dir, tempFilePrefix+uuid.NewString()+".png")
	if err := os.WriteFile(filename, image, 0o644); err != nil {
		return nil, fmt.Errorf("write temp image: %w", err)
	}
	defer func() {
		if err := os.Remove(filename); err != nil && !os.IsNotExist(err) && e.Logger != nil {
			e.Logger.Warn("temp image cleanup failed",
				zap.String("file", filename),
				zap.Error(err),
			)
		}
	}()

	python := e.Python
	if python == "" {
		python = "python3"
	}
	script := e.Script
	if script == "" {
		script = "easyocr_ocr.py"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, python, script, filename)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if e.Logger != nil {
			e.Logger.Error("ocr script failed",
				zap.Error(err),
				zap.String("stderr", stderr.String()),
			)
		}
		return nil, fmt.Errorf("ocr script: %w: %s", err, stderr.String())
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("decode ocr output: %w", err)
	}
	return &result, nil
}
