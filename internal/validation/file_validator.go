package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apperrors "conflictpanel/internal/errors"
)

// inputKind is the extension rule for one family of source files
type inputKind struct {
	label      string
	extensions []string
}

var (
	workbookInput = inputKind{label: "an Excel workbook", extensions: []string{".xlsx", ".xlsm"}}
	feedInput     = inputKind{label: "a CSV file", extensions: []string{".csv"}}
)

// FileValidator checks the input files of a run before any of them is parsed
type FileValidator struct {
	logger *slog.Logger
}

func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateInputDirectory requires dir to exist and be a directory
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := v.stat(dir, "input directory")
	if err != nil {
		return err
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory", slog.String("path", dir))
		return apperrors.NewAppValidationError(dir + " is not a directory")
	}
	return nil
}

// ValidateFile requires path to be a regular file this process can open
func (v *FileValidator) ValidateFile(path string) error {
	info, err := v.stat(path, "input file")
	if err != nil {
		return err
	}
	if info.IsDir() {
		v.logger.Error("Input path is a directory", slog.String("path", path))
		return apperrors.NewAppValidationError(path + " is a directory, not a file")
	}

	f, err := os.Open(path)
	if err != nil {
		v.logger.Error("Input file is not readable", slog.String("file", path), slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	_ = f.Close()

	v.logger.Debug("Input file ok", slog.String("file", path), slog.Int64("size", info.Size()))
	return nil
}

// ValidateExcelFile also rejects the "~$" lock files Excel leaves next to an
// open workbook
func (v *FileValidator) ValidateExcelFile(path string) error {
	if err := v.validateKind(path, workbookInput); err != nil {
		return err
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel file", path))
	}
	return nil
}

func (v *FileValidator) ValidateCSVFile(path string) error {
	return v.validateKind(path, feedInput)
}

// ValidateInputs picks the rule for each path from its extension and stops
// at the first failure
func (v *FileValidator) ValidateInputs(paths ...string) error {
	for _, path := range paths {
		check := v.ValidateExcelFile
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			check = v.ValidateCSVFile
		}
		if err := check(path); err != nil {
			return err
		}
	}
	v.logger.Info("Input files validated", slog.Int("files", len(paths)))
	return nil
}

func (v *FileValidator) validateKind(path string, kind inputKind) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(kind.extensions, ext) {
		v.logger.Error("Unexpected input extension", slog.String("file", path), slog.String("extension", ext))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is not %s (extension: %s)", path, kind.label, ext))
	}
	return nil
}

func (v *FileValidator) stat(path, what string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		v.logger.Error("Input does not exist", slog.String("path", path))
		return nil, apperrors.NewNotFoundError(what + " " + path)
	case err != nil:
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to stat %s", path), err)
	}
	return info, nil
}
