package domain

import "fmt"

// OutputMode определяет канал доставки сгенерированного кода.
type OutputMode string

const (
	OutputModePreview  OutputMode = "preview"  // эфемерный URL предпросмотра
	OutputModeDeploy   OutputMode = "deploy"   // постоянный работающий инстанс
	OutputModeDownload OutputMode = "download" // скачиваемый архив
)

// Valid проверяет, является ли значение допустимым режимом вывода.
func (m OutputMode) Valid() bool {
	switch m {
	case OutputModePreview, OutputModeDeploy, OutputModeDownload:
		return true
	}
	return false
}

// ParseOutputMode разбирает строку в OutputMode.
func ParseOutputMode(raw string) (OutputMode, error) {
	m := OutputMode(raw)
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown output mode %q", ErrInvalidInput, raw)
	}
	return m, nil
}
