package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status определяет состояние жизненного цикла записи генерации.
type Status string

const (
	StatusPending    Status = "pending"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal сообщает, является ли состояние конечным.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// GeneratedFile представляет один сгенерированный файл.
type GeneratedFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// Metadata содержит best-effort телеметрию генерации. Поля могут быть нулевыми.
type Metadata struct {
	TokensUsed       int    `json:"tokensUsed"`
	GenerationTimeMs int64  `json:"generationTimeMs"`
	ModelUsed        string `json:"modelUsed"`
}

// GenerationRecord - единица работы и аудита: одна запись на один запрос
// генерации, от создания до конечного состояния.
//
// Инварианты: files непусто <=> status = completed; error непусто <=> status =
// failed; запись покидает generating не более одного раза.
type GenerationRecord struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"userId" db:"user_id"`
	Prompt     string     `json:"prompt" db:"prompt"`
	Stack      Stack      `json:"stack" db:"stack"`
	OutputMode OutputMode `json:"outputMode" db:"output_mode"`
	Status     Status     `json:"status" db:"status"`

	// Заполняется только при успешном завершении.
	Files              []GeneratedFile `json:"files,omitempty" db:"files"`
	Documentation      string          `json:"documentation,omitempty" db:"documentation"`
	InstallationScript string          `json:"installationScript,omitempty" db:"installation_script"`

	// Артефакты доставки: заполняется не более одного URL, по OutputMode.
	PreviewURL    string `json:"previewUrl,omitempty" db:"preview_url"`
	DeploymentURL string `json:"deploymentUrl,omitempty" db:"deployment_url"`
	DownloadURL   string `json:"downloadUrl,omitempty" db:"download_url"`
	CommitHash    string `json:"commitHash,omitempty" db:"commit_hash"`

	Error string `json:"error,omitempty" db:"error"`

	Metadata Metadata `json:"metadata" db:"metadata"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// GeneratedContent - результат разбора сырого ответа генератора.
type GeneratedContent struct {
	Files              []GeneratedFile
	Documentation      string
	InstallationScript string
}

// DeliveryResult - результат стратегии доставки. Заполняется ровно один URL
// в зависимости от режима вывода; CommitHash заполняется всегда.
type DeliveryResult struct {
	PreviewURL    string `json:"previewUrl,omitempty"`
	DeploymentURL string `json:"deploymentUrl,omitempty"`
	DownloadURL   string `json:"downloadUrl,omitempty"`
	CommitHash    string `json:"commitHash"`
}
