package domain

// ValidationResult накапливает результаты проверки сгенерированных файлов.
// Списки append-only и упорядочены; предупреждения и security-находки не
// влияют на валидность.
type ValidationResult struct {
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
	SecurityIssues []string `json:"securityIssues"`
}

// NewValidationResult создает пустой результат валидации.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Errors:         []string{},
		Warnings:       []string{},
		SecurityIssues: []string{},
	}
}

// IsValid сообщает, прошла ли валидация: true тогда и только тогда, когда
// список ошибок пуст.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// AddError добавляет ошибку (фатальную для пайплайна).
func (r *ValidationResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddWarning добавляет предупреждение.
func (r *ValidationResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// AddSecurityIssue добавляет security-находку.
func (r *ValidationResult) AddSecurityIssue(msg string) {
	r.SecurityIssues = append(r.SecurityIssues, msg)
}
