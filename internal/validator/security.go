package validator

import (
	"fmt"
	"regexp"

	"codegen-server/internal/domain"
)

// severity - явно объявленная категория находки security-сканера.
type severity int

const (
	severityWarning  severity = iota // попадает в warnings
	severitySecurity                 // попадает в securityIssues
)

// securityPattern описывает один эвристический паттерн. Это сопоставление по
// регулярным выражениям, не taint-анализ.
type securityPattern struct {
	re       *regexp.Regexp
	severity severity
	message  string
}

// Паттерны применяются к каждому файлу в фиксированном порядке; не более
// одной находки на файл на паттерн.
var securityPatterns = []securityPattern{
	{
		re:       regexp.MustCompile(`(?i)\beval\s*\(`),
		severity: severitySecurity,
		message:  "use of eval() detected",
	},
	{
		re:       regexp.MustCompile(`(?i)document\.write\s*\(`),
		severity: severitySecurity,
		message:  "use of document.write() detected",
	},
	{
		re:       regexp.MustCompile(`(?i)\.innerHTML\s*=`),
		severity: severityWarning,
		message:  "raw innerHTML assignment, consider textContent or sanitization",
	},
	{
		re:       regexp.MustCompile(`(?i)password\s*[:=]\s*["'][^"']+["']`),
		severity: severitySecurity,
		message:  "possible hardcoded password",
	},
	{
		re:       regexp.MustCompile(`(?i)api[_-]?key\s*[:=]\s*["'][^"']+["']`),
		severity: severitySecurity,
		message:  "possible hardcoded API key",
	},
	{
		re:       regexp.MustCompile(`(?i)\bsecret\s*[:=]\s*["'][^"']+["']`),
		severity: severitySecurity,
		message:  "possible hardcoded secret",
	},
}

// scanSecurity прогоняет эвристический security-скан по всем файлам,
// независимо от стека и от результата синтаксических проверок. Порядок
// находок детерминирован: файлы во входном порядке, паттерны по объявлению.
func scanSecurity(files []domain.GeneratedFile, result *domain.ValidationResult) {
	for _, file := range files {
		for _, pattern := range securityPatterns {
			if !pattern.re.MatchString(file.Content) {
				continue
			}
			finding := fmt.Sprintf("%s: %s", file.Filename, pattern.message)
			switch pattern.severity {
			case severitySecurity:
				result.AddSecurityIssue(finding)
			case severityWarning:
				result.AddWarning(finding)
			}
		}
	}
}
