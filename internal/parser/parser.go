// Package parser превращает сырой текст генерации в структурированный набор
// файлов с производной документацией и скриптом установки.
package parser

import (
	"codegen-server/internal/domain"
)

// ContentParser - чистый парсер без I/O. Не может завершиться с ошибкой:
// при нераспознанной структуре деградирует до одного файла.
type ContentParser struct{}

// New создает новый ContentParser.
func New() *ContentParser {
	return &ContentParser{}
}

// Parse разбирает сырой ответ бэкенда в набор файлов. Текущая политика:
// весь ответ считается одним файлом, имя и язык берутся из таблицы стека.
// Документация и install-скрипт синтезируются из шаблонов стека, а не из
// структуры сгенерированного содержимого.
//
// TODO: извлечение нескольких файлов из ответов с разделителями
// (`// filename:` маркеры) - естественная точка расширения.
func (p *ContentParser) Parse(raw string, stack domain.Stack) domain.GeneratedContent {
	files := []domain.GeneratedFile{
		{
			Filename: stack.DefaultFilename(),
			Content:  raw,
			Language: stack.Language(),
		},
	}

	return domain.GeneratedContent{
		Files:              files,
		Documentation:      stack.Documentation(),
		InstallationScript: stack.InstallScript(),
	}
}
