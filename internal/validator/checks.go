package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codegen-server/internal/domain"
)

// checkJavaScript проверяет поддерево subdir (пусто = корень staging) как
// JavaScript-проект: обязательный манифест package.json с полями name/version
// и независимая синтаксическая проверка каждого .js файла через node --check.
func (v *Validator) checkJavaScript(ctx context.Context, stagingDir, subdir string, result *domain.ValidationResult) {
	root := stagingDir
	prefix := ""
	if subdir != "" {
		root = filepath.Join(stagingDir, subdir)
		prefix = subdir + "/"
	}

	manifestPath := filepath.Join(root, "package.json")
	manifestBytes, err := os.ReadFile(manifestPath)
	if err != nil {
		result.AddError(fmt.Sprintf("%spackage.json: missing manifest file", prefix))
	} else {
		var manifest map[string]any
		if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
			result.AddError(fmt.Sprintf("%spackage.json: manifest is not valid JSON: %v", prefix, err))
		} else {
			for _, field := range []string{"name", "version"} {
				if _, ok := manifest[field]; !ok {
					result.AddError(fmt.Sprintf("%spackage.json: missing required field %q", prefix, field))
				}
			}
		}
	}

	// Каждый файл проверяется независимо: одна битая единица не останавливает
	// проверку остальных.
	for _, path := range collectFiles(root, ".js") {
		rel, _ := filepath.Rel(root, path)
		output, err := v.runner.Run(ctx, root, v.nodeBinary, "--check", path)
		if err != nil {
			result.AddError(fmt.Sprintf("%s%s: syntax check failed: %s", prefix, rel, diagnostic(output, err)))
		}
	}
}

// checkPython проверяет каждый .py файл через компиляционную проверку
// интерпретатора. Отсутствующий requirements.txt - только предупреждение.
func (v *Validator) checkPython(ctx context.Context, stagingDir string, result *domain.ValidationResult) {
	if _, err := os.Stat(filepath.Join(stagingDir, "requirements.txt")); err != nil {
		result.AddWarning("requirements.txt: missing dependency manifest")
	}

	for _, path := range collectFiles(stagingDir, ".py") {
		rel, _ := filepath.Rel(stagingDir, path)
		output, err := v.runner.Run(ctx, stagingDir, v.pythonBinary, "-m", "py_compile", path)
		if err != nil {
			result.AddError(fmt.Sprintf("%s: syntax check failed: %s", rel, diagnostic(output, err)))
		}
	}
}

// checkStaticSite выполняет только структурные проверки HTML-файлов.
// Все находки - предупреждения, никогда не ошибки.
func checkStaticSite(files []domain.GeneratedFile, result *domain.ValidationResult) {
	for _, file := range files {
		if !strings.HasSuffix(strings.ToLower(file.Filename), ".html") {
			continue
		}
		content := strings.ToLower(file.Content)
		if !strings.Contains(content, "<!doctype") {
			result.AddWarning(fmt.Sprintf("%s: missing doctype declaration", file.Filename))
		}
		if !strings.Contains(content, "<head") {
			result.AddWarning(fmt.Sprintf("%s: missing <head> tag", file.Filename))
		}
		if !strings.Contains(content, "<body") {
			result.AddWarning(fmt.Sprintf("%s: missing <body> tag", file.Filename))
		}
	}
}

// checkFullstack требует наличия поддеревьев frontend и backend; каждое
// существующее поддерево независимо проходит JavaScript-проверку.
func (v *Validator) checkFullstack(ctx context.Context, stagingDir string, result *domain.ValidationResult) {
	for _, subtree := range []string{"frontend", "backend"} {
		info, err := os.Stat(filepath.Join(stagingDir, subtree))
		if err != nil || !info.IsDir() {
			result.AddError(fmt.Sprintf("%s/: missing required subtree", subtree))
			continue
		}
		v.checkJavaScript(ctx, stagingDir, subtree, result)
	}
}

// collectFiles возвращает отсортированный список файлов с заданным
// расширением в поддереве. Сортировка дает детерминированный порядок находок.
func collectFiles(root, ext string) []string {
	var paths []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ext) {
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)
	return paths
}

// diagnostic возвращает вывод инструмента, если он есть, иначе текст ошибки.
func diagnostic(output []byte, err error) string {
	trimmed := strings.TrimSpace(string(output))
	if trimmed != "" {
		return trimmed
	}
	return err.Error()
}
