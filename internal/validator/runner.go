package validator

import (
	"context"
	"os/exec"
	"time"
)

// CommandRunner выполняет внешнюю команду и возвращает ее объединенный вывод.
// Абстракция нужна для подмены в тестах и для ограничения времени выполнения.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner - реализация CommandRunner поверх os/exec с ограничением времени
// на каждую команду.
type ExecRunner struct {
	Timeout time.Duration
}

// Run выполняет команду в указанной директории. Контекст ограничивается
// таймаутом: зависший интерпретатор не должен останавливать весь пайплайн.
func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}
