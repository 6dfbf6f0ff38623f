package utils

import (
	"fmt"
	"os"
	"strings"
)

// ReadSecret читает секрет из файла в стандартном пути Docker Secrets.
// Если файла нет, используется переменная окружения fallbackEnv.
func ReadSecret(secretName, fallbackEnv string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err == nil {
		secret := strings.TrimSpace(string(secretBytes))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", filePath)
		}
		return secret, nil
	}

	if v := strings.TrimSpace(os.Getenv(fallbackEnv)); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("failed to read secret %s: file %s missing and %s not set", secretName, filePath, fallbackEnv)
}
