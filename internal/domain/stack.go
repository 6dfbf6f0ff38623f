package domain

import "fmt"

// Stack определяет целевой технологический стек для генерации кода.
type Stack string

const (
	StackReact       Stack = "react"
	StackVue         Stack = "vue"
	StackAngular     Stack = "angular"
	StackNode        Stack = "node"
	StackPython      Stack = "python"
	StackStaticSite  Stack = "html-css-js"
	StackReactNative Stack = "react-native"
	StackElectron    Stack = "electron"
	StackFullstack   Stack = "fullstack"
)

// AllStacks перечисляет все поддерживаемые стеки в фиксированном порядке.
var AllStacks = []Stack{
	StackReact,
	StackVue,
	StackAngular,
	StackNode,
	StackPython,
	StackStaticSite,
	StackReactNative,
	StackElectron,
	StackFullstack,
}

// Valid проверяет, является ли значение допустимым стеком.
func (s Stack) Valid() bool {
	switch s {
	case StackReact, StackVue, StackAngular, StackNode, StackPython,
		StackStaticSite, StackReactNative, StackElectron, StackFullstack:
		return true
	}
	return false
}

// IsJavaScriptFamily сообщает, относится ли стек к семейству JavaScript
// (проверяется через package.json и node --check).
func (s Stack) IsJavaScriptFamily() bool {
	switch s {
	case StackReact, StackVue, StackAngular, StackNode, StackReactNative, StackElectron:
		return true
	}
	return false
}

// DefaultFilename возвращает имя файла, в который помещается весь ответ
// генератора, когда структура ответа не распознана.
func (s Stack) DefaultFilename() string {
	switch s {
	case StackReact:
		return "App.jsx"
	case StackVue:
		return "App.vue"
	case StackAngular:
		return "app.component.ts"
	case StackNode:
		return "server.js"
	case StackPython:
		return "app.py"
	case StackStaticSite:
		return "index.html"
	case StackReactNative:
		return "App.js"
	case StackElectron:
		return "main.js"
	case StackFullstack:
		return "server.js"
	}
	return "output.txt"
}

// Language возвращает язык файла по умолчанию для стека.
func (s Stack) Language() string {
	switch s {
	case StackReact, StackVue, StackNode, StackReactNative, StackElectron, StackFullstack:
		return "javascript"
	case StackAngular:
		return "typescript"
	case StackPython:
		return "python"
	case StackStaticSite:
		return "html"
	}
	return "plaintext"
}

// Dockerfile возвращает рецепт сборки контейнера для стека (режим deploy).
// Композитный fullstack собирает backend и раздает собранный frontend.
func (s Stack) Dockerfile() string {
	switch s {
	case StackReact, StackVue, StackAngular:
		return `FROM node:18-alpine AS build
WORKDIR /app
COPY package*.json ./
RUN npm install
COPY . .
RUN npm run build
FROM nginx:alpine
COPY --from=build /app/dist /usr/share/nginx/html
EXPOSE 80
CMD ["nginx", "-g", "daemon off;"]
`
	case StackNode, StackElectron, StackReactNative:
		return `FROM node:18-alpine
WORKDIR /app
COPY package*.json ./
RUN npm install --production
COPY . .
EXPOSE 3000
CMD ["node", "server.js"]
`
	case StackPython:
		return `FROM python:3.11-slim
WORKDIR /app
COPY requirements.txt* ./
RUN if [ -f requirements.txt ]; then pip install --no-cache-dir -r requirements.txt; fi
COPY . .
EXPOSE 5000
CMD ["python", "app.py"]
`
	case StackStaticSite:
		return `FROM nginx:alpine
COPY . /usr/share/nginx/html
EXPOSE 80
CMD ["nginx", "-g", "daemon off;"]
`
	case StackFullstack:
		return `FROM node:18-alpine AS frontend
WORKDIR /app/frontend
COPY frontend/package*.json ./
RUN npm install
COPY frontend/ .
RUN npm run build
FROM node:18-alpine
WORKDIR /app
COPY backend/package*.json ./
RUN npm install --production
COPY backend/ .
COPY --from=frontend /app/frontend/dist ./public
EXPOSE 3000
CMD ["node", "server.js"]
`
	}
	return ""
}

// InstallScript возвращает скрипт установки для стека.
func (s Stack) InstallScript() string {
	switch s {
	case StackReact, StackVue, StackAngular, StackNode, StackElectron, StackFullstack:
		return "#!/bin/sh\nset -e\nnpm install\nnpm start\n"
	case StackReactNative:
		return "#!/bin/sh\nset -e\nnpm install\nnpx react-native start\n"
	case StackPython:
		return "#!/bin/sh\nset -e\npip install -r requirements.txt\npython app.py\n"
	case StackStaticSite:
		return "#!/bin/sh\n# Static site: open index.html in a browser or serve the directory.\n"
	}
	return "#!/bin/sh\n"
}

// Documentation возвращает шаблон документации для стека.
func (s Stack) Documentation() string {
	return fmt.Sprintf(
		"# Generated %s project\n\nThis project was generated automatically.\n\n## Getting started\n\nRun `./install.sh` to install dependencies and start the project.\n",
		s,
	)
}

// ManifestFilename возвращает имя файла манифеста зависимостей для стека
// или пустую строку, если манифест не требуется.
func (s Stack) ManifestFilename() string {
	if s.IsJavaScriptFamily() || s == StackFullstack {
		return "package.json"
	}
	if s == StackPython {
		return "requirements.txt"
	}
	return ""
}

// ParseStack разбирает строку в Stack.
func ParseStack(raw string) (Stack, error) {
	s := Stack(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown stack %q", ErrInvalidInput, raw)
	}
	return s, nil
}
