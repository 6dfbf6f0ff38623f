package delivery

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codegen-server/internal/domain"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"go.uber.org/zap"
)

// candidatePorts - фиксированный набор портов-кандидатов, которые контейнер
// экспонирует; хост-порты назначаются динамически.
var candidatePorts = []string{"80/tcp", "3000/tcp", "5000/tcp", "8080/tcp"}

// DockerClient - подмножество Docker Engine API, используемое деплоем.
type DockerClient interface {
	ImageBuild(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
}

// DeployStrategy материализует файлы в директорию деплоя, собирает образ по
// рецепту стека и запускает контейнер.
type DeployStrategy struct {
	docker         DockerClient
	deploymentsDir string
	appsDomain     string
	timeout        time.Duration
	logger         *zap.Logger
}

// NewDeployStrategy создает новую DeployStrategy.
func NewDeployStrategy(docker DockerClient, deploymentsDir, appsDomain string, timeout time.Duration, logger *zap.Logger) *DeployStrategy {
	return &DeployStrategy{
		docker:         docker,
		deploymentsDir: deploymentsDir,
		appsDomain:     appsDomain,
		timeout:        timeout,
		logger:         logger.Named("DeployStrategy"),
	}
}

// Deliver выполняет полный цикл деплоя. Любой сбой на любом шаге прерывает
// стратегию целиком с ErrDeploymentFailed.
func (s *DeployStrategy) Deliver(ctx context.Context, files []domain.GeneratedFile, stack domain.Stack) (domain.DeliveryResult, error) {
	if s.docker == nil {
		return domain.DeliveryResult{}, fmt.Errorf("%w: docker is not configured", domain.ErrDeploymentFailed)
	}

	deployID := newArtifactID("deploy")
	deployDir := filepath.Join(s.deploymentsDir, deployID)

	if err := s.materialize(deployDir, files, stack); err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("%w: %v", domain.ErrDeploymentFailed, err)
	}

	// Сборка и запуск ограничены общим таймаутом: зависший docker build не
	// должен останавливать пайплайн навсегда.
	deployCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	imageTag := fmt.Sprintf("codegen/%s", deployID)
	if err := s.buildImage(deployCtx, deployDir, imageTag); err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("%w: image build: %v", domain.ErrDeploymentFailed, err)
	}

	containerID, err := s.startContainer(deployCtx, imageTag, deployID)
	if err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("%w: container start: %v", domain.ErrDeploymentFailed, err)
	}

	s.logger.Info("Deployment started",
		zap.String("deploy_id", deployID),
		zap.String("image", imageTag),
		zap.String("container_id", containerID),
	)

	return domain.DeliveryResult{
		DeploymentURL: fmt.Sprintf("https://%s.%s", deployID, s.appsDomain),
		CommitHash:    newCommitToken(),
	}, nil
}

// materialize записывает файлы и Dockerfile стека в директорию деплоя.
func (s *DeployStrategy) materialize(deployDir string, files []domain.GeneratedFile, stack domain.Stack) error {
	if err := os.MkdirAll(deployDir, 0o755); err != nil {
		return fmt.Errorf("failed to create deployment dir: %v", err)
	}

	for _, file := range files {
		cleaned := filepath.Clean(file.Filename)
		if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
			return fmt.Errorf("invalid filename %q", file.Filename)
		}
		target := filepath.Join(deployDir, cleaned)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create dir for %s: %v", file.Filename, err)
		}
		if err := os.WriteFile(target, []byte(file.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %v", file.Filename, err)
		}
	}

	dockerfile := stack.Dockerfile()
	if dockerfile == "" {
		return fmt.Errorf("no build recipe for stack %q", stack)
	}
	if err := os.WriteFile(filepath.Join(deployDir, "Dockerfile"), []byte(dockerfile), 0o644); err != nil {
		return fmt.Errorf("failed to write Dockerfile: %v", err)
	}
	return nil
}

// buildImage собирает образ из директории деплоя. Поток сборки читается до
// конца: ошибки сборки приходят внутри JSON-стрима, а не в error вызова.
func (s *DeployStrategy) buildImage(ctx context.Context, deployDir, imageTag string) error {
	buildCtx, err := archive.TarWithOptions(deployDir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("failed to create build context: %v", err)
	}
	defer buildCtx.Close()

	resp, err := s.docker.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Tags:       []string{imageTag},
		Dockerfile: "Dockerfile",
		Remove:     true,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, io.Discard, 0, false, nil); err != nil {
		return err
	}
	return nil
}

// startContainer создает и запускает контейнер с фиксированным набором
// портов-кандидатов и динамическим назначением хост-портов.
func (s *DeployStrategy) startContainer(ctx context.Context, imageTag, deployID string) (string, error) {
	exposed := nat.PortSet{}
	for _, p := range candidatePorts {
		exposed[nat.Port(p)] = struct{}{}
	}

	created, err := s.docker.ContainerCreate(ctx,
		&container.Config{
			Image:        imageTag,
			ExposedPorts: exposed,
		},
		&container.HostConfig{
			PublishAllPorts: true,
		},
		nil, nil, deployID,
	)
	if err != nil {
		return "", err
	}

	if err := s.docker.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return "", err
	}
	return created.ID, nil
}
